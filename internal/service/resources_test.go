package service

import (
	"context"
	"net/http"
	"testing"

	"mentorship-service/internal/model"
	"mentorship-service/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceVisibility(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewResourceService(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner", model.RoleMentor)
	friend := testutil.CreateUser(t, db, "friend", model.RoleMentee)
	stranger := testutil.CreateUser(t, db, "stranger", model.RoleMentee)
	admin := testutil.CreateUser(t, db, "admin", model.RoleAdmin)

	public, err := svc.Create(ctx, actorOf(owner), ResourceInput{Title: "Pitch deck guide", Type: model.ResourceArticle, URL: "https://example.com/a", IsPublic: true, Category: "Fundraising"}, "")
	require.NoError(t, err)
	private, err := svc.Create(ctx, actorOf(owner), ResourceInput{Title: "Cap table template", Type: model.ResourceTemplate}, "/uploads/resources/x.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/resources/x.xlsx", private.FilePath)
	require.NotNil(t, private.Owner)

	_, err = svc.Create(ctx, actorOf(friend), ResourceInput{Title: "nope", Type: model.ResourceLink, URL: "https://example.com"}, "")
	assertStatus(t, err, http.StatusForbidden)

	_, err = svc.Create(ctx, actorOf(owner), ResourceInput{Title: "empty", Type: model.ResourceLink}, "")
	assertStatus(t, err, http.StatusBadRequest)

	_, err = svc.Get(ctx, actorOf(stranger), private.ID)
	assertStatus(t, err, http.StatusNotFound)

	shared, err := svc.Share(ctx, actorOf(owner), private.ID, []uint{friend.ID, friend.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{friend.ID}, shared)

	_, err = svc.Share(ctx, actorOf(friend), private.ID, []uint{stranger.ID})
	assertStatus(t, err, http.StatusForbidden)
	_, err = svc.Share(ctx, actorOf(owner), private.ID, []uint{9999})
	assertStatus(t, err, http.StatusNotFound)

	got, err := svc.Get(ctx, actorOf(friend), private.ID)
	require.NoError(t, err)
	assert.Equal(t, private.ID, got.ID)

	strangerView, err := svc.List(ctx, actorOf(stranger), ResourceFilter{}, Page{})
	require.NoError(t, err)
	require.Len(t, strangerView.Data, 1)
	assert.Equal(t, public.ID, strangerView.Data[0].ID)

	friendView, err := svc.List(ctx, actorOf(friend), ResourceFilter{}, Page{})
	require.NoError(t, err)
	assert.Len(t, friendView.Data, 2)

	adminView, err := svc.List(ctx, actorOf(admin), ResourceFilter{Type: model.ResourceTemplate}, Page{})
	require.NoError(t, err)
	assert.Len(t, adminView.Data, 1)

	mine, err := svc.List(ctx, actorOf(owner), ResourceFilter{Mine: true, Category: "fundraising"}, Page{})
	require.NoError(t, err)
	assert.Len(t, mine.Data, 1)

	search, err := svc.List(ctx, actorOf(stranger), ResourceFilter{Search: "PITCH"}, Page{})
	require.NoError(t, err)
	assert.Len(t, search.Data, 1)
}

func TestResourceUpdateDeleteDownload(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewResourceService(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner", model.RoleMentor)
	other := testutil.CreateUser(t, db, "other", model.RoleMentee)

	r, err := svc.Create(ctx, actorOf(owner), ResourceInput{Title: "Guide", Type: model.ResourceDocument, IsPublic: true}, "/uploads/resources/g.pdf")
	require.NoError(t, err)

	_, err = svc.Update(ctx, actorOf(other), r.ID, ResourceInput{Title: "Hijack", Type: model.ResourceDocument})
	assertStatus(t, err, http.StatusForbidden)

	updated, err := svc.Update(ctx, actorOf(owner), r.ID, ResourceInput{Title: "Guide v2", Type: model.ResourceDocument, IsPublic: true, Tags: []string{"legal"}})
	require.NoError(t, err)
	assert.Equal(t, "Guide v2", updated.Title)
	assert.Equal(t, "/uploads/resources/g.pdf", updated.FilePath)

	for i := 0; i < 2; i++ {
		_, err = svc.Download(ctx, actorOf(other), r.ID)
		require.NoError(t, err)
	}
	got, err := svc.Get(ctx, actorOf(other), r.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Downloads)

	_, err = svc.Delete(ctx, actorOf(other), r.ID)
	assertStatus(t, err, http.StatusForbidden)

	path, err := svc.Delete(ctx, actorOf(owner), r.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/resources/g.pdf", path)

	_, err = svc.Get(ctx, actorOf(owner), r.ID)
	assertStatus(t, err, http.StatusNotFound)
}
