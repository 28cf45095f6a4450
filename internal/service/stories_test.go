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

func TestSuccessStories(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewStoryService(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author", model.RoleMentee)
	mentor := testutil.CreateUser(t, db, "mentor", model.RoleMentor)
	reader := testutil.CreateUser(t, db, "reader", model.RoleMentee)
	admin := testutil.CreateUser(t, db, "admin", model.RoleAdmin)

	_, err := svc.Create(ctx, actorOf(author), StoryInput{Title: "x", Content: "y", MentorID: &reader.ID})
	assertStatus(t, err, http.StatusBadRequest)

	draft, err := svc.Create(ctx, actorOf(author), StoryInput{Title: "Draft", Content: "wip"})
	require.NoError(t, err)
	published, err := svc.Create(ctx, actorOf(author), StoryInput{
		Title:       "From idea to 20 staff",
		Content:     "It started with a kiosk",
		Category:    "Retail",
		MentorID:    &mentor.ID,
		IsPublished: true,
	})
	require.NoError(t, err)
	require.NotNil(t, published.Mentor)
	assert.Equal(t, mentor.ID, published.Mentor.ID)

	list, err := svc.List(ctx, actorOf(reader), StoryFilter{}, Page{})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, published.ID, list.Data[0].ID)

	mine, err := svc.List(ctx, actorOf(author), StoryFilter{Mine: true}, Page{})
	require.NoError(t, err)
	assert.Len(t, mine.Data, 2)

	_, err = svc.Get(ctx, actorOf(reader), draft.ID)
	assertStatus(t, err, http.StatusNotFound)

	own, err := svc.Get(ctx, actorOf(author), draft.ID)
	require.NoError(t, err)
	assert.Zero(t, own.Views)

	_, err = svc.Get(ctx, actorOf(reader), published.ID)
	require.NoError(t, err)
	viewed, err := svc.Get(ctx, actorOf(reader), published.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, viewed.Views)

	_, err = svc.SetFeatured(ctx, actorOf(author), published.ID, true)
	assertStatus(t, err, http.StatusForbidden)
	_, err = svc.SetFeatured(ctx, actorOf(admin), draft.ID, true)
	assertStatus(t, err, http.StatusBadRequest)

	featured, err := svc.SetFeatured(ctx, actorOf(admin), published.ID, true)
	require.NoError(t, err)
	assert.True(t, featured.IsFeatured)

	onlyFeatured, err := svc.List(ctx, actorOf(reader), StoryFilter{Featured: true, Category: "retail"}, Page{})
	require.NoError(t, err)
	assert.Len(t, onlyFeatured.Data, 1)

	_, err = svc.Update(ctx, actorOf(reader), draft.ID, StoryInput{Title: "x", Content: "y"})
	assertStatus(t, err, http.StatusForbidden)

	updated, err := svc.Update(ctx, actorOf(author), draft.ID, StoryInput{Title: "Done", Content: "shipped", IsPublished: true})
	require.NoError(t, err)
	assert.True(t, updated.IsPublished)

	require.NoError(t, svc.Delete(ctx, actorOf(admin), draft.ID))
	_, err = svc.Get(ctx, actorOf(author), draft.ID)
	assertStatus(t, err, http.StatusNotFound)
}
