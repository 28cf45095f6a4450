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

func TestMentorProfileLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewProfileService(db)
	ctx := context.Background()
	mentor := testutil.CreateUser(t, db, "mentor", model.RoleMentor)
	mentee := testutil.CreateUser(t, db, "mentee", model.RoleMentee)

	_, err := svc.UpdateMentorProfile(ctx, actorOf(mentor), MentorProfileInput{})
	assertStatus(t, err, http.StatusNotFound)

	_, err = svc.CreateMentorProfile(ctx, actorOf(mentee), MentorProfileInput{})
	assertStatus(t, err, http.StatusForbidden)

	profile, err := svc.CreateMentorProfile(ctx, actorOf(mentor), MentorProfileInput{
		Expertise:         []string{"Marketing", "Finance"},
		Industries:        []string{"Agritech"},
		YearsOfExperience: 12,
		Availability:      []model.AvailabilitySlot{{Day: "monday", StartTime: "09:00", EndTime: "11:00"}},
		MaxMentees:        3,
	})
	require.NoError(t, err)
	assert.Equal(t, mentor.ID, profile.UserID)
	require.NotNil(t, profile.User)
	assert.Equal(t, "mentor", profile.User.Name)
	require.Len(t, profile.Availability, 1)

	_, err = svc.CreateMentorProfile(ctx, actorOf(mentor), MentorProfileInput{})
	assertStatus(t, err, http.StatusConflict)

	_, err = svc.UpdateMentorProfile(ctx, actorOf(mentor), MentorProfileInput{
		Availability: []model.AvailabilitySlot{{Day: "friday", StartTime: "15:00", EndTime: "14:00"}},
	})
	assertStatus(t, err, http.StatusBadRequest)

	updated, err := svc.UpdateMentorProfile(ctx, actorOf(mentor), MentorProfileInput{Expertise: []string{"Sales"}, YearsOfExperience: 13})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sales"}, []string(updated.Expertise))
	assert.Equal(t, 13, updated.YearsOfExperience)
}

func TestListMentorProfiles(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewProfileService(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "a", model.RoleMentor)
	b := testutil.CreateUser(t, db, "b", model.RoleMentor)
	_, err := svc.CreateMentorProfile(ctx, actorOf(a), MentorProfileInput{Expertise: []string{"Marketing"}, Industries: []string{"Retail"}, YearsOfExperience: 5})
	require.NoError(t, err)
	_, err = svc.CreateMentorProfile(ctx, actorOf(b), MentorProfileInput{Expertise: []string{"Finance"}, Industries: []string{"Retail"}, YearsOfExperience: 9})
	require.NoError(t, err)

	all, err := svc.ListMentorProfiles(ctx, MentorProfileFilter{}, Page{})
	require.NoError(t, err)
	require.Len(t, all.Data, 2)
	assert.Equal(t, b.ID, all.Data[0].UserID, "most experienced first")
	require.NotNil(t, all.Data[0].User)

	byExpertise, err := svc.ListMentorProfiles(ctx, MentorProfileFilter{Expertise: "marketing"}, Page{})
	require.NoError(t, err)
	require.Len(t, byExpertise.Data, 1)
	assert.Equal(t, a.ID, byExpertise.Data[0].UserID)

	byIndustry, err := svc.ListMentorProfiles(ctx, MentorProfileFilter{Industry: "retail"}, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), byIndustry.Pagination.Total)

	require.NoError(t, db.Delete(&model.User{}, a.ID).Error)
	afterDelete, err := svc.ListMentorProfiles(ctx, MentorProfileFilter{}, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), afterDelete.Pagination.Total)
}

func TestMenteeProfileLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewProfileService(db)
	ctx := context.Background()
	mentee := testutil.CreateUser(t, db, "mentee", model.RoleMentee)
	mentor := testutil.CreateUser(t, db, "mentor", model.RoleMentor)

	_, err := svc.CreateMenteeProfile(ctx, actorOf(mentor), MenteeProfileInput{})
	assertStatus(t, err, http.StatusForbidden)

	profile, err := svc.CreateMenteeProfile(ctx, actorOf(mentee), MenteeProfileInput{
		BusinessName:  "Solar Kiosk",
		BusinessStage: model.StageStartup,
		Industry:      "Energy",
		Goals:         []string{"first 100 customers"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Solar Kiosk", profile.BusinessName)

	_, err = svc.CreateMenteeProfile(ctx, actorOf(mentee), MenteeProfileInput{})
	assertStatus(t, err, http.StatusConflict)

	updated, err := svc.UpdateMenteeProfile(ctx, actorOf(mentee), MenteeProfileInput{BusinessName: "Solar Kiosk Ltd", BusinessStage: model.StageGrowth, Industry: "Energy"})
	require.NoError(t, err)
	assert.Equal(t, model.StageGrowth, updated.BusinessStage)

	list, err := svc.ListMenteeProfiles(ctx, MenteeProfileFilter{Industry: "ener", Stage: model.StageGrowth}, Page{})
	require.NoError(t, err)
	assert.Len(t, list.Data, 1)

	got, err := svc.GetMenteeProfile(ctx, mentee.ID)
	require.NoError(t, err)
	assert.Equal(t, "Solar Kiosk Ltd", got.BusinessName)

	_, err = svc.GetMenteeProfile(ctx, mentor.ID)
	assertStatus(t, err, http.StatusNotFound)
}
