package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"mentorship-service/internal/model"
	"mentorship-service/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventInput(title string, start time.Time, capacity int) EventInput {
	return EventInput{
		Title:     title,
		Type:      model.EventWorkshop,
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Capacity:  capacity,
	}
}

func TestCreateAndListEvents(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewEventService(db)
	ctx := context.Background()
	now := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	mentor := testutil.CreateUser(t, db, "mentor", model.RoleMentor)
	mentee := testutil.CreateUser(t, db, "mentee", model.RoleMentee)

	_, err := svc.Create(ctx, actorOf(mentee), eventInput("nope", now.Add(time.Hour), 0))
	assertStatus(t, err, http.StatusForbidden)

	bad := eventInput("bad", now.Add(time.Hour), 0)
	bad.EndTime = bad.StartTime
	_, err = svc.Create(ctx, actorOf(mentor), bad)
	assertStatus(t, err, http.StatusBadRequest)

	past, err := svc.Create(ctx, actorOf(mentor), eventInput("past", now.Add(-48*time.Hour), 0))
	require.NoError(t, err)
	future, err := svc.Create(ctx, actorOf(mentor), eventInput("future", now.Add(48*time.Hour), 0))
	require.NoError(t, err)
	require.NotNil(t, future.Organizer)

	all, err := svc.List(ctx, EventFilter{}, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Pagination.Total)

	upcoming, err := svc.List(ctx, EventFilter{Upcoming: true}, Page{})
	require.NoError(t, err)
	require.Len(t, upcoming.Data, 1)
	assert.Equal(t, future.ID, upcoming.Data[0].ID)

	_, err = svc.Register(ctx, actorOf(mentee), past.ID)
	assertStatus(t, err, http.StatusBadRequest)

	_, err = svc.Register(ctx, actorOf(mentee), future.ID)
	require.NoError(t, err)

	got, err := svc.Get(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.RegistrationCount)
}

func TestEventRegistrationRules(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	organizer := testutil.CreateUser(t, db, "organizer", model.RoleMentor)
	first := testutil.CreateUser(t, db, "first", model.RoleMentee)
	second := testutil.CreateUser(t, db, "second", model.RoleMentee)
	third := testutil.CreateUser(t, db, "third", model.RoleMentee)

	event, err := svc.Create(ctx, actorOf(organizer), eventInput("small room", time.Now().Add(24*time.Hour), 2))
	require.NoError(t, err)

	_, err = svc.Register(ctx, actorOf(first), 4040)
	assertStatus(t, err, http.StatusNotFound)

	reg, err := svc.Register(ctx, actorOf(first), event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationRegistered, reg.Status)

	_, err = svc.Register(ctx, actorOf(first), event.ID)
	assertStatus(t, err, http.StatusConflict)

	_, err = svc.Register(ctx, actorOf(second), event.ID)
	require.NoError(t, err)

	_, err = svc.Register(ctx, actorOf(third), event.ID)
	assertStatus(t, err, http.StatusBadRequest)

	_, err = svc.CancelRegistration(ctx, actorOf(third), reg.ID)
	assertStatus(t, err, http.StatusForbidden)

	cancelled, err := svc.CancelRegistration(ctx, actorOf(first), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationCancelled, cancelled.Status)

	_, err = svc.Register(ctx, actorOf(third), event.ID)
	require.NoError(t, err)

	_, err = svc.Register(ctx, actorOf(first), event.ID)
	assertStatus(t, err, http.StatusBadRequest)

	regs, err := svc.Registrations(ctx, actorOf(organizer), event.ID)
	require.NoError(t, err)
	assert.Len(t, regs, 3)

	_, err = svc.Registrations(ctx, actorOf(first), event.ID)
	assertStatus(t, err, http.StatusForbidden)

	mine, err := svc.MyRegistrations(ctx, actorOf(second))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Event)
	assert.Equal(t, "small room", mine[0].Event.Title)

	_, err = svc.MarkAttended(ctx, actorOf(second), mine[0].ID)
	assertStatus(t, err, http.StatusForbidden)

	attended, err := svc.MarkAttended(ctx, actorOf(organizer), mine[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationAttended, attended.Status)
}

func TestCancelledRegistrationIsReactivated(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	organizer := testutil.CreateUser(t, db, "organizer", model.RoleAdmin)
	mentee := testutil.CreateUser(t, db, "mentee", model.RoleMentee)

	event, err := svc.Create(ctx, actorOf(organizer), eventInput("open house", time.Now().Add(time.Hour), 0))
	require.NoError(t, err)

	reg, err := svc.Register(ctx, actorOf(mentee), event.ID)
	require.NoError(t, err)
	_, err = svc.CancelRegistration(ctx, actorOf(mentee), reg.ID)
	require.NoError(t, err)

	again, err := svc.Register(ctx, actorOf(mentee), event.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, again.ID)
	assert.Equal(t, model.RegistrationRegistered, again.Status)
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	organizer := testutil.CreateUser(t, db, "organizer", model.RoleMentor)
	other := testutil.CreateUser(t, db, "other", model.RoleMentor)

	event, err := svc.Create(ctx, actorOf(organizer), eventInput("draft", time.Now().Add(time.Hour), 0))
	require.NoError(t, err)

	_, err = svc.Update(ctx, actorOf(other), event.ID, eventInput("stolen", time.Now().Add(time.Hour), 0))
	assertStatus(t, err, http.StatusForbidden)

	updated, err := svc.Update(ctx, actorOf(organizer), event.ID, eventInput("final", time.Now().Add(2*time.Hour), 50))
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, 50, updated.Capacity)

	require.NoError(t, svc.Delete(ctx, actorOf(organizer), event.ID))
	_, err = svc.Get(ctx, event.ID)
	assertStatus(t, err, http.StatusNotFound)
}
