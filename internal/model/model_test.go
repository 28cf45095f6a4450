package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestMentorshipTransitions(t *testing.T) {
	cases := []struct {
		from, to MentorshipStatus
		ok       bool
	}{
		{MentorshipPending, MentorshipAccepted, true},
		{MentorshipPending, MentorshipRejected, true},
		{MentorshipAccepted, MentorshipCompleted, true},
		{MentorshipPending, MentorshipCompleted, false},
		{MentorshipAccepted, MentorshipRejected, false},
		{MentorshipRejected, MentorshipAccepted, false},
		{MentorshipRejected, MentorshipPending, false},
		{MentorshipCompleted, MentorshipAccepted, false},
		{MentorshipPending, MentorshipPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestMeetingFrequency(t *testing.T) {
	assert.Equal(t, "monthly", PackageBasic.MeetingFrequency())
	assert.Equal(t, "bi-weekly", PackageStandard.MeetingFrequency())
	assert.Equal(t, "weekly", PackagePremium.MeetingFrequency())
	assert.Equal(t, "monthly", PackageTier("").MeetingFrequency())
}

func TestSessionOverlap(t *testing.T) {
	base := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	s := &Session{StartTime: base, EndTime: base.Add(time.Hour)}

	assert.True(t, s.Overlaps(base.Add(30*time.Minute), base.Add(90*time.Minute)))
	assert.True(t, s.Overlaps(base.Add(-time.Hour), base.Add(2*time.Hour)))
	assert.False(t, s.Overlaps(base.Add(time.Hour), base.Add(2*time.Hour)), "touching end is not an overlap")
	assert.False(t, s.Overlaps(base.Add(-time.Hour), base), "touching start is not an overlap")
}

func TestSessionTransitions(t *testing.T) {
	assert.True(t, SessionUpcoming.CanTransitionTo(SessionCancelled))
	assert.True(t, SessionInProgress.CanTransitionTo(SessionCompleted))
	assert.False(t, SessionCompleted.CanTransitionTo(SessionUpcoming))
	assert.False(t, SessionCancelled.CanTransitionTo(SessionInProgress))
}

func TestNewConversationOrdersPair(t *testing.T) {
	c := NewConversation(9, 3)
	assert.Equal(t, uint(3), c.ParticipantOne)
	assert.Equal(t, uint(9), c.ParticipantTwo)
	assert.Equal(t, UnreadCounts{3: 0, 9: 0}, c.UnreadCount.Data())
	assert.Equal(t, uint(9), c.OtherParticipant(3))
	assert.Equal(t, uint(3), c.OtherParticipant(9))
}

func TestSanitizeRepairsKeys(t *testing.T) {
	c := &Conversation{ParticipantOne: 1, ParticipantTwo: 2}
	c.UnreadCount = datatypes.NewJSONType(UnreadCounts{1: 4, 7: 3, 2: -2})

	assert.True(t, c.Sanitize())
	assert.Equal(t, UnreadCounts{1: 4, 2: 0}, c.UnreadCount.Data())

	assert.False(t, c.Sanitize(), "second pass must be a no-op")
	assert.Equal(t, UnreadCounts{1: 4, 2: 0}, c.UnreadCount.Data())

	empty := &Conversation{ParticipantOne: 1, ParticipantTwo: 2}
	assert.True(t, empty.Sanitize())
	assert.Equal(t, UnreadCounts{1: 0, 2: 0}, empty.UnreadCount.Data())
}

func TestRecordMessageAndMarkRead(t *testing.T) {
	c := NewConversation(1, 2)
	now := time.Now()

	for i, content := range []string{"one", "two", "three"} {
		c.RecordMessage(&Message{ID: uint(i + 1), SenderID: 1, ReceiverID: 2, Content: content, CreatedAt: now})
	}
	assert.Equal(t, 3, c.Unread(2))
	assert.Equal(t, 0, c.Unread(1))
	assert.Equal(t, "three", c.LastMessage.Data().Content)
	assert.Equal(t, uint(3), c.LastMessage.Data().MessageID)

	c.RecordMessage(&Message{ID: 4, SenderID: 2, ReceiverID: 1, Content: "reply", CreatedAt: now})
	assert.Equal(t, 0, c.Unread(2), "sending zeroes the sender")
	assert.Equal(t, 1, c.Unread(1))

	c.MarkRead(1)
	assert.Equal(t, UnreadCounts{1: 0, 2: 0}, c.UnreadCount.Data())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleMentor.Valid())
	assert.False(t, Role("owner").Valid())
}
