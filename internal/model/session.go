package model

import "time"

// SessionStatus is the lifecycle state of a scheduled session
type SessionStatus string

const (
	SessionUpcoming   SessionStatus = "upcoming"
	SessionInProgress SessionStatus = "in-progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
)

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionUpcoming:   {SessionInProgress, SessionCompleted, SessionCancelled},
	SessionInProgress: {SessionCompleted, SessionCancelled},
}

// CanTransitionTo reports whether s may move to next
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SessionType is the medium of a session
type SessionType string

const (
	SessionVideo    SessionType = "video"
	SessionAudio    SessionType = "audio"
	SessionInPerson SessionType = "in-person"
	SessionChat     SessionType = "chat"
)

// Session is a scheduled meeting between the mentor and mentee of a mentorship.
// The time range is half open: [StartTime, EndTime).
type Session struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	MentorshipID uint          `json:"mentorship_id" gorm:"index;not null"`
	MentorID     uint          `json:"mentor_id" gorm:"index:idx_session_mentor_time;not null"`
	MenteeID     uint          `json:"mentee_id" gorm:"index;not null"`
	Title        string        `json:"title" gorm:"type:varchar(200);not null"`
	Description  string        `json:"description" gorm:"type:text"`
	Type         SessionType   `json:"type" gorm:"type:varchar(20);not null"`
	StartTime    time.Time     `json:"start_time" gorm:"index:idx_session_mentor_time;not null"`
	EndTime      time.Time     `json:"end_time" gorm:"not null"`
	Status       SessionStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	MeetingLink  string        `json:"meeting_link" gorm:"type:varchar(255)"`
	Notes        string        `json:"notes" gorm:"type:text"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Overlaps reports whether [start, end) intersects the session's range
func (s *Session) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && start.Before(s.EndTime)
}

// HasParticipant reports whether userID is the mentor or the mentee
func (s *Session) HasParticipant(userID uint) bool {
	return s.MentorID == userID || s.MenteeID == userID
}
