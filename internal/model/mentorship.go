package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MentorshipStatus is the state of a mentorship request
type MentorshipStatus string

const (
	MentorshipPending   MentorshipStatus = "pending"
	MentorshipAccepted  MentorshipStatus = "accepted"
	MentorshipCompleted MentorshipStatus = "completed"
	MentorshipRejected  MentorshipStatus = "rejected"
)

var mentorshipTransitions = map[MentorshipStatus][]MentorshipStatus{
	MentorshipPending:  {MentorshipAccepted, MentorshipRejected},
	MentorshipAccepted: {MentorshipCompleted},
}

// OpenMentorshipStatuses are the statuses that gate messaging and block a second request
var OpenMentorshipStatuses = []MentorshipStatus{MentorshipPending, MentorshipAccepted}

// Valid reports whether s is a known status
func (s MentorshipStatus) Valid() bool {
	switch s {
	case MentorshipPending, MentorshipAccepted, MentorshipCompleted, MentorshipRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether s may move to next
func (s MentorshipStatus) CanTransitionTo(next MentorshipStatus) bool {
	for _, allowed := range mentorshipTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PackageTier is the mentoring package requested by the mentee
type PackageTier string

const (
	PackageBasic    PackageTier = "basic"
	PackageStandard PackageTier = "standard"
	PackagePremium  PackageTier = "premium"
)

// Valid reports whether t is a known tier
func (t PackageTier) Valid() bool {
	switch t {
	case PackageBasic, PackageStandard, PackagePremium:
		return true
	}
	return false
}

// MeetingFrequency derives the meeting cadence set when a mentorship is accepted
func (t PackageTier) MeetingFrequency() string {
	switch t {
	case PackagePremium:
		return "weekly"
	case PackageStandard:
		return "bi-weekly"
	default:
		return "monthly"
	}
}

// Goal is one tracked objective of a mentorship
type Goal struct {
	Title     string `json:"title" validate:"required,max=200"`
	Completed bool   `json:"completed"`
}

// Progress is the latest progress report of a mentorship
type Progress struct {
	Percent   int        `json:"percent"`
	Notes     string     `json:"notes"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Feedback is left by a participant once a mentorship is completed
type Feedback struct {
	By        uint      `json:"by"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Mentorship links one mentor to one mentee
type Mentorship struct {
	ID               uint                          `json:"id" gorm:"primaryKey"`
	MentorID         uint                          `json:"mentor_id" gorm:"index;not null"`
	Mentor           *User                         `json:"mentor,omitempty" gorm:"foreignKey:MentorID"`
	MenteeID         uint                          `json:"mentee_id" gorm:"index;not null"`
	Mentee           *User                         `json:"mentee,omitempty" gorm:"foreignKey:MenteeID"`
	Status           MentorshipStatus              `json:"status" gorm:"type:varchar(20);not null;index"`
	Message          string                        `json:"message" gorm:"type:text"`
	PackageTier      PackageTier                   `json:"package_tier" gorm:"type:varchar(20)"`
	MeetingFrequency string                        `json:"meeting_frequency" gorm:"type:varchar(20)"`
	Goals            datatypes.JSONSlice[Goal]     `json:"goals"`
	Progress         datatypes.JSONType[Progress]  `json:"progress"`
	Feedback         datatypes.JSONSlice[Feedback] `json:"feedback"`
	StartDate        *time.Time                    `json:"start_date,omitempty"`
	EndDate          *time.Time                    `json:"end_date,omitempty"`
	CreatedAt        time.Time                     `json:"created_at"`
	UpdatedAt        time.Time                     `json:"updated_at"`
	DeletedAt        gorm.DeletedAt                `json:"-" gorm:"index"`
}

// HasParticipant reports whether userID is the mentor or the mentee
func (m *Mentorship) HasParticipant(userID uint) bool {
	return m.MentorID == userID || m.MenteeID == userID
}
