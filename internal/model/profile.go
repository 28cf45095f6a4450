package model

import (
	"time"

	"gorm.io/datatypes"
)

// AvailabilitySlot is a weekly recurring window in which a mentor can meet
type AvailabilitySlot struct {
	Day       string `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `json:"start_time" validate:"required"` // "HH:MM"
	EndTime   string `json:"end_time" validate:"required"`
}

// MentorProfile extends a mentor user with role specific fields
type MentorProfile struct {
	ID                uint                                  `json:"id" gorm:"primaryKey"`
	UserID            uint                                  `json:"user_id" gorm:"uniqueIndex;not null"`
	User              *User                                 `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Expertise         datatypes.JSONSlice[string]           `json:"expertise"`
	Industries        datatypes.JSONSlice[string]           `json:"industries"`
	YearsOfExperience int                                   `json:"years_of_experience"`
	Availability      datatypes.JSONSlice[AvailabilitySlot] `json:"availability"`
	MaxMentees        int                                   `json:"max_mentees"`
	HourlyRate        float64                               `json:"hourly_rate"`
	LinkedIn          string                                `json:"linkedin" gorm:"type:varchar(255)"`
	CreatedAt         time.Time                             `json:"created_at"`
	UpdatedAt         time.Time                             `json:"updated_at"`
}

// BusinessStage is how far along a mentee's venture is
type BusinessStage string

const (
	StageIdea        BusinessStage = "idea"
	StageStartup     BusinessStage = "startup"
	StageGrowth      BusinessStage = "growth"
	StageEstablished BusinessStage = "established"
)

// MenteeProfile extends a mentee user with role specific fields
type MenteeProfile struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	UserID        uint                        `json:"user_id" gorm:"uniqueIndex;not null"`
	User          *User                       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	BusinessName  string                      `json:"business_name" gorm:"type:varchar(150)"`
	BusinessStage BusinessStage               `json:"business_stage" gorm:"type:varchar(20)"`
	Industry      string                      `json:"industry" gorm:"type:varchar(100);index"`
	Goals         datatypes.JSONSlice[string] `json:"goals"`
	Challenges    string                      `json:"challenges" gorm:"type:text"`
	InterestedIn  datatypes.JSONSlice[string] `json:"interested_in"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}
