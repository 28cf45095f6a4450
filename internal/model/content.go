package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ResourceType classifies shared learning material
type ResourceType string

const (
	ResourceArticle  ResourceType = "article"
	ResourceVideo    ResourceType = "video"
	ResourceDocument ResourceType = "document"
	ResourceTemplate ResourceType = "template"
	ResourceLink     ResourceType = "link"
	ResourceTool     ResourceType = "tool"
)

// Resource is learning material owned by a user and optionally shared with others
type Resource struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	OwnerID     uint                        `json:"owner_id" gorm:"index;not null"`
	Owner       *User                       `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Title       string                      `json:"title" gorm:"type:varchar(200);not null"`
	Description string                      `json:"description" gorm:"type:text"`
	Type        ResourceType                `json:"type" gorm:"type:varchar(20);not null;index"`
	Category    string                      `json:"category" gorm:"type:varchar(100);index"`
	URL         string                      `json:"url" gorm:"type:varchar(500)"`
	FilePath    string                      `json:"file_path,omitempty" gorm:"type:varchar(255)"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	IsPublic    bool                        `json:"is_public"`
	SharedWith  []User                      `json:"-" gorm:"many2many:resource_shares"`
	Downloads   int                         `json:"downloads"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	DeletedAt   gorm.DeletedAt              `json:"-" gorm:"index"`
}

// EventType classifies community events
type EventType string

const (
	EventWorkshop   EventType = "workshop"
	EventWebinar    EventType = "webinar"
	EventNetworking EventType = "networking"
	EventPitch      EventType = "pitch"
	EventConference EventType = "conference"
)

// Event is a community event organised by a mentor or admin
type Event struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	OrganizerID uint                        `json:"organizer_id" gorm:"index;not null"`
	Organizer   *User                       `json:"organizer,omitempty" gorm:"foreignKey:OrganizerID"`
	Title       string                      `json:"title" gorm:"type:varchar(200);not null"`
	Description string                      `json:"description" gorm:"type:text"`
	Type        EventType                   `json:"type" gorm:"type:varchar(20);not null;index"`
	Category    string                      `json:"category" gorm:"type:varchar(100);index"`
	StartTime   time.Time                   `json:"start_time" gorm:"index;not null"`
	EndTime     time.Time                   `json:"end_time" gorm:"not null"`
	Location    string                      `json:"location" gorm:"type:varchar(255)"`
	IsVirtual   bool                        `json:"is_virtual"`
	MeetingURL  string                      `json:"meeting_url" gorm:"type:varchar(500)"`
	Capacity    int                         `json:"capacity"` // 0 means unlimited
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	ImageURL    string                      `json:"image_url" gorm:"type:varchar(255)"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	DeletedAt   gorm.DeletedAt              `json:"-" gorm:"index"`

	RegistrationCount int64 `json:"registration_count" gorm:"-"`
}

// RegistrationStatus is the state of an event registration
type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationCancelled  RegistrationStatus = "cancelled"
	RegistrationAttended   RegistrationStatus = "attended"
)

// EventRegistration links a user to an event; one row per (event, user)
type EventRegistration struct {
	ID        uint               `json:"id" gorm:"primaryKey"`
	EventID   uint               `json:"event_id" gorm:"not null;uniqueIndex:idx_registration_event_user"`
	Event     *Event             `json:"event,omitempty" gorm:"foreignKey:EventID"`
	UserID    uint               `json:"user_id" gorm:"not null;uniqueIndex:idx_registration_event_user;index"`
	User      *User              `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Status    RegistrationStatus `json:"status" gorm:"type:varchar(20);not null"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// SuccessStory is a published account of an entrepreneur's progress
type SuccessStory struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	AuthorID    uint                        `json:"author_id" gorm:"index;not null"`
	Author      *User                       `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	MentorID    *uint                       `json:"mentor_id,omitempty" gorm:"index"`
	Mentor      *User                       `json:"mentor,omitempty" gorm:"foreignKey:MentorID"`
	Title       string                      `json:"title" gorm:"type:varchar(200);not null"`
	Content     string                      `json:"content" gorm:"type:text;not null"`
	Category    string                      `json:"category" gorm:"type:varchar(100);index"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	ImageURL    string                      `json:"image_url" gorm:"type:varchar(255)"`
	IsPublished bool                        `json:"is_published" gorm:"index"`
	IsFeatured  bool                        `json:"is_featured" gorm:"index"`
	Views       int                         `json:"views"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	DeletedAt   gorm.DeletedAt              `json:"-" gorm:"index"`
}

// All returns every model for AutoMigrate, parents first
func All() []interface{} {
	return []interface{}{
		&User{},
		&MentorProfile{},
		&MenteeProfile{},
		&Mentorship{},
		&Session{},
		&Conversation{},
		&Message{},
		&Resource{},
		&Event{},
		&EventRegistration{},
		&SuccessStory{},
	}
}

// Indexes are created after AutoMigrate. The partial index allows at most one
// pending or accepted mentorship per pair.
var Indexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_mentorship_open_pair ON mentorships (mentor_id, mentee_id) WHERE status IN ('pending', 'accepted') AND deleted_at IS NULL`,
}
