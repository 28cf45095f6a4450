package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Role is the platform role of a user
type Role string

const (
	RoleMentee Role = "mentee"
	RoleMentor Role = "mentor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleMentee, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

// User represents the user model stored in the database
type User struct {
	ID                   uint                        `json:"id" gorm:"primaryKey"`
	Name                 string                      `json:"name" gorm:"type:varchar(100);not null"`
	Email                string                      `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password             string                      `json:"-" gorm:"type:varchar(255);not null"`
	Role                 Role                        `json:"role" gorm:"type:varchar(20);not null;index"`
	Bio                  string                      `json:"bio" gorm:"type:text"`
	Skills               datatypes.JSONSlice[string] `json:"skills"`
	Interests            datatypes.JSONSlice[string] `json:"interests"`
	Location             string                      `json:"location" gorm:"type:varchar(100)"`
	Company              string                      `json:"company" gorm:"type:varchar(100)"`
	Website              string                      `json:"website" gorm:"type:varchar(255)"`
	ProfileImage         string                      `json:"profile_image" gorm:"type:varchar(255)"`
	IsVerified           bool                        `json:"is_verified"`
	VerificationToken    string                      `json:"-" gorm:"type:varchar(64);index"`
	ResetPasswordToken   string                      `json:"-" gorm:"type:varchar(64);index"`
	ResetPasswordExpires *time.Time                  `json:"-"`
	LastLogin            *time.Time                  `json:"last_login,omitempty"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
	DeletedAt            gorm.DeletedAt              `json:"-" gorm:"index"`
}

// UserSummary is the public subset of a user embedded in other responses
type UserSummary struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	ProfileImage string `json:"profile_image"`
}

// Summary returns the public subset of u
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Role: u.Role, ProfileImage: u.ProfileImage}
}
