// Package models defines the persisted entities and their API projections.
package models

import (
	"strings"
	"time"
)

// Gender is the closed set of values a profile may declare.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOthers Gender = "Others"
)

// Valid reports whether g is one of the accepted genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOthers:
		return true
	}
	return false
}

// Image is externally hosted asset metadata. Uploads are not handled by this
// service, so the values are placeholders until a storage backend exists.
type Image struct {
	PublicID string `gorm:"size:255" json:"public_id"`
	URL      string `gorm:"size:1024" json:"url"`
}

// User is a registered account.
//
// Password and the reset token fields never leave the process: they are
// excluded from JSON, which also keeps them out of the user cache.
type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	FirstName           string     `gorm:"size:30;not null" json:"firstName"`
	Surname             string     `gorm:"size:50" json:"surname"`
	Email               string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password            string     `gorm:"size:255;not null" json:"-"`
	Gender              Gender     `gorm:"size:10" json:"gender"`
	Birthdate           time.Time  `json:"birthdate"`
	Avatar              Image      `gorm:"embedded;embeddedPrefix:avatar_" json:"avatar"`
	Verified            bool       `gorm:"not null" json:"verified"`
	ResetPasswordToken  string     `gorm:"size:64;index" json:"-"`
	ResetPasswordExpiry *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`

	// Relationship projections, filled by UserRepository.GetProfile.
	Posts     []uint `gorm:"-" json:"posts"`
	Followers []uint `gorm:"-" json:"followers"`
	Following []uint `gorm:"-" json:"following"`
}

// FullName joins first name and surname the way profile summaries display it.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.Surname)
}

// ProfileSummary is the reduced, public-safe projection of a user.
type ProfileSummary struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Gender    Gender    `json:"gender"`
	Birthdate time.Time `json:"birthdate"`
}

// Summary projects u to its public-safe fields.
func (u *User) Summary() ProfileSummary {
	return ProfileSummary{
		ID:        u.ID,
		Name:      u.FullName(),
		Email:     u.Email,
		Gender:    u.Gender,
		Birthdate: u.Birthdate,
	}
}

// Follow is one edge of the follow graph: FollowerID follows FollowingID.
type Follow struct {
	FollowerID  uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FollowingID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}
