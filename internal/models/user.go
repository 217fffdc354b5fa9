package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	FirstName    string         `gorm:"size:150" json:"first_name"`
	LastName     string         `gorm:"size:150" json:"last_name"`
	IsStaff      bool           `gorm:"not null;index" json:"is_staff"`
	IsActive     bool           `gorm:"not null;index" json:"is_active"`
	GoogleID     *string        `gorm:"uniqueIndex;size:255" json:"-"` // nil for password signups
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	FCMToken     string         `gorm:"size:512" json:"-"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// DisplayName prefers the full name and falls back to the username.
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}
