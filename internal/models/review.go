package models

import (
	"time"
)

// Review is one rating per (listing, user). It stays hidden until staff approve it.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ListingID uint      `gorm:"not null;uniqueIndex:idx_review_listing_user" json:"listing_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_listing_user" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	Approved  bool      `gorm:"not null;index" json:"approved"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}

func (Review) TableName() string {
	return "reviews"
}
