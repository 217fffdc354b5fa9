package models

import (
	"time"
)

// Favorite rows are hard-deleted on toggle so the unique pair can be re-added.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_fav_user_listing" json:"user_id"`
	ListingID uint      `gorm:"not null;uniqueIndex:idx_fav_user_listing;index" json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`

	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Listing Listing `gorm:"foreignKey:ListingID" json:"listing"`
}

func (Favorite) TableName() string {
	return "favorites"
}
