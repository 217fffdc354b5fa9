package models

import (
	"time"
)

type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index:idx_notif_user_read" json:"user_id"`
	Category  string     `gorm:"size:30;not null;index" json:"category"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Body      string     `gorm:"type:text" json:"body"`
	Link      string     `gorm:"size:300" json:"link"`
	IsRead    bool       `gorm:"not null;index:idx_notif_user_read" json:"is_read"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
