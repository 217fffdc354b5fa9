package models

import (
	"time"
)

type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SenderID    uint      `gorm:"not null;index" json:"sender_id"`
	RecipientID uint      `gorm:"not null;index" json:"recipient_id"`
	ListingID   *uint     `gorm:"index" json:"listing_id"`
	Subject     string    `gorm:"size:200;not null" json:"subject"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	IsRead      bool      `gorm:"not null;index" json:"is_read"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`

	Sender    User `gorm:"foreignKey:SenderID" json:"sender"`
	Recipient User `gorm:"foreignKey:RecipientID" json:"recipient"`
}

func (Message) TableName() string {
	return "messages"
}
