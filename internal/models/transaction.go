package models

import (
	"time"

	"automarket/pkg/money"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is one purchase negotiation. FinalPrice is copied from the
// listing when the purchase is requested and never follows later edits.
type Transaction struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	ListingID         uint            `gorm:"not null;index" json:"listing_id"`
	BuyerID           uint            `gorm:"not null;index" json:"buyer_id"`
	SellerID          uint            `gorm:"not null;index" json:"seller_id"`
	FinalPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"final_price"`
	FinalPriceDisplay string          `gorm:"-" json:"final_price_display"`
	Status            string          `gorm:"size:20;not null;index" json:"status"`
	Notes             string          `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	Listing Listing `gorm:"foreignKey:ListingID" json:"listing"`
	Buyer   User    `gorm:"foreignKey:BuyerID" json:"buyer"`
	Seller  User    `gorm:"foreignKey:SellerID" json:"seller"`
}

func (t *Transaction) AfterFind(_ *gorm.DB) error {
	t.FinalPriceDisplay = money.FormatFCFA(t.FinalPrice)
	return nil
}

func (Transaction) TableName() string {
	return "transactions"
}
