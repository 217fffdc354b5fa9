package models

import (
	"fmt"
	"time"

	"automarket/pkg/money"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Listing is one vehicle offered for sale. Reserved can only be true while
// Sold is false; confirming a sale sets Sold and clears Reserved together.
type Listing struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CarModelID   uint            `gorm:"not null;index" json:"car_model_id"`
	SellerID     uint            `gorm:"not null;index" json:"seller_id"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Mileage      int             `gorm:"not null" json:"mileage"`
	Year         int             `gorm:"not null;index" json:"year"`
	Color        string          `gorm:"size:20" json:"color"`
	Condition    string          `gorm:"size:20" json:"condition"`
	Description  string          `gorm:"type:text" json:"description"`
	Sold         bool            `gorm:"not null;index" json:"sold"`
	Reserved     bool            `gorm:"not null;index" json:"reserved"`
	Views        int64           `gorm:"not null" json:"views"`
	MainImageURL string          `gorm:"size:512" json:"main_image_url"`
	MainImageID  string          `gorm:"size:255" json:"-"` // storage public ID of the cover photo
	PriceDisplay string          `gorm:"-" json:"price_display"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	CarModel CarModel       `gorm:"foreignKey:CarModelID" json:"car_model"`
	Seller   User           `gorm:"foreignKey:SellerID" json:"seller"`
	Images   []ListingImage `gorm:"foreignKey:ListingID" json:"images,omitempty"`
}

func (Listing) TableName() string {
	return "listings"
}

// AfterFind fills the formatted price on every load.
func (l *Listing) AfterFind(_ *gorm.DB) error {
	l.PriceDisplay = money.FormatFCFA(l.Price)
	return nil
}

// URL is the deep link used in notifications.
func (l *Listing) URL() string {
	return fmt.Sprintf("/listings/%d/", l.ID)
}

// Title is "Brand Model (Year)"; CarModel.Brand must be preloaded.
func (l *Listing) Title() string {
	return fmt.Sprintf("%s (%d)", l.CarModel.FullName(), l.Year)
}

// Age in years relative to t.
func (l *Listing) Age(t time.Time) int {
	return t.Year() - l.Year
}

// IsRecent reports whether the vehicle is at most two years old.
func (l *Listing) IsRecent(t time.Time) bool {
	return l.Age(t) <= 2
}

type ListingImage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ListingID   uint      `gorm:"not null;index" json:"listing_id"`
	URL         string    `gorm:"size:512;not null" json:"url"`
	ThumbURL    string    `gorm:"size:512" json:"thumb_url"`
	Description string    `gorm:"size:200" json:"description"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ListingImage) TableName() string {
	return "listing_images"
}
