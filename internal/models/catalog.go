package models

import (
	"time"
)

type Brand struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Country     string     `gorm:"size:100" json:"country"`
	LogoURL     string     `gorm:"size:512" json:"logo_url"`
	FoundedOn   *time.Time `json:"founded_on"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedAt   time.Time  `json:"created_at"`

	Models []CarModel `gorm:"foreignKey:BrandID" json:"models,omitempty"`
}

func (Brand) TableName() string {
	return "brands"
}

type CarModel struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	BrandID      uint      `gorm:"not null;uniqueIndex:idx_model_brand_name" json:"brand_id"`
	Name         string    `gorm:"size:100;not null;uniqueIndex:idx_model_brand_name" json:"name"`
	LaunchYear   int       `json:"launch_year"`
	FuelType     string    `gorm:"size:20;not null" json:"fuel_type"`
	Transmission string    `gorm:"size:20;not null" json:"transmission"`
	PowerHP      int       `json:"power_hp"`
	Consumption  float64   `json:"consumption"` // L/100km
	Description  string    `gorm:"type:text" json:"description"`
	CreatedAt    time.Time `json:"created_at"`

	Brand Brand `gorm:"foreignKey:BrandID" json:"brand"`
}

func (CarModel) TableName() string {
	return "car_models"
}

// FullName is "Brand Model"; Brand must be preloaded.
func (m *CarModel) FullName() string {
	if m.Brand.Name == "" {
		return m.Name
	}
	return m.Brand.Name + " " + m.Name
}
