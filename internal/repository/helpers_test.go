package repository

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"automarket/internal/database"
	"automarket/internal/domain"
	"automarket/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// setupFileDB opens a sqlite file so that concurrent connections contend on
// real locks. Transactions begin IMMEDIATE and wait up to 5s for the lock.
func setupFileDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "market.db") + "?_busy_timeout=5000&_txlock=immediate&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func mustUser(t *testing.T, db *gorm.DB, username string, staff, active bool) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@test", IsStaff: staff, IsActive: active}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("user %s: %v", username, err)
	}
	return u
}

func mustModel(t *testing.T, db *gorm.DB, brand, model string) *models.CarModel {
	t.Helper()
	var b models.Brand
	if err := db.Where(models.Brand{Name: brand}).FirstOrCreate(&b).Error; err != nil {
		t.Fatalf("brand: %v", err)
	}
	m := &models.CarModel{BrandID: b.ID, Name: model, FuelType: domain.FuelPetrol, Transmission: domain.TransmissionManual}
	if err := db.Omit("Brand").Create(m).Error; err != nil {
		t.Fatalf("model: %v", err)
	}
	m.Brand = b
	return m
}

func mustListing(t *testing.T, db *gorm.DB, seller *models.User, m *models.CarModel, price string, year, km int) *models.Listing {
	t.Helper()
	l := &models.Listing{
		CarModelID:  m.ID,
		SellerID:    seller.ID,
		Price:       decimal.RequireFromString(price),
		Year:        year,
		Mileage:     km,
		Color:       "noir",
		Condition:   domain.ConditionUsed,
		Description: fmt.Sprintf("%s %d", m.Name, year),
	}
	if err := db.Omit("CarModel", "Seller", "Images").Create(l).Error; err != nil {
		t.Fatalf("listing: %v", err)
	}
	return l
}
