package database

import (
	"errors"
	"log"

	"automarket/config"
	"automarket/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig, env string) (*gorm.DB, error) {
	level := logger.Error // only log errors in production, not every SQL query
	if env != "production" {
		level = logger.Warn
	}
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Brand{},
		&models.CarModel{},
		&models.Listing{},
		&models.ListingImage{},
		&models.Transaction{},
		&models.Notification{},
		&models.Favorite{},
		&models.Review{},
		&models.Message{},
	)
}

// SeedStaff creates the first staff account if the username is configured and unused.
func SeedStaff(db *gorm.DB, cfg *config.SeedConfig) {
	if cfg.StaffUsername == "" || cfg.StaffPassword == "" {
		return
	}
	var existing models.User
	err := db.Where("username = ?", cfg.StaffUsername).First(&existing).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[seed] lookup staff failed: %v", err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.StaffPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[seed] hash failed: %v", err)
		return
	}
	u := &models.User{
		Username:     cfg.StaffUsername,
		Email:        cfg.StaffEmail,
		PasswordHash: string(hash),
		IsStaff:      true,
		IsActive:     true,
	}
	if err := db.Create(u).Error; err != nil {
		log.Printf("[seed] create staff failed: %v", err)
		return
	}
	log.Printf("[seed] staff account %q created", u.Username)
}
