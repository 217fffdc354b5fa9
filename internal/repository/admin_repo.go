package repository

import (
	"automarket/internal/domain"
	"automarket/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalUsers        int64           `json:"total_users"`
	TotalListings     int64           `json:"total_listings"`
	TotalTransactions int64           `json:"total_transactions"`
	Revenue           decimal.Decimal `json:"revenue"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// GetDashboardStats counts users, listings and transactions. Revenue sums the
// final price of confirmed and completed sales.
func (r *AdminRepository) GetDashboardStats() (*DashboardStats, error) {
	var s DashboardStats
	if err := r.db.Model(&models.User{}).Count(&s.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Listing{}).Count(&s.TotalListings).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Transaction{}).Count(&s.TotalTransactions).Error; err != nil {
		return nil, err
	}
	var rev struct{ Total decimal.Decimal }
	err := r.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(final_price), 0) as total").
		Where("status IN ?", []string{domain.TxStatusConfirmed, domain.TxStatusCompleted}).
		Scan(&rev).Error
	if err != nil {
		return nil, err
	}
	s.Revenue = rev.Total.Round(2)
	return &s, nil
}

func (r *AdminRepository) RecentTransactions(limit int) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Preload("Listing.CarModel.Brand").Preload("Buyer").Preload("Seller").
		Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *AdminRepository) PendingTransactions(limit int) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Where("status = ?", domain.TxStatusPending).
		Preload("Listing.CarModel.Brand").Preload("Buyer").Preload("Seller").
		Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *AdminRepository) RecentListings(limit int) ([]models.Listing, error) {
	var list []models.Listing
	err := r.db.Preload("CarModel.Brand").Preload("Seller").
		Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}
