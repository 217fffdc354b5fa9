package service

import (
	"automarket/internal/domain"
	"automarket/internal/models"
	"automarket/internal/repository"
)

type Dashboard struct {
	Stats               *repository.DashboardStats `json:"stats"`
	RecentTransactions  []models.Transaction       `json:"recent_transactions"`
	PendingTransactions []models.Transaction       `json:"pending_transactions"`
	RecentListings      []models.Listing           `json:"recent_listings"`
	Notifications       []models.Notification      `json:"notifications"`
}

type AdminService struct {
	repo     *repository.AdminRepository
	notifier *NotificationService
}

func NewAdminService(repo *repository.AdminRepository, notifier *NotificationService) *AdminService {
	return &AdminService{repo: repo, notifier: notifier}
}

// Dashboard builds the staff overview for staffID.
func (s *AdminService) Dashboard(staffID uint) (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.Stats, err = s.repo.GetDashboardStats(); err != nil {
		return nil, persistErr("dashboard stats", err)
	}
	if d.RecentTransactions, err = s.repo.RecentTransactions(domain.DashboardListLimit); err != nil {
		return nil, persistErr("recent transactions", err)
	}
	if d.PendingTransactions, err = s.repo.PendingTransactions(domain.DashboardListLimit); err != nil {
		return nil, persistErr("pending transactions", err)
	}
	if d.RecentListings, err = s.repo.RecentListings(domain.DashboardListLimit); err != nil {
		return nil, persistErr("recent listings", err)
	}
	if d.Notifications, err = s.notifier.Latest(staffID, domain.DashboardListLimit); err != nil {
		return nil, err
	}
	return &d, nil
}
