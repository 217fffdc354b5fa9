package service

import (
	"errors"
	"strings"

	"automarket/internal/models"
	"automarket/internal/repository"

	"gorm.io/gorm"
)

type ReviewService struct {
	repo     *repository.ReviewRepository
	listings *repository.ListingRepository
}

func NewReviewService(repo *repository.ReviewRepository, listings *repository.ListingRepository) *ReviewService {
	return &ReviewService{repo: repo, listings: listings}
}

// Submit creates or replaces the user's review of a listing. Either way the
// review waits for staff approval before it is shown.
func (s *ReviewService) Submit(listingID, userID uint, rating int, comment string) (*models.Review, bool, error) {
	if rating < 1 || rating > 5 {
		return nil, false, ErrInvalidRating
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, false, ErrEmptyMessage
	}
	l, err := s.listings.GetByID(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, persistErr("load listing", err)
	}
	if l.SellerID == userID {
		return nil, false, ErrSelfReview
	}
	rv, created, err := s.repo.Upsert(listingID, userID, rating, comment)
	if err != nil {
		return nil, false, persistErr("save review", err)
	}
	return rv, created, nil
}

func (s *ReviewService) Pending(limit int) ([]models.Review, error) {
	list, err := s.repo.ListPending(limit)
	if err != nil {
		return nil, persistErr("list pending reviews", err)
	}
	return list, nil
}

func (s *ReviewService) SetApproved(id uint, approved bool) error {
	if err := s.repo.SetApproved(id, approved); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return persistErr("moderate review", err)
	}
	return nil
}
