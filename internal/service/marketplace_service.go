package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"automarket/internal/domain"
	"automarket/internal/events"
	"automarket/internal/models"
	"automarket/internal/repository"

	"gorm.io/gorm"
)

// MarketplaceService drives the listing/transaction state machine:
// available -> reserved with a pending transaction -> sold with a confirmed one.
type MarketplaceService struct {
	listings  *repository.ListingRepository
	txs       *repository.TransactionRepository
	users     *repository.UserRepository
	favorites *repository.FavoriteRepository
	reviews   *repository.ReviewRepository
	notifier  *NotificationService
	publisher events.Publisher
}

func NewMarketplaceService(
	listings *repository.ListingRepository,
	txs *repository.TransactionRepository,
	users *repository.UserRepository,
	favorites *repository.FavoriteRepository,
	reviews *repository.ReviewRepository,
	notifier *NotificationService,
	publisher events.Publisher,
) *MarketplaceService {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &MarketplaceService{
		listings:  listings,
		txs:       txs,
		users:     users,
		favorites: favorites,
		reviews:   reviews,
		notifier:  notifier,
		publisher: publisher,
	}
}

// InitiatePurchase reserves an available listing for buyerID and opens a
// pending transaction at the listing's current price.
func (s *MarketplaceService) InitiatePurchase(listingID, buyerID uint) (*models.Transaction, error) {
	l, err := s.listings.GetByID(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistErr("load listing", err)
	}
	if l.Sold {
		return nil, ErrNotFound
	}
	if l.SellerID == buyerID {
		return nil, ErrSelfPurchase
	}
	if l.Reserved {
		return nil, ErrAlreadyReserved
	}
	buyer, err := s.users.GetByID(buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistErr("load buyer", err)
	}

	t, err := s.txs.Reserve(listingID, buyerID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrListingReserved):
		return nil, ErrAlreadyReserved
	case errors.Is(err, repository.ErrListingSold):
		return nil, ErrAlreadySold
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	default:
		return nil, persistErr("reserve listing", err)
	}
	log.Printf("[purchase] listing %d reserved by user %d (tx %d, %s)", l.ID, buyerID, t.ID, t.FinalPrice.StringFixed(2))

	if err := s.notifier.Notify([]models.User{l.Seller}, domain.NotifPurchaseRequest,
		"Nouvelle demande d'achat",
		fmt.Sprintf("%s a demandé à acheter l'annonce #%d.", buyer.Username, l.ID),
		l.URL()); err != nil {
		log.Printf("[purchase] notify seller failed: %v", err)
	}
	if err := s.notifier.NotifyStaff(domain.NotifPurchaseRequest,
		"Demande d'achat à traiter",
		fmt.Sprintf("Annonce #%d — %s.", l.ID, l.CarModel.FullName())); err != nil {
		log.Printf("[purchase] notify staff failed: %v", err)
	}
	_ = s.publisher.Publish(context.Background(), events.PurchaseRequested, events.PurchaseRequestedEvent{
		TransactionID: t.ID,
		ListingID:     l.ID,
		BuyerID:       buyerID,
		SellerID:      l.SellerID,
		FinalPrice:    t.FinalPrice.StringFixed(2),
		RequestedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	})
	return t, nil
}

// ConfirmSale lets the seller of a pending transaction close it. Anyone else,
// or a transaction that is no longer pending, sees ErrNotFound.
func (s *MarketplaceService) ConfirmSale(transactionID, actingUserID uint) (*models.Transaction, error) {
	t, err := s.txs.GetByID(transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistErr("load transaction", err)
	}
	if t.SellerID != actingUserID || t.Status != domain.TxStatusPending {
		return nil, ErrNotFound
	}
	if err := s.txs.Confirm(t.ID, actingUserID); err != nil {
		if errors.Is(err, repository.ErrTransactionNotPending) {
			return nil, ErrNotPending
		}
		return nil, persistErr("confirm sale", err)
	}
	t.Status = domain.TxStatusConfirmed
	t.Listing.Sold = true
	t.Listing.Reserved = false
	log.Printf("[purchase] tx %d confirmed by seller %d", t.ID, actingUserID)

	if err := s.notifier.Notify([]models.User{t.Buyer}, domain.NotifSaleConfirmed,
		"Vente confirmée",
		fmt.Sprintf("Votre achat pour l'annonce #%d a été confirmé.", t.ListingID),
		t.Listing.URL()); err != nil {
		log.Printf("[purchase] notify buyer failed: %v", err)
	}
	if err := s.notifier.NotifyStaff(domain.NotifSaleConfirmed,
		"Vente confirmée",
		fmt.Sprintf("Annonce #%d — transaction #%d confirmée.", t.ListingID, t.ID)); err != nil {
		log.Printf("[purchase] notify staff failed: %v", err)
	}
	_ = s.publisher.Publish(context.Background(), events.SaleConfirmed, events.SaleConfirmedEvent{
		TransactionID: t.ID,
		ListingID:     t.ListingID,
		BuyerID:       t.BuyerID,
		SellerID:      t.SellerID,
		FinalPrice:    t.FinalPrice.StringFixed(2),
		ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
	})
	return t, nil
}

// ViewListing loads a listing with its model, brand, seller and images.
// Every view by someone other than the seller, anonymous included, counts.
func (s *MarketplaceService) ViewListing(listingID uint, viewerID *uint) (*models.Listing, error) {
	l, err := s.listings.GetByID(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistErr("load listing", err)
	}
	if viewerID == nil || *viewerID != l.SellerID {
		if err := s.listings.IncrementViews(l.ID); err != nil {
			return nil, persistErr("increment views", err)
		}
		l.Views++
	}
	return l, nil
}

// ListingDetail is the payload of the public detail page.
type ListingDetail struct {
	Listing    *models.Listing  `json:"listing"`
	IsFavorite bool             `json:"is_favorite"`
	Reviews    []models.Review  `json:"reviews"`
	Similar    []models.Listing `json:"similar"`
}

func (s *MarketplaceService) ListingDetail(listingID uint, viewerID *uint) (*ListingDetail, error) {
	l, err := s.ViewListing(listingID, viewerID)
	if err != nil {
		return nil, err
	}
	d := &ListingDetail{Listing: l}
	if viewerID != nil {
		if d.IsFavorite, err = s.favorites.IsFavorite(*viewerID, l.ID); err != nil {
			return nil, persistErr("favorite lookup", err)
		}
	}
	if d.Reviews, err = s.reviews.ListApprovedByListing(l.ID); err != nil {
		return nil, persistErr("list reviews", err)
	}
	if d.Similar, err = s.listings.Similar(l, domain.SimilarListingLimit); err != nil {
		return nil, persistErr("similar listings", err)
	}
	return d, nil
}

func (s *MarketplaceService) Purchases(buyerID uint) ([]models.Transaction, error) {
	list, err := s.txs.ListByBuyer(buyerID)
	if err != nil {
		return nil, persistErr("list purchases", err)
	}
	return list, nil
}

func (s *MarketplaceService) Sales(sellerID uint) ([]models.Transaction, error) {
	list, err := s.txs.ListBySeller(sellerID)
	if err != nil {
		return nil, persistErr("list sales", err)
	}
	return list, nil
}
