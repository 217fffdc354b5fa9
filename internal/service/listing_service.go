package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"automarket/internal/domain"
	"automarket/internal/events"
	"automarket/internal/models"
	"automarket/internal/repository"
	"automarket/pkg/cloudinary"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrImageTooLarge = errors.New("image must be 5 MB or smaller")
	ErrImageType     = errors.New("image must be JPEG, PNG or WEBP")
)

// ImageUploader stores an image and returns its delivery and thumbnail URLs.
// Destroy removes a stored image by its full public ID.
type ImageUploader interface {
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (url, thumbnailURL string, err error)
	Destroy(ctx context.Context, publicID string) error
}

// ValidateImage enforces the upload size and type limits.
func ValidateImage(size int64, contentType string) error {
	if size > domain.MaxImageBytes {
		return ErrImageTooLarge
	}
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !domain.AllowedImageTypes[ct] {
		return ErrImageType
	}
	return nil
}

type CreateListingInput struct {
	BrandID     uint
	ModelName   string
	Price       decimal.Decimal
	Mileage     int
	Year        int
	Color       string
	Condition   string
	Description string
}

// UpdateListingInput carries the seller-editable fields. Nil fields are left as is.
type UpdateListingInput struct {
	Price       *decimal.Decimal
	Mileage     *int
	Description *string
}

type HomeFeed struct {
	Recent         []models.Listing       `json:"recent"`
	Cheapest       []models.Listing       `json:"cheapest"`
	PopularBrands  []repository.BrandStat `json:"popular_brands"`
	TotalAvailable int64                  `json:"total_available"`
}

type MyListings struct {
	Listings []models.Listing        `json:"listings"`
	Stats    *repository.SellerStats `json:"stats"`
}

type ListingService struct {
	listings  *repository.ListingRepository
	catalog   *repository.CatalogRepository
	favorites *repository.FavoriteRepository
	notifier  *NotificationService
	publisher events.Publisher
	uploader  ImageUploader
	folder    string
}

func NewListingService(
	listings *repository.ListingRepository,
	catalog *repository.CatalogRepository,
	favorites *repository.FavoriteRepository,
	notifier *NotificationService,
	publisher events.Publisher,
	uploader ImageUploader,
	folder string,
) *ListingService {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &ListingService{
		listings:  listings,
		catalog:   catalog,
		favorites: favorites,
		notifier:  notifier,
		publisher: publisher,
		uploader:  uploader,
		folder:    folder,
	}
}

// Create stores a listing for sellerID, creating the brand's model on first use,
// then announces it to staff and to every other active user.
func (s *ListingService) Create(sellerID uint, in CreateListingInput) (*models.Listing, error) {
	if _, err := s.catalog.GetBrand(in.BrandID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistErr("load brand", err)
	}
	model, err := s.catalog.GetOrCreateModel(in.BrandID, strings.TrimSpace(in.ModelName), models.CarModel{
		LaunchYear:   in.Year,
		FuelType:     domain.FuelPetrol,
		Transmission: domain.TransmissionManual,
		PowerHP:      100,
		Consumption:  6.0,
	})
	if err != nil {
		return nil, persistErr("get or create model", err)
	}
	l := &models.Listing{
		CarModelID:  model.ID,
		SellerID:    sellerID,
		Price:       in.Price,
		Mileage:     in.Mileage,
		Year:        in.Year,
		Color:       in.Color,
		Condition:   in.Condition,
		Description: in.Description,
	}
	if err := s.listings.Create(l); err != nil {
		return nil, persistErr("create listing", err)
	}
	l, err = s.listings.GetByID(l.ID)
	if err != nil {
		return nil, persistErr("reload listing", err)
	}
	s.announce(l)
	return l, nil
}

func (s *ListingService) announce(l *models.Listing) {
	if staff, err := s.notifier.StaffUsers(); err != nil {
		log.Printf("[listing] load staff failed: %v", err)
	} else if err := s.notifier.Notify(staff, domain.NotifNewListing,
		"Nouvelle annonce publiée",
		fmt.Sprintf("%s a publié l'annonce #%d.", l.Seller.Username, l.ID),
		l.URL()); err != nil {
		log.Printf("[listing] notify staff failed: %v", err)
	}
	if others, err := s.notifier.ActiveUsersExcept(l.SellerID); err != nil {
		log.Printf("[listing] load users failed: %v", err)
	} else if err := s.notifier.Notify(others, domain.NotifNewListing,
		"Nouvelle voiture disponible",
		fmt.Sprintf("%s.", l.Title()),
		l.URL()); err != nil {
		log.Printf("[listing] notify users failed: %v", err)
	}
	_ = s.publisher.Publish(context.Background(), events.ListingPublished, events.ListingPublishedEvent{
		ListingID: l.ID,
		SellerID:  l.SellerID,
		Title:     l.Title(),
		Price:     l.Price.StringFixed(2),
		CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// owned loads a listing and checks that sellerID owns it.
func (s *ListingService) owned(listingID, sellerID uint) (*models.Listing, error) {
	l, err := s.listings.GetByID(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistErr("load listing", err)
	}
	if l.SellerID != sellerID {
		return nil, ErrForbidden
	}
	return l, nil
}

// Update edits price, mileage and description. Pending transactions keep the
// price they were opened at.
func (s *ListingService) Update(listingID, sellerID uint, in UpdateListingInput) (*models.Listing, error) {
	if _, err := s.owned(listingID, sellerID); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.Mileage != nil {
		fields["mileage"] = *in.Mileage
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if len(fields) > 0 {
		if err := s.listings.UpdateFields(listingID, fields); err != nil {
			return nil, persistErr("update listing", err)
		}
	}
	l, err := s.listings.GetByID(listingID)
	if err != nil {
		return nil, persistErr("reload listing", err)
	}
	return l, nil
}

// Delete soft-deletes the listing. A reserved listing cannot be removed while
// its purchase request is pending.
func (s *ListingService) Delete(listingID, sellerID uint) error {
	l, err := s.owned(listingID, sellerID)
	if err != nil {
		return err
	}
	if l.Reserved {
		return ErrAlreadyReserved
	}
	if err := s.listings.Delete(listingID); err != nil {
		return persistErr("delete listing", err)
	}
	return nil
}

// SetMainImage uploads the cover photo of a listing. The photo it replaces is
// removed from storage once the new one is saved; a failed removal is only logged.
func (s *ListingService) SetMainImage(ctx context.Context, listingID, sellerID uint, file io.Reader) (*models.Listing, error) {
	prev, err := s.owned(listingID, sellerID)
	if err != nil {
		return nil, err
	}
	url, _, publicID, err := s.upload(ctx, listingID, file)
	if err != nil {
		return nil, err
	}
	if err := s.listings.UpdateFields(listingID, map[string]interface{}{
		"main_image_url": url,
		"main_image_id":  publicID,
	}); err != nil {
		return nil, persistErr("set main image", err)
	}
	if prev.MainImageID != "" && prev.MainImageID != publicID {
		if err := s.uploader.Destroy(ctx, prev.MainImageID); err != nil {
			log.Printf("[listing] destroy old image %s of %d failed: %v", prev.MainImageID, listingID, err)
		}
	}
	l, err := s.listings.GetByID(listingID)
	if err != nil {
		return nil, persistErr("reload listing", err)
	}
	return l, nil
}

// AddGalleryImage uploads one gallery photo with its caption and position.
func (s *ListingService) AddGalleryImage(ctx context.Context, listingID, sellerID uint, file io.Reader, description string, order int) (*models.ListingImage, error) {
	if _, err := s.owned(listingID, sellerID); err != nil {
		return nil, err
	}
	url, thumb, _, err := s.upload(ctx, listingID, file)
	if err != nil {
		return nil, err
	}
	img := &models.ListingImage{
		ListingID:   listingID,
		URL:         url,
		ThumbURL:    thumb,
		Description: description,
		SortOrder:   order,
	}
	if err := s.listings.AddImage(img); err != nil {
		return nil, persistErr("add image", err)
	}
	return img, nil
}

// upload returns the delivery URL, the thumbnail URL and the full public ID.
func (s *ListingService) upload(ctx context.Context, listingID uint, file io.Reader) (string, string, string, error) {
	if s.uploader == nil {
		return "", "", "", errors.New("image storage not configured")
	}
	folder := fmt.Sprintf("%s/listings/%d", s.folder, listingID)
	id := cloudinary.NewPublicID("car")
	url, thumb, err := s.uploader.UploadImage(ctx, file, folder, id)
	if err != nil {
		log.Printf("[listing] upload for %d failed: %v", listingID, err)
		return "", "", "", err
	}
	return url, thumb, cloudinary.FullPublicID(folder, id), nil
}

func (s *ListingService) Search(f repository.ListingFilter) (*repository.ListingPage, error) {
	page, err := s.listings.Search(f)
	if err != nil {
		return nil, persistErr("search listings", err)
	}
	return page, nil
}

func (s *ListingService) Home() (*HomeFeed, error) {
	var (
		h   HomeFeed
		err error
	)
	if h.Recent, err = s.listings.Recent(6); err != nil {
		return nil, persistErr("recent listings", err)
	}
	if h.Cheapest, err = s.listings.Cheapest(6); err != nil {
		return nil, persistErr("cheapest listings", err)
	}
	if h.PopularBrands, err = s.catalog.PopularBrands(8); err != nil {
		return nil, persistErr("popular brands", err)
	}
	if h.TotalAvailable, err = s.listings.CountAvailable(); err != nil {
		return nil, persistErr("count listings", err)
	}
	return &h, nil
}

func (s *ListingService) MyListings(sellerID uint) (*MyListings, error) {
	list, err := s.listings.ListBySeller(sellerID)
	if err != nil {
		return nil, persistErr("list my listings", err)
	}
	stats, err := s.listings.SellerStats(sellerID)
	if err != nil {
		return nil, persistErr("seller stats", err)
	}
	return &MyListings{Listings: list, Stats: stats}, nil
}

// ToggleFavorite reports whether the listing is a favorite after the call.
func (s *ListingService) ToggleFavorite(userID, listingID uint) (bool, error) {
	if _, err := s.listings.GetByID(listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, persistErr("load listing", err)
	}
	fav, err := s.favorites.Toggle(userID, listingID)
	if err != nil {
		return false, persistErr("toggle favorite", err)
	}
	return fav, nil
}

func (s *ListingService) Favorites(userID uint) ([]models.Favorite, error) {
	list, err := s.favorites.ListByUserID(userID)
	if err != nil {
		return nil, persistErr("list favorites", err)
	}
	return list, nil
}
