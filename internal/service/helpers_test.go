package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"automarket/config"
	"automarket/internal/database"
	"automarket/internal/domain"
	"automarket/internal/models"
	"automarket/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
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

type recordedEvent struct {
	key   string
	event interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, key string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{key: key, event: event})
	return nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.key)
	}
	return out
}

type recordingPusher struct {
	mu     sync.Mutex
	pushed map[uint]int
}

func (p *recordingPusher) Push(_ context.Context, u *models.User, _ *models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pushed == nil {
		p.pushed = map[uint]int{}
	}
	p.pushed[u.ID]++
}

type fakeUploader struct {
	calls      int
	destroyed  []string
	destroyErr error
}

func (f *fakeUploader) Destroy(_ context.Context, publicID string) error {
	f.destroyed = append(f.destroyed, publicID)
	return f.destroyErr
}

func (f *fakeUploader) UploadImage(_ context.Context, file io.Reader, folder, publicID string) (string, string, error) {
	f.calls++
	_, _ = io.ReadAll(file)
	return "https://img.test/" + folder + "/" + publicID, "https://img.test/thumb/" + publicID, nil
}

type testEnv struct {
	db          *gorm.DB
	listingRepo *repository.ListingRepository
	notifRepo   *repository.NotificationRepository
	publisher   *recordingPublisher
	pusher      *recordingPusher
	uploader    *fakeUploader
	notifier    *NotificationService
	market      *MarketplaceService
	listings    *ListingService
	catalog     *CatalogService
	auth        *AuthService
	messages    *MessageService
	reviews     *ReviewService
	admin       *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	e := &testEnv{
		db:          db,
		listingRepo: repository.NewListingRepository(db),
		notifRepo:   repository.NewNotificationRepository(db),
		publisher:   &recordingPublisher{},
		pusher:      &recordingPusher{},
		uploader:    &fakeUploader{},
	}
	userRepo := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	favRepo := repository.NewFavoriteRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	e.notifier = NewNotificationService(e.notifRepo, userRepo, e.pusher)
	e.market = NewMarketplaceService(e.listingRepo, repository.NewTransactionRepository(db), userRepo, favRepo, reviewRepo, e.notifier, e.publisher)
	e.listings = NewListingService(e.listingRepo, catalogRepo, favRepo, e.notifier, e.publisher, e.uploader, "automarket")
	e.catalog = NewCatalogService(catalogRepo, e.uploader, "automarket")
	e.auth = NewAuthService(&config.Config{JWT: config.JWTConfig{
		AccessSecret: "a", RefreshSecret: "r", AccessExpiry: time.Minute, RefreshExpiry: time.Hour, Issuer: "test",
	}}, userRepo)
	e.messages = NewMessageService(repository.NewMessageRepository(db), e.listingRepo, e.notifier)
	e.reviews = NewReviewService(reviewRepo, e.listingRepo)
	e.admin = NewAdminService(repository.NewAdminRepository(db), e.notifier)
	return e
}

func (e *testEnv) user(t *testing.T, username string, staff, active bool) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@test", IsStaff: staff, IsActive: active}
	if err := e.db.Create(u).Error; err != nil {
		t.Fatalf("user %s: %v", username, err)
	}
	return u
}

func (e *testEnv) brand(t *testing.T, name string) *models.Brand {
	t.Helper()
	b := &models.Brand{Name: name}
	if err := e.db.Create(b).Error; err != nil {
		t.Fatalf("brand %s: %v", name, err)
	}
	return b
}

// listing creates a listing through the service, as a seller would.
func (e *testEnv) listing(t *testing.T, seller *models.User, brand *models.Brand, model, price string, year int) *models.Listing {
	t.Helper()
	l, err := e.listings.Create(seller.ID, CreateListingInput{
		BrandID:     brand.ID,
		ModelName:   model,
		Price:       decimal.RequireFromString(price),
		Mileage:     50000,
		Year:        year,
		Color:       "blanc",
		Condition:   domain.ConditionUsed,
		Description: "bon état",
	})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return l
}

func (e *testEnv) reload(t *testing.T, id uint) *models.Listing {
	t.Helper()
	var l models.Listing
	if err := e.db.Unscoped().First(&l, id).Error; err != nil {
		t.Fatalf("reload listing %d: %v", id, err)
	}
	return &l
}

func (e *testEnv) countNotifications(t *testing.T, userID uint, category string) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	return n
}
