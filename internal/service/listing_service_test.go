package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"automarket/internal/domain"
	"automarket/internal/events"
	"automarket/internal/models"
	"automarket/internal/repository"

	"github.com/shopspring/decimal"
)

func TestCreateListingCreatesModelAndAnnounces(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	staff := e.user(t, "staff", true, true)
	member := e.user(t, "member", false, true)
	inactive := e.user(t, "gone", false, false)
	brand := e.brand(t, "Toyota")

	l := e.listing(t, seller, brand, "Yaris", "4500000", 2019)
	if l.CarModel.Name != "Yaris" || l.CarModel.Brand.Name != "Toyota" || l.Seller.ID != seller.ID {
		t.Fatalf("listing = %+v", l)
	}
	if l.CarModel.LaunchYear != 2019 || l.CarModel.FuelType != domain.FuelPetrol || l.CarModel.PowerHP != 100 {
		t.Errorf("model defaults = %+v", l.CarModel)
	}
	again := e.listing(t, seller, brand, "Yaris", "4700000", 2020)
	if again.CarModelID != l.CarModelID {
		t.Errorf("model not reused: %d vs %d", again.CarModelID, l.CarModelID)
	}

	// Staff get both the staff and the general announcement, per listing.
	if n := e.countNotifications(t, staff.ID, domain.NotifNewListing); n != 4 {
		t.Errorf("staff notifications = %d, want 4", n)
	}
	if n := e.countNotifications(t, member.ID, domain.NotifNewListing); n != 2 {
		t.Errorf("member notifications = %d, want 2", n)
	}
	if n := e.countNotifications(t, seller.ID, ""); n != 0 {
		t.Errorf("seller notified about own listing: %d", n)
	}
	if n := e.countNotifications(t, inactive.ID, ""); n != 0 {
		t.Errorf("inactive notified: %d", n)
	}
	var note models.Notification
	e.db.Where("user_id = ? AND title = ?", member.ID, "Nouvelle voiture disponible").First(&note)
	if note.Body != "Toyota Yaris (2019)." || note.Link != l.URL() {
		t.Errorf("member notification = %+v", note)
	}
	if keys := e.publisher.keys(); len(keys) != 2 || keys[0] != events.ListingPublished {
		t.Errorf("events = %v", keys)
	}
}

func TestCreateListingUnknownBrand(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	_, err := e.listings.Create(seller.ID, CreateListingInput{BrandID: 42, ModelName: "X", Price: decimal.NewFromInt(1), Year: 2020})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestUpdateAndDeleteRequireSeller(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	other := e.user(t, "other", false, true)
	l := e.listing(t, seller, e.brand(t, "Kia"), "Picanto", "2500000", 2017)

	km := 120000
	if _, err := e.listings.Update(l.ID, other.ID, UpdateListingInput{Mileage: &km}); !errors.Is(err, ErrForbidden) {
		t.Errorf("update by other err = %v", err)
	}
	if err := e.listings.Delete(l.ID, other.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("delete by other err = %v", err)
	}
	desc := "révisée"
	got, err := e.listings.Update(l.ID, seller.ID, UpdateListingInput{Mileage: &km, Description: &desc})
	if err != nil || got.Mileage != km || got.Description != desc || !got.Price.Equal(l.Price) {
		t.Fatalf("update = %+v err=%v", got, err)
	}
	if err := e.listings.Delete(l.ID, seller.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.market.ViewListing(l.ID, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted listing still visible: %v", err)
	}
}

func TestDeleteReservedListingRefused(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	buyer := e.user(t, "buyer", false, true)
	l := e.listing(t, seller, e.brand(t, "Opel"), "Corsa", "2900000", 2016)
	if _, err := e.market.InitiatePurchase(l.ID, buyer.ID); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := e.listings.Delete(l.ID, seller.ID); !errors.Is(err, ErrAlreadyReserved) {
		t.Errorf("delete reserved err = %v", err)
	}
}

func TestImages(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	l := e.listing(t, seller, e.brand(t, "Audi"), "A3", "9000000", 2020)

	got, err := e.listings.SetMainImage(context.Background(), l.ID, seller.ID, strings.NewReader("jpeg"))
	if err != nil {
		t.Fatalf("main image: %v", err)
	}
	if !strings.HasPrefix(got.MainImageURL, "https://img.test/automarket/listings/") {
		t.Errorf("main image url = %q", got.MainImageURL)
	}
	if _, err := e.listings.AddGalleryImage(context.Background(), l.ID, seller.ID, strings.NewReader("b"), "arrière", 2); err != nil {
		t.Fatalf("gallery: %v", err)
	}
	if _, err := e.listings.AddGalleryImage(context.Background(), l.ID, seller.ID, strings.NewReader("a"), "avant", 1); err != nil {
		t.Fatalf("gallery: %v", err)
	}
	detail, _ := e.market.ViewListing(l.ID, nil)
	if len(detail.Images) != 2 || detail.Images[0].Description != "avant" {
		t.Errorf("images = %+v", detail.Images)
	}
	other := e.user(t, "other", false, true)
	if _, err := e.listings.SetMainImage(context.Background(), l.ID, other.ID, strings.NewReader("x")); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign upload err = %v", err)
	}
	if e.uploader.calls != 3 {
		t.Errorf("uploads = %d", e.uploader.calls)
	}
}

func TestMainImageReplaceDestroysPrevious(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	l := e.listing(t, seller, e.brand(t, "Seat"), "Leon", "7000000", 2019)
	ctx := context.Background()

	if _, err := e.listings.SetMainImage(ctx, l.ID, seller.ID, strings.NewReader("v1")); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	first := e.reload(t, l.ID).MainImageID
	if !strings.HasPrefix(first, "automarket/listings/") || len(e.uploader.destroyed) != 0 {
		t.Fatalf("first id = %q destroyed = %v", first, e.uploader.destroyed)
	}

	if _, err := e.listings.SetMainImage(ctx, l.ID, seller.ID, strings.NewReader("v2")); err != nil {
		t.Fatalf("second upload: %v", err)
	}
	second := e.reload(t, l.ID).MainImageID
	if second == first || len(e.uploader.destroyed) != 1 || e.uploader.destroyed[0] != first {
		t.Errorf("second = %q destroyed = %v", second, e.uploader.destroyed)
	}

	// A storage failure on removal does not undo the new cover.
	e.uploader.destroyErr = errors.New("cloud down")
	got, err := e.listings.SetMainImage(ctx, l.ID, seller.ID, strings.NewReader("v3"))
	if err != nil {
		t.Fatalf("third upload: %v", err)
	}
	if e.reload(t, l.ID).MainImageID == second || got.MainImageURL == "" {
		t.Error("cover not replaced when destroy fails")
	}
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name string
		size int64
		ct   string
		want error
	}{
		{"jpeg", 1024, "image/jpeg", nil},
		{"png with params", 1024, "image/png; charset=binary", nil},
		{"webp at limit", domain.MaxImageBytes, "image/webp", nil},
		{"too large", domain.MaxImageBytes + 1, "image/jpeg", ErrImageTooLarge},
		{"gif", 1024, "image/gif", ErrImageType},
		{"empty type", 1024, "", ErrImageType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateImage(tt.size, tt.ct); !errors.Is(err, tt.want) {
				t.Errorf("ValidateImage(%d, %q) = %v, want %v", tt.size, tt.ct, err, tt.want)
			}
		})
	}
}

func TestHomeAndMyListings(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	fan := e.user(t, "fan", false, true)
	toyota := e.brand(t, "Toyota")
	e.brand(t, "Lada")
	cheap := e.listing(t, seller, toyota, "Aygo", "1500000", 2012)
	e.listing(t, seller, toyota, "RAV4", "15000000", 2022)
	sold := e.listing(t, seller, toyota, "Hilux", "12000000", 2018)
	e.db.Model(&models.Listing{}).Where("id = ?", sold.ID).Update("sold", true)
	if _, err := e.listings.ToggleFavorite(fan.ID, cheap.ID); err != nil {
		t.Fatalf("favorite: %v", err)
	}

	h, err := e.listings.Home()
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	if h.TotalAvailable != 2 || len(h.Recent) != 2 || h.Cheapest[0].ID != cheap.ID {
		t.Errorf("home = total %d recent %d", h.TotalAvailable, len(h.Recent))
	}
	if len(h.PopularBrands) != 2 || h.PopularBrands[0].Name != "Toyota" || h.PopularBrands[0].ListingCount != 3 {
		t.Errorf("popular brands = %+v", h.PopularBrands)
	}

	mine, err := e.listings.MyListings(seller.ID)
	if err != nil {
		t.Fatalf("my listings: %v", err)
	}
	if len(mine.Listings) != 3 || mine.Stats.OnSale != 2 || mine.Stats.Sold != 1 || mine.Stats.TotalFavorites != 1 {
		t.Errorf("my listings = %d %+v", len(mine.Listings), mine.Stats)
	}
}

func TestToggleFavoriteTwiceLeavesNone(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	u := e.user(t, "u", false, true)
	l := e.listing(t, seller, e.brand(t, "Dacia"), "Sandero", "3000000", 2019)

	if fav, err := e.listings.ToggleFavorite(u.ID, l.ID); err != nil || !fav {
		t.Fatalf("first toggle fav=%v err=%v", fav, err)
	}
	if fav, err := e.listings.ToggleFavorite(u.ID, l.ID); err != nil || fav {
		t.Fatalf("second toggle fav=%v err=%v", fav, err)
	}
	if list, _ := e.listings.Favorites(u.ID); len(list) != 0 {
		t.Errorf("favorites = %d", len(list))
	}
	if _, err := e.listings.ToggleFavorite(u.ID, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing listing err = %v", err)
	}
}

func TestSearchThroughService(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	bmw := e.brand(t, "BMW")
	e.listing(t, seller, bmw, "X5", "30000000", 2021)
	e.listing(t, seller, bmw, "Serie 1", "10000000", 2016)

	page, err := e.listings.Search(repository.ListingFilter{Query: "bmw", Sort: domain.SortPriceAsc})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 2 || page.Listings[0].CarModel.Name != "Serie 1" {
		t.Errorf("page = %+v", page)
	}
	if !page.AveragePrice.Equal(decimal.RequireFromString("20000000")) {
		t.Errorf("average = %s", page.AveragePrice)
	}
}
