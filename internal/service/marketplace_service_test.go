package service

import (
	"errors"
	"testing"

	"automarket/internal/domain"
	"automarket/internal/events"
	"automarket/internal/models"

	"github.com/shopspring/decimal"
)

func TestInitiatePurchaseReservesAndCopiesPrice(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	buyer := e.user(t, "buyer", false, true)
	staff := e.user(t, "staff", true, true)
	l := e.listing(t, seller, e.brand(t, "Toyota"), "Corolla", "19990.00", 2020)

	tx, err := e.market.InitiatePurchase(l.ID, buyer.ID)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if tx.Status != domain.TxStatusPending || tx.BuyerID != buyer.ID || tx.SellerID != seller.ID {
		t.Fatalf("transaction = %+v", tx)
	}
	if !tx.FinalPrice.Equal(decimal.RequireFromString("19990")) {
		t.Errorf("final price = %s", tx.FinalPrice)
	}
	got := e.reload(t, l.ID)
	if !got.Reserved || got.Sold {
		t.Errorf("listing sold=%v reserved=%v", got.Sold, got.Reserved)
	}
	if n := e.countNotifications(t, seller.ID, domain.NotifPurchaseRequest); n != 1 {
		t.Errorf("seller purchase notifications = %d", n)
	}
	if n := e.countNotifications(t, staff.ID, domain.NotifPurchaseRequest); n != 1 {
		t.Errorf("staff purchase notifications = %d", n)
	}
	var staffNote models.Notification
	e.db.Where("user_id = ? AND category = ?", staff.ID, domain.NotifPurchaseRequest).First(&staffNote)
	if staffNote.Link != domain.DashboardLink || staffNote.Title != "Demande d'achat à traiter" {
		t.Errorf("staff notification = %+v", staffNote)
	}
	keys := e.publisher.keys()
	if keys[len(keys)-1] != events.PurchaseRequested {
		t.Errorf("last event = %v", keys)
	}
}

func TestInitiatePurchaseFailsWithoutSideEffects(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	buyer := e.user(t, "buyer", false, true)
	brand := e.brand(t, "Renault")

	sold := e.listing(t, seller, brand, "Clio", "3000000", 2015)
	e.db.Model(&models.Listing{}).Where("id = ?", sold.ID).Update("sold", true)
	reserved := e.listing(t, seller, brand, "Megane", "4000000", 2017)
	e.db.Model(&models.Listing{}).Where("id = ?", reserved.ID).Update("reserved", true)
	own := e.listing(t, seller, brand, "Captur", "6000000", 2021)

	tests := []struct {
		name    string
		listing uint
		buyer   uint
		want    error
	}{
		{"sold", sold.ID, buyer.ID, ErrNotFound},
		{"reserved", reserved.ID, buyer.ID, ErrAlreadyReserved},
		{"self purchase", own.ID, seller.ID, ErrSelfPurchase},
		{"missing", 9999, buyer.ID, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before *models.Listing
			if tt.listing != 9999 {
				before = e.reload(t, tt.listing)
			}
			_, err := e.market.InitiatePurchase(tt.listing, tt.buyer)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if before != nil {
				after := e.reload(t, tt.listing)
				if after.Sold != before.Sold || after.Reserved != before.Reserved {
					t.Errorf("flags changed: %+v -> %+v", before, after)
				}
			}
		})
	}
	var n int64
	e.db.Model(&models.Transaction{}).Count(&n)
	if n != 0 {
		t.Errorf("expected no transactions, got %d", n)
	}
	if c := e.countNotifications(t, seller.ID, domain.NotifPurchaseRequest); c != 0 {
		t.Errorf("unexpected purchase notifications: %d", c)
	}
}

func TestSecondBuyerGetsAlreadyReserved(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	b := e.user(t, "b", false, true)
	c := e.user(t, "c", false, true)
	l := e.listing(t, seller, e.brand(t, "Mazda"), "3", "7000000", 2019)

	if _, err := e.market.InitiatePurchase(l.ID, b.ID); err != nil {
		t.Fatalf("first buyer: %v", err)
	}
	if _, err := e.market.InitiatePurchase(l.ID, c.ID); !errors.Is(err, ErrAlreadyReserved) {
		t.Fatalf("second buyer err = %v, want ErrAlreadyReserved", err)
	}
	var n int64
	e.db.Model(&models.Transaction{}).Where("listing_id = ?", l.ID).Count(&n)
	if n != 1 {
		t.Errorf("transactions = %d, want 1", n)
	}
}

func TestConfirmSaleClosesListing(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	buyer := e.user(t, "buyer", false, true)
	staff := e.user(t, "staff", true, true)
	l := e.listing(t, seller, e.brand(t, "Nissan"), "Micra", "2500000", 2016)
	tx, err := e.market.InitiatePurchase(l.ID, buyer.ID)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	done, err := e.market.ConfirmSale(tx.ID, seller.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if done.Status != domain.TxStatusConfirmed {
		t.Errorf("status = %s", done.Status)
	}
	var stored models.Transaction
	e.db.First(&stored, tx.ID)
	got := e.reload(t, l.ID)
	if stored.Status != domain.TxStatusConfirmed || !got.Sold || got.Reserved {
		t.Errorf("after confirm: tx=%s sold=%v reserved=%v", stored.Status, got.Sold, got.Reserved)
	}
	if n := e.countNotifications(t, buyer.ID, domain.NotifSaleConfirmed); n != 1 {
		t.Errorf("buyer notifications = %d", n)
	}
	if n := e.countNotifications(t, staff.ID, domain.NotifSaleConfirmed); n != 1 {
		t.Errorf("staff notifications = %d", n)
	}
	keys := e.publisher.keys()
	if keys[len(keys)-1] != events.SaleConfirmed {
		t.Errorf("events = %v", keys)
	}

	// A confirmed transaction is no longer confirmable.
	if _, err := e.market.ConfirmSale(tx.ID, seller.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second confirm err = %v", err)
	}
}

func TestConfirmSaleByOthersChangesNothing(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	buyer := e.user(t, "buyer", false, true)
	staff := e.user(t, "staff", true, true)
	stranger := e.user(t, "stranger", false, true)
	l := e.listing(t, seller, e.brand(t, "Hyundai"), "i20", "3200000", 2018)
	tx, err := e.market.InitiatePurchase(l.ID, buyer.ID)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	for _, actor := range []*models.User{buyer, staff, stranger} {
		if _, err := e.market.ConfirmSale(tx.ID, actor.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: err = %v, want ErrNotFound", actor.Username, err)
		}
	}
	var stored models.Transaction
	e.db.First(&stored, tx.ID)
	got := e.reload(t, l.ID)
	if stored.Status != domain.TxStatusPending || got.Sold || !got.Reserved {
		t.Errorf("state changed: tx=%s sold=%v reserved=%v", stored.Status, got.Sold, got.Reserved)
	}
	if _, err := e.market.ConfirmSale(9999, seller.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing tx err = %v", err)
	}
}

func TestPriceEditDoesNotChangePendingTransaction(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	buyer := e.user(t, "buyer", false, true)
	l := e.listing(t, seller, e.brand(t, "Volkswagen"), "Golf", "19990.00", 2020)

	tx, err := e.market.InitiatePurchase(l.ID, buyer.ID)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	newPrice := decimal.RequireFromString("21000.00")
	edited, err := e.listings.Update(l.ID, seller.ID, UpdateListingInput{Price: &newPrice})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !edited.Price.Equal(newPrice) {
		t.Fatalf("listing price = %s", edited.Price)
	}
	if _, err := e.market.ConfirmSale(tx.ID, seller.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	var stored models.Transaction
	e.db.First(&stored, tx.ID)
	if !stored.FinalPrice.Equal(decimal.RequireFromString("19990.00")) {
		t.Errorf("final price = %s, want 19990.00", stored.FinalPrice)
	}
}

func TestViewListingCountsNonSellerViews(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	l := e.listing(t, seller, e.brand(t, "Ford"), "Fiesta", "2800000", 2015)

	for _, name := range []string{"v1", "v2", "v3"} {
		viewer := e.user(t, name, false, true)
		id := viewer.ID
		if _, err := e.market.ViewListing(l.ID, &id); err != nil {
			t.Fatalf("view by %s: %v", name, err)
		}
	}
	if got := e.reload(t, l.ID).Views; got != 3 {
		t.Fatalf("views after three viewers = %d, want 3", got)
	}
	sid := seller.ID
	for i := 0; i < 2; i++ {
		v, err := e.market.ViewListing(l.ID, &sid)
		if err != nil {
			t.Fatalf("seller view: %v", err)
		}
		if v.Views != 3 {
			t.Errorf("seller sees views = %d", v.Views)
		}
	}
	if got := e.reload(t, l.ID).Views; got != 3 {
		t.Errorf("seller views counted: %d", got)
	}
	anon, err := e.market.ViewListing(l.ID, nil)
	if err != nil || anon.Views != 4 {
		t.Errorf("anonymous view views=%v err=%v", anon, err)
	}
	if _, err := e.market.ViewListing(9999, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing listing err = %v", err)
	}
}

func TestListingDetail(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	viewer := e.user(t, "viewer", false, true)
	brand := e.brand(t, "Peugeot")
	l := e.listing(t, seller, brand, "208", "5000000", 2020)
	e.listing(t, seller, brand, "308", "6000000", 2019)
	e.listing(t, seller, e.brand(t, "Fiat"), "Panda", "2000000", 2014)

	if _, err := e.listings.ToggleFavorite(viewer.ID, l.ID); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	rv, _, err := e.reviews.Submit(l.ID, viewer.ID, 5, "parfait")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	vid := viewer.ID
	d, err := e.market.ListingDetail(l.ID, &vid)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if !d.IsFavorite || len(d.Reviews) != 0 || len(d.Similar) != 1 || d.Similar[0].CarModel.Name != "308" {
		t.Errorf("detail = fav %v reviews %d similar %d", d.IsFavorite, len(d.Reviews), len(d.Similar))
	}
	if err := e.reviews.SetApproved(rv.ID, true); err != nil {
		t.Fatalf("approve: %v", err)
	}
	d, _ = e.market.ListingDetail(l.ID, nil)
	if d.IsFavorite || len(d.Reviews) != 1 {
		t.Errorf("anonymous detail fav=%v reviews=%d", d.IsFavorite, len(d.Reviews))
	}
}

func TestPurchaseAndSalesHistory(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	buyer := e.user(t, "buyer", false, true)
	l := e.listing(t, seller, e.brand(t, "Suzuki"), "Swift", "3900000", 2018)
	if _, err := e.market.InitiatePurchase(l.ID, buyer.ID); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	purchases, err := e.market.Purchases(buyer.ID)
	if err != nil || len(purchases) != 1 || purchases[0].Seller.ID != seller.ID {
		t.Fatalf("purchases = %+v err=%v", purchases, err)
	}
	sales, err := e.market.Sales(seller.ID)
	if err != nil || len(sales) != 1 || sales[0].Listing.CarModel.Brand.Name != "Suzuki" {
		t.Fatalf("sales = %+v err=%v", sales, err)
	}
	if none, _ := e.market.Sales(buyer.ID); len(none) != 0 {
		t.Errorf("buyer has sales: %d", len(none))
	}
}
