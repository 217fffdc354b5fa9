package service

import (
	"errors"
	"fmt"
	"testing"

	"automarket/internal/domain"
	"automarket/internal/models"
)

func TestContactSeller(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	buyer := e.user(t, "buyer", false, true)
	l := e.listing(t, seller, e.brand(t, "Mercedes"), "Classe C", "18000000", 2019)

	m, err := e.messages.ContactSeller(l.ID, buyer.ID, "  Toujours disponible ?  ")
	if err != nil {
		t.Fatalf("contact: %v", err)
	}
	want := fmt.Sprintf("Annonce #%d — Mercedes Classe C", l.ID)
	if m.Subject != want || m.Body != "Toujours disponible ?" || m.RecipientID != seller.ID {
		t.Errorf("message = %+v", m)
	}
	if n := e.countNotifications(t, seller.ID, domain.NotifMessage); n != 1 {
		t.Errorf("seller message notifications = %d", n)
	}

	if _, err := e.messages.ContactSeller(l.ID, seller.ID, "hello"); !errors.Is(err, ErrSelfMessage) {
		t.Errorf("self message err = %v", err)
	}
	if _, err := e.messages.ContactSeller(l.ID, buyer.ID, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("empty message err = %v", err)
	}
	if _, err := e.messages.ContactSeller(9999, buyer.ID, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing listing err = %v", err)
	}
}

func TestMailboxMarksReceivedRead(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	buyer := e.user(t, "buyer", false, true)
	l := e.listing(t, seller, e.brand(t, "Skoda"), "Octavia", "8000000", 2018)
	if _, err := e.messages.ContactSeller(l.ID, buyer.ID, "Bonjour"); err != nil {
		t.Fatalf("contact: %v", err)
	}

	sent, err := e.messages.Mailbox(buyer.ID, TabSent)
	if err != nil || len(sent) != 1 || sent[0].Recipient.ID != seller.ID {
		t.Fatalf("sent = %+v err=%v", sent, err)
	}
	received, err := e.messages.Mailbox(seller.ID, "")
	if err != nil || len(received) != 1 || received[0].IsRead || received[0].Sender.ID != buyer.ID {
		t.Fatalf("received = %+v err=%v", received, err)
	}
	var unread int64
	e.db.Model(&models.Message{}).Where("recipient_id = ? AND is_read = ?", seller.ID, false).Count(&unread)
	if unread != 0 {
		t.Errorf("unread after opening inbox = %d", unread)
	}
}

func TestReviewSubmitAndModeration(t *testing.T) {
	e := newTestEnv(t)
	seller := e.user(t, "seller", false, true)
	u := e.user(t, "u", false, true)
	l := e.listing(t, seller, e.brand(t, "Volvo"), "XC60", "20000000", 2020)

	tests := []struct {
		name    string
		user    uint
		rating  int
		comment string
		want    error
	}{
		{"rating too low", u.ID, 0, "x", ErrInvalidRating},
		{"rating too high", u.ID, 6, "x", ErrInvalidRating},
		{"empty comment", u.ID, 3, "  ", ErrEmptyMessage},
		{"own listing", seller.ID, 5, "superbe", ErrSelfReview},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := e.reviews.Submit(l.ID, tt.user, tt.rating, tt.comment); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	rv, created, err := e.reviews.Submit(l.ID, u.ID, 4, "très bien")
	if err != nil || !created {
		t.Fatalf("submit created=%v err=%v", created, err)
	}
	pending, _ := e.reviews.Pending(10)
	if len(pending) != 1 || pending[0].ID != rv.ID {
		t.Fatalf("pending = %+v", pending)
	}
	if err := e.reviews.SetApproved(rv.ID, true); err != nil {
		t.Fatalf("approve: %v", err)
	}
	// Approving twice is not an error.
	if err := e.reviews.SetApproved(rv.ID, true); err != nil {
		t.Errorf("re-approve: %v", err)
	}
	if _, created, err := e.reviews.Submit(l.ID, u.ID, 2, "déçu"); err != nil || created {
		t.Fatalf("resubmit created=%v err=%v", created, err)
	}
	if pending, _ := e.reviews.Pending(10); len(pending) != 1 || pending[0].Rating != 2 {
		t.Errorf("resubmitted review not back in moderation: %+v", pending)
	}
	if err := e.reviews.SetApproved(9999, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown review err = %v", err)
	}
}

func TestDashboard(t *testing.T) {
	e := newTestEnv(t)
	staff := e.user(t, "staff", true, true)
	seller := e.user(t, "seller", false, true)
	buyer := e.user(t, "buyer", false, true)
	brand := e.brand(t, "Honda")
	l1 := e.listing(t, seller, brand, "Jazz", "3000000", 2017)
	l2 := e.listing(t, seller, brand, "CR-V", "12000000", 2020)

	t1, _ := e.market.InitiatePurchase(l1.ID, buyer.ID)
	if _, err := e.market.InitiatePurchase(l2.ID, buyer.ID); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if _, err := e.market.ConfirmSale(t1.ID, seller.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	d, err := e.admin.Dashboard(staff.ID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Stats.TotalUsers != 3 || d.Stats.TotalListings != 2 || d.Stats.TotalTransactions != 2 {
		t.Errorf("stats = %+v", d.Stats)
	}
	if d.Stats.Revenue.String() != "3000000" {
		t.Errorf("revenue = %s", d.Stats.Revenue)
	}
	if len(d.PendingTransactions) != 1 || len(d.RecentTransactions) != 2 || len(d.RecentListings) != 2 {
		t.Errorf("lists pending=%d recent=%d listings=%d", len(d.PendingTransactions), len(d.RecentTransactions), len(d.RecentListings))
	}
	if len(d.Notifications) == 0 {
		t.Error("staff dashboard has no notifications")
	}
}
