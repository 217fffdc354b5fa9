package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"full name", User{Username: "awa", FirstName: "Awa", LastName: "Diop"}, "Awa Diop"},
		{"first name only", User{Username: "awa", FirstName: "Awa"}, "Awa"},
		{"falls back to username", User{Username: "awa"}, "awa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListing_TitleAndURL(t *testing.T) {
	l := Listing{ID: 42, Year: 2019, CarModel: CarModel{Name: "Corolla", Brand: Brand{Name: "Toyota"}}}
	if got := l.Title(); got != "Toyota Corolla (2019)" {
		t.Errorf("Title() = %q", got)
	}
	if got := l.URL(); got != "/listings/42/" {
		t.Errorf("URL() = %q", got)
	}
}

func TestListing_IsRecent(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	if !(&Listing{Year: 2024}).IsRecent(now) {
		t.Error("2024 should be recent in 2026")
	}
	if (&Listing{Year: 2023}).IsRecent(now) {
		t.Error("2023 should not be recent in 2026")
	}
}

func TestAfterFindFormatsPrices(t *testing.T) {
	l := &Listing{Price: decimal.RequireFromString("19990.00")}
	_ = l.AfterFind(nil)
	if l.PriceDisplay != "19 990 FCFA" {
		t.Errorf("PriceDisplay = %q", l.PriceDisplay)
	}
	tx := &Transaction{FinalPrice: decimal.RequireFromString("4500000")}
	_ = tx.AfterFind(nil)
	if tx.FinalPriceDisplay != "4 500 000 FCFA" {
		t.Errorf("FinalPriceDisplay = %q", tx.FinalPriceDisplay)
	}
}
