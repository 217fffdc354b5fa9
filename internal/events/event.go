// Package events defines marketplace domain events and publishes them to RabbitMQ.
package events

// Routing keys.
const (
	ListingPublished  = "listing.published"
	PurchaseRequested = "purchase.requested"
	SaleConfirmed     = "sale.confirmed"
)

// ListingPublishedEvent is emitted once a new listing is stored.
type ListingPublishedEvent struct {
	ListingID uint   `json:"listing_id"`
	SellerID  uint   `json:"seller_id"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	CreatedAt string `json:"created_at"`
}

// PurchaseRequestedEvent is emitted when a listing becomes reserved for a buyer.
type PurchaseRequestedEvent struct {
	TransactionID uint   `json:"transaction_id"`
	ListingID     uint   `json:"listing_id"`
	BuyerID       uint   `json:"buyer_id"`
	SellerID      uint   `json:"seller_id"`
	FinalPrice    string `json:"final_price"`
	RequestedAt   string `json:"requested_at"`
}

// SaleConfirmedEvent is emitted when the seller confirms a pending transaction.
type SaleConfirmedEvent struct {
	TransactionID uint   `json:"transaction_id"`
	ListingID     uint   `json:"listing_id"`
	BuyerID       uint   `json:"buyer_id"`
	SellerID      uint   `json:"seller_id"`
	FinalPrice    string `json:"final_price"`
	ConfirmedAt   string `json:"confirmed_at"`
}
