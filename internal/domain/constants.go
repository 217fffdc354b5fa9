package domain

// Transaction statuses. Cancelled and completed exist in the schema but no
// operation moves a transaction into them yet.
const (
	TxStatusPending   = "pending"
	TxStatusConfirmed = "confirmed"
	TxStatusCancelled = "cancelled"
	TxStatusCompleted = "completed"
)

// Notification categories.
const (
	NotifNewListing      = "new_listing"
	NotifPurchaseRequest = "purchase_request"
	NotifSaleConfirmed   = "sale_confirmed"
	NotifMessage         = "message"
)

const (
	ConditionNew           = "neuf"
	ConditionUsed          = "occasion"
	ConditionReconditioned = "reconditionne"
)

var Conditions = []string{ConditionNew, ConditionUsed, ConditionReconditioned}

var Colors = []string{
	"blanc", "noir", "gris", "rouge", "bleu", "vert",
	"jaune", "argent", "orange", "violet", "marron", "beige",
}

const (
	FuelPetrol   = "essence"
	FuelDiesel   = "diesel"
	FuelHybrid   = "hybride"
	FuelElectric = "electrique"
	FuelLPG      = "gpl"
)

const (
	TransmissionManual    = "manuelle"
	TransmissionAutomatic = "automatique"
	TransmissionSemiAuto  = "semi-auto"
)

// Listing search sort keys. Anything else falls back to newest first.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortYearDesc  = "year_desc"
	SortKmAsc     = "km_asc"
)

const (
	ListingStatusReserved  = "reserved"
	ListingStatusAvailable = "available"
)

const (
	ListingPageSize     = 12
	SimilarListingLimit = 4
	InboxLimit          = 200
	DashboardListLimit  = 10
)

// MinVehicleYear is the oldest year accepted for listings and models.
const MinVehicleYear = 1900

// DashboardLink is the deep link used for staff notifications.
const DashboardLink = "/dashboard/"

// Image uploads.
const MaxImageBytes = 5 * 1024 * 1024

var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}
