package repository

import "errors"

// Conditional updates that match no row report why through these. Lookups
// that find nothing return gorm.ErrRecordNotFound unchanged.
var (
	ErrListingSold           = errors.New("listing already sold")
	ErrListingReserved       = errors.New("listing already reserved")
	ErrTransactionNotPending = errors.New("transaction not pending")
)
