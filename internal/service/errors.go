package service

import (
	"errors"
	"fmt"
)

// Validation and state errors. ErrNotFound also covers records that exist but
// do not belong to the caller, so handlers never reveal which case occurred.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrSelfPurchase    = errors.New("cannot buy your own listing")
	ErrAlreadyReserved = errors.New("listing already reserved")
	ErrAlreadySold     = errors.New("listing already sold")
	ErrNotPending      = errors.New("transaction is not pending")
	ErrSelfMessage     = errors.New("cannot message yourself")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrSelfReview      = errors.New("cannot review your own listing")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

// PersistenceError wraps an unexpected storage failure with the operation that hit it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
