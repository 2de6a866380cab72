package portfolio

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransaction is returned for malformed transactions.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrOutOfOrder is returned when a transaction precedes the last one
	// applied to the same position.
	ErrOutOfOrder = errors.New("transaction out of order")
	// ErrCurrencyMismatch is returned when a sell is not in the currency of the lots it closes.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrNotFound is returned when a transaction id is unknown to the ledger.
	ErrNotFound = errors.New("transaction not found")
	// ErrDuplicateID is returned when a transaction id is already in the ledger.
	ErrDuplicateID = errors.New("duplicate transaction id")
)

// InsufficientQuantityError is returned when a sell exceeds the quantity held.
type InsufficientQuantityError struct {
	Account    string
	Instrument string
	Requested  Quantity
	Available  Quantity
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity of %s in %s: selling %s, holding %s", e.Instrument, e.Account, e.Requested, e.Available)
}
