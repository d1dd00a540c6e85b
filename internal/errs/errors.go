package errs

import (
	"errors"
	"fmt"

	"github.com/govalues/money"
)

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrInvalid  = errors.New("invalid")
	ErrConflict = errors.New("conflict")
	// ErrInsufficientFunds signals that a requested amount exceeds the
	// computed balance. Wrap it in InsufficientFunds for numeric context.
	ErrInsufficientFunds = errors.New("insufficient_funds")
)

// InsufficientFunds carries the numeric context of a failed sufficiency
// check. Advisory checks (wallet expense/transfer) may be overridden by the
// caller; hard checks (savings deposit/withdrawal) may not.
type InsufficientFunds struct {
	// Account is the wallet or savings vehicle that came up short.
	Account   string
	Requested money.Amount
	Balance   money.Amount
	Deficit   money.Amount
	Advisory  bool
}

func (e *InsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds in %s: requested %v, balance %v (short %v)",
		e.Account, e.Requested, e.Balance, e.Deficit)
}

func (e *InsufficientFunds) Unwrap() error { return ErrInsufficientFunds }
