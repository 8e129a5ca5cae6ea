/*
errors.go - Centralized error types for the banking core

PURPOSE:
  All error types in one place for consistency and discoverability.
  Anything that would corrupt the ledger if applied is validated before
  mutation: operations either fail fast with one of these errors and no
  partial write, or complete fully.

ERROR CATEGORIES:
  1. Validation errors  - non-positive amounts, malformed orders
  2. State errors       - inactive accounts, terminal bill states
  3. Funds errors       - insufficient balance (skip-cycle inside batches)
  4. Engine errors      - backwards time
  5. Gateway errors     - external transfer service unavailable

USAGE:
  API handlers map these with errors.Is():

    if bank.IsClientError(err) {
        writeError(w, http.StatusBadRequest, err)
    }
*/
package bank

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAmount is returned for a zero or negative amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInactiveAccount is returned when mutating a non-active account.
	ErrInactiveAccount = errors.New("account is not active")

	// ErrInsufficientFunds is returned when a withdrawal exceeds the
	// balance. Inside the standing-order pass this becomes a skipped
	// cycle, never an abort of the whole pass.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrBackwardsTime is returned by Simulate when the target date is
	// before the current simulated date. Checked before any mutation.
	ErrBackwardsTime = errors.New("cannot simulate backwards in time")

	// ErrServiceUnavailable is returned when the external payment
	// gateway cannot be reached. No funds move.
	ErrServiceUnavailable = errors.New("payment gateway unavailable")

	// ErrTransferDeclined is returned when the gateway reachable but
	// rejects the transfer. No funds move.
	ErrTransferDeclined = errors.New("transfer declined by gateway")

	// ErrAccountNotFound is returned for an unknown IBAN.
	ErrAccountNotFound = errors.New("account not found")

	// ErrBillNotFound is returned for an unknown bill identifier.
	ErrBillNotFound = errors.New("bill not found")

	// ErrOrderNotFound is returned for an unknown standing order.
	ErrOrderNotFound = errors.New("standing order not found")

	// ErrBillNotPayable is returned when paying a bill that is already
	// paid or cancelled.
	ErrBillNotPayable = errors.New("bill is not payable")

	// ErrInvalidExecutionDay is returned for a target day outside 1-28.
	// Days 29-31 are rejected to avoid month-length ambiguity.
	ErrInvalidExecutionDay = errors.New("execution day must be between 1 and 28")

	// ErrInvalidFrequency is returned for a frequency below one month.
	ErrInvalidFrequency = errors.New("frequency must be at least one month")

	// ErrOrderNotActive is returned when mutating a terminated order.
	ErrOrderNotActive = errors.New("standing order is not active")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientFundsError provides details about a balance shortage.
type InsufficientFundsError struct {
	IBAN      string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on %s: available %s, requested %s",
		e.IBAN, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// BackwardsTimeError reports an attempt to rewind the simulated clock.
type BackwardsTimeError struct {
	Current Date
	Target  Date
}

func (e *BackwardsTimeError) Error() string {
	return fmt.Sprintf("cannot simulate from %s back to %s", e.Current, e.Target)
}

func (e *BackwardsTimeError) Unwrap() error {
	return ErrBackwardsTime
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInactiveAccount) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrBackwardsTime) ||
		errors.Is(err, ErrBillNotPayable) ||
		errors.Is(err, ErrInvalidExecutionDay) ||
		errors.Is(err, ErrInvalidFrequency) ||
		errors.Is(err, ErrOrderNotActive)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrBillNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}
