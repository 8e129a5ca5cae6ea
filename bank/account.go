/*
account.go - Account ledger: balance mutation primitives and invariants

PURPOSE:
  Owns every legal way an account balance can change: deposit, withdraw,
  daily interest accrual, monthly interest application, and the business
  maintenance fee. Nothing else in the system touches Balance directly.

INVARIANTS:
  1. Mutations require Status == active (deposit/withdraw/interest/fee)
  2. Withdraw requires balance >= amount; balance never goes negative
  3. Interest accrues daily into AccruedInterest and is only realized
     into Balance by ApplyMonthlyInterest (statement-cycle semantics)
  4. The maintenance fee charges at most the available balance, never
     driving it below zero

ROUNDING:
  dailyRate = annual rate / 365 rounded half-up to 10 decimal places,
  then balance * dailyRate accrues unrounded. Realization moves the
  accumulator verbatim, so repeated accrual + application round-trips
  exactly.
*/
package bank

import (
	"github.com/shopspring/decimal"
)

// Account is a bank account. Personal and Business are one struct with
// a Kind tag; MaintenanceFee is meaningful only for Kind == business.
type Account struct {
	IBAN            string
	Kind            AccountKind
	OwnerID         string
	CoOwners        []string // personal accounts may have secondary owners
	Balance         decimal.Decimal
	Status          AccountStatus
	InterestRate    decimal.Decimal // annual fraction, e.g. 0.01 for 1%/yr
	AccruedInterest decimal.Decimal
	MaintenanceFee  decimal.Decimal // business only, charged monthly
	OpenedAt        Date
}

// NewPersonalAccount opens a personal account with the default interest
// rate. Opening balance must be >= 0; callers validate before opening.
func NewPersonalAccount(iban, ownerID string, opening decimal.Decimal, openedAt Date) *Account {
	return &Account{
		IBAN:         iban,
		Kind:         KindPersonal,
		OwnerID:      ownerID,
		Balance:      opening,
		Status:       StatusActive,
		InterestRate: DefaultInterestRate,
		OpenedAt:     openedAt,
	}
}

// NewBusinessAccount opens a business account carrying a monthly
// maintenance fee. A zero fee falls back to the default.
func NewBusinessAccount(iban, ownerID string, opening, monthlyFee decimal.Decimal, openedAt Date) *Account {
	if monthlyFee.IsZero() {
		monthlyFee = DefaultMaintenanceFee
	}
	return &Account{
		IBAN:           iban,
		Kind:           KindBusiness,
		OwnerID:        ownerID,
		Balance:        opening,
		Status:         StatusActive,
		InterestRate:   DefaultInterestRate,
		MaintenanceFee: monthlyFee,
		OpenedAt:       openedAt,
	}
}

func (a *Account) IsActive() bool { return a.Status == StatusActive }

// AddCoOwner registers a secondary owner on a personal account.
func (a *Account) AddCoOwner(customerID string) {
	for _, id := range a.CoOwners {
		if id == customerID {
			return
		}
	}
	a.CoOwners = append(a.CoOwners, customerID)
}

// OwnedBy reports whether the customer is the primary or a secondary
// owner of this account.
func (a *Account) OwnedBy(customerID string) bool {
	if a.OwnerID == customerID {
		return true
	}
	for _, id := range a.CoOwners {
		if id == customerID {
			return true
		}
	}
	return false
}

// =============================================================================
// MUTATION PRIMITIVES
// =============================================================================

// Deposit adds amount to the balance.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !a.IsActive() {
		return ErrInactiveAccount
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// Withdraw removes amount from the balance.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !a.IsActive() {
		return ErrInactiveAccount
	}
	if a.Balance.LessThan(amount) {
		return &InsufficientFundsError{IBAN: a.IBAN, Available: a.Balance, Requested: amount}
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// AccrueInterest adds one day of interest to the accumulator. The
// balance is untouched; realization happens monthly. The engine invokes
// this exactly once per simulated day per active account.
func (a *Account) AccrueInterest() {
	if !a.IsActive() {
		return
	}
	dailyRate := a.InterestRate.DivRound(daysPerYear, interestPrecision)
	a.AccruedInterest = a.AccruedInterest.Add(a.Balance.Mul(dailyRate))
}

// ApplyMonthlyInterest realizes the accumulator into the balance and
// resets it. Returns the amount applied so the caller can record a
// transaction; a zero return means nothing happened and nothing should
// be recorded.
func (a *Account) ApplyMonthlyInterest() decimal.Decimal {
	if !a.IsActive() || a.AccruedInterest.IsZero() {
		return decimal.Zero
	}
	applied := a.AccruedInterest
	a.Balance = a.Balance.Add(applied)
	a.AccruedInterest = decimal.Zero
	return applied
}

// ApplyMaintenanceFee charges the monthly fee on a business account.
// If the balance cannot cover the fee, only the available balance is
// charged, down to exactly zero. Returns the amount actually charged.
func (a *Account) ApplyMaintenanceFee() decimal.Decimal {
	if a.Kind != KindBusiness || !a.IsActive() {
		return decimal.Zero
	}
	charged := a.MaintenanceFee
	if a.Balance.LessThan(charged) {
		charged = a.Balance
	}
	a.Balance = a.Balance.Sub(charged)
	return charged
}

// =============================================================================
// LIFECYCLE - Closure is a status transition, accounts are never deleted
// =============================================================================

func (a *Account) Freeze()     { a.Status = StatusFrozen }
func (a *Account) Deactivate() { a.Status = StatusInactive }
func (a *Account) Close()      { a.Status = StatusClosed }

// Reactivate reopens a frozen or inactive account. Closed is terminal.
func (a *Account) Reactivate() error {
	if a.Status == StatusClosed {
		return ErrInactiveAccount
	}
	a.Status = StatusActive
	return nil
}
