/*
Package bank provides the core retail-banking ledger and simulation engine.

PURPOSE:
  This package contains the domain types and algorithms for a simulated
  retail bank: accounts with daily interest accrual, bills that age into
  an overdue state, recurring standing orders, an append-only transaction
  log, and the day-stepping driver that sequences all of them.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: exact decimal amounts (decimal.Decimal, never float)
  - Transaction types and statuses for the append-only ledger
  - Fixed fee schedule (SEPA, SWIFT, bill payment)

DESIGN PRINCIPLES:
  1. Precision: all money is decimal.Decimal; no floating-point drift
  2. Auditability: every balance mutation leaves a Transaction record
  3. Explicit context: state lives in a Bank value passed to callers,
     never in a package-level singleton
  4. Failure isolation: one account's insufficiency never blocks the
     rest of a batch

SEE ALSO:
  - account.go: balance mutation rules
  - engine.go:  the day-stepping driver
  - ledger.go:  the transaction log
*/
package bank

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Exact decimal amounts
// =============================================================================

// MustDecimal parses a decimal literal, returning zero on malformed input.
// Intended for constants and test fixtures.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Fixed fee schedule. All amounts are EUR.
var (
	SEPAFee        = MustDecimal("1.50")
	SWIFTFee       = MustDecimal("25.00")
	BillPaymentFee = MustDecimal("0.50")

	// DefaultInterestRate is the annual interest rate applied to new
	// accounts (1%/year).
	DefaultInterestRate = MustDecimal("0.01")

	// DefaultMaintenanceFee is the monthly fee for business accounts.
	DefaultMaintenanceFee = MustDecimal("25.00")

	daysPerYear = decimal.NewFromInt(365)
)

// interestPrecision is the scale the daily rate is rounded to (half-up).
const interestPrecision = 10

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

type TransactionType string

const (
	TxDeposit        TransactionType = "deposit"
	TxWithdrawal     TransactionType = "withdrawal"
	TxTransferIn     TransactionType = "transfer_in"
	TxTransferOut    TransactionType = "transfer_out"
	TxBillPayment    TransactionType = "bill_payment"
	TxInterest       TransactionType = "interest"
	TxMaintenanceFee TransactionType = "maintenance_fee"
	TxSEPATransfer   TransactionType = "sepa_transfer"
	TxSWIFTTransfer  TransactionType = "swift_transfer"
)

type TransactionStatus string

const (
	TxCompleted TransactionStatus = "completed"
	// TxReversed marks a status correction on an otherwise immutable
	// record. The record itself is never rewritten or deleted.
	TxReversed TransactionStatus = "reversed"
)

// =============================================================================
// ACCOUNT / ORDER / BILL ENUMS
// =============================================================================

type AccountKind string

const (
	KindPersonal AccountKind = "personal"
	KindBusiness AccountKind = "business"
)

type AccountStatus string

const (
	StatusActive   AccountStatus = "active"
	StatusInactive AccountStatus = "inactive"
	StatusFrozen   AccountStatus = "frozen"
	StatusClosed   AccountStatus = "closed"
)

type BillStatus string

const (
	BillUnpaid    BillStatus = "unpaid"
	BillPaid      BillStatus = "paid"
	BillOverdue   BillStatus = "overdue"
	BillCancelled BillStatus = "cancelled"
)

type OrderType string

const (
	OrderTransfer    OrderType = "transfer"
	OrderBillPayment OrderType = "bill_payment"
)

type OrderStatus string

const (
	OrderActive    OrderStatus = "active"
	OrderPaused    OrderStatus = "paused"
	OrderCancelled OrderStatus = "cancelled"
	OrderCompleted OrderStatus = "completed"
)

// =============================================================================
// CUSTOMER ROLES
// =============================================================================

type CustomerRole string

const (
	RoleIndividual CustomerRole = "individual"
	RoleBusiness   CustomerRole = "business"
	RoleAdmin      CustomerRole = "admin"
)
