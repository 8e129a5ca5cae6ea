/*
order.go - Standing orders and the due-date algorithm

PURPOSE:
  A standing order is a customer-authorized recurring instruction:
  either a fixed transfer between two accounts, or an auto-payment of
  bills matched by RF code / provider. Both variants share one
  scheduling algorithm.

DUE-DATE ALGORITHM:
  Given a reference date d and a target day-of-month D (1-28):
    1. candidate = d with day-of-month set to min(D, lastDayOfMonth(d))
    2. if candidate is not strictly after d:
         candidate += frequency months, day re-clamped for the new month
    3. NextExecution = candidate

  RecordExecution re-runs step 2 from the current NextExecution, so
  execution dates increase monotonically and a fast-forwarded simulation
  never collides two executions on one date. Days 29-31 are rejected at
  creation to avoid month-length ambiguity.
*/
package bank

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StandingOrder is a recurring payment instruction. Transfer orders use
// DestIBAN and a mandatory Amount; bill-payment orders use RFCode and
// ProviderName, with Amount as an optional fixed fallback for the
// unmatched auto-pay path. Orders are never deleted, only
// status-terminated.
type StandingOrder struct {
	ID              string
	Type            OrderType
	Status          OrderStatus
	OwnerID         string
	SourceIBAN      string
	DestIBAN        string          // transfer only
	Amount          decimal.Decimal // fixed amount; optional for bill payment
	FrequencyMonths int
	ExecutionDay    int // target day-of-month, 1-28
	NextExecution   Date
	RFCode          string // bill payment only
	ProviderName    string // bill payment only
	Description     string
	CreatedAt       time.Time
}

// NewTransferOrder creates a transfer standing order and schedules its
// first execution relative to ref.
func NewTransferOrder(id, sourceIBAN, destIBAN string, amount decimal.Decimal,
	frequencyMonths, executionDay int, description, ownerID string, ref Date) (*StandingOrder, error) {

	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if err := validateSchedule(frequencyMonths, executionDay); err != nil {
		return nil, err
	}
	o := &StandingOrder{
		ID:              id,
		Type:            OrderTransfer,
		Status:          OrderActive,
		OwnerID:         ownerID,
		SourceIBAN:      sourceIBAN,
		DestIBAN:        destIBAN,
		Amount:          amount,
		FrequencyMonths: frequencyMonths,
		ExecutionDay:    executionDay,
		Description:     description,
		CreatedAt:       time.Now(),
	}
	o.ScheduleFrom(ref)
	return o, nil
}

// NewBillPaymentOrder creates a bill auto-payment order. fixedAmount may
// be zero, in which case only matched bills are ever paid.
func NewBillPaymentOrder(id, sourceIBAN, rfCode, providerName string, fixedAmount decimal.Decimal,
	frequencyMonths, executionDay int, ownerID string, ref Date) (*StandingOrder, error) {

	if fixedAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if err := validateSchedule(frequencyMonths, executionDay); err != nil {
		return nil, err
	}
	o := &StandingOrder{
		ID:              id,
		Type:            OrderBillPayment,
		Status:          OrderActive,
		OwnerID:         ownerID,
		SourceIBAN:      sourceIBAN,
		Amount:          fixedAmount,
		FrequencyMonths: frequencyMonths,
		ExecutionDay:    executionDay,
		RFCode:          rfCode,
		ProviderName:    providerName,
		Description:     fmt.Sprintf("Auto-pay bills from %s", providerName),
		CreatedAt:       time.Now(),
	}
	o.ScheduleFrom(ref)
	return o, nil
}

func validateSchedule(frequencyMonths, executionDay int) error {
	if frequencyMonths < 1 {
		return ErrInvalidFrequency
	}
	if executionDay < 1 || executionDay > 28 {
		return ErrInvalidExecutionDay
	}
	return nil
}

// =============================================================================
// SCHEDULING
// =============================================================================

// ScheduleFrom computes NextExecution relative to ref. The result is
// always strictly after ref.
func (o *StandingOrder) ScheduleFrom(ref Date) {
	candidate := ref.WithDay(ref.ClampedDay(o.ExecutionDay))
	if !candidate.After(ref) {
		candidate = o.advance(candidate)
	}
	o.NextExecution = candidate
}

// advance moves a date forward by the order's frequency and re-clamps
// the day-of-month against the new month's length.
func (o *StandingOrder) advance(from Date) Date {
	next := from.AddMonths(o.FrequencyMonths)
	return next.WithDay(next.ClampedDay(o.ExecutionDay))
}

// ShouldExecute reports whether the order is due on the given date.
func (o *StandingOrder) ShouldExecute(current Date) bool {
	if o.Status != OrderActive {
		return false
	}
	return !o.NextExecution.IsZero() && o.NextExecution.BeforeOrEqual(current)
}

// RecordExecution advances NextExecution after a successful run.
// A skipped cycle must NOT call this: the order stays due until funds
// suffice or it is cancelled.
func (o *StandingOrder) RecordExecution() {
	o.NextExecution = o.advance(o.NextExecution)
}

// HasFixedAmount reports whether a bill-payment order carries the fixed
// fallback amount for the unmatched auto-pay path.
func (o *StandingOrder) HasFixedAmount() bool {
	return o.Amount.IsPositive()
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func (o *StandingOrder) Pause() error {
	if o.Status != OrderActive {
		return ErrOrderNotActive
	}
	o.Status = OrderPaused
	return nil
}

func (o *StandingOrder) Resume() error {
	if o.Status != OrderPaused {
		return ErrOrderNotActive
	}
	o.Status = OrderActive
	return nil
}

func (o *StandingOrder) Cancel() error {
	if o.Status == OrderCancelled || o.Status == OrderCompleted {
		return ErrOrderNotActive
	}
	o.Status = OrderCancelled
	return nil
}

// Complete terminates an order that has run its course.
func (o *StandingOrder) Complete() {
	o.Status = OrderCompleted
}
