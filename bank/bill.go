/*
bill.go - Bill lifecycle and the aging state machine

STATE MACHINE:
  unpaid  --[currentDate > dueDate]--> overdue
  unpaid, overdue --[payment]--> paid       (terminal unless reopened)
  unpaid  --[cancellation]--> cancelled     (terminal)

  CheckAndUpdateOverdue is pure and idempotent: calling it any number of
  times per day performs at most the one legal transition. An overdue
  bill stays overdue until explicitly paid; it is never silently
  reverted.
*/
package bank

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill is issued by a business customer to an individual customer.
// Amount is fixed at creation; the RF code is the unique reference used
// to match standing orders to bills. Bills are never deleted.
type Bill struct {
	ID           string
	ProviderName string
	Amount       decimal.Decimal
	DueDate      Date
	Status       BillStatus
	PaidAt       *time.Time // nil until paid
	RFCode       string
	OwnerID      string // the customer who owes this bill
	IssuerID     string // the business that issued it
}

func NewBill(id, providerName string, amount decimal.Decimal, dueDate Date, rfCode, ownerID, issuerID string) *Bill {
	return &Bill{
		ID:           id,
		ProviderName: providerName,
		Amount:       amount,
		DueDate:      dueDate,
		Status:       BillUnpaid,
		RFCode:       rfCode,
		OwnerID:      ownerID,
		IssuerID:     issuerID,
	}
}

// Payable reports whether the bill can still be paid.
func (b *Bill) Payable() bool {
	return b.Status == BillUnpaid || b.Status == BillOverdue
}

// MarkPaid transitions the bill to paid at the given timestamp.
func (b *Bill) MarkPaid(at time.Time) error {
	if !b.Payable() {
		return ErrBillNotPayable
	}
	b.Status = BillPaid
	b.PaidAt = &at
	return nil
}

// Cancel voids an unpaid bill. Overdue bills remain collectible and
// cannot be cancelled.
func (b *Bill) Cancel() error {
	if b.Status != BillUnpaid {
		return ErrBillNotPayable
	}
	b.Status = BillCancelled
	return nil
}

// IsOverdue reports whether the bill is unpaid and past due.
func (b *Bill) IsOverdue(current Date) bool {
	return b.Status == BillUnpaid && current.After(b.DueDate)
}

// CheckAndUpdateOverdue performs the date-driven aging transition.
// Returns true if the bill transitioned on this call.
func (b *Bill) CheckAndUpdateOverdue(current Date) bool {
	if b.IsOverdue(current) {
		b.Status = BillOverdue
		return true
	}
	return false
}

// ReopenUnpaid is the explicit compensating operation that undoes a
// payment, e.g. after a disputed charge. The only way out of paid.
func (b *Bill) ReopenUnpaid() error {
	if b.Status != BillPaid {
		return ErrBillNotPayable
	}
	b.Status = BillUnpaid
	b.PaidAt = nil
	return nil
}
