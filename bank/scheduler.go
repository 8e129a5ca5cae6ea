/*
scheduler.go - The due-order execution pass

PURPOSE:
  Runs once per simulated day: transfers first, then bill payments.
  Failure isolation is mandatory: an insufficiency or panic on one
  order surfaces as a skip and the loop proceeds to the next order.
  A skipped order keeps its NextExecution and remains due on the next
  simulated day until funds suffice or it is cancelled.

BILL MATCHING:
  A bill-payment order pays bills matched by RF code; if none match,
  bills from the order's provider owned by the order's owner. If no
  bill matches at all:
    - with a fixed fallback amount: execute that amount as an
      unmatched auto-pay (product has been asked to confirm the
      intended semantics; the behavior is preserved as specified)
    - without one: the order stays due, so the next bill from the
      provider is paid the day it appears.
*/
package bank

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// passStats accumulates counters for the daily report.
type passStats struct {
	executed  int
	skipped   int
	billsPaid int
}

// runDuePassLocked executes every due standing order for the given day.
// The bank mutex is held by the caller (the day loop).
func (b *Bank) runDuePassLocked(day Date) passStats {
	var stats passStats

	for _, o := range b.orders {
		if o.Type != OrderTransfer || !o.ShouldExecute(day) {
			continue
		}
		b.runIsolated(o, func() {
			b.executeTransferOrderLocked(o, day, &stats)
		})
	}

	for _, o := range b.orders {
		if o.Type != OrderBillPayment || !o.ShouldExecute(day) {
			continue
		}
		b.runIsolated(o, func() {
			b.executeBillPaymentOrderLocked(o, day, &stats)
		})
	}

	return stats
}

// runIsolated confines a panic in one order's execution to that order.
func (b *Bank) runIsolated(o *StandingOrder, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithFields(logrus.Fields{"order": o.ID, "panic": r}).
				Error("standing order execution failed")
		}
	}()
	fn()
}

// executeTransferOrderLocked runs one due transfer order. Insufficient
// funds skip the cycle without advancing the schedule.
func (b *Bank) executeTransferOrderLocked(o *StandingOrder, day Date, stats *passStats) {
	source := b.accounts[o.SourceIBAN]
	if source == nil || b.accounts[o.DestIBAN] == nil {
		b.log.WithField("order", o.ID).Warn("transfer order references unknown account")
		stats.skipped++
		return
	}
	if source.Balance.LessThan(o.Amount) {
		b.skipOrderLocked(o, fmt.Sprintf("insufficient funds: available %s, needed %s",
			source.Balance.StringFixed(2), o.Amount.StringFixed(2)))
		stats.skipped++
		return
	}

	if _, err := b.transferLocked(o.SourceIBAN, o.DestIBAN, o.Amount,
		fmt.Sprintf("Standing order: %s", o.Description)); err != nil {
		b.skipOrderLocked(o, err.Error())
		stats.skipped++
		return
	}
	o.RecordExecution()
	stats.executed++
	b.log.WithFields(logrus.Fields{
		"order": o.ID, "amount": o.Amount.StringFixed(2), "next": o.NextExecution.String(),
	}).Debug("transfer order executed")
}

// executeBillPaymentOrderLocked runs one due bill-payment order.
func (b *Bank) executeBillPaymentOrderLocked(o *StandingOrder, day Date, stats *passStats) {
	source := b.accounts[o.SourceIBAN]
	if source == nil {
		b.log.WithField("order", o.ID).Warn("bill-payment order references unknown account")
		stats.skipped++
		return
	}

	matching := b.unpaidBillsByRFLocked(o.RFCode)
	if len(matching) == 0 {
		matching = b.unpaidBillsByProviderLocked(o.ProviderName, o.OwnerID)
	}

	if len(matching) == 0 {
		if !o.HasFixedAmount() {
			// Nothing to pay yet; stay due so the next matching bill
			// is settled the day it appears.
			return
		}
		b.executeUnmatchedAutoPayLocked(o, source, stats)
		return
	}

	paidAny := false
	for _, bill := range matching {
		if source.Balance.LessThan(bill.Amount) {
			b.skipOrderLocked(o, fmt.Sprintf("insufficient funds for bill %s (%s)",
				bill.ID, bill.Amount.StringFixed(2)))
			continue
		}
		if err := source.Withdraw(bill.Amount); err != nil {
			b.skipOrderLocked(o, err.Error())
			continue
		}
		if err := bill.MarkPaid(day.Midnight()); err != nil {
			source.Balance = source.Balance.Add(bill.Amount)
			continue
		}
		b.creditIssuerLocked(bill)
		b.txlog.Record(Transaction{
			Timestamp:    day.Midnight(),
			Amount:       bill.Amount,
			Type:         TxBillPayment,
			Description:  fmt.Sprintf("Standing order bill payment: %s (RF: %s)", bill.ProviderName, bill.RFCode),
			BalanceAfter: source.Balance,
			SourceIBAN:   source.IBAN,
		})
		stats.billsPaid++
		paidAny = true
	}

	if paidAny {
		o.RecordExecution()
		stats.executed++
	} else {
		stats.skipped++
	}
}

// executeUnmatchedAutoPayLocked runs the fixed-amount fallback path.
func (b *Bank) executeUnmatchedAutoPayLocked(o *StandingOrder, source *Account, stats *passStats) {
	if source.Balance.LessThan(o.Amount) {
		b.skipOrderLocked(o, fmt.Sprintf("insufficient funds for auto-pay of %s", o.Amount.StringFixed(2)))
		stats.skipped++
		return
	}
	if err := source.Withdraw(o.Amount); err != nil {
		b.skipOrderLocked(o, err.Error())
		stats.skipped++
		return
	}
	b.txlog.Record(Transaction{
		Amount:       o.Amount,
		Type:         TxBillPayment,
		Description:  fmt.Sprintf("Standing order auto-pay (no matching bill): %s", o.ProviderName),
		BalanceAfter: source.Balance,
		SourceIBAN:   source.IBAN,
	})
	o.RecordExecution()
	stats.executed++
}

// skipOrderLocked logs a skipped cycle and notifies the order's owner.
func (b *Bank) skipOrderLocked(o *StandingOrder, reason string) {
	b.log.WithFields(logrus.Fields{"order": o.ID, "reason": reason}).
		Warn("standing order skipped this cycle")
	if b.notifier == nil {
		return
	}
	owner := b.customers[o.OwnerID]
	if owner == nil || owner.Email == "" {
		return
	}
	b.notifier.OrderSkipped(owner.Email, owner.LegalName, *o, reason)
}
