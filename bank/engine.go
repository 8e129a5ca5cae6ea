/*
engine.go - The day-stepping simulation driver

PURPOSE:
  Advances the simulated calendar from the current date to a target
  date, one day at a time, running every date-dependent effect for a
  day before moving on. This is the only place the four mutation
  sources (interest, fees, standing orders, bill aging) are sequenced.

FIXED PER-DAY ORDER:
  1. Daily interest accrual for every active account
  2. On month boundaries and on the final day: realize accrued
     interest, then charge business maintenance fees (transactions
     recorded only for non-zero amounts)
  3. Standing-order due pass (transfers, then bill payments)
  4. Bill aging check
  5. Advance to the next day

  The ordering is a hard guarantee: accrual for all accounts
  happens-before order execution for that day, which happens-before
  aging. The bank-wide lock held for the whole run is the barrier.

FAILURE MODEL:
  ErrBackwardsTime aborts before any mutation. Per-order failures
  inside a day are isolated (see scheduler.go). Completed days are not
  rolled back by a later day's failure; callers persist via
  Store.SaveAll once the run returns.
*/
package bank

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SimulationReport summarizes one Simulate run.
type SimulationReport struct {
	From            Date
	To              Date
	Days            int
	InterestApplied decimal.Decimal
	FeesCharged     decimal.Decimal
	OrdersExecuted  int
	OrdersSkipped   int
	BillsPaid       int
	BillsOverdue    int
}

// Simulate advances the bank from its current date to target,
// inclusive on both ends: Simulate(d, d) still performs one full day's
// accrual, order pass and aging for day d. On return the current date
// equals target.
//
// Each calendar day is processed exactly once across consecutive runs:
// simulating A to C in one call yields the same state as A to B then
// B to C, because a day already processed as the end of one run is not
// re-run at the start of the next.
func (b *Bank) Simulate(target Date) (*SimulationReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if target.Before(b.current) {
		return nil, &BackwardsTimeError{Current: b.current, Target: target}
	}

	report := &SimulationReport{
		From:            b.current,
		To:              target,
		InterestApplied: decimal.Zero,
		FeesCharged:     decimal.Zero,
	}
	b.log.WithFields(logrus.Fields{"from": b.current.String(), "to": target.String()}).
		Info("simulating time")

	start := b.current
	if b.dayProcessed {
		start = start.AddDays(1)
	}
	for day := start; day.BeforeOrEqual(target); day = day.AddDays(1) {
		b.stepDayLocked(day, target, report)
		report.Days++
	}

	b.current = target
	b.dayProcessed = true
	b.log.WithFields(logrus.Fields{
		"date":     b.current.String(),
		"days":     report.Days,
		"interest": report.InterestApplied.StringFixed(2),
		"fees":     report.FeesCharged.StringFixed(2),
	}).Info("simulation complete")
	return report, nil
}

// AdvanceDay advances the simulated date by exactly one day.
func (b *Bank) AdvanceDay() (*SimulationReport, error) {
	return b.Simulate(b.CurrentDate().AddDays(1))
}

// SimulateDays fast-forwards n days. n must be positive.
func (b *Bank) SimulateDays(n int) (*SimulationReport, error) {
	if n < 1 {
		return nil, ErrInvalidAmount
	}
	return b.Simulate(b.CurrentDate().AddDays(n))
}

// stepDayLocked runs the fixed phase sequence for one day.
func (b *Bank) stepDayLocked(day, target Date, report *SimulationReport) {
	// Phase 1: daily accrual, accumulator only.
	for _, a := range b.accounts {
		if a.IsActive() {
			a.AccrueInterest()
		}
	}

	// Phase 2: month-boundary (or final-day) realization.
	if day.EndsMonth() || day.Equal(target) {
		b.applyMonthlyChargesLocked(day, report)
	}

	// Phase 3: standing orders.
	stats := b.runDuePassLocked(day)
	report.OrdersExecuted += stats.executed
	report.OrdersSkipped += stats.skipped
	report.BillsPaid += stats.billsPaid

	// Phase 4: bill aging.
	for _, bill := range b.bills {
		if bill.CheckAndUpdateOverdue(day) {
			report.BillsOverdue++
			b.notifyOverdueLocked(bill, day)
		}
	}
}

// applyMonthlyChargesLocked realizes interest and charges maintenance
// fees for every active account, recording only non-zero amounts.
func (b *Bank) applyMonthlyChargesLocked(day Date, report *SimulationReport) {
	for _, a := range b.sortedAccountsLocked() {
		if !a.IsActive() {
			continue
		}
		if interest := a.ApplyMonthlyInterest(); interest.IsPositive() {
			b.txlog.Record(Transaction{
				Timestamp:    day.Midnight(),
				Amount:       interest,
				Type:         TxInterest,
				Description:  "Monthly interest",
				BalanceAfter: a.Balance,
				DestIBAN:     a.IBAN,
			})
			report.InterestApplied = report.InterestApplied.Add(interest)
		}
	}
	for _, a := range b.sortedAccountsLocked() {
		if a.Kind != KindBusiness || !a.IsActive() {
			continue
		}
		if fee := a.ApplyMaintenanceFee(); fee.IsPositive() {
			b.txlog.Record(Transaction{
				Timestamp:    day.Midnight(),
				Amount:       fee,
				Type:         TxMaintenanceFee,
				Description:  "Monthly maintenance fee",
				BalanceAfter: a.Balance,
				SourceIBAN:   a.IBAN,
			})
			report.FeesCharged = report.FeesCharged.Add(fee)
		}
	}
}

func (b *Bank) notifyOverdueLocked(bill *Bill, day Date) {
	if b.notifier == nil {
		return
	}
	owner := b.customers[bill.OwnerID]
	if owner == nil || owner.Email == "" {
		return
	}
	b.notifier.BillOverdue(owner.Email, owner.LegalName, *bill, day)
}
