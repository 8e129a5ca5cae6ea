package bank_test

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegean/bank-engine/bank"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newBank(t *testing.T, at bank.Date) *bank.Bank {
	t.Helper()
	b := bank.New(at, quietLogger())
	b.AddCustomer(bank.NewIndividual("cust-1", "maria", "x", "Maria Papadopoulou", "maria@example.com", "", "123456789"))
	b.AddCustomer(bank.NewBusiness("biz-1", "watercorp", "x", "Athens Water Supply", "billing@water.example", "", "EL999999999"))
	return b
}

func txOfType(txs []bank.Transaction, typ bank.TransactionType) []bank.Transaction {
	var out []bank.Transaction
	for _, tx := range txs {
		if tx.Type == typ {
			out = append(out, tx)
		}
	}
	return out
}

// =============================================================================
// SIMULATION BASICS
// =============================================================================

func TestSimulate_BackwardsTimeRejected(t *testing.T) {
	b := newBank(t, jan(15))

	_, err := b.Simulate(jan(10))

	require.ErrorIs(t, err, bank.ErrBackwardsTime)
	var bte *bank.BackwardsTimeError
	require.ErrorAs(t, err, &bte)
	assert.True(t, bte.Current.Equal(jan(15)))
	assert.True(t, bte.Target.Equal(jan(10)))
	assert.True(t, b.CurrentDate().Equal(jan(15)), "failed simulation mutates nothing")
}

func TestSimulate_SameDayRunsOneFullDay(t *testing.T) {
	// Simulate(d, d) is inclusive on both ends: one accrual, one order
	// pass, one aging check.

	b := newBank(t, jan(15))
	a, err := b.OpenPersonalAccount("cust-1", eur("1000.00"))
	require.NoError(t, err)

	report, err := b.Simulate(jan(15))

	require.NoError(t, err)
	assert.Equal(t, 1, report.Days)
	assert.True(t, b.Account(a.IBAN).Balance.IsPositive())
	assert.True(t, b.CurrentDate().Equal(jan(15)))
}

func TestSimulate_ConsecutiveRunsNeverRepeatADay(t *testing.T) {
	b := newBank(t, jan(15))
	a, err := b.OpenPersonalAccount("cust-1", eur("1000.00"))
	require.NoError(t, err)

	_, err = b.Simulate(jan(15))
	require.NoError(t, err)
	report, err := b.Simulate(jan(15))
	require.NoError(t, err)

	assert.Equal(t, 0, report.Days, "the boundary day is processed once")
	_ = a
}

// =============================================================================
// INTEREST OVER TIME
// =============================================================================

func TestSimulate_ThirtyDaysInterest(t *testing.T) {
	// GIVEN: 1000.00 at 1%/yr from Jan 1
	// WHEN: simulating through Jan 30
	// THEN: ~0.82 of interest is realized on the final day with one
	//       ledger record

	b := newBank(t, jan(1))
	a, err := b.OpenPersonalAccount("cust-1", eur("1000.00"))
	require.NoError(t, err)

	report, err := b.Simulate(jan(30))

	require.NoError(t, err)
	assert.Equal(t, 30, report.Days)
	assert.True(t, b.Account(a.IBAN).Balance.Round(2).Equal(eur("1000.82")),
		"balance was %s", b.Account(a.IBAN).Balance)

	interest := txOfType(b.Transactions(), bank.TxInterest)
	require.Len(t, interest, 1)
	assert.True(t, interest[0].Amount.Equal(report.InterestApplied))
	assert.Equal(t, jan(30).Midnight(), interest[0].Timestamp)
}

func TestSimulate_ComposableAcrossMonthBoundary(t *testing.T) {
	// Simulating Jan 1 -> Feb 28 in one run must equal Jan 1 -> Jan 31
	// then Jan 31 -> Feb 28.

	oneRun := newBank(t, jan(1))
	a1, err := oneRun.OpenPersonalAccount("cust-1", eur("1000.00"))
	require.NoError(t, err)
	_, err = oneRun.Simulate(bank.NewDate(2025, time.February, 28))
	require.NoError(t, err)

	twoRuns := newBank(t, jan(1))
	a2, err := twoRuns.OpenPersonalAccount("cust-1", eur("1000.00"))
	require.NoError(t, err)
	_, err = twoRuns.Simulate(jan(31))
	require.NoError(t, err)
	_, err = twoRuns.Simulate(bank.NewDate(2025, time.February, 28))
	require.NoError(t, err)

	assert.True(t, oneRun.Account(a1.IBAN).Balance.Equal(twoRuns.Account(a2.IBAN).Balance),
		"one run: %s, two runs: %s", oneRun.Account(a1.IBAN).Balance, twoRuns.Account(a2.IBAN).Balance)
	assert.Equal(t, len(oneRun.Transactions()), len(twoRuns.Transactions()))
}

// =============================================================================
// MAINTENANCE FEES
// =============================================================================

func TestSimulate_MonthEndChargesBusinessFee(t *testing.T) {
	b := newBank(t, jan(1))
	a, err := b.OpenBusinessAccount("biz-1", eur("500.00"), eur("25.00"))
	require.NoError(t, err)

	report, err := b.Simulate(jan(31))

	require.NoError(t, err)
	assert.True(t, report.FeesCharged.Equal(eur("25.00")))
	fees := txOfType(b.Transactions(), bank.TxMaintenanceFee)
	require.Len(t, fees, 1)
	assert.Equal(t, a.IBAN, fees[0].SourceIBAN)
}

func TestSimulate_FeeClampsPoorAccountToZero(t *testing.T) {
	// A business account that cannot cover the fee is drained to exactly
	// zero, never negative.

	b := newBank(t, jan(1))
	a, err := b.OpenBusinessAccount("biz-1", eur("10.00"), eur("25.00"))
	require.NoError(t, err)

	report, err := b.Simulate(jan(31))

	require.NoError(t, err)
	got := b.Account(a.IBAN).Balance
	assert.True(t, got.IsZero(), "balance was %s", got)
	assert.True(t, report.FeesCharged.LessThan(eur("25.00")))
	assert.False(t, got.IsNegative())
}

// =============================================================================
// BILL AGING
// =============================================================================

func TestSimulate_BillAgesToOverdueAndStaysThere(t *testing.T) {
	// GIVEN: an 85.50 bill due Jan 10
	// WHEN: simulating 11 days past issuance
	// THEN: the bill is overdue and remains so on later days

	b := newBank(t, jan(1))
	bill, err := b.IssueBill("cust-1", "biz-1", "Athens Water Supply", eur("85.50"), jan(10), "")
	require.NoError(t, err)

	report, err := b.Simulate(jan(12))
	require.NoError(t, err)
	assert.Equal(t, 1, report.BillsOverdue)
	assert.Equal(t, bank.BillOverdue, b.Bill(bill.ID).Status)

	report, err = b.Simulate(jan(20))
	require.NoError(t, err)
	assert.Equal(t, 0, report.BillsOverdue, "aging fires once")
	assert.Equal(t, bank.BillOverdue, b.Bill(bill.ID).Status)
}

func TestSimulate_DueDateItselfIsNotOverdue(t *testing.T) {
	b := newBank(t, jan(1))
	bill, err := b.IssueBill("cust-1", "biz-1", "Athens Water Supply", eur("85.50"), jan(10), "")
	require.NoError(t, err)

	_, err = b.Simulate(jan(10))

	require.NoError(t, err)
	assert.Equal(t, bank.BillUnpaid, b.Bill(bill.ID).Status)
}

// =============================================================================
// ADVANCE HELPERS
// =============================================================================

func TestAdvanceDay(t *testing.T) {
	b := newBank(t, jan(1))

	report, err := b.AdvanceDay()

	require.NoError(t, err)
	assert.True(t, b.CurrentDate().Equal(jan(2)))
	assert.Equal(t, 2, report.Days, "first advance also processes the opening day")

	report, err = b.AdvanceDay()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Days)
	assert.True(t, b.CurrentDate().Equal(jan(3)))
}

func TestSimulateDays_RejectsNonPositive(t *testing.T) {
	b := newBank(t, jan(1))

	_, err := b.SimulateDays(0)

	assert.ErrorIs(t, err, bank.ErrInvalidAmount)
}
