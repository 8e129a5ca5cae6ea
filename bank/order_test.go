package bank_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegean/bank-engine/bank"
)

func transferOrder(t *testing.T, day, freq int, ref bank.Date) *bank.StandingOrder {
	t.Helper()
	o, err := bank.NewTransferOrder("SO000001", "GR-SRC", "GR-DST", eur("100.00"), freq, day, "rent", "cust-1", ref)
	require.NoError(t, err)
	return o
}

// =============================================================================
// SCHEDULING
// =============================================================================

func TestOrder_FirstExecution_LaterThisMonth(t *testing.T) {
	// GIVEN: today is Jan 15, execution day 20
	// THEN: first execution is Jan 20

	o := transferOrder(t, 20, 1, jan(15))
	assert.True(t, o.NextExecution.Equal(jan(20)), "got %s", o.NextExecution)
}

func TestOrder_FirstExecution_DayAlreadyPassed(t *testing.T) {
	// GIVEN: today is Jan 15, execution day 10
	// THEN: first execution rolls to Feb 10

	o := transferOrder(t, 10, 1, jan(15))
	assert.True(t, o.NextExecution.Equal(bank.NewDate(2025, time.February, 10)), "got %s", o.NextExecution)
}

func TestOrder_FirstExecution_TodayRollsForward(t *testing.T) {
	// The first execution is always strictly in the future: created on the
	// execution day itself, the order waits a full cycle.

	o := transferOrder(t, 15, 1, jan(15))
	assert.True(t, o.NextExecution.Equal(bank.NewDate(2025, time.February, 15)), "got %s", o.NextExecution)
}

func TestOrder_MonthLengthClamp(t *testing.T) {
	// Day 28 created Jan 29: Jan 28 has passed, so Feb 28 is next, and
	// advancing lands on Mar 28. The clamp keeps day-of-month stable.

	o := transferOrder(t, 28, 1, jan(29))
	require.True(t, o.NextExecution.Equal(bank.NewDate(2025, time.February, 28)), "got %s", o.NextExecution)

	o.RecordExecution()
	assert.True(t, o.NextExecution.Equal(bank.NewDate(2025, time.March, 28)), "got %s", o.NextExecution)
}

func TestOrder_RecordExecution_Monotonic(t *testing.T) {
	// GIVEN: a quarterly order
	// WHEN: recording executions repeatedly
	// THEN: each NextExecution is strictly after the previous one

	o := transferOrder(t, 5, 3, jan(1))
	prev := o.NextExecution
	for i := 0; i < 8; i++ {
		o.RecordExecution()
		assert.True(t, o.NextExecution.After(prev), "cycle %d: %s not after %s", i, o.NextExecution, prev)
		prev = o.NextExecution
	}
}

func TestOrder_ShouldExecute(t *testing.T) {
	o := transferOrder(t, 20, 1, jan(15))

	assert.False(t, o.ShouldExecute(jan(19)))
	assert.True(t, o.ShouldExecute(jan(20)))
	assert.True(t, o.ShouldExecute(jan(25)), "past-due orders remain due")

	require.NoError(t, o.Pause())
	assert.False(t, o.ShouldExecute(jan(25)), "paused orders never fire")
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestOrder_RejectsExecutionDayOutOfRange(t *testing.T) {
	for _, day := range []int{0, 29, 30, 31} {
		_, err := bank.NewTransferOrder("SO000002", "GR-SRC", "GR-DST", eur("10.00"), 1, day, "", "cust-1", jan(1))
		assert.ErrorIs(t, err, bank.ErrInvalidExecutionDay, "day %d", day)
	}
}

func TestOrder_RejectsBadFrequencyAndAmount(t *testing.T) {
	_, err := bank.NewTransferOrder("SO000003", "GR-SRC", "GR-DST", eur("10.00"), 0, 5, "", "cust-1", jan(1))
	assert.ErrorIs(t, err, bank.ErrInvalidFrequency)

	_, err = bank.NewTransferOrder("SO000004", "GR-SRC", "GR-DST", decimal.Zero, 1, 5, "", "cust-1", jan(1))
	assert.ErrorIs(t, err, bank.ErrInvalidAmount)
}

func TestOrder_BillPayment_ZeroAmountAllowed(t *testing.T) {
	// Bill-payment orders without a fixed amount pay matched bills only.

	o, err := bank.NewBillPaymentOrder("SO000005", "GR-SRC", "RF00001001", "Athens Water Supply",
		decimal.Zero, 1, 10, "cust-1", jan(1))
	require.NoError(t, err)
	assert.False(t, o.HasFixedAmount())

	_, err = bank.NewBillPaymentOrder("SO000006", "GR-SRC", "", "Athens Water Supply",
		eur("-1.00"), 1, 10, "cust-1", jan(1))
	assert.ErrorIs(t, err, bank.ErrInvalidAmount)
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestOrder_PauseResumeCancel(t *testing.T) {
	o := transferOrder(t, 20, 1, jan(15))

	require.NoError(t, o.Pause())
	assert.ErrorIs(t, o.Pause(), bank.ErrOrderNotActive)

	require.NoError(t, o.Resume())
	assert.Equal(t, bank.OrderActive, o.Status)

	require.NoError(t, o.Cancel())
	assert.ErrorIs(t, o.Resume(), bank.ErrOrderNotActive)
	assert.ErrorIs(t, o.Cancel(), bank.ErrOrderNotActive, "cancelled is terminal")
}
