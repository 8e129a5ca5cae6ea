package bank_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegean/bank-engine/bank"
)

// =============================================================================
// REGISTRY
// =============================================================================

func TestBank_OpenAccountsMintSequentialIBANs(t *testing.T) {
	b := newBank(t, jan(1))

	a1, err := b.OpenPersonalAccount("cust-1", eur("100.00"))
	require.NoError(t, err)
	a2, err := b.OpenBusinessAccount("biz-1", eur("100.00"), decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, "GR70011000000000001", a1.IBAN)
	assert.Equal(t, "GR70011000000000002", a2.IBAN)
	assert.True(t, a2.MaintenanceFee.Equal(bank.DefaultMaintenanceFee), "zero fee falls back to default")
}

func TestBank_IssueBill_MintsIdentifiers(t *testing.T) {
	b := newBank(t, jan(1))

	bill, err := b.IssueBill("cust-1", "biz-1", "Athens Water Supply", eur("85.50"), jan(10), "")
	require.NoError(t, err)

	assert.Equal(t, "BILL000001", bill.ID)
	assert.Equal(t, "RF00001000", bill.RFCode)

	withCode, err := b.IssueBill("cust-1", "biz-1", "Athens Water Supply", eur("10.00"), jan(10), "RF99")
	require.NoError(t, err)
	assert.Equal(t, "RF99", withCode.RFCode, "caller-supplied codes survive")
}

func TestBank_CreateOrder_RequiresKnownAccounts(t *testing.T) {
	b := newBank(t, jan(1))
	a, err := b.OpenPersonalAccount("cust-1", eur("100.00"))
	require.NoError(t, err)

	_, err = b.CreateTransferOrder(a.IBAN, "GR-MISSING", eur("10.00"), 1, 5, "", "cust-1")
	assert.ErrorIs(t, err, bank.ErrAccountNotFound)

	_, err = b.CreateBillPaymentOrder("GR-MISSING", "", "p", decimal.Zero, 1, 5, "cust-1")
	assert.ErrorIs(t, err, bank.ErrAccountNotFound)
}

// =============================================================================
// LEDGER OPERATIONS
// =============================================================================

func TestBank_DepositWithdraw_RecordWithSnapshots(t *testing.T) {
	b := newBank(t, jan(1))
	a, err := b.OpenPersonalAccount("cust-1", eur("100.00"))
	require.NoError(t, err)

	dep, err := b.Deposit(a.IBAN, eur("50.00"), "")
	require.NoError(t, err)
	assert.Equal(t, bank.TxDeposit, dep.Type)
	assert.True(t, dep.BalanceAfter.Equal(eur("150.00")))
	assert.Equal(t, "Cash deposit", dep.Description)

	wd, err := b.Withdraw(a.IBAN, eur("30.00"), "ATM")
	require.NoError(t, err)
	assert.True(t, wd.BalanceAfter.Equal(eur("120.00")))
	assert.Equal(t, "ATM", wd.Description)

	assert.Len(t, b.TransactionsForAccount(a.IBAN), 2)
}

func TestBank_FailedOperationRecordsNothing(t *testing.T) {
	b := newBank(t, jan(1))
	a, err := b.OpenPersonalAccount("cust-1", eur("10.00"))
	require.NoError(t, err)

	_, err = b.Withdraw(a.IBAN, eur("99.00"), "")
	assert.ErrorIs(t, err, bank.ErrInsufficientFunds)

	_, err = b.Deposit("GR-MISSING", eur("1.00"), "")
	assert.ErrorIs(t, err, bank.ErrAccountNotFound)

	assert.Empty(t, b.Transactions())
}

func TestBank_Transfer_TwoLinkedRecords(t *testing.T) {
	// GIVEN: two accounts
	// WHEN: transferring 75.00
	// THEN: an outgoing and an incoming record post, each snapshotting
	//       its own side, and total funds are conserved

	b := newBank(t, jan(1))
	src, err := b.OpenPersonalAccount("cust-1", eur("200.00"))
	require.NoError(t, err)
	dst, err := b.OpenPersonalAccount("cust-1", eur("50.00"))
	require.NoError(t, err)

	out, err := b.Transfer(src.IBAN, dst.IBAN, eur("75.00"), "")
	require.NoError(t, err)

	assert.Equal(t, bank.TxTransferOut, out.Type)
	assert.True(t, out.BalanceAfter.Equal(eur("125.00")))

	txs := b.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, bank.TxTransferIn, txs[1].Type)
	assert.True(t, txs[1].BalanceAfter.Equal(eur("125.00")))
	assert.Equal(t, src.IBAN, txs[1].SourceIBAN)
	assert.Equal(t, dst.IBAN, txs[1].DestIBAN)

	total := b.Account(src.IBAN).Balance.Add(b.Account(dst.IBAN).Balance)
	assert.True(t, total.Equal(eur("250.00")), "internal transfers conserve funds")
}

func TestBank_Transfer_RollsBackOnDepositFailure(t *testing.T) {
	b := newBank(t, jan(1))
	src, err := b.OpenPersonalAccount("cust-1", eur("200.00"))
	require.NoError(t, err)
	dst, err := b.OpenPersonalAccount("cust-1", decimal.Zero)
	require.NoError(t, err)
	b.Account(dst.IBAN).Freeze()

	_, err = b.Transfer(src.IBAN, dst.IBAN, eur("75.00"), "")

	assert.ErrorIs(t, err, bank.ErrInactiveAccount)
	assert.True(t, b.Account(src.IBAN).Balance.Equal(eur("200.00")), "no partial writes")
	assert.Empty(t, b.Transactions())
}

// =============================================================================
// MANUAL BILL PAYMENT
// =============================================================================

func TestBank_PayBill_ChargesAmountPlusFee(t *testing.T) {
	b := newBank(t, jan(1))
	src, err := b.OpenPersonalAccount("cust-1", eur("200.00"))
	require.NoError(t, err)
	issuerAcct, err := b.OpenBusinessAccount("biz-1", decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	bill, err := b.IssueBill("cust-1", "biz-1", "Athens Water Supply", eur("85.50"), jan(10), "")
	require.NoError(t, err)

	tx, err := b.PayBill(bill.ID, src.IBAN)
	require.NoError(t, err)

	// 85.50 bill + 0.50 processing fee.
	assert.True(t, b.Account(src.IBAN).Balance.Equal(eur("114.00")))
	assert.True(t, tx.Amount.Equal(eur("85.50")))
	assert.Equal(t, bank.BillPaid, b.Bill(bill.ID).Status)
	assert.True(t, b.Account(issuerAcct.IBAN).Balance.Equal(eur("85.50")))

	// Two records: the payment and the issuer settlement credit.
	assert.Len(t, b.Transactions(), 2)
}

func TestBank_PayBill_Errors(t *testing.T) {
	b := newBank(t, jan(1))
	src, err := b.OpenPersonalAccount("cust-1", eur("10.00"))
	require.NoError(t, err)
	bill, err := b.IssueBill("cust-1", "biz-1", "Athens Water Supply", eur("85.50"), jan(10), "")
	require.NoError(t, err)

	_, err = b.PayBill("BILL999999", src.IBAN)
	assert.ErrorIs(t, err, bank.ErrBillNotFound)

	_, err = b.PayBill(bill.ID, "GR-MISSING")
	assert.ErrorIs(t, err, bank.ErrAccountNotFound)

	_, err = b.PayBill(bill.ID, src.IBAN)
	assert.ErrorIs(t, err, bank.ErrInsufficientFunds)
	assert.Equal(t, bank.BillUnpaid, b.Bill(bill.ID).Status, "failed payment leaves the bill untouched")

	require.NoError(t, b.Bill(bill.ID).Cancel())
	_, err = b.PayBill(bill.ID, src.IBAN)
	assert.ErrorIs(t, err, bank.ErrBillNotPayable)
}

// =============================================================================
// SNAPSHOT / RESTORE
// =============================================================================

func TestBank_SnapshotRestore_RoundTrip(t *testing.T) {
	b := newBank(t, jan(15))
	src, err := b.OpenPersonalAccount("cust-1", eur("1000.00"))
	require.NoError(t, err)
	_, err = b.IssueBill("cust-1", "biz-1", "Athens Water Supply", eur("85.50"), jan(25), "")
	require.NoError(t, err)
	_, err = b.CreateBillPaymentOrder(src.IBAN, "", "Athens Water Supply", decimal.Zero, 1, 20, "cust-1")
	require.NoError(t, err)
	_, err = b.Simulate(jan(16))
	require.NoError(t, err)

	restored := bank.Restore(b.Snapshot(), quietLogger())

	assert.True(t, restored.CurrentDate().Equal(jan(16)))
	assert.True(t, restored.Account(src.IBAN).Balance.Equal(b.Account(src.IBAN).Balance))
	assert.Len(t, restored.Bills(), 1)
	assert.Len(t, restored.Orders(), 1)
	assert.Equal(t, len(b.Transactions()), len(restored.Transactions()))

	// A processed boundary day stays processed across restore.
	report, err := restored.Simulate(jan(16))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Days)

	// New entities continue the identifier sequences.
	bill2, err := restored.IssueBill("cust-1", "biz-1", "Hellenic Power", eur("10.00"), jan(30), "")
	require.NoError(t, err)
	assert.Equal(t, "BILL000002", bill2.ID)
}
