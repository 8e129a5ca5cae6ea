package bank_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegean/bank-engine/bank"
)

func TestTransactionLog_MonotonicIDs(t *testing.T) {
	log := bank.NewTransactionLog()

	a := log.Record(bank.Transaction{Amount: eur("10.00"), Type: bank.TxDeposit, DestIBAN: "GR-1"})
	b := log.Record(bank.Transaction{Amount: eur("20.00"), Type: bank.TxWithdrawal, SourceIBAN: "GR-1"})

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
	assert.Equal(t, 2, log.Len())
}

func TestTransactionLog_DefaultsTimestampAndStatus(t *testing.T) {
	log := bank.NewTransactionLog()

	tx := log.Record(bank.Transaction{Amount: eur("5.00"), Type: bank.TxDeposit})

	assert.False(t, tx.Timestamp.IsZero())
	assert.Equal(t, bank.TxCompleted, tx.Status)

	at := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	tx2 := log.Record(bank.Transaction{Amount: eur("5.00"), Type: bank.TxDeposit, Timestamp: at})
	assert.Equal(t, at, tx2.Timestamp, "explicit timestamps survive")
}

func TestTransactionLog_ForAccount(t *testing.T) {
	log := bank.NewTransactionLog()
	log.Record(bank.Transaction{Type: bank.TxDeposit, DestIBAN: "GR-1"})
	log.Record(bank.Transaction{Type: bank.TxTransferOut, SourceIBAN: "GR-1", DestIBAN: "GR-2"})
	log.Record(bank.Transaction{Type: bank.TxDeposit, DestIBAN: "GR-3"})

	got := log.ForAccount("GR-1")

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
}

func TestTransactionLog_ListReturnsCopy(t *testing.T) {
	log := bank.NewTransactionLog()
	log.Record(bank.Transaction{Type: bank.TxDeposit, Amount: eur("1.00")})

	out := log.List()
	out[0].Description = "tampered"

	assert.Empty(t, log.List()[0].Description, "callers must not reach the backing store")
}

func TestTransactionLog_MarkReversed(t *testing.T) {
	log := bank.NewTransactionLog()
	tx := log.Record(bank.Transaction{Type: bank.TxDeposit, Amount: eur("9.99")})

	require.True(t, log.MarkReversed(tx.ID))
	got := log.List()[0]
	assert.Equal(t, bank.TxReversed, got.Status)
	assert.True(t, got.Amount.Equal(eur("9.99")), "reversal never rewrites the amount")

	assert.False(t, log.MarkReversed(999))
}

func TestRestoreTransactionLog_ContinuesIDs(t *testing.T) {
	log := bank.NewTransactionLog()
	log.Record(bank.Transaction{Type: bank.TxDeposit})
	log.Record(bank.Transaction{Type: bank.TxDeposit})
	persisted := log.List()

	restored := bank.RestoreTransactionLog(persisted)
	tx := restored.Record(bank.Transaction{Type: bank.TxWithdrawal})

	assert.Equal(t, int64(3), tx.ID)
	assert.Equal(t, 3, restored.Len())
}
