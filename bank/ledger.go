/*
ledger.go - Append-only transaction log

PURPOSE:
  The TransactionLog is the audit trail for every balance-affecting
  event. Every mutation of an account balance produces exactly one
  record (two for internal transfers: outgoing and incoming), each
  carrying a snapshot of the primarily affected account's balance taken
  AFTER the mutation.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: no update, no delete. Status correction is the only
     legal touch on an existing record, and it never rewrites amounts.
  2. MONOTONIC IDS: identifiers strictly increase; ordering by ID is the
     canonical history order.
  3. The only balance mutations without a record are daily interest
     accrual (accumulator-only, not yet realized) and zero-amount
     interest/fee applications.
*/
package bank

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one immutable ledger entry.
type Transaction struct {
	ID           int64
	Timestamp    time.Time
	Amount       decimal.Decimal
	Type         TransactionType
	Description  string
	BalanceAfter decimal.Decimal // post-event snapshot of the primary account
	SourceIBAN   string          // empty when not applicable
	DestIBAN     string          // empty when not applicable
	Status       TransactionStatus
}

// TransactionLog is the append-only in-process log. The durable copy is
// written through the Store; this log remains the source of ordering.
type TransactionLog struct {
	mu      sync.Mutex
	entries []Transaction
	nextID  int64
}

func NewTransactionLog() *TransactionLog {
	return &TransactionLog{nextID: 1}
}

// RestoreTransactionLog rebuilds a log from persisted entries. The next
// identifier continues strictly after the highest restored one.
func RestoreTransactionLog(entries []Transaction) *TransactionLog {
	l := &TransactionLog{
		entries: append([]Transaction(nil), entries...),
		nextID:  1,
	}
	for _, tx := range l.entries {
		if tx.ID >= l.nextID {
			l.nextID = tx.ID + 1
		}
	}
	return l
}

// Record appends a transaction, assigning its identifier and, if unset,
// its timestamp. Returns the completed record.
func (l *TransactionLog) Record(tx Transaction) Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx.ID = l.nextID
	l.nextID++
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now()
	}
	if tx.Status == "" {
		tx.Status = TxCompleted
	}
	l.entries = append(l.entries, tx)
	return tx
}

// List returns a copy of all transactions in canonical (ID) order.
func (l *TransactionLog) List() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Transaction, len(l.entries))
	copy(out, l.entries)
	return out
}

// ForAccount returns all transactions touching the given IBAN as source
// or destination, in canonical order.
func (l *TransactionLog) ForAccount(iban string) []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Transaction
	for _, tx := range l.entries {
		if tx.SourceIBAN == iban || tx.DestIBAN == iban {
			out = append(out, tx)
		}
	}
	return out
}

// Len returns the number of recorded transactions.
func (l *TransactionLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// MarkReversed performs the one legal status correction on an existing
// record. The amount and snapshot are never touched; the compensating
// movement gets its own record.
func (l *TransactionLog) MarkReversed(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries[i].Status = TxReversed
			return true
		}
	}
	return false
}
