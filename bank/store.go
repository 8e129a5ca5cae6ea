/*
store.go - Persistence collaborator interface

PURPOSE:
  The core does not prescribe an on-disk format. It exposes the full
  entity state as one State value; a Store persists and reloads it.
  SaveAll is called once after a Simulate run completes, and after any
  single ledger-mutating operation outside simulation.

IMPLEMENTATIONS:
  - bank/store (memory.go): in-memory, for tests and dev
  - store/sqlite:           production SQLite
*/
package bank

import "context"

// State is the complete persistable snapshot of a Bank.
type State struct {
	Customers    []Customer
	Accounts     []Account
	Bills        []Bill
	Orders       []StandingOrder
	Transactions []Transaction
	CurrentDate  Date

	// DayProcessed mirrors the engine's no-double-run marker so a
	// restored bank does not re-run the day it was saved on.
	DayProcessed bool
}

// Store persists the full bank state atomically.
type Store interface {
	// LoadAll returns the persisted state, or (nil, nil) when nothing
	// has been saved yet.
	LoadAll(ctx context.Context) (*State, error)

	// SaveAll persists the state. All-or-nothing: a partial save must
	// never become visible to LoadAll.
	SaveAll(ctx context.Context, state *State) error

	Close() error
}
