// Package store provides Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/aegean/bank-engine/bank"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	state *bank.State
}

func NewMemory() *Memory {
	return &Memory{}
}

// LoadAll returns a deep copy of the last saved state.
func (m *Memory) LoadAll(_ context.Context) (*bank.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state == nil {
		return nil, nil
	}
	return copyState(m.state), nil
}

// SaveAll replaces the stored state with a deep copy of the argument.
func (m *Memory) SaveAll(_ context.Context, state *bank.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = copyState(state)
	return nil
}

func (m *Memory) Close() error { return nil }

// copyState clones a State so caller and store never alias slices.
func copyState(s *bank.State) *bank.State {
	out := &bank.State{
		CurrentDate:  s.CurrentDate,
		DayProcessed: s.DayProcessed,
	}
	out.Customers = append([]bank.Customer(nil), s.Customers...)
	out.Accounts = append([]bank.Account(nil), s.Accounts...)
	for i := range out.Accounts {
		out.Accounts[i].CoOwners = append([]string(nil), out.Accounts[i].CoOwners...)
	}
	out.Bills = append([]bank.Bill(nil), s.Bills...)
	out.Orders = append([]bank.StandingOrder(nil), s.Orders...)
	out.Transactions = append([]bank.Transaction(nil), s.Transactions...)
	return out
}
