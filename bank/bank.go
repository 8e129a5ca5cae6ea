/*
bank.go - The explicit simulation context

PURPOSE:
  Bank owns the canonical entity sets (customers, accounts, bills,
  standing orders), the transaction log, and the simulated calendar
  date. It replaces the original system's global singleton: construct
  one Bank at process start and pass it to every operation.

OWNERSHIP:
  Bank owns the canonical lists. Accessors hand out copies or
  read-only views; subsystems never share mutable list references.
  Accounts own their own balance exclusively; bills and orders hold
  non-owning references (IBANs, customer IDs) only.

CONCURRENCY:
  A single bank-wide mutex guards all mutations. The simulation loop
  holds it for the entire run, which also preserves the mandatory
  per-day phase ordering (accrual -> orders -> aging). Contention is
  low enough here that per-account locks would buy nothing.
*/
package bank

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Notifier receives customer-facing events raised during simulation.
// Implementations must not block or propagate failures into the day
// loop. A nil notifier disables notifications.
type Notifier interface {
	BillOverdue(toEmail, name string, bill Bill, current Date)
	OrderSkipped(toEmail, name string, order StandingOrder, reason string)
}

// Bank is the top-level simulation context.
type Bank struct {
	mu sync.Mutex

	customers map[string]*Customer
	accounts  map[string]*Account
	bills     []*Bill
	orders    []*StandingOrder
	txlog     *TransactionLog
	current   Date

	// dayProcessed records whether the pass for `current` has already
	// run, so consecutive Simulate calls never double-run a boundary
	// day (see engine.go).
	dayProcessed bool

	nextAccountSeq int
	nextBillSeq    int
	nextOrderSeq   int
	nextRFSeq      int

	gateway  PaymentGateway
	notifier Notifier
	log      *logrus.Logger
}

// New creates an empty bank positioned at the given calendar date.
func New(current Date, logger *logrus.Logger) *Bank {
	if logger == nil {
		logger = logrus.New()
	}
	return &Bank{
		customers:      make(map[string]*Customer),
		accounts:       make(map[string]*Account),
		txlog:          NewTransactionLog(),
		current:        current,
		nextAccountSeq: 1,
		nextBillSeq:    1,
		nextOrderSeq:   1,
		nextRFSeq:      1000,
		log:            logger,
	}
}

// Restore rebuilds a bank from persisted state.
func Restore(state *State, logger *logrus.Logger) *Bank {
	b := New(state.CurrentDate, logger)
	b.dayProcessed = state.DayProcessed
	for i := range state.Customers {
		c := state.Customers[i]
		b.customers[c.ID] = &c
	}
	for i := range state.Accounts {
		a := state.Accounts[i]
		b.accounts[a.IBAN] = &a
		b.nextAccountSeq++
	}
	for i := range state.Bills {
		bill := state.Bills[i]
		b.bills = append(b.bills, &bill)
	}
	for i := range state.Orders {
		o := state.Orders[i]
		b.orders = append(b.orders, &o)
	}
	b.txlog = RestoreTransactionLog(state.Transactions)
	b.nextBillSeq = len(b.bills) + 1
	b.nextOrderSeq = len(b.orders) + 1
	b.nextRFSeq = 1000 + len(b.bills)
	return b
}

// SetGateway wires the external payment gateway collaborator.
func (b *Bank) SetGateway(g PaymentGateway) { b.gateway = g }

// SetNotifier wires the optional notification sink.
func (b *Bank) SetNotifier(n Notifier) { b.notifier = n }

// =============================================================================
// SNAPSHOT - For the persistence collaborator
// =============================================================================

// Snapshot captures the full state for Store.SaveAll. Entities are
// copied; the caller may persist without holding the bank lock.
func (b *Bank) Snapshot() *State {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &State{
		CurrentDate:  b.current,
		DayProcessed: b.dayProcessed,
		Transactions: b.txlog.List(),
	}
	for _, c := range b.customers {
		s.Customers = append(s.Customers, *c)
	}
	sort.Slice(s.Customers, func(i, j int) bool { return s.Customers[i].ID < s.Customers[j].ID })
	for _, a := range b.accounts {
		s.Accounts = append(s.Accounts, *a)
	}
	sort.Slice(s.Accounts, func(i, j int) bool { return s.Accounts[i].IBAN < s.Accounts[j].IBAN })
	for _, bill := range b.bills {
		s.Bills = append(s.Bills, *bill)
	}
	for _, o := range b.orders {
		s.Orders = append(s.Orders, *o)
	}
	return s
}

// =============================================================================
// REGISTRY - Entity creation and lookup
// =============================================================================

// AddCustomer registers a customer.
func (b *Bank) AddCustomer(c *Customer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.customers[c.ID] = c
}

// Customer returns the customer with the given ID, or nil.
func (b *Bank) Customer(id string) *Customer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.customers[id]
}

// CustomerByUsername returns the customer with the given username, or nil.
func (b *Bank) CustomerByUsername(username string) *Customer {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.customers {
		if c.Username == username {
			return c
		}
	}
	return nil
}

// nextIBAN mints an IBAN-like identifier. GR70011 is the simulated
// bank's fixed country/bank prefix.
func (b *Bank) nextIBAN() string {
	iban := fmt.Sprintf("GR70011%012d", b.nextAccountSeq)
	b.nextAccountSeq++
	return iban
}

// OpenPersonalAccount opens a personal account for a customer.
func (b *Bank) OpenPersonalAccount(ownerID string, opening decimal.Decimal) (*Account, error) {
	if opening.IsNegative() {
		return nil, ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	a := NewPersonalAccount(b.nextIBAN(), ownerID, opening, b.current)
	b.accounts[a.IBAN] = a
	return a, nil
}

// OpenBusinessAccount opens a business account carrying a monthly fee.
func (b *Bank) OpenBusinessAccount(ownerID string, opening, monthlyFee decimal.Decimal) (*Account, error) {
	if opening.IsNegative() || monthlyFee.IsNegative() {
		return nil, ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	a := NewBusinessAccount(b.nextIBAN(), ownerID, opening, monthlyFee, b.current)
	b.accounts[a.IBAN] = a
	return a, nil
}

// Account returns the account with the given IBAN, or nil.
func (b *Bank) Account(iban string) *Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accounts[iban]
}

// Accounts returns all accounts ordered by IBAN.
func (b *Bank) Accounts() []*Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sortedAccountsLocked()
}

func (b *Bank) sortedAccountsLocked() []*Account {
	out := make([]*Account, 0, len(b.accounts))
	for _, a := range b.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IBAN < out[j].IBAN })
	return out
}

// AccountsForCustomer returns the accounts a customer owns or co-owns.
func (b *Bank) AccountsForCustomer(customerID string) []*Account {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []*Account
	for _, a := range b.sortedAccountsLocked() {
		if a.OwnedBy(customerID) {
			out = append(out, a)
		}
	}
	return out
}

// IssueBill creates a bill from a business to an individual customer.
// An empty rfCode mints one.
func (b *Bank) IssueBill(ownerID, issuerID, providerName string, amount decimal.Decimal, dueDate Date, rfCode string) (*Bill, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if rfCode == "" {
		rfCode = fmt.Sprintf("RF%08d", b.nextRFSeq)
		b.nextRFSeq++
	}
	id := fmt.Sprintf("BILL%06d", b.nextBillSeq)
	b.nextBillSeq++

	bill := NewBill(id, providerName, amount, dueDate, rfCode, ownerID, issuerID)
	b.bills = append(b.bills, bill)
	return bill, nil
}

// Bill returns the bill with the given ID, or nil.
func (b *Bank) Bill(id string) *Bill {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bill := range b.bills {
		if bill.ID == id {
			return bill
		}
	}
	return nil
}

// Bills returns all bills in issuance order.
func (b *Bank) Bills() []*Bill {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Bill(nil), b.bills...)
}

// BillsForCustomer returns the bills owed by a customer.
func (b *Bank) BillsForCustomer(customerID string) []*Bill {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []*Bill
	for _, bill := range b.bills {
		if bill.OwnerID == customerID {
			out = append(out, bill)
		}
	}
	return out
}

// unpaidBillsByRFLocked returns payable bills matching the RF code.
func (b *Bank) unpaidBillsByRFLocked(rfCode string) []*Bill {
	var out []*Bill
	for _, bill := range b.bills {
		if bill.RFCode == rfCode && bill.Payable() {
			out = append(out, bill)
		}
	}
	return out
}

// unpaidBillsByProviderLocked returns payable bills from a provider,
// restricted to one owning customer.
func (b *Bank) unpaidBillsByProviderLocked(providerName, ownerID string) []*Bill {
	var out []*Bill
	for _, bill := range b.bills {
		if strings.EqualFold(bill.ProviderName, providerName) && bill.OwnerID == ownerID && bill.Payable() {
			out = append(out, bill)
		}
	}
	return out
}

// CreateTransferOrder registers a transfer standing order scheduled
// relative to the current simulated date.
func (b *Bank) CreateTransferOrder(sourceIBAN, destIBAN string, amount decimal.Decimal,
	frequencyMonths, executionDay int, description, ownerID string) (*StandingOrder, error) {

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.accounts[sourceIBAN] == nil || b.accounts[destIBAN] == nil {
		return nil, ErrAccountNotFound
	}
	id := fmt.Sprintf("SO%06d", b.nextOrderSeq)
	o, err := NewTransferOrder(id, sourceIBAN, destIBAN, amount, frequencyMonths, executionDay, description, ownerID, b.current)
	if err != nil {
		return nil, err
	}
	b.nextOrderSeq++
	b.orders = append(b.orders, o)
	return o, nil
}

// CreateBillPaymentOrder registers a bill auto-payment standing order.
func (b *Bank) CreateBillPaymentOrder(sourceIBAN, rfCode, providerName string, fixedAmount decimal.Decimal,
	frequencyMonths, executionDay int, ownerID string) (*StandingOrder, error) {

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.accounts[sourceIBAN] == nil {
		return nil, ErrAccountNotFound
	}
	id := fmt.Sprintf("SO%06d", b.nextOrderSeq)
	o, err := NewBillPaymentOrder(id, sourceIBAN, rfCode, providerName, fixedAmount, frequencyMonths, executionDay, ownerID, b.current)
	if err != nil {
		return nil, err
	}
	b.nextOrderSeq++
	b.orders = append(b.orders, o)
	return o, nil
}

// Order returns the standing order with the given ID, or nil.
func (b *Bank) Order(id string) *StandingOrder {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, o := range b.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// Orders returns all standing orders in creation order.
func (b *Bank) Orders() []*StandingOrder {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*StandingOrder(nil), b.orders...)
}

// OrdersForCustomer returns the standing orders created by a customer.
func (b *Bank) OrdersForCustomer(customerID string) []*StandingOrder {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []*StandingOrder
	for _, o := range b.orders {
		if o.OwnerID == customerID {
			out = append(out, o)
		}
	}
	return out
}

// Transactions returns the full ledger in canonical order.
func (b *Bank) Transactions() []Transaction {
	return b.txlog.List()
}

// TransactionsForAccount returns the ledger entries touching an IBAN.
func (b *Bank) TransactionsForAccount(iban string) []Transaction {
	return b.txlog.ForAccount(iban)
}

// CurrentDate returns the simulated calendar date.
func (b *Bank) CurrentDate() Date {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// =============================================================================
// LEDGER OPERATIONS - Each produces exactly its transaction record(s)
// =============================================================================

// Deposit adds funds to an account and records the transaction.
func (b *Bank) Deposit(iban string, amount decimal.Decimal, description string) (Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a := b.accounts[iban]
	if a == nil {
		return Transaction{}, ErrAccountNotFound
	}
	if err := a.Deposit(amount); err != nil {
		return Transaction{}, err
	}
	if description == "" {
		description = "Cash deposit"
	}
	return b.txlog.Record(Transaction{
		Amount:       amount,
		Type:         TxDeposit,
		Description:  description,
		BalanceAfter: a.Balance,
		DestIBAN:     iban,
	}), nil
}

// Withdraw removes funds from an account and records the transaction.
func (b *Bank) Withdraw(iban string, amount decimal.Decimal, description string) (Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a := b.accounts[iban]
	if a == nil {
		return Transaction{}, ErrAccountNotFound
	}
	if err := a.Withdraw(amount); err != nil {
		return Transaction{}, err
	}
	if description == "" {
		description = "Cash withdrawal"
	}
	return b.txlog.Record(Transaction{
		Amount:       amount,
		Type:         TxWithdrawal,
		Description:  description,
		BalanceAfter: a.Balance,
		SourceIBAN:   iban,
	}), nil
}

// Transfer moves funds between two internal accounts, recording two
// linked transactions: outgoing (source snapshot) and incoming
// (destination snapshot). Returns the outgoing record.
func (b *Bank) Transfer(fromIBAN, toIBAN string, amount decimal.Decimal, description string) (Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transferLocked(fromIBAN, toIBAN, amount, description)
}

func (b *Bank) transferLocked(fromIBAN, toIBAN string, amount decimal.Decimal, description string) (Transaction, error) {
	from := b.accounts[fromIBAN]
	to := b.accounts[toIBAN]
	if from == nil || to == nil {
		return Transaction{}, ErrAccountNotFound
	}
	if err := from.Withdraw(amount); err != nil {
		return Transaction{}, err
	}
	if err := to.Deposit(amount); err != nil {
		// Undo the withdrawal so the single operation leaves no
		// partial write.
		from.Balance = from.Balance.Add(amount)
		return Transaction{}, err
	}
	if description == "" {
		description = fmt.Sprintf("Transfer to %s", toIBAN)
	}
	outgoing := b.txlog.Record(Transaction{
		Amount:       amount,
		Type:         TxTransferOut,
		Description:  description,
		BalanceAfter: from.Balance,
		SourceIBAN:   fromIBAN,
		DestIBAN:     toIBAN,
	})
	b.txlog.Record(Transaction{
		Amount:       amount,
		Type:         TxTransferIn,
		Description:  description,
		BalanceAfter: to.Balance,
		SourceIBAN:   fromIBAN,
		DestIBAN:     toIBAN,
	})
	return outgoing, nil
}

// PayBill pays a bill manually from the given account: withdraws the
// bill amount plus the fixed bill-payment fee, marks the bill paid,
// credits the issuer's first business account, and records the
// transaction.
func (b *Bank) PayBill(billID, sourceIBAN string) (Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var bill *Bill
	for _, candidate := range b.bills {
		if candidate.ID == billID {
			bill = candidate
			break
		}
	}
	if bill == nil {
		return Transaction{}, ErrBillNotFound
	}
	if !bill.Payable() {
		return Transaction{}, ErrBillNotPayable
	}
	source := b.accounts[sourceIBAN]
	if source == nil {
		return Transaction{}, ErrAccountNotFound
	}

	total := bill.Amount.Add(BillPaymentFee)
	if err := source.Withdraw(total); err != nil {
		return Transaction{}, err
	}
	if err := bill.MarkPaid(b.current.Midnight()); err != nil {
		source.Balance = source.Balance.Add(total)
		return Transaction{}, err
	}
	b.creditIssuerLocked(bill)

	return b.txlog.Record(Transaction{
		Amount:       bill.Amount,
		Type:         TxBillPayment,
		Description:  fmt.Sprintf("Bill payment: %s (RF: %s)", bill.ProviderName, bill.RFCode),
		BalanceAfter: source.Balance,
		SourceIBAN:   sourceIBAN,
	}), nil
}

// creditIssuerLocked forwards a paid bill's amount to the issuing
// business's first active business account, when one exists.
func (b *Bank) creditIssuerLocked(bill *Bill) {
	if bill.IssuerID == "" {
		return
	}
	for _, a := range b.sortedAccountsLocked() {
		if a.Kind == KindBusiness && a.OwnerID == bill.IssuerID && a.IsActive() {
			a.Balance = a.Balance.Add(bill.Amount)
			b.txlog.Record(Transaction{
				Amount:       bill.Amount,
				Type:         TxDeposit,
				Description:  fmt.Sprintf("Bill settlement (RF: %s)", bill.RFCode),
				BalanceAfter: a.Balance,
				DestIBAN:     a.IBAN,
			})
			return
		}
	}
}
