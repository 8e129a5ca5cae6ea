/*
Package sqlite provides the SQLite-backed implementation of bank.Store.

PURPOSE:
  Durable snapshot persistence for the whole simulation state. SaveAll
  writes everything inside one database transaction, so a crash mid-save
  leaves the previous snapshot intact; LoadAll rebuilds the full state
  or reports an empty database with (nil, nil).

APPEND-ONLY ENFORCEMENT:
  Ledger rows are written with INSERT OR IGNORE keyed on the monotonic
  transaction id: an already-persisted entry is never rewritten, only
  its status column may be corrected. Entity tables (customers,
  accounts, bills, standing_orders) are snapshot tables and are
  replaced wholesale on each save.

REPRESENTATION:
  Monetary values are stored as decimal TEXT, never floating point.
  Dates are "2006-01-02" TEXT; timestamps are RFC3339 TEXT.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block
  the single writer and crash recovery is cleaner.

USAGE:
  st, err := sqlite.New("./data/bank.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/aegean/bank-engine/bank"
)

// Store implements bank.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

var _ bank.Store = (*Store)(nil)

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		legal_name TEXT,
		email TEXT,
		phone TEXT,
		locked_out BOOLEAN DEFAULT FALSE,
		tax_id TEXT,
		business_name TEXT,
		vat_number TEXT
	);

	CREATE TABLE IF NOT EXISTS accounts (
		iban TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		co_owners_json TEXT,
		balance TEXT NOT NULL,
		status TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		accrued_interest TEXT NOT NULL,
		maintenance_fee TEXT NOT NULL,
		opened_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_owner ON accounts(owner_id);

	CREATE TABLE IF NOT EXISTS bills (
		id TEXT PRIMARY KEY,
		provider_name TEXT NOT NULL,
		amount TEXT NOT NULL,
		due_date TEXT NOT NULL,
		status TEXT NOT NULL,
		paid_at TEXT,
		rf_code TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		issuer_id TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_bills_owner ON bills(owner_id);
	CREATE INDEX IF NOT EXISTS idx_bills_rf ON bills(rf_code);

	CREATE TABLE IF NOT EXISTS standing_orders (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		source_iban TEXT NOT NULL,
		dest_iban TEXT,
		amount TEXT NOT NULL,
		frequency_months INTEGER NOT NULL,
		execution_day INTEGER NOT NULL,
		next_execution TEXT,
		rf_code TEXT,
		provider_name TEXT,
		description TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_orders_owner ON standing_orders(owner_id);

	-- Append-only ledger: rows are INSERT OR IGNORE, never replaced.
	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY,
		timestamp TEXT NOT NULL,
		amount TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT,
		balance_after TEXT NOT NULL,
		source_iban TEXT,
		dest_iban TEXT,
		status TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_source ON transactions(source_iban);
	CREATE INDEX IF NOT EXISTS idx_transactions_dest ON transactions(dest_iban);

	CREATE TABLE IF NOT EXISTS system_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		sim_date TEXT NOT NULL,
		day_processed BOOLEAN NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SAVE
// =============================================================================

// SaveAll persists the full state in one database transaction.
func (s *Store) SaveAll(ctx context.Context, state *bank.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	// Snapshot tables are replaced wholesale.
	for _, table := range []string{"customers", "accounts", "bills", "standing_orders", "system_state"} {
		if _, err := sqlTx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i := range state.Customers {
		if err := saveCustomer(ctx, sqlTx, &state.Customers[i]); err != nil {
			return err
		}
	}
	for i := range state.Accounts {
		if err := saveAccount(ctx, sqlTx, &state.Accounts[i]); err != nil {
			return err
		}
	}
	for i := range state.Bills {
		if err := saveBill(ctx, sqlTx, &state.Bills[i]); err != nil {
			return err
		}
	}
	for i := range state.Orders {
		if err := saveOrder(ctx, sqlTx, &state.Orders[i]); err != nil {
			return err
		}
	}
	for i := range state.Transactions {
		if err := saveTransaction(ctx, sqlTx, &state.Transactions[i]); err != nil {
			return err
		}
	}

	if _, err := sqlTx.ExecContext(ctx,
		"INSERT INTO system_state (id, sim_date, day_processed) VALUES (1, ?, ?)",
		state.CurrentDate.String(), state.DayProcessed,
	); err != nil {
		return fmt.Errorf("failed to save system state: %w", err)
	}

	return sqlTx.Commit()
}

func saveCustomer(ctx context.Context, tx *sql.Tx, c *bank.Customer) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO customers
		(id, username, password_hash, role, legal_name, email, phone, locked_out, tax_id, business_name, vat_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Username, c.PasswordHash, string(c.Role), c.LegalName, c.Email, c.Phone,
		c.LockedOut, c.TaxID, c.BusinessName, c.VATNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to save customer %s: %w", c.ID, err)
	}
	return nil
}

func saveAccount(ctx context.Context, tx *sql.Tx, a *bank.Account) error {
	coOwners, _ := json.Marshal(a.CoOwners)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts
		(iban, kind, owner_id, co_owners_json, balance, status, interest_rate, accrued_interest, maintenance_fee, opened_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.IBAN, string(a.Kind), a.OwnerID, string(coOwners),
		a.Balance.String(), string(a.Status),
		a.InterestRate.String(), a.AccruedInterest.String(), a.MaintenanceFee.String(),
		a.OpenedAt.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", a.IBAN, err)
	}
	return nil
}

func saveBill(ctx context.Context, tx *sql.Tx, b *bank.Bill) error {
	var paidAt *string
	if b.PaidAt != nil {
		v := b.PaidAt.UTC().Format(time.RFC3339)
		paidAt = &v
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bills
		(id, provider_name, amount, due_date, status, paid_at, rf_code, owner_id, issuer_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.ProviderName, b.Amount.String(), b.DueDate.String(), string(b.Status),
		paidAt, b.RFCode, b.OwnerID, b.IssuerID,
	)
	if err != nil {
		return fmt.Errorf("failed to save bill %s: %w", b.ID, err)
	}
	return nil
}

func saveOrder(ctx context.Context, tx *sql.Tx, o *bank.StandingOrder) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO standing_orders
		(id, type, status, owner_id, source_iban, dest_iban, amount, frequency_months, execution_day,
		 next_execution, rf_code, provider_name, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, string(o.Type), string(o.Status), o.OwnerID, o.SourceIBAN, o.DestIBAN,
		o.Amount.String(), o.FrequencyMonths, o.ExecutionDay,
		o.NextExecution.String(), o.RFCode, o.ProviderName, o.Description,
		o.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save order %s: %w", o.ID, err)
	}
	return nil
}

func saveTransaction(ctx context.Context, tx *sql.Tx, t *bank.Transaction) error {
	// Existing rows keep their original content; only the status column
	// follows a reversal.
	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO transactions
		(id, timestamp, amount, type, description, balance_after, source_iban, dest_iban, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Timestamp.UTC().Format(time.RFC3339), t.Amount.String(), string(t.Type),
		t.Description, t.BalanceAfter.String(), t.SourceIBAN, t.DestIBAN, string(t.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction %d: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = tx.ExecContext(ctx, "UPDATE transactions SET status = ? WHERE id = ?", string(t.Status), t.ID)
		if err != nil {
			return fmt.Errorf("failed to update transaction %d status: %w", t.ID, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD
// =============================================================================

// LoadAll reads the persisted state. Returns (nil, nil) when the
// database holds no snapshot yet.
func (s *Store) LoadAll(ctx context.Context) (*bank.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &bank.State{}

	var currentDate string
	err := s.db.QueryRowContext(ctx,
		"SELECT sim_date, day_processed FROM system_state WHERE id = 1",
	).Scan(&currentDate, &state.DayProcessed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load system state: %w", err)
	}
	if state.CurrentDate, err = bank.ParseDate(currentDate); err != nil {
		return nil, fmt.Errorf("corrupt sim_date %q: %w", currentDate, err)
	}

	if state.Customers, err = s.loadCustomers(ctx); err != nil {
		return nil, err
	}
	if state.Accounts, err = s.loadAccounts(ctx); err != nil {
		return nil, err
	}
	if state.Bills, err = s.loadBills(ctx); err != nil {
		return nil, err
	}
	if state.Orders, err = s.loadOrders(ctx); err != nil {
		return nil, err
	}
	if state.Transactions, err = s.loadTransactions(ctx); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *Store) loadCustomers(ctx context.Context) ([]bank.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, password_hash, role, legal_name, email, phone, locked_out, tax_id, business_name, vat_number
		FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}
	defer rows.Close()

	var out []bank.Customer
	for rows.Next() {
		var c bank.Customer
		var role string
		if err := rows.Scan(&c.ID, &c.Username, &c.PasswordHash, &role, &c.LegalName,
			&c.Email, &c.Phone, &c.LockedOut, &c.TaxID, &c.BusinessName, &c.VATNumber); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		c.Role = bank.CustomerRole(role)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) loadAccounts(ctx context.Context) ([]bank.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT iban, kind, owner_id, co_owners_json, balance, status, interest_rate, accrued_interest, maintenance_fee, opened_at
		FROM accounts ORDER BY iban`)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	defer rows.Close()

	var out []bank.Account
	for rows.Next() {
		var a bank.Account
		var kind, status, coOwners, balance, rate, accrued, fee, openedAt string
		if err := rows.Scan(&a.IBAN, &kind, &a.OwnerID, &coOwners, &balance, &status,
			&rate, &accrued, &fee, &openedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.Kind = bank.AccountKind(kind)
		a.Status = bank.AccountStatus(status)
		if coOwners != "" && coOwners != "null" {
			if err := json.Unmarshal([]byte(coOwners), &a.CoOwners); err != nil {
				return nil, fmt.Errorf("corrupt co_owners for %s: %w", a.IBAN, err)
			}
		}
		if a.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("corrupt balance for %s: %w", a.IBAN, err)
		}
		if a.InterestRate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("corrupt interest_rate for %s: %w", a.IBAN, err)
		}
		if a.AccruedInterest, err = decimal.NewFromString(accrued); err != nil {
			return nil, fmt.Errorf("corrupt accrued_interest for %s: %w", a.IBAN, err)
		}
		if a.MaintenanceFee, err = decimal.NewFromString(fee); err != nil {
			return nil, fmt.Errorf("corrupt maintenance_fee for %s: %w", a.IBAN, err)
		}
		if a.OpenedAt, err = bank.ParseDate(openedAt); err != nil {
			return nil, fmt.Errorf("corrupt opened_at for %s: %w", a.IBAN, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) loadBills(ctx context.Context) ([]bank.Bill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, provider_name, amount, due_date, status, paid_at, rf_code, owner_id, issuer_id
		FROM bills ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}
	defer rows.Close()

	var out []bank.Bill
	for rows.Next() {
		var b bank.Bill
		var amount, dueDate, status string
		var paidAt sql.NullString
		if err := rows.Scan(&b.ID, &b.ProviderName, &amount, &dueDate, &status,
			&paidAt, &b.RFCode, &b.OwnerID, &b.IssuerID); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		b.Status = bank.BillStatus(status)
		if b.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount for bill %s: %w", b.ID, err)
		}
		if b.DueDate, err = bank.ParseDate(dueDate); err != nil {
			return nil, fmt.Errorf("corrupt due_date for bill %s: %w", b.ID, err)
		}
		if paidAt.Valid {
			t, err := time.Parse(time.RFC3339, paidAt.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt paid_at for bill %s: %w", b.ID, err)
			}
			b.PaidAt = &t
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) loadOrders(ctx context.Context) ([]bank.StandingOrder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, status, owner_id, source_iban, dest_iban, amount, frequency_months,
		       execution_day, next_execution, rf_code, provider_name, description, created_at
		FROM standing_orders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load standing orders: %w", err)
	}
	defer rows.Close()

	var out []bank.StandingOrder
	for rows.Next() {
		var o bank.StandingOrder
		var typ, status, amount, nextExecution, createdAt string
		if err := rows.Scan(&o.ID, &typ, &status, &o.OwnerID, &o.SourceIBAN, &o.DestIBAN,
			&amount, &o.FrequencyMonths, &o.ExecutionDay, &nextExecution,
			&o.RFCode, &o.ProviderName, &o.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan standing order: %w", err)
		}
		o.Type = bank.OrderType(typ)
		o.Status = bank.OrderStatus(status)
		if o.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount for order %s: %w", o.ID, err)
		}
		if o.NextExecution, err = bank.ParseDate(nextExecution); err != nil {
			return nil, fmt.Errorf("corrupt next_execution for order %s: %w", o.ID, err)
		}
		o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) loadTransactions(ctx context.Context) ([]bank.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, amount, type, description, balance_after, source_iban, dest_iban, status
		FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	defer rows.Close()

	var out []bank.Transaction
	for rows.Next() {
		var t bank.Transaction
		var timestamp, amount, typ, balanceAfter, status string
		if err := rows.Scan(&t.ID, &timestamp, &amount, &typ, &t.Description,
			&balanceAfter, &t.SourceIBAN, &t.DestIBAN, &status); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Type = bank.TransactionType(typ)
		t.Status = bank.TransactionStatus(status)
		if t.Timestamp, err = time.Parse(time.RFC3339, timestamp); err != nil {
			return nil, fmt.Errorf("corrupt timestamp for transaction %d: %w", t.ID, err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount for transaction %d: %w", t.ID, err)
		}
		if t.BalanceAfter, err = decimal.NewFromString(balanceAfter); err != nil {
			return nil, fmt.Errorf("corrupt balance_after for transaction %d: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
