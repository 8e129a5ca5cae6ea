/*
handlers.go - HTTP handler implementations

PURPOSE:
  Translates HTTP requests into bank operations and domain errors into
  status codes. Handlers never touch entity internals: every mutation
  goes through a Bank method, and every successful mutation is followed
  by a durable snapshot through the Store.

ERROR MAPPING:
  bank.IsNotFound      -> 404
  bank.IsClientError   -> 400 (422 for insufficient funds)
  ErrServiceUnavailable-> 502
  anything else        -> 500
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/aegean/bank-engine/bank"
)

// Handler holds the API dependencies.
type Handler struct {
	Bank      *bank.Bank
	Store     bank.Store
	Log       *logrus.Logger
	JWTSecret string
}

// NewHandler creates the API handler.
func NewHandler(b *bank.Bank, store bank.Store, log *logrus.Logger, jwtSecret string) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{Bank: b, Store: store, Log: log, JWTSecret: jwtSecret}
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, bank.ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, bank.ErrInvalidAmount
	}
	return d, nil
}

// persist snapshots the bank through the store after a mutation. A
// failed save is logged and surfaced: the in-memory state is ahead of
// the durable one and the client should know.
func (h *Handler) persist(w http.ResponseWriter, r *http.Request) bool {
	if h.Store == nil {
		return true
	}
	if err := h.Store.SaveAll(r.Context(), h.Bank.Snapshot()); err != nil {
		h.Log.WithError(err).Error("failed to persist state")
		writeError(w, http.StatusInternalServerError, "state change applied but not persisted", err)
		return false
	}
	return true
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case bank.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found", err)
	case errors.Is(err, bank.ErrInsufficientFunds):
		writeError(w, http.StatusUnprocessableEntity, "insufficient funds", err)
	case errors.Is(err, bank.ErrServiceUnavailable):
		writeError(w, http.StatusBadGateway, "payment gateway unavailable", err)
	case errors.Is(err, bank.ErrTransferDeclined):
		writeError(w, http.StatusUnprocessableEntity, "transfer declined", err)
	case bank.IsClientError(err):
		writeError(w, http.StatusBadRequest, "invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// ListAccounts returns the caller's accounts (all of them for admins).
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	c := h.caller(r)

	var accounts []*bank.Account
	if c == nil || c.Role == bank.RoleAdmin {
		accounts = h.Bank.Accounts()
	} else {
		accounts = h.Bank.AccountsForCustomer(c.ID)
	}

	out := make([]AccountDTO, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountDTO(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetAccount returns a single account.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	a := h.Bank.Account(chi.URLParam(r, "iban"))
	if a == nil {
		writeError(w, http.StatusNotFound, "account not found", nil)
		return
	}
	if !h.canAccess(r, a.OwnerID) && !ownedByCaller(h, r, a) {
		writeError(w, http.StatusForbidden, "not your account", nil)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(a))
}

func ownedByCaller(h *Handler, r *http.Request, a *bank.Account) bool {
	c := h.caller(r)
	return c != nil && a.OwnedBy(c.ID)
}

// GetAccountTransactions returns the ledger entries for one account.
func (h *Handler) GetAccountTransactions(w http.ResponseWriter, r *http.Request) {
	iban := chi.URLParam(r, "iban")
	a := h.Bank.Account(iban)
	if a == nil {
		writeError(w, http.StatusNotFound, "account not found", nil)
		return
	}
	if !h.canAccess(r, a.OwnerID) && !ownedByCaller(h, r, a) {
		writeError(w, http.StatusForbidden, "not your account", nil)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(h.Bank.TransactionsForAccount(iban)))
}

// Deposit adds funds to an account.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.amountOperation(w, r, h.Bank.Deposit)
}

// Withdraw removes funds from an account.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.amountOperation(w, r, h.Bank.Withdraw)
}

func (h *Handler) amountOperation(w http.ResponseWriter, r *http.Request,
	op func(string, decimal.Decimal, string) (bank.Transaction, error)) {

	var req AmountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err)
		return
	}

	tx, err := op(chi.URLParam(r, "iban"), amount, req.Description)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !h.persist(w, r) {
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// =============================================================================
// TRANSFERS
// =============================================================================

// InternalTransfer moves funds between two accounts of this bank.
func (h *Handler) InternalTransfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err)
		return
	}

	tx, err := h.Bank.Transfer(req.FromIBAN, req.ToIBAN, amount, req.Description)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !h.persist(w, r) {
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// SEPATransfer sends an external SEPA transfer.
func (h *Handler) SEPATransfer(w http.ResponseWriter, r *http.Request) {
	h.externalTransfer(w, r, h.Bank.SEPATransfer)
}

// SWIFTTransfer sends an external SWIFT transfer.
func (h *Handler) SWIFTTransfer(w http.ResponseWriter, r *http.Request) {
	h.externalTransfer(w, r, h.Bank.SWIFTTransfer)
}

func (h *Handler) externalTransfer(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, sourceIBAN string, req bank.TransferRequest, description string) (bank.Transaction, error)) {

	var req ExternalTransferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err)
		return
	}

	tx, err := op(r.Context(), req.FromIBAN, bank.TransferRequest{
		Amount:        amount,
		RecipientName: req.RecipientName,
		RecipientIBAN: req.RecipientIBAN,
		BankBIC:       req.BankBIC,
		BankName:      req.BankName,
		Charges:       req.Charges,
	}, req.Description)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !h.persist(w, r) {
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// =============================================================================
// BILLS
// =============================================================================

// ListBills returns the caller's bills (all of them for admins).
func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	c := h.caller(r)

	var bills []*bank.Bill
	if c == nil || c.Role == bank.RoleAdmin {
		bills = h.Bank.Bills()
	} else {
		bills = h.Bank.BillsForCustomer(c.ID)
	}

	out := make([]BillDTO, 0, len(bills))
	for _, b := range bills {
		out = append(out, toBillDTO(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// IssueBill creates a bill. The issuer is the authenticated business
// customer; with authentication disabled it may be named in the body.
func (h *Handler) IssueBill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IssueBillRequest
		IssuerID string `json:"issuer_id,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err)
		return
	}
	dueDate, err := bank.ParseDate(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid due_date, want YYYY-MM-DD", err)
		return
	}

	issuerID := req.IssuerID
	if c := h.caller(r); c != nil {
		if c.Role != bank.RoleBusiness && c.Role != bank.RoleAdmin {
			writeError(w, http.StatusForbidden, "only business customers issue bills", nil)
			return
		}
		if c.Role == bank.RoleBusiness {
			issuerID = c.ID
		}
	}

	bill, err := h.Bank.IssueBill(req.OwnerID, issuerID, req.ProviderName, amount, dueDate, req.RFCode)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !h.persist(w, r) {
		return
	}
	writeJSON(w, http.StatusCreated, toBillDTO(bill))
}

// PayBill pays a bill from the given source account.
func (h *Handler) PayBill(w http.ResponseWriter, r *http.Request) {
	var req PayBillRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	tx, err := h.Bank.PayBill(chi.URLParam(r, "id"), req.SourceIBAN)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !h.persist(w, r) {
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// CancelBill voids an unpaid bill.
func (h *Handler) CancelBill(w http.ResponseWriter, r *http.Request) {
	bill := h.Bank.Bill(chi.URLParam(r, "id"))
	if bill == nil {
		writeError(w, http.StatusNotFound, "bill not found", nil)
		return
	}
	if !h.canAccess(r, bill.IssuerID) {
		writeError(w, http.StatusForbidden, "not your bill", nil)
		return
	}
	if err := bill.Cancel(); err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !h.persist(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, toBillDTO(bill))
}

// =============================================================================
// STANDING ORDERS
// =============================================================================

// ListOrders returns the caller's standing orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	c := h.caller(r)

	var orders []*bank.StandingOrder
	if c == nil || c.Role == bank.RoleAdmin {
		orders = h.Bank.Orders()
	} else {
		orders = h.Bank.OrdersForCustomer(c.ID)
	}

	out := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderDTO(o))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateTransferOrder registers a recurring transfer.
func (h *Handler) CreateTransferOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateTransferOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err)
		return
	}

	o, err := h.Bank.CreateTransferOrder(req.SourceIBAN, req.DestIBAN, amount,
		req.FrequencyMonths, req.ExecutionDay, req.Description, h.callerID(r))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !h.persist(w, r) {
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(o))
}

// CreateBillPaymentOrder registers a recurring bill auto-payment.
func (h *Handler) CreateBillPaymentOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateBillPaymentOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	fixed := decimal.Zero
	if req.FixedAmount != "" {
		parsed, err := parseAmount(req.FixedAmount)
		if err != nil || parsed.IsNegative() {
			writeError(w, http.StatusBadRequest, "invalid fixed_amount", err)
			return
		}
		fixed = parsed
	}

	o, err := h.Bank.CreateBillPaymentOrder(req.SourceIBAN, req.RFCode, req.ProviderName,
		fixed, req.FrequencyMonths, req.ExecutionDay, h.callerID(r))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !h.persist(w, r) {
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(o))
}

func (h *Handler) callerID(r *http.Request) string {
	if c := h.caller(r); c != nil {
		return c.ID
	}
	return ""
}

// orderAction runs a lifecycle transition on an order.
func (h *Handler) orderAction(w http.ResponseWriter, r *http.Request, action func(*bank.StandingOrder) error) {
	o := h.Bank.Order(chi.URLParam(r, "id"))
	if o == nil {
		writeError(w, http.StatusNotFound, "order not found", nil)
		return
	}
	if !h.canAccess(r, o.OwnerID) {
		writeError(w, http.StatusForbidden, "not your order", nil)
		return
	}
	if err := action(o); err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !h.persist(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(o))
}

func (h *Handler) PauseOrder(w http.ResponseWriter, r *http.Request) {
	h.orderAction(w, r, (*bank.StandingOrder).Pause)
}

func (h *Handler) ResumeOrder(w http.ResponseWriter, r *http.Request) {
	h.orderAction(w, r, (*bank.StandingOrder).Resume)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	h.orderAction(w, r, (*bank.StandingOrder).Cancel)
}

// =============================================================================
// LEDGER AND SYSTEM
// =============================================================================

// ListTransactions returns the full ledger (admin view).
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	c := h.caller(r)
	if c != nil && c.Role != bank.RoleAdmin {
		writeError(w, http.StatusForbidden, "admin only", nil)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(h.Bank.Transactions()))
}

// GetSystemDate returns the simulated calendar date.
func (h *Handler) GetSystemDate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SystemDateDTO{CurrentDate: h.Bank.CurrentDate().String()})
}

// Simulate advances the simulated calendar to a target date or by a
// number of days.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	c := h.caller(r)
	if c != nil && c.Role != bank.RoleAdmin {
		writeError(w, http.StatusForbidden, "admin only", nil)
		return
	}

	var req SimulateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var (
		report *bank.SimulationReport
		err    error
	)
	switch {
	case req.Target != "":
		var target bank.Date
		if target, err = bank.ParseDate(req.Target); err != nil {
			writeError(w, http.StatusBadRequest, "invalid target, want YYYY-MM-DD", err)
			return
		}
		report, err = h.Bank.Simulate(target)
	case req.Days > 0:
		report, err = h.Bank.SimulateDays(req.Days)
	default:
		writeError(w, http.StatusBadRequest, "provide target or days", nil)
		return
	}
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !h.persist(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}
