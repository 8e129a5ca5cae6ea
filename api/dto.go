/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP API. These types decouple the domain
  model from the external contract: monetary values cross the wire as
  decimal strings, never floats, and dates as "2006-01-02".

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aegean/bank-engine/bank"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AmountRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

type TransferRequest struct {
	FromIBAN    string `json:"from_iban"`
	ToIBAN      string `json:"to_iban"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

type ExternalTransferRequest struct {
	FromIBAN      string `json:"from_iban"`
	Amount        string `json:"amount"`
	RecipientName string `json:"recipient_name"`
	RecipientIBAN string `json:"recipient_iban"`
	BankBIC       string `json:"bank_bic,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	Charges       string `json:"charges,omitempty"`
	Description   string `json:"description,omitempty"`
}

type IssueBillRequest struct {
	OwnerID      string `json:"owner_id"`
	ProviderName string `json:"provider_name"`
	Amount       string `json:"amount"`
	DueDate      string `json:"due_date"`
	RFCode       string `json:"rf_code,omitempty"`
}

type PayBillRequest struct {
	SourceIBAN string `json:"source_iban"`
}

type CreateTransferOrderRequest struct {
	SourceIBAN      string `json:"source_iban"`
	DestIBAN        string `json:"dest_iban"`
	Amount          string `json:"amount"`
	FrequencyMonths int    `json:"frequency_months"`
	ExecutionDay    int    `json:"execution_day"`
	Description     string `json:"description,omitempty"`
}

type CreateBillPaymentOrderRequest struct {
	SourceIBAN      string `json:"source_iban"`
	RFCode          string `json:"rf_code,omitempty"`
	ProviderName    string `json:"provider_name"`
	FixedAmount     string `json:"fixed_amount,omitempty"`
	FrequencyMonths int    `json:"frequency_months"`
	ExecutionDay    int    `json:"execution_day"`
}

type SimulateRequest struct {
	// Either an absolute target date or a relative day count.
	Target string `json:"target,omitempty"`
	Days   int    `json:"days,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type LoginResponse struct {
	Token    string `json:"token"`
	Customer string `json:"customer_id"`
	Role     string `json:"role"`
}

type AccountDTO struct {
	IBAN            string   `json:"iban"`
	Kind            string   `json:"kind"`
	OwnerID         string   `json:"owner_id"`
	CoOwners        []string `json:"co_owners,omitempty"`
	Balance         string   `json:"balance"`
	Status          string   `json:"status"`
	InterestRate    string   `json:"interest_rate"`
	AccruedInterest string   `json:"accrued_interest"`
	MaintenanceFee  string   `json:"maintenance_fee,omitempty"`
	OpenedAt        string   `json:"opened_at"`
}

type BillDTO struct {
	ID           string `json:"id"`
	ProviderName string `json:"provider_name"`
	Amount       string `json:"amount"`
	DueDate      string `json:"due_date"`
	Status       string `json:"status"`
	PaidAt       string `json:"paid_at,omitempty"`
	RFCode       string `json:"rf_code"`
	OwnerID      string `json:"owner_id"`
	IssuerID     string `json:"issuer_id,omitempty"`
}

type OrderDTO struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	Status          string `json:"status"`
	SourceIBAN      string `json:"source_iban"`
	DestIBAN        string `json:"dest_iban,omitempty"`
	Amount          string `json:"amount"`
	FrequencyMonths int    `json:"frequency_months"`
	ExecutionDay    int    `json:"execution_day"`
	NextExecution   string `json:"next_execution"`
	RFCode          string `json:"rf_code,omitempty"`
	ProviderName    string `json:"provider_name,omitempty"`
	Description     string `json:"description,omitempty"`
}

type TransactionDTO struct {
	ID           int64  `json:"id"`
	Timestamp    string `json:"timestamp"`
	Amount       string `json:"amount"`
	Type         string `json:"type"`
	Description  string `json:"description,omitempty"`
	BalanceAfter string `json:"balance_after"`
	SourceIBAN   string `json:"source_iban,omitempty"`
	DestIBAN     string `json:"dest_iban,omitempty"`
	Status       string `json:"status"`
}

type SimulationReportDTO struct {
	From            string `json:"from"`
	To              string `json:"to"`
	Days            int    `json:"days"`
	InterestApplied string `json:"interest_applied"`
	FeesCharged     string `json:"fees_charged"`
	OrdersExecuted  int    `json:"orders_executed"`
	OrdersSkipped   int    `json:"orders_skipped"`
	BillsPaid       int    `json:"bills_paid"`
	BillsOverdue    int    `json:"bills_overdue"`
}

type SystemDateDTO struct {
	CurrentDate string `json:"current_date"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toAccountDTO(a *bank.Account) AccountDTO {
	dto := AccountDTO{
		IBAN:            a.IBAN,
		Kind:            string(a.Kind),
		OwnerID:         a.OwnerID,
		CoOwners:        a.CoOwners,
		Balance:         a.Balance.StringFixed(2),
		Status:          string(a.Status),
		InterestRate:    a.InterestRate.String(),
		AccruedInterest: a.AccruedInterest.String(),
		OpenedAt:        a.OpenedAt.String(),
	}
	if a.Kind == bank.KindBusiness {
		dto.MaintenanceFee = a.MaintenanceFee.StringFixed(2)
	}
	return dto
}

func toBillDTO(b *bank.Bill) BillDTO {
	dto := BillDTO{
		ID:           b.ID,
		ProviderName: b.ProviderName,
		Amount:       b.Amount.StringFixed(2),
		DueDate:      b.DueDate.String(),
		Status:       string(b.Status),
		RFCode:       b.RFCode,
		OwnerID:      b.OwnerID,
		IssuerID:     b.IssuerID,
	}
	if b.PaidAt != nil {
		dto.PaidAt = b.PaidAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toOrderDTO(o *bank.StandingOrder) OrderDTO {
	return OrderDTO{
		ID:              o.ID,
		Type:            string(o.Type),
		Status:          string(o.Status),
		SourceIBAN:      o.SourceIBAN,
		DestIBAN:        o.DestIBAN,
		Amount:          o.Amount.StringFixed(2),
		FrequencyMonths: o.FrequencyMonths,
		ExecutionDay:    o.ExecutionDay,
		NextExecution:   o.NextExecution.String(),
		RFCode:          o.RFCode,
		ProviderName:    o.ProviderName,
		Description:     o.Description,
	}
}

func toTransactionDTO(t bank.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:           t.ID,
		Timestamp:    t.Timestamp.UTC().Format(time.RFC3339),
		Amount:       t.Amount.StringFixed(2),
		Type:         string(t.Type),
		Description:  t.Description,
		BalanceAfter: t.BalanceAfter.StringFixed(2),
		SourceIBAN:   t.SourceIBAN,
		DestIBAN:     t.DestIBAN,
		Status:       string(t.Status),
	}
}

func toTransactionDTOs(txs []bank.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionDTO(tx))
	}
	return out
}

func toReportDTO(r *bank.SimulationReport) SimulationReportDTO {
	return SimulationReportDTO{
		From:            r.From.String(),
		To:              r.To.String(),
		Days:            r.Days,
		InterestApplied: r.InterestApplied.StringFixed(2),
		FeesCharged:     r.FeesCharged.StringFixed(2),
		OrdersExecuted:  r.OrdersExecuted,
		OrdersSkipped:   r.OrdersSkipped,
		BillsPaid:       r.BillsPaid,
		BillsOverdue:    r.BillsOverdue,
	}
}

// =============================================================================
// JSON HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]string{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
