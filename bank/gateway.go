/*
gateway.go - External SEPA/SWIFT transfer orchestration

PURPOSE:
  The payment gateway is an opaque, possibly-failing collaborator. The
  core validates funds BEFORE calling it, treats its result as
  authoritative and final, and only moves money on success: amount plus
  the fixed mechanism fee leaves the source account and one transaction
  embedding the gateway's transaction id is recorded. On failure no
  funds move and nothing is recorded.
*/
package bank

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// TransferRequest describes an outgoing external transfer.
type TransferRequest struct {
	Amount        decimal.Decimal
	RecipientName string
	RecipientIBAN string
	BankBIC       string
	BankName      string
	Execution     Date
	Charges       string // "SHA" (shared) or "OUR" (sender pays all)
}

// TransferResult is the gateway's authoritative verdict.
type TransferResult struct {
	Success       bool
	Message       string
	TransactionID string
}

// PaymentGateway is the external SEPA/SWIFT collaborator. Transport
// errors return a non-nil error wrapping ErrServiceUnavailable; a
// reachable gateway that declines returns Success == false with no
// error.
type PaymentGateway interface {
	ExecuteSEPA(ctx context.Context, req TransferRequest) (TransferResult, error)
	ExecuteSWIFT(ctx context.Context, req TransferRequest) (TransferResult, error)
}

// SEPATransfer sends an external SEPA transfer from the given account.
func (b *Bank) SEPATransfer(ctx context.Context, sourceIBAN string, req TransferRequest, description string) (Transaction, error) {
	return b.externalTransfer(ctx, sourceIBAN, req, description, TxSEPATransfer, SEPAFee)
}

// SWIFTTransfer sends an external SWIFT transfer from the given account.
func (b *Bank) SWIFTTransfer(ctx context.Context, sourceIBAN string, req TransferRequest, description string) (Transaction, error) {
	return b.externalTransfer(ctx, sourceIBAN, req, description, TxSWIFTTransfer, SWIFTFee)
}

func (b *Bank) externalTransfer(ctx context.Context, sourceIBAN string, req TransferRequest,
	description string, txType TransactionType, fee decimal.Decimal) (Transaction, error) {

	if !req.Amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}
	if b.gateway == nil {
		return Transaction{}, ErrServiceUnavailable
	}

	// Validate before the gateway call: if we cannot afford the
	// transfer we must not ask the gateway to execute it.
	total := req.Amount.Add(fee)
	b.mu.Lock()
	source := b.accounts[sourceIBAN]
	if source == nil {
		b.mu.Unlock()
		return Transaction{}, ErrAccountNotFound
	}
	if !source.IsActive() {
		b.mu.Unlock()
		return Transaction{}, ErrInactiveAccount
	}
	if source.Balance.LessThan(total) {
		available := source.Balance
		b.mu.Unlock()
		return Transaction{}, &InsufficientFundsError{IBAN: sourceIBAN, Available: available, Requested: total}
	}
	if req.Execution.IsZero() {
		req.Execution = b.current
	}
	b.mu.Unlock()

	var (
		result TransferResult
		err    error
	)
	if txType == TxSWIFTTransfer {
		result, err = b.gateway.ExecuteSWIFT(ctx, req)
	} else {
		result, err = b.gateway.ExecuteSEPA(ctx, req)
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if !result.Success {
		return Transaction{}, fmt.Errorf("%w: %s", ErrTransferDeclined, result.Message)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// The balance may have moved while the gateway call was in
	// flight; re-check so success never drives the account negative.
	if err := source.Withdraw(total); err != nil {
		return Transaction{}, err
	}
	mechanism := "SEPA"
	if txType == TxSWIFTTransfer {
		mechanism = "SWIFT"
	}
	return b.txlog.Record(Transaction{
		Amount:       req.Amount,
		Type:         txType,
		Description: fmt.Sprintf("%s transfer to %s - %s (Fee: %s) [Gateway TxID: %s]",
			mechanism, req.RecipientIBAN, description, fee.StringFixed(2), result.TransactionID),
		BalanceAfter: source.Balance,
		SourceIBAN:   sourceIBAN,
	}), nil
}
