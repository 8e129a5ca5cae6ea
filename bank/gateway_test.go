package bank_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegean/bank-engine/bank"
)

// stubGateway scripts the external collaborator's behavior.
type stubGateway struct {
	result   bank.TransferResult
	err      error
	requests []bank.TransferRequest
}

func (g *stubGateway) ExecuteSEPA(ctx context.Context, req bank.TransferRequest) (bank.TransferResult, error) {
	g.requests = append(g.requests, req)
	return g.result, g.err
}

func (g *stubGateway) ExecuteSWIFT(ctx context.Context, req bank.TransferRequest) (bank.TransferResult, error) {
	g.requests = append(g.requests, req)
	return g.result, g.err
}

func TestSEPATransfer_Success(t *testing.T) {
	// GIVEN: a funded account and an accepting gateway
	// WHEN: sending 100.00 via SEPA
	// THEN: 101.50 leaves the account (amount + fee) and one record
	//       embeds the gateway's transaction id

	b := newBank(t, jan(15))
	src, err := b.OpenPersonalAccount("cust-1", eur("500.00"))
	require.NoError(t, err)
	gw := &stubGateway{result: bank.TransferResult{Success: true, TransactionID: "GW-123"}}
	b.SetGateway(gw)

	tx, err := b.SEPATransfer(context.Background(), src.IBAN, bank.TransferRequest{
		Amount:        eur("100.00"),
		RecipientName: "Nikos Ioannou",
		RecipientIBAN: "DE89370400440532013000",
		Charges:       "SHA",
	}, "invoice 42")

	require.NoError(t, err)
	assert.True(t, b.Account(src.IBAN).Balance.Equal(eur("398.50")))
	assert.Equal(t, bank.TxSEPATransfer, tx.Type)
	assert.True(t, tx.Amount.Equal(eur("100.00")))
	assert.Contains(t, tx.Description, "GW-123")
	assert.Contains(t, tx.Description, "1.50")

	require.Len(t, gw.requests, 1)
	assert.True(t, gw.requests[0].Execution.Equal(jan(15)), "execution defaults to the simulated date")
}

func TestSWIFTTransfer_ChargesSWIFTFee(t *testing.T) {
	b := newBank(t, jan(15))
	src, err := b.OpenPersonalAccount("cust-1", eur("500.00"))
	require.NoError(t, err)
	b.SetGateway(&stubGateway{result: bank.TransferResult{Success: true, TransactionID: "GW-9"}})

	tx, err := b.SWIFTTransfer(context.Background(), src.IBAN, bank.TransferRequest{
		Amount:        eur("100.00"),
		RecipientIBAN: "US1234",
		BankBIC:       "CHASUS33",
	}, "")

	require.NoError(t, err)
	// 100.00 + 25.00 SWIFT fee.
	assert.True(t, b.Account(src.IBAN).Balance.Equal(eur("375.00")))
	assert.Equal(t, bank.TxSWIFTTransfer, tx.Type)
}

func TestExternalTransfer_ValidatesBeforeCallingGateway(t *testing.T) {
	// An unaffordable transfer never reaches the gateway.

	b := newBank(t, jan(15))
	src, err := b.OpenPersonalAccount("cust-1", eur("100.00"))
	require.NoError(t, err)
	gw := &stubGateway{result: bank.TransferResult{Success: true}}
	b.SetGateway(gw)

	_, err = b.SEPATransfer(context.Background(), src.IBAN, bank.TransferRequest{
		Amount: eur("100.00"), // + 1.50 fee exceeds the balance
	}, "")

	assert.ErrorIs(t, err, bank.ErrInsufficientFunds)
	assert.Empty(t, gw.requests, "gateway must not see the request")
	assert.True(t, b.Account(src.IBAN).Balance.Equal(eur("100.00")))
	assert.Empty(t, b.Transactions())
}

func TestExternalTransfer_DeclinedMovesNothing(t *testing.T) {
	b := newBank(t, jan(15))
	src, err := b.OpenPersonalAccount("cust-1", eur("500.00"))
	require.NoError(t, err)
	b.SetGateway(&stubGateway{result: bank.TransferResult{Success: false, Message: "recipient unknown"}})

	_, err = b.SEPATransfer(context.Background(), src.IBAN, bank.TransferRequest{Amount: eur("100.00")}, "")

	assert.ErrorIs(t, err, bank.ErrTransferDeclined)
	assert.Contains(t, err.Error(), "recipient unknown")
	assert.True(t, b.Account(src.IBAN).Balance.Equal(eur("500.00")))
	assert.Empty(t, b.Transactions())
}

func TestExternalTransfer_TransportFailureMovesNothing(t *testing.T) {
	b := newBank(t, jan(15))
	src, err := b.OpenPersonalAccount("cust-1", eur("500.00"))
	require.NoError(t, err)
	b.SetGateway(&stubGateway{err: errors.New("connection refused")})

	_, err = b.SEPATransfer(context.Background(), src.IBAN, bank.TransferRequest{Amount: eur("100.00")}, "")

	assert.ErrorIs(t, err, bank.ErrServiceUnavailable)
	assert.True(t, b.Account(src.IBAN).Balance.Equal(eur("500.00")))
	assert.Empty(t, b.Transactions())
}

func TestExternalTransfer_NoGatewayConfigured(t *testing.T) {
	b := newBank(t, jan(15))
	src, err := b.OpenPersonalAccount("cust-1", eur("500.00"))
	require.NoError(t, err)

	_, err = b.SEPATransfer(context.Background(), src.IBAN, bank.TransferRequest{Amount: eur("100.00")}, "")

	assert.ErrorIs(t, err, bank.ErrServiceUnavailable)
}
