package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegean/bank-engine/bank"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func sampleRequest() bank.TransferRequest {
	return bank.TransferRequest{
		Amount:        bank.MustDecimal("100.00"),
		RecipientName: "Nikos Ioannou",
		RecipientIBAN: "DE89370400440532013000",
		BankBIC:       "COBADEFFXXX",
		Execution:     bank.NewDate(2025, 1, 15),
		Charges:       "SHA",
	}
}

func TestClient_ExecuteSEPA_Accepted(t *testing.T) {
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`<?xml version="1.0"?>
			<PaymentResponse>
				<Status>ACCEPTED</Status>
				<TransactionId>GW-42</TransactionId>
			</PaymentResponse>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, quietLogger())
	result, err := c.ExecuteSEPA(context.Background(), sampleRequest())

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "GW-42", result.TransactionID)
	assert.Equal(t, "/transfer/sepa", gotPath)

	// The instruction carries the transfer details.
	body := string(gotBody)
	assert.Contains(t, body, "<Amount>100.00</Amount>")
	assert.Contains(t, body, "<IBAN>DE89370400440532013000</IBAN>")
	assert.Contains(t, body, "<ExecutionDate>2025-01-15</ExecutionDate>")
	assert.Contains(t, body, `mechanism="SEPA"`)
}

func TestClient_ExecuteSWIFT_Declined(t *testing.T) {
	// A reachable gateway that declines is not an error: the verdict
	// comes back as Success == false with the gateway's message.

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transfer/swift", r.URL.Path)
		w.Write([]byte(`<PaymentResponse>
			<Status>REJECTED</Status>
			<Message>beneficiary account closed</Message>
		</PaymentResponse>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, quietLogger())
	result, err := c.ExecuteSWIFT(context.Background(), sampleRequest())

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "beneficiary account closed", result.Message)
}

func TestClient_ServerErrorIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, quietLogger())
	_, err := c.ExecuteSEPA(context.Background(), sampleRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_UnreachableGateway(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", quietLogger())

	_, err := c.ExecuteSEPA(context.Background(), sampleRequest())

	assert.Error(t, err)
}

func TestClient_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<PaymentResponse><NoStatus/></PaymentResponse>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, quietLogger())
	_, err := c.ExecuteSEPA(context.Background(), sampleRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Status")
}
