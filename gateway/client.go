/*
client.go - HTTP client for the external payment network gateway

PURPOSE:
  Implements bank.PaymentGateway against the payment network's XML
  endpoint. Build an XML payment instruction, POST it, parse the XML
  verdict. Transport and protocol failures surface as errors (the core
  wraps them in ErrServiceUnavailable); an explicit decline comes back
  as a non-error result with Success == false.
*/
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aegean/bank-engine/bank"
)

const (
	// DefaultBaseURL points at the simulated payment network used in
	// development. Override via GATEWAY_URL.
	DefaultBaseURL = "http://147.27.70.44:3020"

	sepaPath  = "/transfer/sepa"
	swiftPath = "/transfer/swift"
)

// Client is the HTTP payment gateway client.
type Client struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

var _ bank.PaymentGateway = (*Client)(nil)

// NewClient creates a gateway client. An empty baseURL selects the
// default endpoint.
func NewClient(baseURL string, log *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logrus.New()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// ExecuteSEPA submits a SEPA credit transfer.
func (c *Client) ExecuteSEPA(ctx context.Context, req bank.TransferRequest) (bank.TransferResult, error) {
	return c.execute(ctx, sepaPath, "SEPA", req)
}

// ExecuteSWIFT submits a SWIFT payment order.
func (c *Client) ExecuteSWIFT(ctx context.Context, req bank.TransferRequest) (bank.TransferResult, error) {
	return c.execute(ctx, swiftPath, "SWIFT", req)
}

func (c *Client) execute(ctx context.Context, path, mechanism string, req bank.TransferRequest) (bank.TransferResult, error) {
	msgID := uuid.NewString()
	payload, err := buildPaymentRequest(msgID, mechanism, req)
	if err != nil {
		return bank.TransferResult{}, fmt.Errorf("failed to build payment request: %w", err)
	}

	body, err := c.send(ctx, path, payload)
	if err != nil {
		return bank.TransferResult{}, err
	}

	result, err := parsePaymentResponse(body)
	if err != nil {
		return bank.TransferResult{}, err
	}

	c.log.WithFields(logrus.Fields{
		"mechanism": mechanism,
		"msg_id":    msgID,
		"success":   result.Success,
		"tx_id":     result.TransactionID,
	}).Info("gateway transfer completed")
	return result, nil
}

// =============================================================================
// WIRE FORMAT
// =============================================================================

// buildPaymentRequest serializes a transfer into the gateway's XML
// payment instruction.
func buildPaymentRequest(msgID, mechanism string, req bank.TransferRequest) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("PaymentInstruction")
	root.CreateAttr("mechanism", mechanism)

	hdr := root.CreateElement("Header")
	hdr.CreateElement("MsgId").SetText(msgID)
	hdr.CreateElement("CreatedAt").SetText(time.Now().UTC().Format(time.RFC3339))

	pmt := root.CreateElement("Payment")
	pmt.CreateElement("Amount").SetText(req.Amount.StringFixed(2))
	pmt.CreateElement("Currency").SetText("EUR")
	pmt.CreateElement("ExecutionDate").SetText(req.Execution.String())
	if req.Charges != "" {
		pmt.CreateElement("ChargeBearer").SetText(req.Charges)
	}

	cdtr := root.CreateElement("Creditor")
	cdtr.CreateElement("Name").SetText(req.RecipientName)
	cdtr.CreateElement("IBAN").SetText(req.RecipientIBAN)
	if req.BankBIC != "" {
		agent := cdtr.CreateElement("Agent")
		agent.CreateElement("BIC").SetText(req.BankBIC)
		if req.BankName != "" {
			agent.CreateElement("Name").SetText(req.BankName)
		}
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

// parsePaymentResponse extracts the gateway verdict from the XML body.
func parsePaymentResponse(raw []byte) (bank.TransferResult, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return bank.TransferResult{}, fmt.Errorf("failed to parse gateway response: %w", err)
	}

	status := doc.FindElement("//PaymentResponse/Status")
	if status == nil {
		return bank.TransferResult{}, fmt.Errorf("gateway response missing Status element")
	}

	result := bank.TransferResult{
		Success: strings.EqualFold(status.Text(), "ACCEPTED"),
	}
	if el := doc.FindElement("//PaymentResponse/TransactionId"); el != nil {
		result.TransactionID = el.Text()
	}
	if el := doc.FindElement("//PaymentResponse/Message"); el != nil {
		result.Message = el.Text()
	}
	return result, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) send(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected gateway status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	c.log.Debugf("gateway XML response: %s", string(body))
	return body, nil
}
