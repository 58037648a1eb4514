// internal/domain/payment/cashfree.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/streetr/ordering-backend/internal/config"
)

// Gateway creates payment orders with a provider. It is the only collaborator
// the checkout orchestrator talks to for token acquisition, so tests can
// substitute it.
type Gateway interface {
	CreateOrder(ctx context.Context, req *OrderRequest) (*OrderToken, error)
}

// OrderRequest carries what the gateway needs to open a payment order
type OrderRequest struct {
	Amount        decimal.Decimal
	CustomerID    uint
	CustomerPhone string
	CustomerEmail string
}

// OrderToken is the provider-side order handle the client pays against
type OrderToken struct {
	OrderID        string `json:"order_id"`
	PaymentSession string `json:"payment_session_id"`
}

// CashfreeClient talks to the Cashfree PG orders API
type CashfreeClient struct {
	cfg        config.CashfreeConfig
	httpClient *http.Client
}

// NewCashfreeClient creates a new Cashfree API client
func NewCashfreeClient(cfg config.CashfreeConfig) *CashfreeClient {
	return &CashfreeClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type cashfreeOrderRequest struct {
	OrderID         string            `json:"order_id"`
	OrderAmount     decimal.Decimal   `json:"order_amount"`
	OrderCurrency   string            `json:"order_currency"`
	CustomerDetails cashfreeCustomer  `json:"customer_details"`
	OrderMeta       cashfreeOrderMeta `json:"order_meta"`
	OrderNote       string            `json:"order_note,omitempty"`
}

type cashfreeCustomer struct {
	CustomerID    string `json:"customer_id"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

type cashfreeOrderMeta struct {
	ReturnURL string `json:"return_url,omitempty"`
	NotifyURL string `json:"notify_url,omitempty"`
}

type cashfreeOrderResponse struct {
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
	OrderStatus      string `json:"order_status"`
}

// CreateOrder opens a payment order with Cashfree and returns the session
// token the client presents the checkout against. Amounts are sent rounded to
// two decimal places, matching what the customer is shown.
func (c *CashfreeClient) CreateOrder(ctx context.Context, req *OrderRequest) (*OrderToken, error) {
	if req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("order amount must be positive")
	}

	body := cashfreeOrderRequest{
		OrderID:       fmt.Sprintf("order_%s", uuid.New().String()),
		OrderAmount:   req.Amount.Round(2),
		OrderCurrency: "INR",
		CustomerDetails: cashfreeCustomer{
			CustomerID:    fmt.Sprintf("customer_%d", req.CustomerID),
			CustomerPhone: req.CustomerPhone,
			CustomerEmail: req.CustomerEmail,
		},
		OrderMeta: cashfreeOrderMeta{
			ReturnURL: c.cfg.ReturnURL,
			NotifyURL: c.cfg.NotifyURL,
		},
	}

	respBody, err := c.makeAPICall(ctx, http.MethodPost, "/pg/orders", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	var orderResp cashfreeOrderResponse
	if err := json.Unmarshal(respBody, &orderResp); err != nil {
		return nil, fmt.Errorf("failed to parse payment order response: %w", err)
	}
	if orderResp.PaymentSessionID == "" {
		return nil, fmt.Errorf("payment order response missing session id")
	}

	return &OrderToken{
		OrderID:        orderResp.OrderID,
		PaymentSession: orderResp.PaymentSessionID,
	}, nil
}

// makeAPICall makes HTTP calls to the Cashfree API
func (c *CashfreeClient) makeAPICall(ctx context.Context, method, endpoint string, data interface{}) ([]byte, error) {
	var reqBody []byte
	var err error

	if data != nil {
		reqBody, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", c.cfg.APIVersion)
	req.Header.Set("x-client-id", c.cfg.AppID)
	req.Header.Set("x-client-secret", c.cfg.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make API call: %w", err)
	}
	defer resp.Body.Close()

	var respBody bytes.Buffer
	if _, err := respBody.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API call failed with status %d: %s", resp.StatusCode, respBody.String())
	}

	return respBody.Bytes(), nil
}
