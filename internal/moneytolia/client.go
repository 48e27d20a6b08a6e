package moneytolia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"kartvizit-service/internal/util"
)

// Config configures the gateway client. All fields except Timeout are
// required; base URL selection (production vs sandbox) happens in the
// application config, not here.
type Config struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Timeout   time.Duration
}

// Client talks to the Moneytolia merchant API. It performs exactly one
// outbound call per operation and never retries: payment creation is not
// safe to replay without a fresh idempotency key.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient validates the configuration and builds a client. A missing key
// or secret is a configuration error and fails here, not on first use.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("moneytolia: api key is required")
	}
	if cfg.APISecret == "" {
		return nil, fmt.Errorf("moneytolia: api secret is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("moneytolia: base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     util.GetLogger(),
	}, nil
}

// BasketItem describes one line of the checkout basket as the gateway
// expects it.
type BasketItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	ExtraField  string  `json:"extra_field"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type paymentRequest struct {
	Amount             float64      `json:"amount"`
	Currency           string       `json:"currency"`
	MaxInstallment     int          `json:"max_installment"`
	Secure             bool         `json:"secure"`
	PreAuth            bool         `json:"pre_auth"`
	BillingFirstName   string       `json:"billing_first_name"`
	BillingLastName    string       `json:"billing_last_name"`
	BillingEmail       string       `json:"billing_email"`
	BillingPhoneNumber string       `json:"billing_phone_number"`
	BillingCity        string       `json:"billing_city"`
	BillingCountry     string       `json:"billing_country"`
	BillingAddress     string       `json:"billing_address"`
	BillingPostalCode  string       `json:"billing_postal_code"`
	ClientIP           string       `json:"client_ip"`
	Locale             string       `json:"locale"`
	OKURL              string       `json:"ok_url"`
	FailURL            string       `json:"fail_url"`
	OrderID            string       `json:"order_id"`
	DeviceType         string       `json:"device_type"`
	BasketItems        []BasketItem `json:"basket_items"`
}

type gatewayResponse struct {
	Success    bool    `json:"success"`
	PaymentURL string  `json:"payment_url"`
	Message    string  `json:"message"`
	Status     string  `json:"status"`
	Amount     float64 `json:"amount"`
}

// CreatePaymentParams is the caller-facing input for CreatePayment.
type CreatePaymentParams struct {
	OrderNumber  string
	Amount       decimal.Decimal
	CustomerName string
	Email        string
	Phone        string
	City         string
	Country      string
	Address      string
	PostalCode   string
	ClientIP     string
	OKURL        string
	FailURL      string
	BasketItems  []BasketItem
}

// Result normalizes the outcome of a payment creation. Success with a
// redirect URL, or failure with a message; transport and parse errors are
// folded into failures so callers never have to distinguish them.
type Result struct {
	Success    bool
	PaymentURL string
	ErrorMsg   string
}

// StatusResult is the outcome of a manual transaction status poll.
type StatusResult struct {
	Success  bool
	Status   string
	Amount   decimal.Decimal
	ErrorMsg string
}

const placeholderLastName = "Müşteri"

// SplitName applies the gateway's billing name policy: first token is the
// first name, the remaining tokens joined form the last name, with a fixed
// placeholder when nothing remains.
func SplitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return name, placeholderLastName
	}
	first = parts[0]
	if len(parts) == 1 {
		return first, placeholderLastName
	}
	return first, strings.Join(parts[1:], " ")
}

// CreatePayment builds the checkout request, signs it and performs the call.
// It never returns a Go error: every failure mode collapses into
// Result{Success: false}.
func (c *Client) CreatePayment(ctx context.Context, params CreatePaymentParams) Result {
	ctx, span := util.StartSpan(ctx, "moneytolia.CreatePayment")
	defer span.End()

	firstName, lastName := SplitName(params.CustomerName)

	amount, _ := params.Amount.Float64()
	req := paymentRequest{
		Amount:             amount,
		Currency:           "TRY",
		MaxInstallment:     3,
		Secure:             true,
		PreAuth:            false,
		BillingFirstName:   firstName,
		BillingLastName:    lastName,
		BillingEmail:       params.Email,
		BillingPhoneNumber: params.Phone,
		BillingCity:        params.City,
		BillingCountry:     params.Country,
		BillingAddress:     params.Address,
		BillingPostalCode:  params.PostalCode,
		ClientIP:           params.ClientIP,
		Locale:             "TR",
		OKURL:              params.OKURL,
		FailURL:            params.FailURL,
		OrderID:            params.OrderNumber,
		DeviceType:         "desktop_web",
		BasketItems:        params.BasketItems,
	}

	resp, err := c.post(ctx, "/checkout/create", req)
	if err != nil {
		c.logger.Error("Moneytolia checkout request failed",
			zap.String("order_number", params.OrderNumber),
			zap.Error(err))
		return Result{Success: false, ErrorMsg: "payment gateway unreachable"}
	}

	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "payment could not be created"
		}
		return Result{Success: false, ErrorMsg: msg}
	}

	return Result{Success: true, PaymentURL: resp.PaymentURL}
}

// VerifyPayment polls the gateway for the current transaction status of an
// order.
func (c *Client) VerifyPayment(ctx context.Context, orderNumber string) StatusResult {
	ctx, span := util.StartSpan(ctx, "moneytolia.VerifyPayment")
	defer span.End()

	resp, err := c.post(ctx, "/transaction/status", map[string]string{"order_id": orderNumber})
	if err != nil {
		c.logger.Error("Moneytolia status request failed",
			zap.String("order_number", orderNumber),
			zap.Error(err))
		return StatusResult{Success: false, ErrorMsg: "payment gateway unreachable"}
	}

	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "payment status unavailable"
		}
		return StatusResult{Success: false, ErrorMsg: msg}
	}

	return StatusResult{
		Success: true,
		Status:  resp.Status,
		Amount:  decimal.NewFromFloat(resp.Amount),
	}
}

// VerifyCallback checks a callback's authenticity against this client's
// secret.
func (c *Client) VerifyCallback(cb CallbackData) bool {
	return VerifyCallback(cb, c.cfg.APISecret)
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*gatewayResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	signature := Sign(payload, c.cfg.APISecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", AuthHeader(c.cfg.APIKey, signature))

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	var parsed gatewayResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &parsed, nil
}
