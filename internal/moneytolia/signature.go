package moneytolia

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Sign computes the HMAC-SHA512 digest of payload keyed with secret and
// returns it as lowercase hex. The gateway signs the exact serialized
// request body, so callers must pass the same bytes that go on the wire.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// AuthHeader builds the X-Signature header value:
// base64("api_key=<key>&sign=<hex>").
func AuthHeader(apiKey, signatureHex string) string {
	signParams := fmt.Sprintf("api_key=%s&sign=%s", apiKey, signatureHex)
	return base64.StdEncoding.EncodeToString([]byte(signParams))
}

// CallbackData carries the fields of an asynchronous payment notification.
type CallbackData struct {
	OrderID         string `json:"order_id"`
	Status          string `json:"status"`
	Amount          string `json:"amount"`
	Hash            string `json:"hash"`
	FailedReasonMsg string `json:"failed_reason_msg,omitempty"`
	TestMode        string `json:"test_mode,omitempty"`
	PaymentType     string `json:"payment_type,omitempty"`
	Currency        string `json:"currency,omitempty"`
	PaymentAmount   string `json:"payment_amount,omitempty"`
}

// VerifyCallback reconstructs the callback hash from the canonical field
// order orderID||secret||status||amount and compares it against the supplied
// hash. hmac.Equal keeps the comparison constant-time, so a forger learns
// nothing from response timing.
func VerifyCallback(cb CallbackData, secret string) bool {
	canonical := cb.OrderID + secret + cb.Status + cb.Amount
	expected := Sign([]byte(canonical), secret)
	return hmac.Equal([]byte(expected), []byte(cb.Hash))
}
