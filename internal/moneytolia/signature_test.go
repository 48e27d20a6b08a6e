package moneytolia

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignDeterministic(t *testing.T) {
	a := Sign([]byte("payload"), "secret")
	b := Sign([]byte("payload"), "secret")
	assert.Equal(t, a, b)

	// SHA512 digest is 64 bytes, 128 hex characters.
	assert.Len(t, a, 128)
	assert.Equal(t, strings.ToLower(a), a)
}

func TestSignKeyAndPayloadSensitive(t *testing.T) {
	base := Sign([]byte("payload"), "secret")

	assert.NotEqual(t, base, Sign([]byte("payload2"), "secret"))
	assert.NotEqual(t, base, Sign([]byte("payload"), "secret2"))
	assert.NotEqual(t, base, Sign([]byte(""), "secret"))
}

func TestAuthHeader(t *testing.T) {
	header := AuthHeader("my-key", "abc123")

	decoded, err := base64.StdEncoding.DecodeString(header)
	require.NoError(t, err)
	assert.Equal(t, "api_key=my-key&sign=abc123", string(decoded))
}

func TestVerifyCallback(t *testing.T) {
	const secret = "callback-secret"

	cb := CallbackData{
		OrderID: "DK1700000000001",
		Status:  "paid",
		Amount:  "300.00",
	}
	cb.Hash = Sign([]byte(cb.OrderID+secret+cb.Status+cb.Amount), secret)

	assert.True(t, VerifyCallback(cb, secret))
	assert.False(t, VerifyCallback(cb, "other-secret"))
}

func TestVerifyCallbackRejectsMutations(t *testing.T) {
	const secret = "callback-secret"

	valid := CallbackData{
		OrderID: "DK1700000000001",
		Status:  "paid",
		Amount:  "300.00",
	}
	valid.Hash = Sign([]byte(valid.OrderID+secret+valid.Status+valid.Amount), secret)

	mutations := map[string]func(cb *CallbackData){
		"order_id": func(cb *CallbackData) { cb.OrderID = "DK1700000000002" },
		"status":   func(cb *CallbackData) { cb.Status = "failed" },
		"amount":   func(cb *CallbackData) { cb.Amount = "1.00" },
		"hash": func(cb *CallbackData) {
			if cb.Hash[0] == 'a' {
				cb.Hash = "b" + cb.Hash[1:]
			} else {
				cb.Hash = "a" + cb.Hash[1:]
			}
		},
		"no_hash": func(cb *CallbackData) { cb.Hash = "" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cb := valid
			mutate(&cb)
			assert.False(t, VerifyCallback(cb, secret))
		})
	}
}
