package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyTransactionSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref_123", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {
				"status": "success",
				"reference": "ref_123",
				"customer": {"email": "bisi@example.com", "customer_code": "CUS_x"},
				"plan_object": {"subscription_code": "SUB_y"}
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient("sk_test_abc", srv.URL)
	tx, err := client.VerifyTransaction(context.Background(), "ref_123")
	require.NoError(t, err)
	assert.True(t, tx.Succeeded())
	assert.Equal(t, "bisi@example.com", tx.CustomerEmail)
	assert.Equal(t, "CUS_x", tx.CustomerCode)
	assert.Equal(t, "SUB_y", tx.SubscriptionCode)
}

func TestVerifyTransactionFailedCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": true, "message": "ok", "data": {"status": "failed", "reference": "ref_9"}}`))
	}))
	defer srv.Close()

	tx, err := NewClient("sk", srv.URL).VerifyTransaction(context.Background(), "ref_9")
	require.NoError(t, err)
	assert.False(t, tx.Succeeded())
}

func TestVerifyTransactionRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": false, "message": "Transaction reference not found"}`))
	}))
	defer srv.Close()

	_, err := NewClient("sk", srv.URL).VerifyTransaction(context.Background(), "bogus")
	assert.Error(t, err)
}

func TestVerifyTransactionHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient("sk", srv.URL).VerifyTransaction(context.Background(), "ref")
	assert.Error(t, err)
}

func TestVerifyTransactionEmptyReference(t *testing.T) {
	_, err := NewClient("sk", "").VerifyTransaction(context.Background(), "")
	assert.Error(t, err)
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestValidSignature(t *testing.T) {
	client := NewClient("whsec", "")
	payload := []byte(`{"event":"charge.success"}`)

	assert.True(t, client.ValidSignature(payload, sign("whsec", payload)))
	assert.False(t, client.ValidSignature(payload, sign("wrong-secret", payload)))
	assert.False(t, client.ValidSignature([]byte(`tampered`), sign("whsec", payload)))
	assert.False(t, client.ValidSignature(payload, ""))
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{
		"event": "charge.success",
		"data": {
			"status": "success",
			"customer": {"email": "ayo@example.com", "customer_code": "CUS_1"},
			"subscription_code": "SUB_2"
		}
	}`))
	require.NoError(t, err)
	assert.True(t, ev.Activating())
	assert.Equal(t, "ayo@example.com", ev.Data.Customer.Email)

	ignored, err := ParseEvent([]byte(`{"event": "invoice.update", "data": {}}`))
	require.NoError(t, err)
	assert.False(t, ignored.Activating())

	subCreate, err := ParseEvent([]byte(`{"event": "subscription.create", "data": {}}`))
	require.NoError(t, err)
	assert.True(t, subCreate.Activating())

	_, err = ParseEvent([]byte(`not json`))
	assert.Error(t, err)
}
