// Package paystack implements the payment verifier collaborator: direct
// transaction verification against the Paystack API and webhook signature
// validation.
package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client calls the Paystack API with the account secret key.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Paystack client. baseURL is overridable for tests.
func NewClient(secretKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &Client{
		secretKey:  secretKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Transaction is the verification result for one charge reference.
type Transaction struct {
	Status           string
	Reference        string
	CustomerEmail    string
	CustomerCode     string
	SubscriptionCode string
}

// Succeeded reports whether the charge went through.
func (t *Transaction) Succeeded() bool {
	return t.Status == "success"
}

type verifyResponse struct {
	Status bool   `json:"status"`
	Msg    string `json:"message"`
	Data   struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Customer  struct {
			Email        string `json:"email"`
			CustomerCode string `json:"customer_code"`
		} `json:"customer"`
		Plan struct {
			SubscriptionCode string `json:"subscription_code"`
		} `json:"plan_object"`
	} `json:"data"`
}

// VerifyTransaction confirms a transaction reference with Paystack.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	if reference == "" {
		return nil, fmt.Errorf("missing transaction reference")
	}
	url := c.baseURL + "/transaction/verify/" + reference
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var vr verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, err
	}
	if !vr.Status {
		return nil, fmt.Errorf("paystack rejected verification: %s", vr.Msg)
	}

	return &Transaction{
		Status:           vr.Data.Status,
		Reference:        vr.Data.Reference,
		CustomerEmail:    vr.Data.Customer.Email,
		CustomerCode:     vr.Data.Customer.CustomerCode,
		SubscriptionCode: vr.Data.Plan.SubscriptionCode,
	}, nil
}

// ValidSignature checks the x-paystack-signature header: HMAC-SHA-512 over
// the raw payload keyed with the secret, hex encoded, compared in constant
// time.
func (c *Client) ValidSignature(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Event is a decoded webhook notification.
type Event struct {
	Type string `json:"event"`
	Data struct {
		Status   string `json:"status"`
		Customer struct {
			Email        string `json:"email"`
			CustomerCode string `json:"customer_code"`
		} `json:"customer"`
		SubscriptionCode string `json:"subscription_code"`
	} `json:"data"`
}

// ParseEvent decodes a webhook payload. Callers must validate the signature
// first.
func ParseEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Activating reports whether the event should activate a subscription.
func (e *Event) Activating() bool {
	return e.Type == "charge.success" || e.Type == "subscription.create"
}
