// Package paypal is a thin client for the PayPal Orders v2 REST API: obtain
// an access token, create a provider order for an amount, and capture it.
package paypal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// StatusCompleted is the only capture status the storefront trusts.
const StatusCompleted = "COMPLETED"

type Client struct {
	BaseURL    string
	ClientID   string
	Secret     string
	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from PAYPAL_API_URL, PAYPAL_CLIENT_ID and
// PAYPAL_APP_SECRET. The sandbox endpoint is the default.
func NewClientFromEnv() *Client {
	baseURL := os.Getenv("PAYPAL_API_URL")
	if baseURL == "" {
		baseURL = "https://api-m.sandbox.paypal.com"
	}
	return &Client{
		BaseURL:    baseURL,
		ClientID:   os.Getenv("PAYPAL_CLIENT_ID"),
		Secret:     os.Getenv("PAYPAL_APP_SECRET"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// OrderResult is the subset of a provider order response the storefront keeps.
type OrderResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CaptureResult is the subset of a capture response the storefront records on
// the order's payment result.
type CaptureResult struct {
	ID         string
	Status     string
	PayerEmail string
	Amount     string
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AccessToken exchanges the client credentials for a bearer token.
func (c *Client) AccessToken() (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.ClientID, c.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token request failed: %w", err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("paypal token response malformed: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("paypal token response missing access_token")
	}
	return tr.AccessToken, nil
}

// CreateOrder creates a provider order for the given amount (a 2 dp decimal
// string) and returns its id and status.
func (c *Client) CreateOrder(amount string) (*OrderResult, error) {
	token, err := c.AccessToken()
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]string{
					"currency_code": "USD",
					"value":         amount,
				},
			},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/v2/checkout/orders", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal create order failed: %w", err)
	}

	var result OrderResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("paypal create order response malformed: %w", err)
	}
	if result.ID == "" {
		return nil, fmt.Errorf("paypal create order response missing id")
	}
	return &result, nil
}

type captureResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				Amount struct {
					Value string `json:"value"`
				} `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

// CaptureOrder captures a previously created provider order.
func (c *Client) CaptureOrder(orderID string) (*CaptureResult, error) {
	token, err := c.AccessToken()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/v2/checkout/orders/"+orderID+"/capture", bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal capture failed: %w", err)
	}

	var cr captureResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("paypal capture response malformed: %w", err)
	}

	result := &CaptureResult{
		ID:         cr.ID,
		Status:     cr.Status,
		PayerEmail: cr.Payer.EmailAddress,
	}
	if len(cr.PurchaseUnits) > 0 && len(cr.PurchaseUnits[0].Payments.Captures) > 0 {
		result.Amount = cr.PurchaseUnits[0].Payments.Captures[0].Amount.Value
	}
	return result, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
