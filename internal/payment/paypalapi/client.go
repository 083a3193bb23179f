// Package paypalapi is a thin client for the PayPal Orders v2 REST API,
// covering only what the capture flow needs: oauth tokens, order creation and
// order capture.
package paypalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ekurin/go_storefront/internal/domain"
	"github.com/ekurin/go_storefront/internal/payment"
)

type Client struct {
	baseURL    string
	clientID   string
	secret     string
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func New(baseURL, clientID, secret string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		secret:   secret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type orderResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID string `json:"id"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Details []struct {
		Issue       string `json:"issue"`
		Description string `json:"description"`
	} `json:"details"`
}

// CreateOrder stages a provider order for the given total (a decimal string,
// e.g. "20.00") and returns the provider order id.
func (c *Client) CreateOrder(ctx context.Context, total string) (string, error) {
	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]string{
					"currency_code": "USD",
					"value":         total,
				},
			},
		},
	}

	var order orderResponse
	if err := c.post(ctx, "/v2/checkout/orders", body, &order); err != nil {
		return "", err
	}
	return order.ID, nil
}

// CaptureOrder finalizes an approved order. A repeat capture is reported as
// payment.ErrAlreadyCaptured so callers can treat it as non-retryable.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*domain.CaptureResult, error) {
	var order orderResponse
	err := c.post(ctx, fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(orderID)), nil, &order)
	if err != nil {
		return nil, err
	}

	result := &domain.CaptureResult{
		OrderID: order.ID,
		Status:  domain.PayPalOrderStatus(order.Status),
	}
	if len(order.PurchaseUnits) > 0 && len(order.PurchaseUnits[0].Payments.Captures) > 0 {
		result.CaptureID = order.PurchaseUnits[0].Payments.Captures[0].ID
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			return fmt.Errorf("marshal paypal request: %w", errMarshal)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build paypal request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paypal request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read paypal response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return c.apiError(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode paypal response: %w", err)
		}
	}
	return nil
}

func (c *Client) apiError(status int, data []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(data, &apiErr); err == nil {
		for _, detail := range apiErr.Details {
			if detail.Issue == "ORDER_ALREADY_CAPTURED" {
				return payment.ErrAlreadyCaptured
			}
		}
		if apiErr.Message != "" {
			return fmt.Errorf("paypal api error (%d): %s", status, apiErr.Message)
		}
	}
	return fmt.Errorf("paypal api error (%d)", status)
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	c.token = tokenResp.AccessToken
	// Refresh a minute early to avoid using a token mid-expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)
	return c.token, nil
}
