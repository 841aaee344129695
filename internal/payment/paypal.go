// Package payment wraps the PayPal Orders v2 REST API behind the two
// operations the appointment workflow needs: create a payable order and
// capture a previously approved one. Credentials and the base URL
// (sandbox or live) come from configuration; no retry logic is layered on
// top of the gateway.
package payment

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

	"github.com/google/uuid"
)

// Order is the result of a successful order creation: the gateway's order
// id and the URL the payer must be redirected to for approval.
type Order struct {
	ID          string
	ApprovalURL string
}

// CaptureResult reports the gateway's status for a capture attempt. The
// workflow treats anything other than "COMPLETED" as a failed payment.
type CaptureResult struct {
	Status string
}

// Client talks to the PayPal REST API. OAuth2 client-credentials tokens
// are cached until shortly before expiry and refreshed on demand.
type Client struct {
	baseURL  string
	clientID string
	secret   string
	http     *http.Client

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// NewClient builds a Client for the given environment. The HTTP client
// carries an explicit timeout so a hung gateway call cannot stall a
// request handler indefinitely.
func NewClient(baseURL, clientID, secret string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		secret:   secret,
		http:     &http.Client{Timeout: 20 * time.Second},
	}
}

// CreateOrder creates a CAPTURE-intent order for the given USD value
// (formatted with two decimals, e.g. "18.18") and returns the order id
// and approval link. A fresh PayPal-Request-Id header makes accidental
// duplicate submissions idempotent on the gateway side.
func (c *Client) CreateOrder(ctx context.Context, value string) (Order, error) {
	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{"amount": map[string]string{"currency_code": "USD", "value": value}},
		},
	}
	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Links  []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	headers := map[string]string{"PayPal-Request-Id": uuid.NewString()}
	if err := c.postJSON(ctx, "/v2/checkout/orders", body, headers, &resp); err != nil {
		return Order{}, err
	}
	out := Order{ID: resp.ID}
	for _, l := range resp.Links {
		if l.Rel == "approve" {
			out.ApprovalURL = l.Href
			break
		}
	}
	if out.ID == "" {
		return Order{}, fmt.Errorf("paypal: create order returned no id")
	}
	return out, nil
}

// CaptureOrder captures an approved order and returns the gateway status.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (CaptureResult, error) {
	var resp struct {
		Status string `json:"status"`
	}
	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	if err := c.postJSON(ctx, path, nil, nil, &resp); err != nil {
		return CaptureResult{}, err
	}
	return CaptureResult{Status: resp.Status}, nil
}

// postJSON performs an authenticated POST and decodes the JSON response.
// Non-2xx responses are returned as errors carrying the gateway's body.
func (c *Client) postJSON(ctx context.Context, path string, body interface{}, headers map[string]string, out interface{}) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("paypal: %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out != nil && len(raw) > 0 {
		return json.Unmarshal(raw, out)
	}
	return nil
}

// accessToken returns a cached OAuth2 token, requesting a new one via the
// client-credentials grant when the cache is empty or about to expire.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExp.Add(-60*time.Second)) {
		return c.token, nil
	}
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal: token request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("paypal: token response missing access_token")
	}
	c.token = tok.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.token, nil
}
