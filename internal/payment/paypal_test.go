package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePayPal stands in for the sandbox API: token endpoint plus order
// create and capture.
func fakePayPal(t *testing.T, tokenCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	})

	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("PayPal-Request-Id") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var body struct {
			Intent        string `json:"intent"`
			PurchaseUnits []struct {
				Amount struct {
					CurrencyCode string `json:"currency_code"`
					Value        string `json:"value"`
				} `json:"amount"`
			} `json:"purchase_units"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "CAPTURE", body.Intent)
		require.Len(t, body.PurchaseUnits, 1)
		assert.Equal(t, "USD", body.PurchaseUnits[0].Amount.CurrencyCode)
		assert.Equal(t, "18.18", body.PurchaseUnits[0].Amount.Value)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "5O190127TN364715T",
			"status": "CREATED",
			"links": []map[string]string{
				{"href": "https://paypal.test/self", "rel": "self"},
				{"href": "https://paypal.test/checkoutnow?token=5O190127TN364715T", "rel": "approve"},
			},
		})
	})

	mux.HandleFunc("/v2/checkout/orders/5O190127TN364715T/capture", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "COMPLETED"})
	})

	return httptest.NewServer(mux)
}

func TestCreateAndCaptureOrder(t *testing.T) {
	var tokenCalls int32
	srv := fakePayPal(t, &tokenCalls)
	defer srv.Close()

	c := NewClient(srv.URL, "client-id", "client-secret")

	order, err := c.CreateOrder(context.Background(), "18.18")
	require.NoError(t, err)
	assert.Equal(t, "5O190127TN364715T", order.ID)
	assert.Equal(t, "https://paypal.test/checkoutnow?token=5O190127TN364715T", order.ApprovalURL)

	res, err := c.CaptureOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", res.Status)

	// The token is cached across both calls.
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
}

func TestCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "t", "expires_in": 3600})
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "id", "secret")
	_, err := c.CreateOrder(context.Background(), "18.18")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestAccessTokenFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad", "creds")
	_, err := c.CreateOrder(context.Background(), "1.00")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token request returned 401")
}
