package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Initialize_Success(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Authorization URL created",
			"data": {
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code": "abc123",
				"reference": "FP-1A2B3C4D"
			}
		}`))
	}))
	defer ts.Close()

	c := NewClientWithBaseURL("sk_test_xxx", ts.URL)

	out, err := c.Initialize(context.Background(), InitializeInput{
		Email:       "customer@test.com",
		AmountCents: 4500,
		Reference:   "FP-1A2B3C4D",
		CallbackURL: "https://api.fruitpack.test/payments/callback",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk_test_xxx", gotAuth)
	assert.Equal(t, "customer@test.com", gotBody["email"])
	assert.Equal(t, float64(4500), gotBody["amount"])
	assert.Equal(t, "FP-1A2B3C4D", gotBody["reference"])
	assert.Equal(t, "https://api.fruitpack.test/payments/callback", gotBody["callback_url"])

	assert.Equal(t, "https://checkout.paystack.com/abc123", out.AuthorizationURL)
	assert.Equal(t, "abc123", out.AccessCode)
	assert.Equal(t, "FP-1A2B3C4D", out.Reference)
}

func TestClient_Initialize_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status": false, "message": "Invalid key"}`))
	}))
	defer ts.Close()

	c := NewClientWithBaseURL("sk_test_bad", ts.URL)

	_, err := c.Initialize(context.Background(), InitializeInput{
		Email:       "customer@test.com",
		AmountCents: 4500,
		Reference:   "FP-1A2B3C4D",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid key")
}

func TestClient_Verify_ReturnsTransactionStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/transaction/verify/FP-1A2B3C4D", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {"status": "abandoned", "reference": "FP-1A2B3C4D", "amount": 4500}
		}`))
	}))
	defer ts.Close()

	c := NewClientWithBaseURL("sk_test_xxx", ts.URL)

	// dataの中のstatus（取引の最終状態）が返ること。外側のstatusはAPI成否
	st, err := c.Verify(context.Background(), "FP-1A2B3C4D")
	require.NoError(t, err)
	assert.Equal(t, "abandoned", st)
}
