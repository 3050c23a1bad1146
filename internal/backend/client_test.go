package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, zerolog.Nop(), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c, srv
}

func TestUpdateCartQuantity_Success(t *testing.T) {
	var gotBody map[string]any
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/cart/update", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":7,"product_id":10,"quantity":3,"unit_price":1000}}`))
	}))

	item, err := c.UpdateCartQuantity(context.Background(), 1, 10, 3)

	require.NoError(t, err)
	assert.Equal(t, int64(7), item.ID)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, int64(1000), item.UnitPrice)
	assert.Equal(t, float64(3), gotBody["quantity"])
	assert.Equal(t, float64(10), gotBody["productId"])
}

func TestDo_BusinessErrorIsNotRetryable(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"product out of stock"}`))
	}))

	_, err := c.AddCartItem(context.Background(), 10, 1)

	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "product out of stock", apiErr.Message)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.False(t, Retryable(err))
}

func TestDo_ServerErrorIsRetryable(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))

	err := c.RemoveCartItem(context.Background(), 5)

	require.Error(t, err)
	assert.True(t, Retryable(err))
}

func TestDo_NetworkFailureIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := New(srv.URL, zerolog.Nop(), WithHTTPClient(srv.Client()), WithTimeout(time.Second))
	require.NoError(t, err)
	srv.Close() // connection refused from here on

	_, err = client.Me(context.Background())

	require.Error(t, err)
	assert.True(t, Retryable(err))
}

func TestDo_UnauthorizedIsSentinel(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"token expired"}`))
	}))

	_, err := c.Me(context.Background())

	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreatePaymentIntent_SendsAmountAsString(t *testing.T) {
	var gotBody map[string]string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment/promptpay", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"success":true,"payload":"00020101021129370016A000000677010111"}`))
	}))

	payload, err := c.CreatePaymentIntent(context.Background(), 2550)

	require.NoError(t, err)
	assert.Equal(t, "2550", gotBody["amount"])
	assert.Equal(t, "00020101021129370016A000000677010111", payload)
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := New(srv.URL, zerolog.Nop(), WithHTTPClient(srv.Client()), WithTimeout(time.Second))
	require.NoError(t, err)
	srv.Close()

	for i := 0; i < 5; i++ {
		_, _ = client.Me(context.Background())
	}

	// Breaker is open now; the failure is still surfaced as retryable.
	_, err = client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, Retryable(err))
}
