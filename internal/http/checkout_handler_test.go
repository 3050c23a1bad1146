package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_storefront/internal/backend"
	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/domain"
)

type mockGateway struct {
	intentToken string
	order       domain.Order
}

func (m *mockGateway) CreatePaymentIntent(context.Context, int64) (string, error) {
	return m.intentToken, nil
}

func (m *mockGateway) PlaceOrder(context.Context, backend.OrderRequest) (domain.Order, error) {
	return m.order, nil
}

func newCheckoutServer(t *testing.T, addresses []domain.Address) (*httptest.Server, *cart.Service) {
	t.Helper()
	seed := &domain.Cart{
		ID: 1, UserID: 42,
		Items: []domain.CartLineItem{
			{ID: 100, ProductID: 1, Quantity: 2, UnitPrice: 1000},
			{ID: 200, ProductID: 2, Quantity: 1, UnitPrice: 500},
		},
	}
	cartSvc := cart.NewService(&mockCartRemote{}, seed, zerolog.Nop())
	gw := &mockGateway{intentToken: "qr-payload", order: domain.Order{ID: 777, UserID: 42}}
	orc := checkout.New(cartSvc, gw, nil, addresses, zerolog.Nop())

	router := NewRouter(Handlers{
		Cart:     NewCartHandler(cartSvc),
		Checkout: NewCheckoutHandler(orc),
		Address:  NewAddressHandler(nil),
		Catalog:  NewCatalogHandler(nil),
		Geo:      NewGeoHandler(nil),
	}, zerolog.Nop(), 5*time.Second)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, cartSvc
}

func post(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := srv.Client().Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func put(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func TestCheckout_AdvanceWithoutAddressIsConflict(t *testing.T) {
	srv, _ := newCheckoutServer(t, nil)

	resp := post(t, srv, "/api/v1/checkout/advance", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCheckout_FullFlow(t *testing.T) {
	addrs := []domain.Address{{ID: 11, IsDefault: true}}
	srv, cartSvc := newCheckoutServer(t, addrs)

	// Shipping -> Payment
	resp := post(t, srv, "/api/v1/checkout/advance", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// choose qr-push, intent acquired from the gateway
	resp = put(t, srv, "/api/v1/checkout/payment", `{"method":"qr-push"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state CheckoutStateDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	resp.Body.Close()
	assert.Equal(t, "qr-payload", state.Draft.PaymentIntentToken)
	assert.Equal(t, int64(2550), state.Summary.Total)

	// Payment -> Confirmation
	resp = post(t, srv, "/api/v1/checkout/advance", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Confirm places the order and clears the cart
	resp = post(t, srv, "/api/v1/checkout/confirm", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order domain.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&order))
	resp.Body.Close()
	assert.Equal(t, int64(777), order.ID)
	assert.Empty(t, cartSvc.Items())
}

func TestCheckout_ConfirmBeforeConfirmationIsConflict(t *testing.T) {
	srv, _ := newCheckoutServer(t, []domain.Address{{ID: 11}})

	resp := post(t, srv, "/api/v1/checkout/confirm", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCheckout_ShippingSelectionChangesTotal(t *testing.T) {
	srv, _ := newCheckoutServer(t, []domain.Address{{ID: 11}})

	resp := put(t, srv, "/api/v1/checkout/shipping", `{"method":"express"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state CheckoutStateDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	resp.Body.Close()

	assert.Equal(t, int64(2650), state.Summary.Total)
	assert.Equal(t, int64(2500), state.Summary.Subtotal)
}
