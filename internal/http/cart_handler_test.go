package http

import (
	"context"
	"fmt"
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
	"github.com/fjod/go_storefront/internal/domain"
)

type mockCartRemote struct {
	updateErr   error
	updateCalls int
}

func (m *mockCartRemote) AddCartItem(_ context.Context, productID int64, quantity int) (domain.CartLineItem, error) {
	return domain.CartLineItem{ID: productID * 100, ProductID: productID, Quantity: quantity, UnitPrice: 500}, nil
}

func (m *mockCartRemote) UpdateCartQuantity(_ context.Context, _, productID int64, quantity int) (domain.CartLineItem, error) {
	m.updateCalls++
	if m.updateErr != nil {
		return domain.CartLineItem{}, m.updateErr
	}
	return domain.CartLineItem{ID: productID * 100, ProductID: productID, Quantity: quantity, UnitPrice: 1000}, nil
}

func (m *mockCartRemote) RemoveCartItem(context.Context, int64) error {
	return nil
}

func newCartServer(t *testing.T, remote cart.Remote) *httptest.Server {
	t.Helper()
	seed := &domain.Cart{
		ID: 1,
		Items: []domain.CartLineItem{
			{ID: 100, ProductID: 1, Quantity: 2, UnitPrice: 1000},
		},
	}
	svc := cart.NewService(remote, seed, zerolog.Nop())

	router := NewRouter(Handlers{
		Cart:     NewCartHandler(svc),
		Checkout: NewCheckoutHandler(nil),
		Address:  NewAddressHandler(nil),
		Catalog:  NewCatalogHandler(nil),
		Geo:      NewGeoHandler(nil),
	}, zerolog.Nop(), 5*time.Second)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestUpdateQuantity_OK(t *testing.T) {
	srv := newCartServer(t, &mockCartRemote{})

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/cart/items/1", strings.NewReader(`{"quantity":5}`))
	resp, err := srv.Client().Do(req)

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateQuantity_ZeroIsValidationError(t *testing.T) {
	remote := &mockCartRemote{}
	srv := newCartServer(t, remote)

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/cart/items/1", strings.NewReader(`{"quantity":0}`))
	resp, err := srv.Client().Do(req)

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, remote.updateCalls, "validation errors must not reach the backend")
}

func TestUpdateQuantity_BackendFailureIsRetryable502(t *testing.T) {
	remote := &mockCartRemote{updateErr: fmt.Errorf("%w: connection refused", backend.ErrUnavailable)}
	srv := newCartServer(t, remote)

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/cart/items/1", strings.NewReader(`{"quantity":5}`))
	resp, err := srv.Client().Do(req)

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestRemoveItem_UnknownLineIs404(t *testing.T) {
	srv := newCartServer(t, &mockCartRemote{})

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/cart/items/999", nil)
	resp, err := srv.Client().Do(req)

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetSummary(t *testing.T) {
	srv := newCartServer(t, &mockCartRemote{})

	resp, err := srv.Client().Get(srv.URL + "/api/v1/cart/summary?shipping=express")

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetSummary_UnknownShippingRejected(t *testing.T) {
	srv := newCartServer(t, &mockCartRemote{})

	resp, err := srv.Client().Get(srv.URL + "/api/v1/cart/summary?shipping=pigeon")

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
