// Package backend is the typed client for the platform REST API. Every
// response uses the {success, data?, message?} envelope; authentication
// rides on backend-managed session cookies held in the client's cookie jar.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_storefront/internal/domain"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[*http.Response]
	log     zerolog.Logger
}

type Option func(*Client)

// WithTimeout overrides the per-request timeout applied to every call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, log zerolog.Logger, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: baseURL,
		timeout: defaultTimeout,
		log:     log.With().Str("component", "backend").Logger(),
		http: &http.Client{
			Jar:       jar,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "backend-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("circuit breaker state change")
		},
	})

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do issues one request and decodes the envelope. A well-formed
// {success:false} body becomes *APIError no matter the HTTP status; anything
// else that is not a 2xx becomes a retryable ErrUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.http.Do(req)
	})
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend request failed")
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	var probe struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &probe) == nil && probe.Success != nil && !*probe.Success {
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, probe.Message)
		}
		return &APIError{Status: resp.StatusCode, Message: probe.Message}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s: status %d", ErrUnavailable, method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// AccountSnapshot is what GET /@me returns: the user plus the cart and
// address book seeds the storefront session starts from.
type AccountSnapshot struct {
	UserID    int64            `json:"user_id"`
	Email     string           `json:"email"`
	Name      string           `json:"name"`
	Cart      domain.Cart      `json:"cart"`
	Addresses []domain.Address `json:"addresses"`
}

func (c *Client) Me(ctx context.Context) (*AccountSnapshot, error) {
	var out struct {
		Data AccountSnapshot `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/@me", nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) RefreshToken(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/refresh-token", nil, nil)
}

func (c *Client) AddCartItem(ctx context.Context, productID int64, quantity int) (domain.CartLineItem, error) {
	body := map[string]any{"productid": productID, "quantity": quantity}
	var out struct {
		Data domain.CartLineItem `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/cart", body, &out); err != nil {
		return domain.CartLineItem{}, err
	}
	return out.Data, nil
}

// UpdateCartQuantity sets the quantity for a product line. The returned line
// item is authoritative: the server may clamp the quantity or reprice.
func (c *Client) UpdateCartQuantity(ctx context.Context, cartID, productID int64, quantity int) (domain.CartLineItem, error) {
	body := map[string]any{"cartId": cartID, "productId": productID, "quantity": quantity}
	var out struct {
		Data domain.CartLineItem `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, "/cart/update", body, &out); err != nil {
		return domain.CartLineItem{}, err
	}
	return out.Data, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, lineItemID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/remove/%d", lineItemID), nil, nil)
}

func (c *Client) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	var out struct {
		Data []domain.Address `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/addresses", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) CreateAddress(ctx context.Context, addr domain.Address) (domain.Address, error) {
	var out struct {
		Data domain.Address `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/addresses", addr, &out); err != nil {
		return domain.Address{}, err
	}
	return out.Data, nil
}

func (c *Client) UpdateAddress(ctx context.Context, addr domain.Address) (domain.Address, error) {
	var out struct {
		Data domain.Address `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/addresses/%d", addr.ID), addr, &out); err != nil {
		return domain.Address{}, err
	}
	return out.Data, nil
}

func (c *Client) DeleteAddress(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/addresses/%d", id), nil, nil)
}

// CreatePaymentIntent submits the order total and returns the opaque
// PromptPay payload the client renders as a scannable code. The backend
// expects the amount as a string of whole baht.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount int64) (string, error) {
	body := map[string]string{"amount": fmt.Sprintf("%d", amount)}
	var out struct {
		Payload string `json:"payload"`
	}
	if err := c.do(ctx, http.MethodPost, "/payment/promptpay", body, &out); err != nil {
		return "", err
	}
	return out.Payload, nil
}

// OrderRequest is the consumed checkout draft sent on confirmation.
type OrderRequest struct {
	AddressID     int64                 `json:"address_id"`
	Shipping      domain.ShippingMethod `json:"shipping_method"`
	Payment       domain.PaymentMethod  `json:"payment_method"`
	PaymentIntent string                `json:"payment_intent,omitempty"`
	Items         []domain.CartLineItem `json:"items"`
	Summary       domain.PriceSummary   `json:"summary"`
}

func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (domain.Order, error) {
	var out struct {
		Data domain.Order `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/order", req, &out); err != nil {
		return domain.Order{}, err
	}
	return out.Data, nil
}

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	return c.productList(ctx, "/products")
}

func (c *Client) FeaturedProducts(ctx context.Context) ([]domain.Product, error) {
	return c.productList(ctx, "/products-featured")
}

func (c *Client) RelatedProducts(ctx context.Context, productID int64) ([]domain.Product, error) {
	return c.productList(ctx, fmt.Sprintf("/product-related?product=%d", productID))
}

func (c *Client) productList(ctx context.Context, path string) ([]domain.Product, error) {
	var out struct {
		Data []domain.Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) Product(ctx context.Context, id int64) (domain.Product, error) {
	var out struct {
		Data domain.Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/product/%d", id), nil, &out); err != nil {
		return domain.Product{}, err
	}
	return out.Data, nil
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var out struct {
		Data []domain.Category `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/category", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) Brands(ctx context.Context) ([]domain.Brand, error) {
	var out struct {
		Data []domain.Brand `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/brand", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
