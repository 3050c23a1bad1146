// Package checkout drives the three-stage wizard: Shipping → Payment →
// Confirmation. Forward moves are guarded per stage, backward moves are free
// except from the initial stage, and the whole thing is serialized so no
// transition is evaluated while a previous guard call is still pending.
package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fjod/go_storefront/internal/backend"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/events"
)

// CartSource is the read side of the cart plus the post-order clear. The
// orchestrator never mutates line items; only the cart service does that.
type CartSource interface {
	Cart() *domain.Cart
	Items() []domain.CartLineItem
	Summary(method domain.ShippingMethod) domain.PriceSummary
	Clear()
}

// Gateway is the slice of the backend API checkout needs.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64) (string, error)
	PlaceOrder(ctx context.Context, req backend.OrderRequest) (domain.Order, error)
}

type Orchestrator struct {
	cart CartSource
	gw   Gateway
	pub  events.Publisher
	log  zerolog.Logger

	mu    sync.Mutex
	stage domain.CheckoutStage
	draft domain.CheckoutDraft
}

// New starts a checkout with the draft defaults: the default address when
// one exists (first address otherwise) and standard shipping.
func New(cart CartSource, gw Gateway, pub events.Publisher, addresses []domain.Address, log zerolog.Logger) *Orchestrator {
	draft := domain.CheckoutDraft{ShippingMethod: domain.ShippingStandard}
	if addr := domain.DefaultOrFirst(addresses); addr != nil {
		draft.SelectedAddressID = addr.ID
	}
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Orchestrator{
		cart:  cart,
		gw:    gw,
		pub:   pub,
		log:   log.With().Str("component", "checkout").Logger(),
		stage: domain.StageShipping,
		draft: draft,
	}
}

func (o *Orchestrator) Stage() domain.CheckoutStage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stage
}

func (o *Orchestrator) Draft() domain.CheckoutDraft {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.draft
}

// Summary prices the live cart against the draft's shipping selection.
func (o *Orchestrator) Summary() domain.PriceSummary {
	o.mu.Lock()
	method := o.draft.ShippingMethod
	o.mu.Unlock()
	return o.cart.Summary(method)
}

func (o *Orchestrator) SelectAddress(id int64) error {
	if id <= 0 {
		return ErrNoAddress
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.draft.SelectedAddressID = id
	return nil
}

func (o *Orchestrator) SelectShipping(method domain.ShippingMethod) error {
	if !method.Valid() {
		return fmt.Errorf("unknown shipping method %q", method)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.draft.ShippingMethod = method
	return nil
}

// SelectPayment sets the payment method. Choosing qr-push immediately
// requests a payment intent for the current total; on failure the method
// stays selected and the caller retries via RequestIntent on user action.
func (o *Orchestrator) SelectPayment(ctx context.Context, method domain.PaymentMethod) error {
	if !method.Valid() {
		return fmt.Errorf("unknown payment method %q", method)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.draft.PaymentMethod = method
	o.draft.PaymentIntentToken = ""
	if method != domain.PaymentQRPush {
		return nil
	}
	return o.acquireIntent(ctx)
}

// RequestIntent re-runs payment intent acquisition. Only called on explicit
// user action; there is no automatic retry.
func (o *Orchestrator) RequestIntent(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.draft.PaymentMethod != domain.PaymentQRPush {
		return ErrNoPaymentMethod
	}
	return o.acquireIntent(ctx)
}

// acquireIntent must be called with o.mu held: the pending guard call keeps
// other transitions queued behind it.
func (o *Orchestrator) acquireIntent(ctx context.Context) error {
	total := o.cart.Summary(o.draft.ShippingMethod).Total
	token, err := o.gw.CreatePaymentIntent(ctx, total)
	if err != nil {
		o.log.Warn().Err(err).Int64("amount", total).Msg("payment intent request failed")
		return fmt.Errorf("create payment intent: %w", err)
	}
	o.draft.PaymentIntentToken = token
	return nil
}

// Advance moves one stage forward when the current stage's exit guard
// passes. A rejected transition leaves the stage unchanged.
func (o *Orchestrator) Advance(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	next := o.stage.Next()
	if !domain.CanTransitionTo(o.stage, next) {
		return IllegalTransitionError
	}

	switch o.stage {
	case domain.StageShipping:
		if o.draft.SelectedAddressID == 0 {
			return ErrNoAddress
		}
	case domain.StagePayment:
		if !o.draft.PaymentMethod.Valid() {
			return ErrNoPaymentMethod
		}
		if o.draft.PaymentMethod == domain.PaymentQRPush && o.draft.PaymentIntentToken == "" {
			return ErrIntentRequired
		}
	}

	o.stage = next
	return nil
}

// Return moves one stage back. Not allowed from the initial stage.
func (o *Orchestrator) Return() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	prev := o.stage.Prev()
	if prev == o.stage {
		return IllegalTransitionError
	}
	o.stage = prev
	return nil
}

// Confirm consumes the draft and the current cart: places the order, clears
// the cart, announces the checkout, and resets the wizard. Only legal at the
// Confirmation stage.
func (o *Orchestrator) Confirm(ctx context.Context) (domain.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.stage != domain.StageConfirmation {
		return domain.Order{}, IllegalTransitionError
	}

	items := o.cart.Items()
	if len(items) == 0 {
		return domain.Order{}, ErrEmptyCart
	}
	summary := o.cart.Summary(o.draft.ShippingMethod)

	order, err := o.gw.PlaceOrder(ctx, backend.OrderRequest{
		AddressID:     o.draft.SelectedAddressID,
		Shipping:      o.draft.ShippingMethod,
		Payment:       o.draft.PaymentMethod,
		PaymentIntent: o.draft.PaymentIntentToken,
		Items:         items,
		Summary:       summary,
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("place order: %w", err)
	}

	o.cart.Clear()

	if err := o.pub.PublishCheckoutCompleted(ctx, events.CheckoutCompleted{
		OrderID:     order.ID,
		UserID:      order.UserID,
		Items:       order.Items,
		Subtotal:    summary.Subtotal,
		ShippingFee: summary.ShippingFee,
		Total:       summary.Total,
		Payment:     o.draft.PaymentMethod,
		CompletedAt: time.Now(),
	}); err != nil {
		// the order exists either way; losing the event must not fail checkout
		o.log.Warn().Err(err).Int64("order_id", order.ID).Msg("checkout event publish failed")
	}

	o.stage = domain.StageShipping
	o.draft = domain.CheckoutDraft{ShippingMethod: domain.ShippingStandard}
	o.log.Info().Int64("order_id", order.ID).Int64("total", summary.Total).Msg("checkout confirmed")
	return order, nil
}
