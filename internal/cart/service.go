// Package cart keeps the session-local cart reconciled with the remote cart
// resource. Mutations apply optimistically and roll back to the exact prior
// state when the backend rejects them; on success the server-returned line
// is authoritative for price and quantity caps.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/pricing"
)

var (
	// ErrInvalidQuantity rejects quantities below 1 before any network call.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	ErrItemNotFound = errors.New("line item not found in cart")
)

// Remote is the slice of the backend API the cart service mutates through.
type Remote interface {
	AddCartItem(ctx context.Context, productID int64, quantity int) (domain.CartLineItem, error)
	UpdateCartQuantity(ctx context.Context, cartID, productID int64, quantity int) (domain.CartLineItem, error)
	RemoveCartItem(ctx context.Context, lineItemID int64) error
}

type Service struct {
	remote Remote
	log    zerolog.Logger

	mu   sync.Mutex
	cart *domain.Cart

	lines *keyedLock
}

// NewService seeds the local state from the session's cart snapshot.
func NewService(remote Remote, seed *domain.Cart, log zerolog.Logger) *Service {
	if seed == nil {
		seed = &domain.Cart{}
	}
	return &Service{
		remote: remote,
		cart:   seed.Clone(),
		log:    log.With().Str("component", "cart").Logger(),
		lines:  newKeyedLock(),
	}
}

// Cart returns a clone of the current local state.
func (s *Service) Cart() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Items returns a copy of the current line items in insertion order.
func (s *Service) Items() []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.CartLineItem, len(s.cart.Items))
	copy(items, s.cart.Items)
	return items
}

// Summary projects the current items into a fresh PriceSummary. Never
// memoized: every call recomputes from the live state.
func (s *Service) Summary(method domain.ShippingMethod) domain.PriceSummary {
	return pricing.Summarize(s.Items(), method)
}

// SetQuantity optimistically sets the quantity for a product line, then
// reconciles with the server. Quantities below 1 never reach the network.
func (s *Service) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	idx := s.cart.FindItem(productID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	lineID := s.cart.Items[idx].ID
	s.mu.Unlock()

	s.lines.acquire(lineID)
	defer s.lines.release(lineID)

	s.mu.Lock()
	idx = s.cart.FindLine(lineID)
	if idx < 0 {
		// removed by a queued mutation ahead of us
		s.mu.Unlock()
		return ErrItemNotFound
	}
	prev := s.cart.Items[idx]
	s.cart.Items[idx].Quantity = quantity
	cartID := s.cart.ID
	s.mu.Unlock()

	confirmed, err := s.remote.UpdateCartQuantity(ctx, cartID, productID, quantity)
	if err != nil {
		s.rollbackLine(lineID, prev)
		s.log.Warn().Err(err).Int64("product_id", productID).Msg("quantity update failed, rolled back")
		return fmt.Errorf("update quantity: %w", err)
	}

	s.reconcileLine(lineID, confirmed)
	return nil
}

// RemoveItem optimistically removes a line; a backend failure re-inserts it
// at its original index so insertion order survives the rollback.
func (s *Service) RemoveItem(ctx context.Context, lineItemID int64) error {
	s.lines.acquire(lineItemID)
	defer s.lines.release(lineItemID)

	s.mu.Lock()
	idx := s.cart.FindLine(lineItemID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	removed := s.cart.Items[idx]
	s.cart.Items = append(s.cart.Items[:idx], s.cart.Items[idx+1:]...)
	s.mu.Unlock()

	if err := s.remote.RemoveCartItem(ctx, lineItemID); err != nil {
		s.reinsertLine(idx, removed)
		s.log.Warn().Err(err).Int64("line_item_id", lineItemID).Msg("remove failed, item restored")
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

// AddItem adds a product to the cart. Not optimistic: the server assigns the
// line-item id, so the local line appears only after confirmation.
func (s *Service) AddItem(ctx context.Context, productID int64, quantity int) (domain.CartLineItem, error) {
	if quantity < 1 {
		return domain.CartLineItem{}, ErrInvalidQuantity
	}

	confirmed, err := s.remote.AddCartItem(ctx, productID, quantity)
	if err != nil {
		return domain.CartLineItem{}, fmt.Errorf("add item: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.cart.FindItem(productID); idx >= 0 {
		// backend merged into an existing line
		s.cart.Items[idx] = confirmed
	} else {
		s.cart.Items = append(s.cart.Items, confirmed)
	}
	return confirmed, nil
}

// Clear drops all local line items. Used after a confirmed order, when the
// backend has already consumed the remote cart.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Items = nil
}

func (s *Service) rollbackLine(lineID int64, prev domain.CartLineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.cart.FindLine(lineID); idx >= 0 {
		s.cart.Items[idx] = prev
	}
}

func (s *Service) reconcileLine(lineID int64, confirmed domain.CartLineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.cart.FindLine(lineID); idx >= 0 {
		s.cart.Items[idx] = confirmed
	}
}

func (s *Service) reinsertLine(idx int, item domain.CartLineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx > len(s.cart.Items) {
		idx = len(s.cart.Items)
	}
	s.cart.Items = append(s.cart.Items[:idx], append([]domain.CartLineItem{item}, s.cart.Items[idx:]...)...)
}
