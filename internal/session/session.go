// Package session turns the cookie-backed backend session into an explicit
// value the rest of the storefront receives as input. There is no ambient
// current-user global, and session refresh is an explicit awaited step, not
// a side effect of a failed fetch.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fjod/go_storefront/internal/backend"
	"github.com/fjod/go_storefront/internal/domain"
)

// Session is the bootstrapped user context: identity plus the cart and
// address book seeds the services start from.
type Session struct {
	UserID    int64
	Email     string
	Name      string
	Cart      *domain.Cart
	Addresses []domain.Address
}

// API is the slice of the backend client bootstrap needs.
type API interface {
	Me(ctx context.Context) (*backend.AccountSnapshot, error)
	RefreshToken(ctx context.Context) error
}

// Bootstrap fetches the account snapshot. On an expired session it runs one
// explicit refresh and retries /@me exactly once; any further failure is
// returned to the caller.
func Bootstrap(ctx context.Context, api API, log zerolog.Logger) (*Session, error) {
	snap, err := api.Me(ctx)
	if errors.Is(err, backend.ErrUnauthorized) {
		log.Info().Msg("session expired, refreshing")
		if refreshErr := api.RefreshToken(ctx); refreshErr != nil {
			return nil, fmt.Errorf("refresh session: %w", refreshErr)
		}
		snap, err = api.Me(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("bootstrap session: %w", err)
	}

	cart := snap.Cart
	return &Session{
		UserID:    snap.UserID,
		Email:     snap.Email,
		Name:      snap.Name,
		Cart:      &cart,
		Addresses: snap.Addresses,
	}, nil
}
