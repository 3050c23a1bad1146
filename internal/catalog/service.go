// Package catalog serves product, category and brand reads through a
// read-through cache with stampede protection on misses.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_storefront/internal/domain"
)

// Source is the slice of the backend API the catalog reads from.
type Source interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id int64) (domain.Product, error)
	FeaturedProducts(ctx context.Context) ([]domain.Product, error)
	RelatedProducts(ctx context.Context, productID int64) ([]domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Brands(ctx context.Context) ([]domain.Brand, error)
}

type Service struct {
	source Source
	cache  Cache
	sfg    singleflight.Group
	log    zerolog.Logger
}

func NewService(source Source, cache Cache, log zerolog.Logger) *Service {
	return &Service{
		source: source,
		cache:  cache,
		log:    log.With().Str("component", "catalog").Logger(),
	}
}

// cached runs the read-through: cache hit wins, misses collapse into one
// backend fetch via singleflight, and cache failures degrade to direct
// reads instead of failing the request.
func cached[T any](ctx context.Context, s *Service, key string, fetch func(context.Context) (T, error)) (T, error) {
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		data, cacheErr := s.cache.Get(ctx, key)
		if cacheErr == nil {
			var out T
			if err := json.Unmarshal(data, &out); err == nil {
				return out, nil
			}
			// corrupt entry, fall through to the backend
		} else if !errors.Is(cacheErr, ErrCacheMiss) {
			s.log.Warn().Err(cacheErr).Str("key", key).Msg("cache get failed")
		}

		out, err := fetch(ctx)
		if err != nil {
			return out, err
		}

		if data, err := json.Marshal(out); err == nil {
			go func() {
				if err := s.cache.Set(context.Background(), key, data); err != nil {
					s.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
				}
			}()
		}
		return out, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	return cached(ctx, s, "products", s.source.Products)
}

func (s *Service) Product(ctx context.Context, id int64) (domain.Product, error) {
	return cached(ctx, s, fmt.Sprintf("product:%d", id), func(ctx context.Context) (domain.Product, error) {
		return s.source.Product(ctx, id)
	})
}

func (s *Service) Featured(ctx context.Context) ([]domain.Product, error) {
	return cached(ctx, s, "products:featured", s.source.FeaturedProducts)
}

func (s *Service) Related(ctx context.Context, productID int64) ([]domain.Product, error) {
	return cached(ctx, s, fmt.Sprintf("products:related:%d", productID), func(ctx context.Context) ([]domain.Product, error) {
		return s.source.RelatedProducts(ctx, productID)
	})
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return cached(ctx, s, "categories", s.source.Categories)
}

func (s *Service) Brands(ctx context.Context) ([]domain.Brand, error) {
	return cached(ctx, s, "brands", s.source.Brands)
}
