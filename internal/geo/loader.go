package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultDatasetURL is the public mirror of the Thai province dataset the
// original storefront loads its address hierarchy from.
const DefaultDatasetURL = "https://raw.githubusercontent.com/kongvut/thai-province-data/master/api_province_with_amphure_tambon.json"

// Loader fetches the geo dataset once per process. Concurrent first loads
// collapse into a single fetch; after a successful load every call returns
// the cached dataset.
type Loader struct {
	url     string
	http    *http.Client
	log     zerolog.Logger
	sfg     singleflight.Group
	mu      sync.RWMutex
	dataset []Province
}

func NewLoader(url string, log zerolog.Logger) *Loader {
	if url == "" {
		url = DefaultDatasetURL
	}
	return &Loader{
		url:  url,
		log:  log.With().Str("component", "geo").Logger(),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithHTTPClient replaces the dataset HTTP client (tests).
func (l *Loader) WithHTTPClient(h *http.Client) *Loader {
	l.http = h
	return l
}

func (l *Loader) Load(ctx context.Context) ([]Province, error) {
	l.mu.RLock()
	cached := l.dataset
	l.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := l.sfg.Do("dataset", func() (interface{}, error) {
		provinces, err := l.fetch(ctx)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.dataset = provinces
		l.mu.Unlock()
		l.log.Info().Int("provinces", len(provinces)).Msg("geo dataset loaded")
		return provinces, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Province), nil
}

func (l *Loader) fetch(ctx context.Context) ([]Province, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build dataset request: %w", err)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch geo dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch geo dataset: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read geo dataset: %w", err)
	}

	var provinces []Province
	if err := json.Unmarshal(data, &provinces); err != nil {
		return nil, fmt.Errorf("decode geo dataset: %w", err)
	}
	return provinces, nil
}
