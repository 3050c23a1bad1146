package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/go_storefront/internal/address"
	"github.com/fjod/go_storefront/internal/backend"
	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/events"
	"github.com/fjod/go_storefront/internal/geo"
	sfhttp "github.com/fjod/go_storefront/internal/http"
	"github.com/fjod/go_storefront/internal/session"
	"github.com/fjod/go_storefront/pkg/config"
	"github.com/fjod/go_storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New("storefront", cfg.LogLevel, cfg.LogJSON)

	api, err := backend.New(cfg.BackendURL, log, backend.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		log.Fatal().Err(err).Msg("create backend client")
	}

	bootCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	sess, err := session.Bootstrap(bootCtx, api, log)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap session")
	}
	log.Info().Int64("user_id", sess.UserID).Msg("session bootstrapped")

	geoLoader := geo.NewLoader(cfg.GeoDatasetURL, log)

	var cache catalog.Cache
	if cfg.RedisAddr != "" {
		cache = catalog.NewRedisCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis catalog cache")
	} else {
		cache = catalog.NewMemoryCache(10 * time.Minute)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer kp.Close()
		publisher = kp
		log.Info().Strs("brokers", cfg.KafkaBrokers).Msg("checkout events enabled")
	}

	cartSvc := cart.NewService(api, sess.Cart, log)
	orchestrator := checkout.New(cartSvc, api, publisher, sess.Addresses, log)
	catalogSvc := catalog.NewService(api, cache, log)
	addressSvc := address.NewService(api, geoLoader, log)

	router := sfhttp.NewRouter(sfhttp.Handlers{
		Cart:     sfhttp.NewCartHandler(cartSvc),
		Checkout: sfhttp.NewCheckoutHandler(orchestrator),
		Address:  sfhttp.NewAddressHandler(addressSvc),
		Catalog:  sfhttp.NewCatalogHandler(catalogSvc),
		Geo:      sfhttp.NewGeoHandler(geoLoader),
	}, log, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("storefront listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server exited")
}
