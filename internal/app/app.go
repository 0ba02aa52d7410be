package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"marketsnap/internal/adapters/httpclient"
	"marketsnap/internal/api"
	"marketsnap/internal/asset"
	"marketsnap/internal/cache"
	"marketsnap/internal/config"
	"marketsnap/internal/domain"
	"marketsnap/internal/market"
	"marketsnap/internal/market/handler"
	"marketsnap/internal/metrics"
	httpserver "marketsnap/internal/platform/http"
	"marketsnap/internal/rates"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// Run wires the application components, starts HTTP server and cache warmer
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	if parsedLvl, parseErr := logrus.ParseLevel(appCfg.Logging.Level); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(registry)

	// Base HTTP client (configurable timeout)
	baseHTTPClient := &http.Client{Timeout: seconds(appCfg.HTTPClient.TimeoutSeconds, 15*time.Second)}

	// External clients
	providers := appCfg.Providers
	primaryClient := httpclient.NewCriptoYaClient(baseHTTPClient, strings.TrimSuffix(providers.Primary.BaseURL, "/"), appMetrics)
	secondaryClient := httpclient.NewDolarAPIClient(baseHTTPClient, strings.TrimSuffix(providers.Secondary.BaseURL, "/"), appMetrics)
	quoteClient := httpclient.NewYahooClient(baseHTTPClient, strings.TrimSuffix(providers.Quotes.BaseURL, "/"), providers.Quotes.UserAgent, appMetrics)

	// Fetchers behind TTL caches
	aggregator := rates.NewAggregator(
		primaryClient,
		secondaryClient,
		seconds(providers.Primary.TimeoutSeconds, rates.DefaultPrimaryTimeout),
		seconds(providers.Secondary.TimeoutSeconds, rates.DefaultSecondaryTimeout),
	)
	assetFetcher := asset.NewFetcher(quoteClient, seconds(providers.Quotes.TimeoutSeconds, asset.DefaultTimeout))

	freshness := seconds(appCfg.Cache.FreshnessSeconds, cache.DefaultFreshness)
	ratesCache := cache.New[string, domain.ExchangeRates](
		"rates",
		freshness,
		func(ctx context.Context, _ string) (domain.ExchangeRates, error) { return aggregator.Fetch(ctx) },
		cache.WithObserver[string, domain.ExchangeRates](appMetrics),
	)
	assetCache := cache.New[domain.AssetKey, domain.AssetSnapshot](
		"assets",
		freshness,
		assetFetcher.Fetch,
		cache.WithObserver[domain.AssetKey, domain.AssetSnapshot](appMetrics),
	)

	// Services
	marketService := market.NewService(ratesCache, assetCache)
	validator := market.NewValidator(appCfg.Defaults.Ticker, appCfg.Defaults.Months)

	if appCfg.Warmup.Enabled {
		keys, keysErr := warmKeys(validator, appCfg.Warmup)
		if keysErr != nil {
			logrus.WithError(keysErr).Error("Invalid warm-up tickers")
			return keysErr
		}
		warmInterval := seconds(appCfg.Warmup.IntervalSeconds, 4*time.Minute)
		if warmInterval >= freshness {
			logrus.Warnf("Warm-up interval %s is not shorter than cache freshness %s; warmed entries will go stale between ticks", warmInterval, freshness)
		}
		warmer := market.NewWarmer(marketService, keys, warmInterval, appMetrics)
		defer func() {
			if shutDownErr := warmer.Shutdown(); shutDownErr != nil {
				logrus.Errorf("Warmer shutdown error: %v", shutDownErr)
			}
		}()
		// Start warmer tied to root context
		if startErr := warmer.Start(ctx); startErr != nil {
			logrus.WithError(startErr).Error("Failed to start cache warmer")
			return startErr
		}
		logrus.Infof("✅ Cache warmer started for %d tickers", len(keys))
	}

	// Handlers and router
	marketHandler := handler.NewMarketHandler(validator, marketService)
	router := api.NewRouter(marketHandler, appMetrics, registry)

	logrus.Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		// Cancel the root context to stop the warmer and other in-flight work
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}

// warmKeys validates the configured tickers the same way request parameters are validated,
// so warmed entries share cache keys with real requests.
func warmKeys(validator *market.RequestValidator, cfg config.Warmup) ([]domain.AssetKey, error) {
	months := ""
	if cfg.Months > 0 {
		months = strconv.Itoa(cfg.Months)
	}
	keys := make([]domain.AssetKey, 0, len(cfg.Tickers))
	seen := make(map[domain.AssetKey]struct{}, len(cfg.Tickers))
	for _, t := range cfg.Tickers {
		if strings.TrimSpace(t) == "" {
			continue
		}
		key, err := validator.ParseAssetKey(t, months)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys, nil
}

func seconds(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}
