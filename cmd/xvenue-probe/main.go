// Command xvenue-probe smoke-tests one venue's public REST surface: ping,
// server time, and symbol discovery. It carries no strategy or
// orchestration logic, grounded on cmd/cryptorun/main.go's cobra root +
// zerolog wiring, generalized into a single-purpose connectivity probe
// (the original's "probe data" subcommand narrowed to this repo's scope).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kvantic-labs/xvenue/internal/classify"
	"github.com/kvantic-labs/xvenue/internal/config"
	"github.com/kvantic-labs/xvenue/internal/ratelimit"
	"github.com/kvantic-labs/xvenue/internal/transport"
	"github.com/kvantic-labs/xvenue/internal/venue"
	"github.com/kvantic-labs/xvenue/internal/venue/gateio"
	"github.com/kvantic-labs/xvenue/internal/venue/mexc"
	"github.com/kvantic-labs/xvenue/internal/venueauth"
)

const version = "v0.1.0"

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     "xvenue-probe",
		Short:   "Smoke-test connectivity to one configured venue",
		Version: version,
	}

	var configPath string
	var venueName string
	var symbol string

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Ping a venue, fetch server time, and count known symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPing(configPath, venueName, symbol)
		},
	}
	pingCmd.Flags().StringVar(&configPath, "config", "config/venues.yaml", "Path to venue config YAML")
	pingCmd.Flags().StringVar(&venueName, "venue", "mexc", "Venue to probe (mexc|gateio-spot|gateio-futures)")
	pingCmd.Flags().StringVar(&symbol, "symbol", "BTCUSDT", "Symbol hint; accepted but not used by ping")

	rootCmd.AddCommand(pingCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("xvenue-probe failed")
		os.Exit(1)
	}
}

func runPing(configPath, venueName, symbolHint string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	venueCfg, ok := cfg.Venue(venueName)
	if !ok {
		return fmt.Errorf("venue %q not found in %s", venueName, configPath)
	}

	public, err := buildPublicClient(venueName, venueCfg)
	if err != nil {
		return fmt.Errorf("building client for %s: %w", venueName, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), venueCfg.Timeout())
	defer cancel()

	start := time.Now()
	if err := public.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	pingLatency := time.Since(start)

	serverTime, err := public.GetServerTime(ctx)
	if err != nil {
		return fmt.Errorf("getServerTime failed: %w", err)
	}

	infos, err := public.GetSymbolsInfo(ctx)
	if err != nil {
		return fmt.Errorf("getSymbolsInfo failed: %w", err)
	}

	log.Info().
		Str("venue", venueName).
		Dur("ping_latency", pingLatency).
		Int64("server_time_ms", serverTime).
		Int("symbol_count", len(infos)).
		Msg("probe succeeded")

	fmt.Printf("venue=%s ping=%s serverTime=%d symbols=%d\n", venueName, pingLatency, serverTime, len(infos))
	return nil
}

// buildPublicClient wires a venue's public REST surface from scratch — the
// same transport/ratelimit/classify/auth composition the façade (C11) uses,
// but standalone so the probe never depends on exchange.Facade or any WS
// component.
func buildPublicClient(venueName string, venueCfg config.VenueConfig) (venue.PublicSpot, error) {
	reg := prometheus.NewRegistry()
	metrics := transport.NewMetrics(reg)

	limiter := ratelimit.New()
	if err := limiter.Register(ratelimit.Config{
		Venue:             venueName,
		RequestsPerSecond: venueCfg.RateLimitRPS,
		Burst:             venueCfg.RateLimitBurst,
	}); err != nil {
		return nil, err
	}

	tcfg := transport.Config{
		Venue:           venueName,
		BaseURL:         venueCfg.RESTBaseURL,
		ResponseTimeout: venueCfg.Timeout(),
		MaxConcurrent:   venueCfg.MaxConcurrent,
	}

	switch venueName {
	case "mexc":
		tc := transport.New(tcfg, classify.NewMEXCClassifier(), metrics, log.Logger)
		auth := venueauth.NewMEXCAuthenticator(venueCfg.APIKey, venueCfg.SecretKey)
		mapper := mexc.NewSymbolMapper(nil)
		return mexc.New(tc, limiter, auth, mapper, log.Logger), nil
	case "gateio-spot":
		tc := transport.New(tcfg, classify.NewGateioClassifier(), metrics, log.Logger)
		auth := venueauth.NewGateioSpotAuthenticator(venueCfg.APIKey, venueCfg.SecretKey)
		mapper := gateio.NewSymbolMapper(nil)
		return gateio.NewSpot(tc, limiter, auth, mapper, log.Logger), nil
	case "gateio-futures":
		tc := transport.New(tcfg, classify.NewGateioClassifier(), metrics, log.Logger)
		auth := venueauth.NewGateioFuturesAuthenticator(venueCfg.APIKey, venueCfg.SecretKey, "usdt")
		mapper := gateio.NewSymbolMapper(nil)
		return gateio.NewFutures(tc, limiter, auth, mapper, log.Logger, "usdt"), nil
	default:
		return nil, fmt.Errorf("unknown venue %q", venueName)
	}
}
