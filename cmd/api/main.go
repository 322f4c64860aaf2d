package main

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"stay_spotter/internal/adapters/fetch"
	server "stay_spotter/internal/adapters/http_server"
	"stay_spotter/internal/adapters/observability"
	"stay_spotter/internal/adapters/providers"
	redisad "stay_spotter/internal/adapters/redis"
	"stay_spotter/internal/app"
	"stay_spotter/internal/domain"
	"stay_spotter/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// fetch strategies: plain HTTP for Booking, headless browser for
	// Airbnb (its listing grid renders client-side)
	static := fetch.NewStaticFetcher(cfg.UserAgent, cfg.ProviderRPS, cfg.FetchTimeout)
	browser := fetch.NewBrowserFetcher(cfg.UserAgent, cfg.BrowserWait)
	defer browser.Close()

	sources := []domain.Provider{
		providers.NewBookingSource(static),
		providers.NewAirbnbSource(browser),
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	search := app.NewSearchService(sources, cache, cfg.MatchScore, cfg.CacheTTL)
	avail := app.NewAvailabilityService(sources)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Search: search, Avail: avail})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
