package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"paperpharmacy/internal/config"
	"paperpharmacy/internal/cover"
	"paperpharmacy/internal/history"
	"paperpharmacy/internal/httpx"
	"paperpharmacy/internal/logging"
	"paperpharmacy/internal/platform/aladin"
	"paperpharmacy/internal/platform/gemini"
	"paperpharmacy/internal/platform/openlibrary"
	"paperpharmacy/internal/platform/searchcache"
	"paperpharmacy/internal/prescription"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("cannot load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		historyRepo history.Repository = history.NewMemoryRepo()
		db          pinger
	)
	if cfg.Database.DSN != "" {
		pool := mustOpenDB(ctx, cfg.Database.DSN)
		defer pool.Close()
		historyRepo = history.NewPostgresRepo(pool, cfg.Database.QueryTimeout)
		db = pool
	} else {
		logging.Warn().Msg("DB_DSN not set, prescription history is kept in memory")
	}

	aladinOpts := aladin.Options{
		APIKey:     cfg.Aladin.APIKey,
		BaseURL:    cfg.Aladin.BaseURL,
		MaxResults: cfg.Aladin.MaxResults,
		RPS:        cfg.Aladin.RPS,
		MaxRetries: cfg.Aladin.MaxRetries,
		Timeout:    cfg.Aladin.Timeout,
	}
	if cfg.Cache.Dir != "" {
		cache, err := searchcache.Open(cfg.Cache.Dir, cfg.Cache.TTL)
		if err != nil {
			logging.Fatal().Err(err).Str("dir", cfg.Cache.Dir).Msg("cannot open search cache")
		}
		defer cache.Close()
		aladinOpts.Cache = cache
	}
	aladinClient := aladin.NewClient(aladinOpts)
	if cfg.Aladin.APIKey == "" {
		logging.Warn().Msg("ALADIN_API_KEY not set, book verification falls back to OpenLibrary")
	}

	var finder prescription.BookFinder
	if cfg.OpenLibrary.Enabled {
		finder = openlibrary.NewClient(cfg.OpenLibrary.BaseURL, cfg.OpenLibrary.UserAgent, cfg.OpenLibrary.RPS, cfg.OpenLibrary.MaxRetries)
	}

	var source prescription.Source = gemini.Unavailable{}
	if cfg.Gemini.APIKey != "" {
		src, err := gemini.NewSource(ctx, gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.Gemini.Timeout,
		})
		if err != nil {
			logging.Fatal().Err(err).Msg("cannot create gemini client")
		}
		source = src
	} else {
		logging.Warn().Msg("GEMINI_API_KEY not set, every prescription will fail")
	}

	prober := cover.NewHTTPProber(cfg.Cover.UserAgent, cfg.Cover.ProbeTimeout)
	coverService := cover.NewService(prober, prober)

	var covers prescription.CoverResolver
	if cfg.Cover.PreResolve {
		covers = coverService
	}

	historyService := history.NewService(historyRepo)
	prescriptionService := prescription.NewService(
		source,
		prescription.NewEnricher(aladinClient, finder),
		covers,
		historyService,
	)

	limiter := httpx.NewRateLimitMiddleware(cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst, cfg.Security.TrustProxy)
	go limiter.Run(ctx)

	router := newRouter(cfg, handlers{
		covers:        cover.NewHTTPHandler(coverService),
		prescriptions: prescription.NewHTTPHandler(prescriptionService, prescription.QueryLocationProvider{}, prescription.ClientHintColorScheme{}),
		history:       history.NewHTTPHandler(historyService),
		aladin:        aladin.NewHTTPHandler(aladinClient),
		db:            db,
	}, limiter)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logging.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func mustOpenDB(ctx context.Context, dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logging.Fatal().Err(err).Msg("cannot create db pool")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		logging.Fatal().Err(err).Str("dsn", redactDSN(dsn)).Msg("cannot ping database")
	}
	logging.Info().Msg("database connection OK")
	return pool
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
