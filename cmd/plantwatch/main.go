package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/speedwagon-io/plantwatch/internal/config"
	"github.com/speedwagon-io/plantwatch/internal/dashboard"
	"github.com/speedwagon-io/plantwatch/internal/entsoe"
	"github.com/speedwagon-io/plantwatch/internal/generation"
	"github.com/speedwagon-io/plantwatch/internal/health"
	httpserver "github.com/speedwagon-io/plantwatch/internal/http-server"
	"github.com/speedwagon-io/plantwatch/internal/http-server/render"
	"github.com/speedwagon-io/plantwatch/internal/lib/logger/sl"
	"github.com/speedwagon-io/plantwatch/internal/model"
	"github.com/speedwagon-io/plantwatch/internal/news"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	log := sl.SetupLogger(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.ResolveAPIKey(); err != nil {
		fmt.Fprintln(os.Stderr, "plantwatch:", err)
		log.Error("cannot start without ENTSO-E API key", sl.Err(err))
		os.Exit(1)
	}

	log.Info("starting plantwatch",
		slog.String("env", cfg.Env),
		slog.String("plant", cfg.Plant.Name),
		slog.String("area", cfg.Plant.Area),
		slog.Duration("lookback", cfg.Plant.Lookback),
		slog.String("news_source", cfg.News.Source),
	)

	loc, err := cfg.Plant.Location()
	if err != nil {
		log.Error("invalid plant timezone", sl.Err(err))
		os.Exit(1)
	}

	newsKind, err := news.ParseSourceKind(cfg.News.Source)
	if err != nil {
		log.Error("invalid news source", sl.Err(err))
		os.Exit(1)
	}

	entsoeClient := entsoe.NewClient(log, cfg.EntsoE.BaseURL, cfg.EntsoE.APIKey, cfg.EntsoE.Timeout,
		entsoe.WithConcurrency(cfg.EntsoE.Concurrency),
		entsoe.WithRequestsPerMinute(cfg.EntsoE.RequestsPerMinute),
	)
	defer entsoeClient.Close()

	statusFetcher := generation.NewFetcher(log, entsoeClient, generation.Params{
		PlantName:          cfg.Plant.Name,
		Area:               cfg.Plant.Area,
		PlantFragment:      cfg.Plant.ColumnMatch,
		Lookback:           cfg.Plant.Lookback,
		RunningThresholdMW: cfg.Plant.RunningThresholdMW,
		DownThresholdMW:    cfg.Plant.DownThresholdMW,
		Location:           loc,
	})

	newsFetcher := news.NewFetcher(log, cfg.News.MinInterval, news.NewSources(cfg.News))

	svc := dashboard.NewService(log, statusFetcher,
		dashboard.NewsFetcherFunc(func(ctx context.Context) []model.NewsItem {
			return newsFetcher.Fetch(ctx, cfg.News.Query, cfg.News.MaxItems, newsKind)
		}),
		dashboard.Options{
			PlantName:   cfg.Plant.Name,
			StatusTTL:   cfg.Plant.CacheTTL,
			NewsTTL:     cfg.News.CacheTTL,
			LoadTimeout: max(cfg.EntsoE.FetchTimeout, cfg.News.Timeout),
		},
	)

	healthHandler := health.NewHandler(log, svc.Ready)
	healthHandler.AddChecker(health.NewGenerationHealthChecker(cfg.Plant.CacheTTL, func() (health.LastFetch, bool) {
		res, ok := svc.LastStatus()
		return health.LastFetch{Err: res.Err, At: res.ComputedAt}, ok
	}))
	healthHandler.AddChecker(health.NewNewsHealthChecker(cfg.News.CacheTTL, func() (health.LastFetch, bool) {
		res, ok := svc.LastNews()
		return health.LastFetch{At: res.ComputedAt, Items: len(res.Value)}, ok
	}))

	router := httpserver.NewRouter(log, svc, render.MustNewPage(loc), healthHandler)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go svc.Warm(ctx, cfg.HTTPServer.WarmInterval)

	go func() {
		log.Info("starting http server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", sl.Err(err))
			sigCh <- syscall.SIGTERM
		}
	}()

	sig := <-sigCh
	log.Info("received signal, shutting down", slog.String("signal", sig.String()))
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop http server", sl.Err(err))
	}

	log.Info("plantwatch stopped")
}
