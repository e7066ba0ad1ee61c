package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/sneakify/feed-adapter/internal/api"
	"github.com/sneakify/feed-adapter/internal/catalog"
	"github.com/sneakify/feed-adapter/internal/feed"
	"github.com/sneakify/feed-adapter/internal/ingest"
	"github.com/sneakify/feed-adapter/internal/market"
	"github.com/sneakify/feed-adapter/internal/publisher"
	"github.com/sneakify/feed-adapter/internal/rate"
	"github.com/sneakify/feed-adapter/internal/snapshot"
	"github.com/sneakify/feed-adapter/pkg/config"
	"github.com/sneakify/feed-adapter/pkg/logger"
	"github.com/sneakify/feed-adapter/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [feed-adapter]...")

	registry := market.NewRegistry()
	if err := registry.Validate(cfg.Countries); err != nil {
		logg.Fatalw("invalid country configuration", "error", err)
	}

	// --- Rate limiter ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.RequestBurst,
	})

	// --- Snapshot store ---
	var st snapshot.Store
	var err error
	switch cfg.StoreBackend {
	case "hybrid":
		logg.Info("connecting to DSN: ", utils.MaskDSN(cfg.DatabaseURL))
		st, err = snapshot.NewHybrid(cfg.RedisAddr, cfg.RedisDB, cfg.DatabaseURL, snapshot.PGPoolConfig{}, logger.L())
	default:
		logg.Info("connecting to DSN: ", utils.MaskDSN(cfg.MongoURI))
		st, err = snapshot.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB, logger.L())
	}
	if err != nil {
		logg.Fatalw("failed to init store", "error", err)
	}
	defer st.Close() //nolint:errcheck

	// --- NATS (optional) ---
	var nc *nats.Conn
	var events ingest.EventSink
	if cfg.NATSURL != "" {
		nc, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logg.Fatalw("failed to connect to NATS", "error", err)
		}
		defer nc.Drain() //nolint:errcheck

		pub, err := publisher.New(nc, "evt.catalog", cfg.ServiceName)
		if err != nil {
			logg.Fatalw("failed to init publisher", "error", err)
		}
		events = pub
	}

	// --- Ingestion pipeline ---
	client := feed.NewClient(logger.Named("feed"), cfg.FeedBaseURL, rateMgr, cfg.HTTPRetryMax)
	fetcher := feed.NewFetcher(logger.Named("feed"), client, registry, cfg.FeedPath, cfg.PageSize, cfg.MaxPages)

	images, err := catalog.NewImageResolver(cfg.ImageStrategy, logger.Named("catalog"), cfg.ImageBaseURL, rateMgr)
	if err != nil {
		logg.Fatalw("failed to init image resolver", "error", err)
	}
	normalizer := catalog.NewNormalizer(logger.Named("catalog"), registry, images)

	orch := ingest.NewOrchestrator(
		logger.Named("ingest"),
		fetcher,
		normalizer,
		st,
		events,
		cfg.Countries,
		cfg.RefreshInterval,
	)

	if nc != nil && cfg.RefreshSubject != "" {
		sub, err := orch.SubscribeRefresh(nc, cfg.RefreshSubject)
		if err != nil {
			logg.Fatalw("failed to subscribe refresh subject", "error", err)
		}
		defer sub.Unsubscribe() //nolint:errcheck
	}

	// --- HTTP surface ---
	app := fiber.New()
	api.RegisterRoutes(app, nc, st, orch)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	go orch.Start(ctx)

	logg.Infow("[feed-adapter] running",
		"countries", cfg.Countries,
		"store", cfg.StoreBackend,
		"image_strategy", cfg.ImageStrategy,
		"refresh_interval", cfg.RefreshInterval)

	<-ctx.Done()
	stop()
	logg.Info("shutting down [feed-adapter]...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	app.ShutdownWithContext(shutdownCtx) //nolint:errcheck
}
