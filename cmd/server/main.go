package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/fablepress/fablepress/billing/catalog"
	"github.com/fablepress/fablepress/billing/checkout"
	"github.com/fablepress/fablepress/billing/coupon"
	"github.com/fablepress/fablepress/billing/period"
	"github.com/fablepress/fablepress/billing/usage"
	"github.com/fablepress/fablepress/billing/webhook"
	"github.com/fablepress/fablepress/httpapi"
	"github.com/fablepress/fablepress/pkg/config"
	"github.com/fablepress/fablepress/pkg/httpserver"
	"github.com/fablepress/fablepress/pkg/logger"
	"github.com/fablepress/fablepress/pkg/pg"
	"github.com/fablepress/fablepress/pkg/redis"
)

type appConfig struct {
	// CatalogPath points at the operator-editable plan YAML. Empty falls
	// back to the built-in plan set.
	CatalogPath string `env:"PLAN_CATALOG_PATH"`

	PruneInterval time.Duration `env:"WEBHOOK_PRUNE_INTERVAL" envDefault:"24h"`
}

func main() {
	var (
		appCfg    appConfig
		logCfg    logger.Config
		pgCfg     pg.Config
		redisCfg  redis.Config
		httpCfg   httpserver.Config
		stripeCfg webhook.StripeConfig
		coCfg     checkout.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&logCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&stripeCfg)
	config.MustLoad(&coCfg)

	log := logger.New(logCfg, os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		log.ErrorContext(ctx, "postgres connect failed", logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		log.ErrorContext(ctx, "migrations failed", logger.Error(err))
		os.Exit(1)
	}

	src := catalog.NewInMemSource(catalog.DefaultPlans()...)
	if appCfg.CatalogPath != "" {
		src = catalog.NewFileSource(appCfg.CatalogPath)
	}
	plans, err := catalog.New(ctx, src)
	if err != nil {
		log.ErrorContext(ctx, "plan catalog load failed", logger.Error(err))
		os.Exit(1)
	}

	accounts := usage.NewPostgresStore(pool)
	machine := period.NewMachine(accounts, plans)

	// Redis is the preferred dedupe store for webhook event IDs; without it
	// the processed-event table in Postgres serves the same contract.
	var events webhook.EventStore = webhook.NewPostgresEventStore(pool)
	probes := []func(context.Context) error{pg.Healthcheck(pool)}
	if redisCfg.Enabled() {
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			log.ErrorContext(ctx, "redis connect failed", logger.Error(err))
			os.Exit(1)
		}
		defer client.Close()
		events = webhook.NewRedisEventStore(client, webhook.DefaultRetention)
		probes = append(probes, redis.Healthcheck(client))
	}

	webhooks := webhook.NewService(machine, events, log)

	parser, err := webhook.NewStripeParser(stripeCfg)
	if err != nil {
		log.ErrorContext(ctx, "stripe parser init failed", logger.Error(err))
		os.Exit(1)
	}

	checkout.Init(coCfg)
	coupons := coupon.NewService(coupon.NewPostgresStore(pool))
	checkoutSvc := checkout.NewService(plans, accounts, coupons, coCfg)

	go pruneLoop(ctx, webhooks, appCfg.PruneInterval, log)

	handler := httpapi.NewHandler(plans, accounts, machine, webhooks, parser, checkoutSvc, log)

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	if err := srv.Run(ctx, handler.Router(ctx, probes...)); err != nil {
		log.ErrorContext(ctx, "http server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

// pruneLoop drops processed webhook event IDs past the retention window so
// the dedupe set does not grow without bound.
func pruneLoop(ctx context.Context, webhooks *webhook.Service, interval time.Duration, log *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := webhooks.Prune(ctx); err != nil {
				log.ErrorContext(ctx, "webhook prune failed", logger.Error(err))
			}
		}
	}
}
