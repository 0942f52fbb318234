// Package app assembles the storefront: storage, sessions, events, the bot and
// the HTTP listener.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/storebot/core/bootstrap"
	corecmd "github.com/m3rciful/storebot/core/cmd"
	coreconfig "github.com/m3rciful/storebot/core/config"
	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/core/metrics"
	coretelegram "github.com/m3rciful/storebot/core/telegram"
	"github.com/m3rciful/storebot/core/telegram/state"
	"github.com/m3rciful/storebot/internal/bot"
	"github.com/m3rciful/storebot/internal/config"
	"github.com/m3rciful/storebot/internal/events"
	"github.com/m3rciful/storebot/internal/httpapi"
	"github.com/m3rciful/storebot/internal/seed"
	"github.com/m3rciful/storebot/internal/shop"
	"github.com/m3rciful/storebot/internal/storage"
	"github.com/m3rciful/storebot/internal/storage/postgres"
)

const redisPingTimeout = 5 * time.Second

// App implements corecmd.TelegramApp.
type App struct {
	cfg *config.Config

	registry    *prometheus.Registry
	httpMetrics *metrics.HTTP
	shop        *shop.Service
	bot         *bot.Bot
	server      *httpapi.Server

	closers []func() error
}

var _ corecmd.TelegramApp = (*App)(nil)

// Bootstrap connects infrastructure, seeds reference data and builds the App.
func Bootstrap(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	res, err := bootstrap.Run(ctx, bootstrap.Options{Config: &cfg.Config, Database: cfg.Database})
	if err != nil {
		return nil, err
	}
	var closers []func() error
	closers = append(closers, res.DB.Close)
	fail := func(err error) (corecmd.TelegramApp, error) {
		closeAll(closers)
		return nil, err
	}

	store := postgres.New(res.DB)
	if err := bootstrap.RunSeeders(ctx,
		seed.ManagersSeeder(store, cfg.Seed.Managers),
		seed.CatalogSeeder(store, cfg.Seed.CatalogPath),
	); err != nil {
		return fail(fmt.Errorf("app: %w", err))
	}

	sessions, closeSessions, err := openSessions(ctx, cfg.Redis)
	if err != nil {
		return fail(err)
	}
	if closeSessions != nil {
		closers = append(closers, closeSessions)
	}

	publisher, closePublisher, err := openPublisher(cfg.Events)
	if err != nil {
		return fail(err)
	}
	if closePublisher != nil {
		closers = append(closers, closePublisher)
	}

	a := New(cfg, store, sessions, publisher)
	a.closers = closers
	logDB(ctx, res.DB)
	return a, nil
}

// New builds the App on already opened dependencies.
func New(cfg *config.Config, store storage.Store, sessions state.Store, publisher events.Publisher) *App {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	svc := shop.New(store,
		shop.WithEvents(publisher),
		shop.WithMetrics(metrics.NewShop(reg)),
	)
	b := bot.New(bot.Options{
		Shop:     svc,
		Sessions: sessions,
		Metrics:  metrics.NewUpdates(reg),
	})
	return &App{
		cfg:         cfg,
		registry:    reg,
		httpMetrics: metrics.NewHTTP(reg),
		shop:        svc,
		bot:         b,
	}
}

// TelegramRunOptions wires the bot routes and the HTTP lifecycle into the runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()
	return coretelegram.RunOptions{
		Config:      core,
		Registry:    a.bot.Registry(),
		Middlewares: coretelegram.DefaultMiddlewares(core, a.bot.RateLimited),
		Routes:      a.bot.Routes(),
		OnStart:     a.startHTTP,
		OnStop:      a.stopHTTP,
	}, nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	return closeAll(a.closers)
}

func (a *App) httpOptions(rt coretelegram.Runtime) httpapi.Options {
	opts := httpapi.Options{
		Addr:     a.cfg.HTTP.Addr(),
		Catalog:  a.shop,
		Gatherer: a.registry,
		Metrics:  a.httpMetrics,
	}
	if a.cfg.Telegram.RunMode == coreconfig.RunModeWebhook && rt.Processor != nil {
		opts.Processor = rt.Processor
		opts.WebhookPath = a.cfg.Webhook.Path
		opts.SecretToken = a.cfg.Webhook.SecretToken
	}
	return opts
}

func (a *App) startHTTP(ctx context.Context, rt coretelegram.Runtime) error {
	if !a.cfg.HTTP.Enabled() {
		return nil
	}
	a.server = httpapi.New(a.httpOptions(rt))
	return a.server.Start(ctx)
}

func (a *App) stopHTTP(ctx context.Context, _ coretelegram.Runtime) error {
	if a.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return a.server.Shutdown(ctx)
}

// openSessions returns a Redis session store when configured, in-memory otherwise.
func openSessions(ctx context.Context, cfg config.RedisConfig) (state.Store, func() error, error) {
	if !cfg.Enabled() {
		logger.Info(ctx, logger.CompSession, "store", slog.String("backend", "memory"))
		return state.NewMemoryStore(cfg.SessionTTL), nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("app: redis ping %s: %w", cfg.Addr, err)
	}
	logger.Info(ctx, logger.CompSession, "store",
		slog.String("backend", "redis"),
		slog.String("addr", cfg.Addr),
		slog.Duration("ttl", cfg.SessionTTL),
	)
	return state.NewRedisStore(client, cfg.Prefix, cfg.SessionTTL), client.Close, nil
}

// openPublisher returns a Kafka publisher when brokers are configured, a no-op otherwise.
func openPublisher(cfg events.Config) (events.Publisher, func() error, error) {
	if !cfg.Enabled() {
		return events.Nop{}, nil, nil
	}
	k, err := events.NewKafka(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("app: %w", err)
	}
	return k, k.Close, nil
}

func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = append(errs, closers[i]())
	}
	return errors.Join(errs...)
}

func logDB(ctx context.Context, db *sqlx.DB) {
	stats := db.Stats()
	logger.Debug(ctx, logger.CompDB, "db.pool",
		slog.Int("open", stats.OpenConnections),
		slog.Int("max_open", stats.MaxOpenConnections),
	)
}
