package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"givechain/internal/charity"
	"givechain/internal/donation"
	donationhandler "givechain/internal/donation/handler"
	donationmetrics "givechain/internal/donation/metrics"
	"givechain/internal/ledger"
	ledgerstore "givechain/internal/ledger/store"
	"givechain/internal/payment"
	"givechain/internal/platform/config"
	"givechain/internal/platform/httpserver"
	"givechain/internal/platform/logger"
	platformmetrics "givechain/internal/platform/metrics"
	"givechain/internal/platform/postgres"
	platformredis "givechain/internal/platform/redis"
	"givechain/internal/registry"
	registryhandler "givechain/internal/registry/handler"
	registrymetrics "givechain/internal/registry/metrics"
	registrystore "givechain/internal/registry/store"
	httptransport "givechain/internal/transport/http"
	"givechain/internal/verifier"
	"givechain/pkg/domain"
	"givechain/pkg/platform/events"
	"givechain/pkg/platform/tx"
)

const (
	shutdownTimeout = 10 * time.Second
	cacheTTL        = 5 * time.Minute
	eventBuffer     = 256
)

// main wires the stores, services, and transport, then runs until interrupted.
// Business logic lives in the internal service packages.
func main() {
	log := logger.New()
	slog.SetDefault(log)

	if err := run(config.FromEnv(), log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	admin, err := domain.ParseAddress(cfg.AdminAddress)
	if err != nil {
		return fmt.Errorf("invalid admin address: %w", err)
	}
	payout, err := domain.ParseAddress(cfg.CharityPayout)
	if err != nil {
		return fmt.Errorf("invalid charity payout address: %w", err)
	}

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		registryStore registry.Store
		ledgerStore   ledger.Store
		runner        tx.Runner
		ready         func() error
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		registryStore = registrystore.NewPostgresStore(pool)
		ledgerStore = ledgerstore.NewPostgresStore(pool)
		runner = tx.NewPgxRunner(pool)
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		}
		log.Info("using postgres stores")
	} else {
		registryStore = registrystore.NewMemoryStore(cfg.BaseLocator)
		ledgerStore = ledgerstore.NewMemoryStore()
		runner = tx.NoopRunner{}
		log.Info("using in-memory stores")
	}

	registryOpts := []registry.Option{
		registry.WithLogger(log),
		registry.WithMetrics(registrymetrics.New()),
	}
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		registryOpts = append(registryOpts, registry.WithCache(registrystore.NewRedisCache(redisClient, cacheTTL)))
		log.Info("registry read cache enabled")
	}

	registrySvc, err := registry.New(registryStore, admin, registryOpts...)
	if err != nil {
		return err
	}
	ledgerSvc, err := ledger.New(ledgerStore, ledger.WithLogger(log))
	if err != nil {
		return err
	}

	// Event pipeline: Kafka when brokers are configured, in-memory otherwise.
	var sink events.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := events.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		sink = kafkaSink
		log.Info("publishing events to kafka", "topic", cfg.Kafka.Topic)
	} else {
		sink = events.NewMemorySink()
	}
	defer sink.Close()
	emitter := events.NewEmitter(eventBuffer)

	donationSvc, err := donation.New(
		registrySvc, registrySvc, ledgerSvc,
		payment.NewMemoryRail(),
		verifier.NewAcceptNonEmpty(),
		runner,
		payout,
		charity.FromConfig(cfg.Charity),
		donation.WithLogger(log),
		donation.WithMetrics(donationmetrics.New()),
		donation.WithEventEmitter(emitter),
	)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:        log,
		Metrics:       platformmetrics.New(),
		Donations:     donationhandler.New(donationSvc, log),
		Registry:      registryhandler.New(registrySvc, log),
		JWTSigningKey: cfg.JWTSigningKey,
		Ready:         ready,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := events.NewWorker(sink, emitter.Outbox()).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("event worker: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting givechain", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
