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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"ansdns/internal/platform/config"
	"ansdns/internal/platform/httpserver"
	"ansdns/internal/platform/logger"
	httpmetrics "ansdns/internal/platform/metrics"
	"ansdns/internal/records/adapters/exm"
	"ansdns/internal/records/adapters/molecule"
	"ansdns/internal/records/auth"
	"ansdns/internal/records/events"
	"ansdns/internal/records/handler"
	"ansdns/internal/records/metrics"
	"ansdns/internal/records/models"
	"ansdns/internal/records/ownership"
	"ansdns/internal/records/ports"
	"ansdns/internal/records/service"
)

const shutdownTimeout = 10 * time.Second

// main wires the record registry, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/records.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogFormat, cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.DefaultRegisterer
	m := metrics.New(reg)

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.close()

	publisher, closePublisher, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	exec, err := newExecutor(cfg, backend.store, publisher, m, log)
	if err != nil {
		return err
	}

	if err := bootstrap(ctx, cfg, exec, log); err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Use(httpmetrics.New(reg).Middleware)
	handler.New(exec, log, backend.health).Register(router)
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting ansdns", "addr", cfg.Addr, "backend", cfg.StateBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newExecutor(cfg config.Server, store ports.StateStore, publisher ports.EventPublisher, m *metrics.Metrics, log *slog.Logger) (*service.Executor, error) {
	resolver := molecule.New(molecule.WithTimeout(cfg.Lookups.Timeout), molecule.WithMetrics(m))
	balances := exm.New(
		exm.WithBaseURL(cfg.Lookups.EXMBaseURL),
		exm.WithTimeout(cfg.Lookups.Timeout),
		exm.WithMetrics(m),
	)

	authenticator, err := auth.New(auth.NewPSSVerifier(), resolver)
	if err != nil {
		return nil, err
	}
	owners, err := ownership.New(balances)
	if err != nil {
		return nil, err
	}
	contract, err := service.NewContract(authenticator, owners)
	if err != nil {
		return nil, err
	}
	return service.NewExecutor(contract, store,
		service.WithPublisher(publisher),
		service.WithMetrics(m),
		service.WithLogger(log),
		service.WithTxTimeout(cfg.TxTimeout),
	)
}

func newPublisher(cfg config.Server, log *slog.Logger) (ports.EventPublisher, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return events.NewLogPublisher(log), func() {}, nil
	}
	kafka, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka publisher: %w", err)
	}
	breaker := events.NewCircuitBreaker(5, 30*time.Second)
	return events.NewGuarded(kafka, breaker), kafka.Close, nil
}

// bootstrap seeds an empty store from the genesis file and upgrades any
// legacy document already persisted.
func bootstrap(ctx context.Context, cfg config.Server, exec *service.Executor, log *slog.Logger) error {
	var genesis *models.ContractState
	if cfg.GenesisPath != "" {
		g, err := config.LoadGenesis(cfg.GenesisPath)
		if err != nil {
			return err
		}
		if genesis, err = g.State(); err != nil {
			return err
		}
	}
	seeded, err := exec.Bootstrap(ctx, genesis)
	if err != nil {
		return fmt.Errorf("bootstrap state: %w", err)
	}
	if seeded {
		log.Info("state seeded from genesis", "path", cfg.GenesisPath)
	} else if genesis == nil {
		log.Warn("no genesis configured; actions fail until the state is initialized")
	}
	return nil
}
