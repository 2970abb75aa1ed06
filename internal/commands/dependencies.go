package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rmacedo/extrato/internal/domain/category"
	"github.com/rmacedo/extrato/internal/domain/history"
	"github.com/rmacedo/extrato/internal/domain/ledger"
	"github.com/rmacedo/extrato/internal/domain/preset"
	"github.com/rmacedo/extrato/pkg/config"
	"github.com/rmacedo/extrato/pkg/db"
	"github.com/rmacedo/extrato/pkg/metrics"
)

// Dependencies holds everything a command needs: configuration, the
// database pool, repositories and the metrics handle.
type Dependencies struct {
	Config  *config.Config
	DB      *db.DB
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	OwnerID uuid.UUID

	CategoryRepo *category.Repository
	LedgerRepo   *ledger.Repository
	PresetRepo   *preset.Repository
	HistoryRepo  *history.Repository

	metricsServer *http.Server
}

// NewDependencies loads configuration, connects to the database, runs
// migrations and wires the repositories.
func NewDependencies(ctx context.Context, owner string) (*Dependencies, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if owner == "" {
		owner = os.Getenv("EXTRATO_OWNER")
	}
	ownerID, err := uuid.Parse(owner)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id %q: %w", owner, err)
	}

	database, err := db.New(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(cfg.Database); err != nil {
		database.Close()
		return nil, err
	}

	var m *metrics.Metrics
	var metricsServer *http.Server
	if cfg.Observability.MetricsEnabled {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		metricsServer = serveMetrics(reg, cfg.Observability.MetricsPort, logger)
	}

	return &Dependencies{
		Config:        cfg,
		DB:            database,
		Logger:        logger,
		Metrics:       m,
		OwnerID:       ownerID,
		CategoryRepo:  category.NewRepository(database.Pool),
		LedgerRepo:    ledger.NewRepository(database.Pool),
		PresetRepo:    preset.NewRepository(database.Pool),
		HistoryRepo:   history.NewRepository(database.Pool),
		metricsServer: metricsServer,
	}, nil
}

// serveMetrics exposes /metrics for the lifetime of the command, so scrapers
// and smoke checks can read the counters while an import runs.
func serveMetrics(g prometheus.Gatherer, port int, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(g))
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", "addr", srv.Addr, "error", err)
		}
	}()
	return srv
}

// Close releases held resources.
func (d *Dependencies) Close() {
	if d.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = d.metricsServer.Shutdown(ctx)
		cancel()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
