package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zain621/rehmatshipping/internal/config"
	"github.com/zain621/rehmatshipping/internal/db"
	dbRedis "github.com/zain621/rehmatshipping/internal/db/redis"
	logpkg "github.com/zain621/rehmatshipping/internal/logger"
	"github.com/zain621/rehmatshipping/internal/metrics"
	"github.com/zain621/rehmatshipping/internal/report"
	reportrepo "github.com/zain621/rehmatshipping/internal/repository/report"
	chiTransport "github.com/zain621/rehmatshipping/internal/transport/chi"
	"github.com/zain621/rehmatshipping/internal/transport/upstream"
	healthuc "github.com/zain621/rehmatshipping/internal/usecase/health"
	"github.com/zain621/rehmatshipping/internal/usecase/lookup"
	"github.com/zain621/rehmatshipping/internal/version"
)

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the lookup API. Configuration is read from config/<ENV>.yaml
(ENV defaults to "local"); values may reference environment variables as
${VAR} or ${VAR:-default}.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// reportStore is what the composition root needs from either backend.
type reportStore interface {
	lookup.ReportStore
	healthuc.ReportPinger
}

func runServe(cmd *cobra.Command, _ []string) error {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting rehmat API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("upstream", cfg.Upstream.URL),
		zap.String("reports_driver", cfg.Reports.Driver),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Register domain metrics explicitly (no init())
	metrics.RegisterDomainMetrics()

	reports, closeStore, err := buildReportStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	directory := upstream.NewClient(&upstream.Config{
		URL:     cfg.Upstream.URL,
		Timeout: cfg.Upstream.Timeout(),
		Logger:  logger,
	})

	lookupSvc := lookup.New(directory, report.NewRenderer(), reports)
	healthSvc := healthuc.New(reports, directory)

	server := chiTransport.NewServer(lookupSvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// buildReportStore picks the artifact backend from reports.driver.
func buildReportStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (reportStore, func(), error) {
	switch cfg.Reports.Driver {
	case config.DriverRedis:
		var store db.Store
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create redis store: %w", err)
		}

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("database not ready: %w", err)
		}
		logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

		kv := reportrepo.NewKVStore(store, cfg.Reports.TTL()).WithKeyPrefix(cfg.Reports.KeyPrefix)
		return kv, store.Close, nil
	default:
		fs := reportrepo.NewFileStore(cfg.Reports.Dir, cfg.Reports.TTL())
		if err := fs.Ping(ctx); err != nil {
			return nil, nil, err
		}
		logger.Info("Storing reports on disk",
			zap.String("dir", cfg.Reports.Dir),
			zap.Duration("ttl", cfg.Reports.TTL()),
		)
		return fs, func() {}, nil
	}
}
