// Command marketd keeps snapshots fresh on a schedule and serves a read-only
// API with health and metrics endpoints.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/and161185/marketstore/internal/config"
	"github.com/and161185/marketstore/internal/logging"
	"github.com/and161185/marketstore/internal/metrics"
	"github.com/and161185/marketstore/internal/repository/flatfile"
	"github.com/and161185/marketstore/internal/scheduler"
	httpserver "github.com/and161185/marketstore/internal/server/http"
	"github.com/and161185/marketstore/internal/service"
	"github.com/and161185/marketstore/internal/snapshot"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const (
	defaultSchedule = "@every 30m"
	defaultAddr     = ":9102"
)

// main loads configuration, starts the snapshot scheduler and the HTTP server,
// and stops both on SIGINT/SIGTERM.
func main() {
	cfgPath := flag.String("config", "configs/marketplace.env", "key-value config file (empty: environment only)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		bootLog, _ := zap.NewProduction()
		bootLog.Fatal("load config", zap.Error(err))
	}
	logger, err := logging.New(cfg.Get(config.KeyLogPath, ""), cfg.Get(config.KeyLogLevel, "info"))
	if err != nil {
		bootLog, _ := zap.NewProduction()
		bootLog.Fatal("build logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	addr := cfg.Get(config.KeyMetricsAddr, defaultAddr)
	schedule := cfg.Get(config.KeySnapshotSchedule, defaultSchedule)
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", addr),
		zap.String("schedule", schedule),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var paths flatfile.Paths
	for key, dst := range map[string]*string{
		config.KeySellersText:  &paths.Sellers,
		config.KeyProductsText: &paths.Products,
		config.KeyRequestsText: &paths.Requests,
	} {
		if *dst, err = cfg.Require(key); err != nil {
			logger.Fatal("text record path", zap.Error(err))
		}
	}
	store, err := flatfile.NewStore(paths, logger, m)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	svc := service.NewMarketplaceService(store, snapshot.NewExporter(cfg, logger, m), logger, m)

	sched := scheduler.New(logger)
	if err := sched.Start(ctx, schedule, "refresh_snapshots", func(ctx context.Context) error {
		return svc.RefreshSnapshots(ctx)
	}); err != nil {
		logger.Fatal("snapshot schedule", zap.Error(err))
	}
	defer sched.Stop()

	gin.SetMode(gin.ReleaseMode)
	router := httpserver.New(svc, reg, logger, m)
	if err := httpserver.Run(ctx, addr, router, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		sched.Stop()
		_ = logger.Sync()
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
