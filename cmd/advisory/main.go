package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/crop-stage-advisory/internal/adapter/artifact"
	"github.com/couchcryptid/crop-stage-advisory/internal/adapter/catalogfile"
	"github.com/couchcryptid/crop-stage-advisory/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/crop-stage-advisory/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/crop-stage-advisory/internal/adapter/kafka"
	"github.com/couchcryptid/crop-stage-advisory/internal/advisory"
	"github.com/couchcryptid/crop-stage-advisory/internal/config"
	"github.com/couchcryptid/crop-stage-advisory/internal/domain"
	"github.com/couchcryptid/crop-stage-advisory/internal/observability"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	assets, err := loadAssets(cfg)
	if err != nil {
		logger.Error("failed to load assets", "error", err)
		os.Exit(1)
	}
	logger.Info("assets loaded",
		"dataset", cfg.DatasetPath,
		"records", assets.dataset.Len(),
		"stages", len(assets.catalog.Stages()),
	)

	opts := []advisory.Option{}
	if assets.model != nil {
		opts = append(opts, advisory.WithModelArtifact(assets.model))
		logger.Info("model artifact found", "path", assets.model.Path, "size", assets.model.Size, "sha256", assets.model.SHA256)
	}

	if cfg.ForecastEnabled {
		seed := cfg.ForecastSeed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano()) //nolint:gosec // demo data seed
		}
		opts = append(opts, advisory.WithForecaster(domain.NewSeededForecaster(seed)))
		logger.Info("synthetic forecast enabled", "seeded", cfg.ForecastSeed != 0)
	} else {
		logger.Info("synthetic forecast disabled")
	}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger, metrics)
		opts = append(opts, advisory.WithPublisher(writer))
		logger.Info("report publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	svc := advisory.New(assets.dataset, assets.catalog, logger, metrics, opts...)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, cfg.CORSAllowedOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

type assets struct {
	dataset *domain.Dataset
	catalog *domain.Catalog
	model   *domain.ModelArtifact
}

// loadAssets reads the reference table, the advisory catalog, and the model
// artifact concurrently. Any failure aborts startup.
func loadAssets(cfg *config.Config) (assets, error) {
	var (
		a       assets
		records []domain.Record
		g       errgroup.Group
	)

	g.Go(func() error {
		var err error
		records, err = csvfile.Load(cfg.DatasetPath)
		return err
	})
	g.Go(func() error {
		if cfg.CatalogPath == "" {
			a.catalog = domain.DefaultCatalog()
			return nil
		}
		var err error
		a.catalog, err = catalogfile.Load(cfg.CatalogPath)
		return err
	})
	g.Go(func() error {
		if cfg.ModelPath == "" {
			return nil
		}
		m, err := artifact.Inspect(cfg.ModelPath)
		if err != nil {
			return err
		}
		a.model = &m
		return nil
	})

	if err := g.Wait(); err != nil {
		return assets{}, err
	}
	a.dataset = domain.NewDataset(records)
	return a, nil
}
