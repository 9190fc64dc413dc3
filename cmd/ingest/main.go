package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vanshika/claimstream/internal/config"
	"github.com/vanshika/claimstream/internal/generator"
	"github.com/vanshika/claimstream/internal/graph"
	"github.com/vanshika/claimstream/internal/logging"
	"github.com/vanshika/claimstream/internal/publisher"
	"github.com/vanshika/claimstream/internal/transport/graphsink"
)

var errMissingDataset = errors.New("dataset not found")

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "config.yaml", "path to the YAML or JSON settings file")
		datasetDir = flag.String("dataset-dir", "./data", "directory containing claims.ndjson")
		claimsPath = flag.String("claims", "", "path to a claims NDJSON file (overrides dataset-dir)")
		batchSize  = flag.Int("batch-size", 1000, "claims written per graph transaction")
	)
	flag.Parse()

	cfg, err := config.LoadGraph(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	logger := logging.New(cfg.Logging, os.Stdout).With("component", "ingest")

	path, err := resolveDatasetPath(*datasetDir, *claimsPath)
	if err != nil {
		logger.Error("dataset resolution failed", "error", err)
		return 1
	}

	records, err := generator.ReadDataset(path)
	if err != nil {
		logger.Error("failed to load claims", "error", err, "path", path)
		return 1
	}
	if len(records) == 0 {
		logger.Error("claims dataset empty", "path", path)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	graphClient, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		return 1
	}
	sink := graphsink.New(graphClient, *batchSize, logger)
	defer func() {
		if err := sink.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	start := time.Now()
	logger.Info("ingesting claims", "count", len(records), "batch_size", *batchSize)
	sent, err := publisher.BulkLoad(ctx, sink, records, nil)
	if err != nil {
		logger.Error("claim ingestion failed", "error", err, "sent", sent)
		return 1
	}

	logger.Info("ingestion complete", "duration", time.Since(start).String(), "claims", sent)
	return 0
}

func resolveDatasetPath(baseDir, explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("stat %s: %w", explicitPath, err)
		}
		return explicitPath, nil
	}
	path := filepath.Join(baseDir, generator.DatasetFile)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", errMissingDataset, path)
	}
	return path, nil
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, graph.ErrMissingURI
	}
	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	client, err := graph.NewNeo4jClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}
