package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vanshika/claimstream/internal/config"
	"github.com/vanshika/claimstream/internal/generator"
	"github.com/vanshika/claimstream/internal/graph"
	"github.com/vanshika/claimstream/internal/logging"
	"github.com/vanshika/claimstream/internal/metrics"
	"github.com/vanshika/claimstream/internal/publisher"
	"github.com/vanshika/claimstream/internal/server"
	"github.com/vanshika/claimstream/internal/transport"
	"github.com/vanshika/claimstream/internal/transport/eventhubs"
	"github.com/vanshika/claimstream/internal/transport/graphsink"
	"github.com/vanshika/claimstream/internal/transport/kinesis"
	"github.com/vanshika/claimstream/internal/transport/memory"
	"github.com/vanshika/claimstream/internal/transport/ndjson"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "config.yaml", "path to the YAML or JSON settings file")
		rate       = flag.Int("rate", 0, "target events per second (overrides simulator.default_rate)")
		duration   = flag.Duration("duration", 0, "stop after this long (overrides simulator.duration)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	if *rate > 0 {
		cfg.Simulator.Rate = *rate
	}
	if *duration > 0 {
		cfg.Simulator.Duration = *duration
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid flags: %v\n", err)
		return 1
	}

	runID := ulid.Make().String()
	// stdout belongs to the records when publishing to stdout
	logOut := os.Stdout
	if cfg.Transport.Kind == config.TransportStdout {
		logOut = os.Stderr
	}
	logger := logging.New(cfg.Logging, logOut).With("component", "simulator", "run_id", runID)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if cfg.Simulator.Duration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, cfg.Simulator.Duration)
		defer stop()
	}

	tr, err := buildTransport(ctx, logger, cfg, runID)
	if err != nil {
		logger.Error("failed to create transport", "kind", cfg.Transport.Kind, "error", err)
		return 1
	}

	m := metrics.New()
	pub, err := publisher.New(generator.New(generator.Config{Seed: cfg.Simulator.Seed}), tr, publisher.Options{
		Rate:          float64(cfg.Simulator.Rate),
		Pacing:        publisher.Pacing(cfg.Simulator.Pacing),
		ProgressEvery: cfg.Simulator.ProgressEvery,
		Logger:        logger,
		Metrics:       m,
	})
	if err != nil {
		logger.Error("invalid publisher options", "error", err)
		if cerr := tr.Close(context.Background()); cerr != nil {
			logger.Warn("closing transport failed", "error", cerr)
		}
		return 1
	}

	if cfg.Metrics.Enabled {
		router := server.NewRouter(logger, server.RouterDependencies{
			Health:  server.TransportHealthService{Transport: tr},
			Metrics: m.Handler(),
			Status:  pub,
		})
		srv := server.New(logger, cfg.Metrics, router)
		// the ops server outlives the publish context so /status reports the drain
		opsCtx, stopOps := context.WithCancel(context.Background())
		opsDone := make(chan struct{})
		go func() {
			defer close(opsDone)
			if err := srv.Run(opsCtx); err != nil {
				logger.Error("ops server stopped unexpectedly", "error", err)
			}
		}()
		defer func() {
			stopOps()
			<-opsDone
		}()
	}

	plan := pub.Plan()
	logger.Info("streaming claims",
		"transport", cfg.Transport.Kind,
		"destination", destination(cfg),
		"rate", cfg.Simulator.Rate,
		"batch_size", plan.BatchSize,
		"interval", plan.Interval.String(),
		"pacing", cfg.Simulator.Pacing,
	)

	start := time.Now()
	if err := pub.Run(ctx); err != nil {
		logger.Error("publishing failed", "error", err, "sent", pub.Sent())
		return 1
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logger.Info("run duration reached", "duration", cfg.Simulator.Duration.String())
	} else {
		logger.Info("received shutdown signal")
	}
	logger.Info("simulator stopped", "sent", pub.Sent(), "elapsed", time.Since(start).Round(time.Millisecond).String())
	return 0
}

func buildTransport(ctx context.Context, logger *slog.Logger, cfg config.Config, runID string) (transport.Transport, error) {
	limits := transport.Limits{
		MaxRecords: cfg.Transport.MaxBatchRecords,
		MaxBytes:   cfg.Transport.MaxBatchBytes,
	}

	switch cfg.Transport.Kind {
	case config.TransportEventHubs:
		tr, err := eventhubs.New(eventhubs.Options{
			ConnectionString: cfg.EventHub.ConnectionString,
			HubName:          cfg.EventHub.Name,
			MaxBatchBytes:    uint64(max(cfg.Transport.MaxBatchBytes, 0)),
			RunID:            runID,
		})
		if err != nil {
			return nil, err
		}
		return tr, nil
	case config.TransportKinesis:
		tr, err := kinesis.New(ctx, kinesis.Options{
			StreamName: cfg.Kinesis.StreamName,
			Region:     cfg.Kinesis.Region,
			Endpoint:   cfg.Kinesis.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return tr, nil
	case config.TransportNeo4j:
		client, err := buildGraphClient(ctx, logger, cfg)
		if err != nil {
			return nil, err
		}
		return graphsink.New(client, cfg.Transport.MaxBatchRecords, logger), nil
	case config.TransportStdout:
		return ndjson.New(os.Stdout, limits, false), nil
	case config.TransportMemory:
		return memory.New(limits), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownTransport, cfg.Transport.Kind)
	}
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

func destination(cfg config.Config) string {
	switch cfg.Transport.Kind {
	case config.TransportEventHubs:
		return cfg.EventHub.Name
	case config.TransportKinesis:
		return cfg.Kinesis.StreamName
	case config.TransportNeo4j:
		return cfg.Graph.URI
	default:
		return cfg.Transport.Kind
	}
}
