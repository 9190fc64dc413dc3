package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Config aggregates application configuration values.
type Config struct {
	Simulator SimulatorConfig `yaml:"simulator"`
	Transport TransportConfig `yaml:"transport"`
	EventHub  EventHubConfig  `yaml:"eventhub"`
	Kinesis   KinesisConfig   `yaml:"kinesis"`
	Graph     GraphConfig     `yaml:"graph"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// SimulatorConfig governs generation and pacing.
type SimulatorConfig struct {
	Rate          int           `yaml:"default_rate"`
	Pacing        string        `yaml:"pacing"` // fixed|token_bucket
	Seed          int64         `yaml:"seed"`
	ProgressEvery int           `yaml:"progress_every"`
	Duration      time.Duration `yaml:"duration"`
}

// TransportConfig selects the publish transport.
type TransportConfig struct {
	Kind            string `yaml:"kind"` // eventhubs|kinesis|neo4j|stdout|memory
	MaxBatchRecords int    `yaml:"max_batch_records"`
	MaxBatchBytes   int    `yaml:"max_batch_bytes"`
}

// EventHubConfig describes the Azure Event Hubs namespace and hub.
type EventHubConfig struct {
	ConnectionString string `yaml:"connection_string"`
	Name             string `yaml:"eventhub_name"`
}

// KinesisConfig describes the AWS Kinesis data stream.
type KinesisConfig struct {
	StreamName string `yaml:"stream_name"`
	Region     string `yaml:"region"`
	Endpoint   string `yaml:"endpoint"`
}

// GraphConfig describes connectivity to the graph database (Neo4j/Neptune).
type GraphConfig struct {
	URI            string `yaml:"uri"`
	Database       string `yaml:"database"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	MaxConnections int    `yaml:"max_connections"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"` // text|json
	IncludeCaller bool   `yaml:"include_caller"`
}

// MetricsConfig governs the ops HTTP server exposing /metrics and /healthz.
type MetricsConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Transport kinds.
const (
	TransportEventHubs = "eventhubs"
	TransportKinesis   = "kinesis"
	TransportNeo4j     = "neo4j"
	TransportStdout    = "stdout"
	TransportMemory    = "memory"
)

const (
	defaultRate             = 1000
	maxRate                 = 1_000_000
	defaultPacing           = "fixed"
	defaultProgressEvery    = 10000
	defaultTransport        = TransportEventHubs
	defaultKinesisRegion    = "us-east-1"
	defaultGraphMaxSessions = 10
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultMetricsHost      = "0.0.0.0"
	defaultMetricsPort      = 9102
	defaultReadTimeout      = 5 * time.Second
	defaultWriteTimeout     = 10 * time.Second
	defaultShutdownTimeout  = 5 * time.Second
)

var (
	// ErrNotFound is returned when the settings document does not exist.
	ErrNotFound = errors.New("config file not found")
	// ErrInvalid is returned when a setting fails validation.
	ErrInvalid = errors.New("invalid config")
	// ErrUnknownTransport is returned for an unsupported transport kind.
	ErrUnknownTransport = errors.New("unknown transport kind")
)

// Default returns a Config populated with defaults only.
func Default() Config {
	return Config{
		Simulator: SimulatorConfig{
			Rate:          defaultRate,
			Pacing:        defaultPacing,
			ProgressEvery: defaultProgressEvery,
		},
		Transport: TransportConfig{Kind: defaultTransport},
		Kinesis:   KinesisConfig{Region: defaultKinesisRegion},
		Graph:     GraphConfig{MaxConnections: defaultGraphMaxSessions},
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
		Metrics: MetricsConfig{
			Host:            defaultMetricsHost,
			Port:            defaultMetricsPort,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
	}
}

// Load reads the YAML (or JSON) settings document at path, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	return load(path, Config.Validate)
}

// LoadGraph is Load for tools that only talk to the graph database: the
// simulator and transport sections are not validated.
func LoadGraph(path string) (Config, error) {
	return load(path, Config.ValidateGraph)
}

func load(path string, validate func(Config) error) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrapf(ErrNotFound, "%s", path)
		}
		return Config{}, errors.Wrapf(err, "read %s", path)
	}

	cfg, err := decode(data)
	if err == nil {
		err = validate(cfg)
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "parse %s", path)
	}
	return cfg, nil
}

// Parse decodes a settings document on top of the defaults, applies environment
// overrides and validates the result.
func Parse(data []byte) (Config, error) {
	cfg, err := decode(data)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to unpack config")
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	rate, err := parseIntWithDefault("SIMULATOR_RATE", c.Simulator.Rate)
	if err != nil {
		return err
	}
	c.Simulator.Rate = rate
	c.Simulator.Pacing = valueOrDefault("SIMULATOR_PACING", c.Simulator.Pacing)

	c.Transport.Kind = strings.ToLower(valueOrDefault("TRANSPORT_KIND", c.Transport.Kind))

	c.EventHub.ConnectionString = valueOrDefault("EVENTHUB_CONNECTION_STRING", c.EventHub.ConnectionString)
	c.EventHub.Name = valueOrDefault("EVENTHUB_NAME", c.EventHub.Name)

	c.Kinesis.StreamName = valueOrDefault("KINESIS_STREAM_NAME", c.Kinesis.StreamName)
	c.Kinesis.Region = valueOrDefault("AWS_REGION", c.Kinesis.Region)
	c.Kinesis.Endpoint = valueOrDefault("AWS_ENDPOINT_URL", c.Kinesis.Endpoint)

	c.Graph.URI = valueOrDefault("GRAPH_URI", c.Graph.URI)
	c.Graph.Username = valueOrDefault("GRAPH_USERNAME", c.Graph.Username)
	c.Graph.Password = valueOrDefault("GRAPH_PASSWORD", c.Graph.Password)

	c.Logging.Level = valueOrDefault("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = valueOrDefault("LOG_FORMAT", c.Logging.Format)
	c.Logging.IncludeCaller = parseBoolWithDefault("LOG_INCLUDE_CALLER", c.Logging.IncludeCaller)

	c.Metrics.Enabled = parseBoolWithDefault("METRICS_ENABLED", c.Metrics.Enabled)
	port, err := parseIntWithDefault("METRICS_PORT", c.Metrics.Port)
	if err != nil {
		return err
	}
	c.Metrics.Port = port
	return nil
}

// Validate checks the settings needed to start a run.
func (c Config) Validate() error {
	if c.Simulator.Rate <= 0 {
		return errors.Wrapf(ErrInvalid, "simulator.default_rate must be positive, got %d", c.Simulator.Rate)
	}
	if c.Simulator.Rate > maxRate {
		return errors.Wrapf(ErrInvalid, "simulator.default_rate %d exceeds %d", c.Simulator.Rate, maxRate)
	}
	switch c.Simulator.Pacing {
	case "fixed", "token_bucket":
	default:
		return errors.Wrapf(ErrInvalid, "simulator.pacing %q", c.Simulator.Pacing)
	}
	if c.Simulator.Duration < 0 {
		return errors.Wrap(ErrInvalid, "simulator.duration must not be negative")
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return errors.Wrapf(ErrInvalid, "metrics.port %d is out of range", c.Metrics.Port)
	}

	switch c.Transport.Kind {
	case TransportEventHubs:
		if c.EventHub.ConnectionString == "" || c.EventHub.Name == "" {
			return errors.Wrap(ErrInvalid, "eventhub.connection_string and eventhub.eventhub_name are required")
		}
	case TransportKinesis:
		if c.Kinesis.StreamName == "" {
			return errors.Wrap(ErrInvalid, "kinesis.stream_name is required")
		}
	case TransportNeo4j:
		if err := c.ValidateGraph(); err != nil {
			return err
		}
	case TransportStdout, TransportMemory:
	default:
		return errors.Wrapf(ErrUnknownTransport, "%q", c.Transport.Kind)
	}
	return nil
}

// ValidateGraph checks only the graph connection settings.
func (c Config) ValidateGraph() error {
	if c.Graph.URI == "" {
		return errors.Wrap(ErrInvalid, "graph.uri is required")
	}
	return nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		return val, nil
	}
	return fallback, nil
}
