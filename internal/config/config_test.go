package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
simulator:
  default_rate: 2500
  pacing: token_bucket
  seed: 42
  duration: 30s
transport:
  kind: kinesis
  max_batch_records: 200
kinesis:
  stream_name: claims
  region: ap-south-1
logging:
  level: debug
  format: json
metrics:
  enabled: true
  port: 9200
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2500, cfg.Simulator.Rate)
	assert.Equal(t, "token_bucket", cfg.Simulator.Pacing)
	assert.Equal(t, int64(42), cfg.Simulator.Seed)
	assert.Equal(t, 30*time.Second, cfg.Simulator.Duration)
	assert.Equal(t, defaultProgressEvery, cfg.Simulator.ProgressEvery)
	assert.Equal(t, TransportKinesis, cfg.Transport.Kind)
	assert.Equal(t, 200, cfg.Transport.MaxBatchRecords)
	assert.Equal(t, "claims", cfg.Kinesis.StreamName)
	assert.Equal(t, "ap-south-1", cfg.Kinesis.Region)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9200, cfg.Metrics.Port)
	assert.Equal(t, defaultShutdownTimeout, cfg.Metrics.ShutdownTimeout)
}

func TestLoad_JSONDocument(t *testing.T) {
	path := writeFile(t, "config.json", `{
  "simulator": {"default_rate": 500},
  "eventhub": {
    "connection_string": "Endpoint=sb://claims.servicebus.windows.net/;SharedAccessKeyName=send;SharedAccessKey=abc",
    "eventhub_name": "claims-stream"
  }
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Simulator.Rate)
	assert.Equal(t, TransportEventHubs, cfg.Transport.Kind)
	assert.Equal(t, "claims-stream", cfg.EventHub.Name)
}

func TestLoad_DefaultRate(t *testing.T) {
	path := writeFile(t, "config.yaml", "transport:\n  kind: stdout\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Simulator.Rate)
	assert.Equal(t, "fixed", cfg.Simulator.Pacing)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", "transport:\n  kind: stdout\n")
	t.Setenv("SIMULATOR_RATE", "42")
	t.Setenv("TRANSPORT_KIND", "NEO4J")
	t.Setenv("GRAPH_URI", "bolt://localhost:7687")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Simulator.Rate)
	assert.Equal(t, TransportNeo4j, cfg.Transport.Kind)
	assert.Equal(t, "bolt://localhost:7687", cfg.Graph.URI)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	tests := []struct {
		name string
		body string
		want error
	}{
		{"rate above limit", "simulator:\n  default_rate: 1000001\ntransport:\n  kind: stdout\n", ErrInvalid},
		{"non-positive rate", "simulator:\n  default_rate: 0\ntransport:\n  kind: stdout\n", ErrInvalid},
		{"unknown pacing", "simulator:\n  pacing: burst\ntransport:\n  kind: stdout\n", ErrInvalid},
		{"eventhub without credentials", "simulator:\n  default_rate: 10\n", ErrInvalid},
		{"kinesis without stream", "transport:\n  kind: kinesis\n", ErrInvalid},
		{"unknown transport", "transport:\n  kind: pigeon\n", ErrUnknownTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", tt.body))
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err = Load(writeFile(t, "config.yaml", "simulator: [not, a, map]\n"))
	assert.Error(t, err)
}

func TestLoad_InvalidEnvInt(t *testing.T) {
	t.Setenv("SIMULATOR_RATE", "fast")
	_, err := Parse([]byte("transport:\n  kind: stdout\n"))
	assert.Error(t, err)
}

func TestLoadGraph_IgnoresTransportSection(t *testing.T) {
	// default transport kind is eventhubs, with no credentials configured
	path := writeFile(t, "ingest.yaml", "graph:\n  uri: neo4j://graph:7687\n  database: claims\n")

	_, err := Load(path)
	assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)

	cfg, err := LoadGraph(path)
	require.NoError(t, err)
	assert.Equal(t, "neo4j://graph:7687", cfg.Graph.URI)
	assert.Equal(t, "claims", cfg.Graph.Database)
	assert.Equal(t, defaultGraphMaxSessions, cfg.Graph.MaxConnections)
}

func TestLoadGraph_RequiresURI(t *testing.T) {
	_, err := LoadGraph(writeFile(t, "ingest.yaml", "logging:\n  level: debug\n"))
	assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
}
