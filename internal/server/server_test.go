package server

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/claimstream/internal/config"
)

func TestServer_RunStopsOnCancel(t *testing.T) {
	cfg := config.Default().Metrics
	cfg.Host = "127.0.0.1"
	cfg.Port = 0

	srv := New(testLogger(), cfg, NewRouter(testLogger(), RouterDependencies{}))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestServer_RunReportsBindFailure(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	cfg := config.Default().Metrics
	cfg.Host = "127.0.0.1"
	cfg.Port = taken.Addr().(*net.TCPAddr).Port

	srv := New(testLogger(), cfg, NewRouter(testLogger(), RouterDependencies{}))
	err = srv.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on 127.0.0.1:"+strconv.Itoa(cfg.Port))
}
