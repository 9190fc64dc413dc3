package graph

import (
	"context"
	"errors"
)

// Client is the minimal contract the graph sink needs from a Bolt-compatible database.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Summary, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Summary reports the write counters of an executed statement.
type Summary struct {
	NodesCreated         int
	RelationshipsCreated int
	PropertiesSet        int
}

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
