// Package transport defines the contract the publisher needs from a message hub client.
package transport

import (
	"context"
	"errors"
)

// AppendResult reports whether a payload was accepted by a batch.
type AppendResult int

const (
	// Appended means the payload is now part of the batch.
	Appended AppendResult = iota
	// BatchFull means the batch cannot take the payload; the batch is unchanged.
	BatchFull
)

func (r AppendResult) String() string {
	switch r {
	case Appended:
		return "appended"
	case BatchFull:
		return "batch_full"
	default:
		return "unknown"
	}
}

// Batch is a capacity-bounded container of serialized records.
type Batch interface {
	Append(payload []byte) AppendResult
	Len() int
}

// Transport publishes batches to a downstream ingestion endpoint.
type Transport interface {
	NewBatch(ctx context.Context) (Batch, error)
	Send(ctx context.Context, batch Batch) error
	Close(ctx context.Context) error
}

// Prober is implemented by transports that can check the downstream endpoint is reachable.
type Prober interface {
	Probe(ctx context.Context) error
}

// ErrForeignBatch is returned when Send receives a batch created by another transport.
var ErrForeignBatch = errors.New("batch was not created by this transport")
