// Package ndjson writes batches as newline-delimited JSON to an io.Writer.
package ndjson

import (
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/vanshika/claimstream/internal/transport"
)

// Transport writes each payload on its own line.
type Transport struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	limits transport.Limits
}

// New returns a transport writing to w. If w is also an io.Closer and closeWriter
// is set, Close closes it.
func New(w io.Writer, limits transport.Limits, closeWriter bool) *Transport {
	t := &Transport{
		w:      bufio.NewWriter(w),
		limits: limits,
	}
	if c, ok := w.(io.Closer); ok && closeWriter {
		t.closer = c
	}
	return t
}

func (t *Transport) NewBatch(_ context.Context) (transport.Batch, error) {
	return transport.NewBufferedBatch(t.limits), nil
}

func (t *Transport) Send(_ context.Context, batch transport.Batch) error {
	b, ok := batch.(*transport.BufferedBatch)
	if !ok {
		return transport.ErrForeignBatch
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, payload := range b.Payloads() {
		if _, err := t.w.Write(payload); err != nil {
			return err
		}
		if err := t.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return t.w.Flush()
}

func (t *Transport) Close(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.w.Flush(); err != nil {
		return err
	}
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}
