// Package memory provides an in-process transport that keeps every sent batch.
// It backs dry runs and publisher tests.
package memory

import (
	"context"
	"sync"

	"github.com/vanshika/claimstream/internal/transport"
)

// Transport records sent batches in memory.
type Transport struct {
	mu          sync.Mutex
	limits      transport.Limits
	batches     [][][]byte
	sendErr     error
	newBatchErr error
	probeErr    error
	closeCalls  int
	onSend      func(batch [][]byte)
}

// New returns a transport whose batches are bounded by limits.
func New(limits transport.Limits) *Transport {
	return &Transport{limits: limits}
}

// WithSendError makes every subsequent Send fail with err.
func (t *Transport) WithSendError(err error) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendErr = err
	return t
}

// WithNewBatchError makes every subsequent NewBatch fail with err.
func (t *Transport) WithNewBatchError(err error) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.newBatchErr = err
	return t
}

// WithProbeError makes Probe report err.
func (t *Transport) WithProbeError(err error) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.probeErr = err
	return t
}

// OnSend registers a hook invoked after each successful send.
func (t *Transport) OnSend(fn func(batch [][]byte)) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSend = fn
	return t
}

func (t *Transport) NewBatch(_ context.Context) (transport.Batch, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.newBatchErr != nil {
		return nil, t.newBatchErr
	}
	return transport.NewBufferedBatch(t.limits), nil
}

func (t *Transport) Send(_ context.Context, batch transport.Batch) error {
	b, ok := batch.(*transport.BufferedBatch)
	if !ok {
		return transport.ErrForeignBatch
	}

	t.mu.Lock()
	if t.sendErr != nil {
		err := t.sendErr
		t.mu.Unlock()
		return err
	}
	payloads := append([][]byte(nil), b.Payloads()...)
	t.batches = append(t.batches, payloads)
	hook := t.onSend
	t.mu.Unlock()

	if hook != nil {
		hook(payloads)
	}
	return nil
}

func (t *Transport) Probe(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.probeErr
}

func (t *Transport) Close(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeCalls++
	return nil
}

// Batches returns a snapshot of the sent batches.
func (t *Transport) Batches() [][][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([][][]byte(nil), t.batches...)
}

// BatchSizes returns the record count of each sent batch.
func (t *Transport) BatchSizes() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	sizes := make([]int, len(t.batches))
	for i, b := range t.batches {
		sizes[i] = len(b)
	}
	return sizes
}

// Records returns the total number of records sent.
func (t *Transport) Records() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var n int
	for _, b := range t.batches {
		n += len(b)
	}
	return n
}

// CloseCalls returns how many times Close was invoked.
func (t *Transport) CloseCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeCalls
}
