// Package publisher drives the claim generator at a target rate and publishes
// the records in transport-sized batches until its context is cancelled.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vanshika/claimstream/internal/claims"
	"github.com/vanshika/claimstream/internal/metrics"
	"github.com/vanshika/claimstream/internal/transport"
)

// DefaultProgressEvery is the number of sent events between progress log lines.
const DefaultProgressEvery = 10000

const defaultCloseTimeout = 10 * time.Second

var (
	// ErrInvalidRate is returned for a non-positive or non-finite target rate.
	ErrInvalidRate = errors.New("target rate must be a positive number")
	// ErrUnknownPacing is returned for an unrecognised pacing strategy.
	ErrUnknownPacing = errors.New("unknown pacing strategy")
	// ErrRecordTooLarge is returned when a record does not fit in an empty batch.
	ErrRecordTooLarge = errors.New("record exceeds transport batch capacity")
)

// State is the lifecycle state of a Publisher.
type State int32

const (
	StateRunning State = iota
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Source produces claim records.
type Source interface {
	Generate() claims.Record
}

// Options configures a Publisher.
type Options struct {
	// Rate is the target throughput in events per second.
	Rate          float64
	Pacing        Pacing
	ProgressEvery int
	Clock         Clock
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	CloseTimeout  time.Duration
}

// Publisher owns a transport for the duration of Run and closes it on exit.
type Publisher struct {
	batcher

	source Source
	plan   Plan
	pacer  pacer
	logger *slog.Logger

	progressEvery int64
	closeTimeout  time.Duration

	// stateMu orders transitions with their gauge updates; state is read lock-free.
	stateMu sync.Mutex
	state   atomic.Int32
	sent    atomic.Int64
}

// New validates opts and returns a Publisher ready to Run.
func New(source Source, tr transport.Transport, opts Options) (*Publisher, error) {
	if source == nil {
		return nil, errors.New("publisher: source is required")
	}
	if tr == nil {
		return nil, errors.New("publisher: transport is required")
	}

	plan, err := NewPlan(opts.Rate)
	if err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	p, err := newPacer(opts.Pacing, plan, opts.Clock)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	if opts.CloseTimeout <= 0 {
		opts.CloseTimeout = defaultCloseTimeout
	}

	opts.Metrics.SetBatchSize(plan.BatchSize)
	pub := &Publisher{
		batcher:       batcher{transport: tr, metrics: opts.Metrics},
		source:        source,
		plan:          plan,
		pacer:         p,
		logger:        opts.Logger,
		progressEvery: int64(opts.ProgressEvery),
		closeTimeout:  opts.CloseTimeout,
	}
	pub.batcher.afterSend = pub.afterSend
	return pub, nil
}

// Plan returns the batch size and interval derived from the target rate.
func (p *Publisher) Plan() Plan { return p.plan }

// State returns the current lifecycle state.
func (p *Publisher) State() State { return State(p.state.Load()) }

// Sent returns the number of events delivered so far.
func (p *Publisher) Sent() int64 { return p.sent.Load() }

// Run publishes until ctx is cancelled, then returns nil. A transport failure
// ends the run and is returned as is. The transport is closed exactly once on
// every exit path.
//
// Cancellation is observed before each cycle and during the pacing wait. A cycle
// that has started runs to completion on a context detached from ctx, so no send
// is abandoned midway.
func (p *Publisher) Run(ctx context.Context) error {
	p.setState(StateRunning)
	defer p.release(ctx)
	stop := context.AfterFunc(ctx, func() { p.transition(StateRunning, StateDraining) })
	defer stop()

	sendCtx := context.WithoutCancel(ctx)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := p.cycle(sendCtx); err != nil {
			return err
		}
		// The pacer only fails when ctx is done or its deadline is too close.
		if err := p.pacer.Wait(ctx); err != nil {
			return nil
		}
	}
}

func (p *Publisher) cycle(ctx context.Context) error {
	records := make([]claims.Record, p.plan.BatchSize)
	for i := range records {
		records[i] = p.source.Generate()
	}
	return p.batcher.publish(ctx, records)
}

func (p *Publisher) afterSend(n int) {
	total := p.sent.Add(int64(n))
	if crossed(total-int64(n), total, p.progressEvery) {
		p.logger.Info("progress", "sent", total)
	}
}

// crossed reports whether a multiple of every lies in (prev, next].
func crossed(prev, next, every int64) bool {
	return next/every > prev/every
}

func (p *Publisher) release(ctx context.Context) {
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.closeTimeout)
	defer cancel()

	if err := p.transport.Close(closeCtx); err != nil {
		p.logger.Warn("closing transport failed", "error", err)
	}
	p.setState(StateStopped)
	p.logger.Info("publisher stopped", "sent", p.Sent())
}

func (p *Publisher) setState(s State) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	p.state.Store(int32(s))
	p.metrics.SetState(int(s))
}

// transition moves from one state to another only if the publisher is still in
// from, so a late Draining never overwrites Stopped.
func (p *Publisher) transition(from, to State) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	if State(p.state.Load()) != from {
		return
	}
	p.state.Store(int32(to))
	p.metrics.SetState(int(to))
}
