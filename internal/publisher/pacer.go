package publisher

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"
)

// Pacing names a strategy for holding the target rate between cycles.
type Pacing string

const (
	// PacingFixed sleeps one cycle interval after every cycle.
	PacingFixed Pacing = "fixed"
	// PacingTokenBucket waits on a token bucket refilled at the target rate, so
	// time spent sending counts toward the interval.
	PacingTokenBucket Pacing = "token_bucket"
)

// Plan holds the parameters derived from a target rate.
type Plan struct {
	Rate      float64
	BatchSize int
	Interval  time.Duration
}

// MaxRate caps the target rate so a cycle holds at most MaxRate/10 records.
const MaxRate = 1_000_000

// NewPlan derives ten cycles per second: batchSize = max(1, floor(rate/10)) and
// interval = batchSize/rate seconds.
func NewPlan(eventsPerSecond float64) (Plan, error) {
	if math.IsNaN(eventsPerSecond) || math.IsInf(eventsPerSecond, 0) || eventsPerSecond <= 0 {
		return Plan{}, fmt.Errorf("%w: %v", ErrInvalidRate, eventsPerSecond)
	}
	if eventsPerSecond > MaxRate {
		return Plan{}, fmt.Errorf("%w: %v exceeds %d events per second", ErrInvalidRate, eventsPerSecond, MaxRate)
	}
	batchSize := int(math.Floor(eventsPerSecond / 10))
	if batchSize < 1 {
		batchSize = 1
	}
	interval := time.Duration(math.Round(float64(batchSize) / eventsPerSecond * float64(time.Second)))
	return Plan{Rate: eventsPerSecond, BatchSize: batchSize, Interval: interval}, nil
}

type pacer interface {
	Wait(ctx context.Context) error
}

type fixedPacer struct {
	clock    Clock
	interval time.Duration
}

func (p fixedPacer) Wait(ctx context.Context) error {
	return p.clock.Sleep(ctx, p.interval)
}

type tokenBucketPacer struct {
	limiter *rate.Limiter
	n       int
}

func newTokenBucketPacer(plan Plan) *tokenBucketPacer {
	return &tokenBucketPacer{
		limiter: rate.NewLimiter(rate.Limit(plan.Rate), plan.BatchSize),
		n:       plan.BatchSize,
	}
}

// Wait also fails early when the wait would outlive the context deadline.
func (p *tokenBucketPacer) Wait(ctx context.Context) error {
	return p.limiter.WaitN(ctx, p.n)
}

func newPacer(strategy Pacing, plan Plan, clock Clock) (pacer, error) {
	switch strategy {
	case "", PacingFixed:
		return fixedPacer{clock: clock, interval: plan.Interval}, nil
	case PacingTokenBucket:
		return newTokenBucketPacer(plan), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPacing, strategy)
	}
}
