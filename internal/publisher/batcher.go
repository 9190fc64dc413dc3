package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/vanshika/claimstream/internal/claims"
	"github.com/vanshika/claimstream/internal/metrics"
	"github.com/vanshika/claimstream/internal/transport"
)

// batcher fills transport batches and flushes them when they report full.
type batcher struct {
	transport transport.Transport
	metrics   *metrics.Metrics
	afterSend func(n int)
}

// publish sends records in order, in as many batches as the transport needs.
func (b *batcher) publish(ctx context.Context, records []claims.Record) error {
	batch, err := b.transport.NewBatch(ctx)
	if err != nil {
		return err
	}

	for _, rec := range records {
		payload, err := rec.Marshal()
		if err != nil {
			return fmt.Errorf("encode claim %s: %w", rec.ClaimID, err)
		}
		if batch.Append(payload) == transport.Appended {
			continue
		}

		if batch.Len() == 0 {
			return fmt.Errorf("%w: claim %s is %d bytes", ErrRecordTooLarge, rec.ClaimID, len(payload))
		}
		if err := b.send(ctx, batch); err != nil {
			return err
		}
		b.metrics.ObserveOverflow()

		if batch, err = b.transport.NewBatch(ctx); err != nil {
			return err
		}
		if batch.Append(payload) != transport.Appended {
			return fmt.Errorf("%w: claim %s is %d bytes", ErrRecordTooLarge, rec.ClaimID, len(payload))
		}
	}

	if batch.Len() == 0 {
		return nil
	}
	return b.send(ctx, batch)
}

func (b *batcher) send(ctx context.Context, batch transport.Batch) error {
	n := batch.Len()
	start := time.Now()
	if err := b.transport.Send(ctx, batch); err != nil {
		b.metrics.ObserveSendFailure(time.Since(start))
		return err
	}
	b.metrics.ObserveSend(n, time.Since(start))
	if b.afterSend != nil {
		b.afterSend(n)
	}
	return nil
}
