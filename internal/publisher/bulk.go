package publisher

import (
	"context"

	"github.com/vanshika/claimstream/internal/claims"
	"github.com/vanshika/claimstream/internal/metrics"
	"github.com/vanshika/claimstream/internal/transport"
)

const bulkChunk = 500

// BulkLoad sends a dataset of previously generated records through tr as fast as the
// transport accepts them and returns how many were delivered. Cancellation is
// checked between chunks. The caller owns tr and closes it.
func BulkLoad(ctx context.Context, tr transport.Transport, records []claims.Record, m *metrics.Metrics) (int, error) {
	var sent int
	b := batcher{
		transport: tr,
		metrics:   m,
		afterSend: func(n int) { sent += n },
	}

	for start := 0; start < len(records); start += bulkChunk {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		end := min(start+bulkChunk, len(records))
		if err := b.publish(ctx, records[start:end]); err != nil {
			return sent, err
		}
	}
	return sent, nil
}
