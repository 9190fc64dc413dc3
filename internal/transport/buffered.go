package transport

// Limits bounds a BufferedBatch. Zero values mean unbounded.
type Limits struct {
	MaxRecords int
	MaxBytes   int
	// PerRecordOverhead is added to each payload when accounting against MaxBytes.
	PerRecordOverhead int
}

// BufferedBatch keeps payloads in memory until the owning transport sends them.
type BufferedBatch struct {
	limits   Limits
	payloads [][]byte
	size     int
}

// NewBufferedBatch returns an empty batch bounded by limits.
func NewBufferedBatch(limits Limits) *BufferedBatch {
	return &BufferedBatch{limits: limits}
}

// Append adds payload unless doing so would exceed the record or byte limit.
func (b *BufferedBatch) Append(payload []byte) AppendResult {
	if b.limits.MaxRecords > 0 && len(b.payloads) >= b.limits.MaxRecords {
		return BatchFull
	}
	cost := len(payload) + b.limits.PerRecordOverhead
	if b.limits.MaxBytes > 0 && b.size+cost > b.limits.MaxBytes {
		return BatchFull
	}
	b.payloads = append(b.payloads, payload)
	b.size += cost
	return Appended
}

// Len returns the number of buffered payloads.
func (b *BufferedBatch) Len() int { return len(b.payloads) }

// Size returns the accounted size in bytes.
func (b *BufferedBatch) Size() int { return b.size }

// Payloads returns the buffered payloads in append order.
func (b *BufferedBatch) Payloads() [][]byte { return b.payloads }
