package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferedBatch_Limits(t *testing.T) {
	tests := []struct {
		name     string
		limits   Limits
		payloads []string
		want     []AppendResult
	}{
		{
			name:     "unbounded",
			payloads: []string{"a", "bb", "ccc"},
			want:     []AppendResult{Appended, Appended, Appended},
		},
		{
			name:     "record limit",
			limits:   Limits{MaxRecords: 2},
			payloads: []string{"a", "b", "c"},
			want:     []AppendResult{Appended, Appended, BatchFull},
		},
		{
			name:     "byte limit",
			limits:   Limits{MaxBytes: 5},
			payloads: []string{"abc", "de", "f"},
			want:     []AppendResult{Appended, Appended, BatchFull},
		},
		{
			name:     "overhead counts against bytes",
			limits:   Limits{MaxBytes: 6, PerRecordOverhead: 2},
			payloads: []string{"ab", "c", "d"},
			want:     []AppendResult{Appended, BatchFull, BatchFull},
		},
		{
			name:     "oversized payload on empty batch",
			limits:   Limits{MaxBytes: 2},
			payloads: []string{"abc"},
			want:     []AppendResult{BatchFull},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBufferedBatch(tt.limits)
			var appended int
			for i, p := range tt.payloads {
				got := b.Append([]byte(p))
				assert.Equal(t, tt.want[i], got, "payload %d", i)
				if got == Appended {
					appended++
				}
			}
			assert.Equal(t, appended, b.Len())
			assert.Len(t, b.Payloads(), appended)
		})
	}
}

func TestAppendResult_String(t *testing.T) {
	assert.Equal(t, "appended", Appended.String())
	assert.Equal(t, "batch_full", BatchFull.String())
	assert.Equal(t, "unknown", AppendResult(9).String())
}
