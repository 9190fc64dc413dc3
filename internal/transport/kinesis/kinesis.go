// Package kinesis publishes claim batches to an AWS Kinesis data stream with PutRecords.
package kinesis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"github.com/oklog/ulid/v2"

	"github.com/vanshika/claimstream/internal/transport"
)

// PutRecords service limits.
const (
	MaxRecordsPerRequest = 500
	MaxBytesPerRequest   = 5 << 20
	MaxBytesPerRecord    = 1 << 20

	// partition keys are ULIDs
	partitionKeyLen = 26
)

// ErrPartialFailure is returned when the stream rejected some records of a batch.
var ErrPartialFailure = errors.New("kinesis rejected records")

// ErrMissingStream indicates the stream name is not configured.
var ErrMissingStream = errors.New("kinesis stream name is required")

// API is the subset of the Kinesis client used by the transport.
type API interface {
	PutRecords(ctx context.Context, params *kinesis.PutRecordsInput, optFns ...func(*kinesis.Options)) (*kinesis.PutRecordsOutput, error)
	DescribeStreamSummary(ctx context.Context, params *kinesis.DescribeStreamSummaryInput, optFns ...func(*kinesis.Options)) (*kinesis.DescribeStreamSummaryOutput, error)
}

// Options configures the Kinesis transport.
type Options struct {
	StreamName string
	Region     string
	// Endpoint overrides the service endpoint, e.g. http://localstack:4566.
	Endpoint string
}

// Transport sends each batch as one PutRecords request.
type Transport struct {
	api    API
	stream string
}

// New loads the default AWS configuration and builds a Kinesis client.
func New(ctx context.Context, opts Options) (*Transport, error) {
	if opts.StreamName == "" {
		return nil, ErrMissingStream
	}
	cfg, err := awsCfg.LoadDefaultConfig(ctx, awsCfg.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := kinesis.NewFromConfig(cfg, func(o *kinesis.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return NewWithAPI(client, opts.StreamName), nil
}

// NewWithAPI wraps an existing client.
func NewWithAPI(api API, stream string) *Transport {
	return &Transport{api: api, stream: stream}
}

type batch struct {
	entries []types.PutRecordsRequestEntry
	size    int
}

func (b *batch) Append(payload []byte) transport.AppendResult {
	cost := len(payload) + partitionKeyLen
	if cost > MaxBytesPerRecord ||
		len(b.entries) >= MaxRecordsPerRequest ||
		b.size+cost > MaxBytesPerRequest {
		return transport.BatchFull
	}
	b.entries = append(b.entries, types.PutRecordsRequestEntry{
		Data:         payload,
		PartitionKey: aws.String(ulid.Make().String()),
	})
	b.size += cost
	return transport.Appended
}

func (b *batch) Len() int { return len(b.entries) }

func (t *Transport) NewBatch(_ context.Context) (transport.Batch, error) {
	return &batch{}, nil
}

func (t *Transport) Send(ctx context.Context, b transport.Batch) error {
	kb, ok := b.(*batch)
	if !ok {
		return transport.ErrForeignBatch
	}

	out, err := t.api.PutRecords(ctx, &kinesis.PutRecordsInput{
		StreamName: aws.String(t.stream),
		Records:    kb.entries,
	})
	if err != nil {
		return err
	}
	if out.FailedRecordCount != nil && *out.FailedRecordCount > 0 {
		return fmt.Errorf("%w: %d of %d", ErrPartialFailure, *out.FailedRecordCount, len(kb.entries))
	}
	return nil
}

func (t *Transport) Probe(ctx context.Context) error {
	_, err := t.api.DescribeStreamSummary(ctx, &kinesis.DescribeStreamSummaryInput{
		StreamName: aws.String(t.stream),
	})
	return err
}

// Close is a no-op; the SDK client holds no connection state that needs releasing.
func (t *Transport) Close(context.Context) error {
	return nil
}
