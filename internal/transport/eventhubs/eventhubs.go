// Package eventhubs publishes claim batches to an Azure Event Hub.
package eventhubs

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azeventhubs"

	"github.com/vanshika/claimstream/internal/transport"
)

const contentTypeJSON = "application/json"

var (
	// ErrMissingConnectionString indicates the namespace connection string is not configured.
	ErrMissingConnectionString = errors.New("event hub connection string is required")
	// ErrMissingHubName indicates the event hub name is not configured.
	ErrMissingHubName = errors.New("event hub name is required")
)

// Options configures the Event Hubs producer.
type Options struct {
	ConnectionString string
	HubName          string
	// MaxBatchBytes caps a batch below the hub's negotiated link size. Zero uses the link size.
	MaxBatchBytes uint64
	// RunID is attached to every event as an application property.
	RunID string
}

func (o Options) validate() error {
	if o.ConnectionString == "" {
		return ErrMissingConnectionString
	}
	if o.HubName == "" {
		return ErrMissingHubName
	}
	return nil
}

// Transport wraps a single producer client owned for the life of a run.
type Transport struct {
	producer *azeventhubs.ProducerClient
	opts     Options
}

// New creates a producer client from the connection string.
func New(opts Options) (*Transport, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	producer, err := azeventhubs.NewProducerClientFromConnectionString(opts.ConnectionString, opts.HubName, nil)
	if err != nil {
		return nil, fmt.Errorf("create event hub producer: %w", err)
	}
	return &Transport{producer: producer, opts: opts}, nil
}

type batch struct {
	inner *azeventhubs.EventDataBatch
	add   func(*azeventhubs.EventData, *azeventhubs.AddEventDataOptions) error
	runID string
	count int
	err   error
}

func newBatch(inner *azeventhubs.EventDataBatch, runID string) *batch {
	return &batch{inner: inner, add: inner.AddEventData, runID: runID}
}

// Append maps ErrEventDataTooLarge to BatchFull. Any other add failure is kept and
// reported by Send so it travels the normal send-failure path. Records taken
// after such a failure still count, so the batch is never empty and Send runs.
func (b *batch) Append(payload []byte) transport.AppendResult {
	if b.err != nil {
		b.count++
		return transport.Appended
	}
	contentType := contentTypeJSON
	event := &azeventhubs.EventData{
		Body:        payload,
		ContentType: &contentType,
	}
	if b.runID != "" {
		event.Properties = map[string]any{"run_id": b.runID}
	}

	err := b.add(event, nil)
	switch {
	case err == nil:
		b.count++
		return transport.Appended
	case errors.Is(err, azeventhubs.ErrEventDataTooLarge):
		return transport.BatchFull
	default:
		b.err = err
		b.count++
		return transport.Appended
	}
}

func (b *batch) Len() int { return b.count }

func (t *Transport) NewBatch(ctx context.Context) (transport.Batch, error) {
	var opts *azeventhubs.EventDataBatchOptions
	if t.opts.MaxBatchBytes > 0 {
		opts = &azeventhubs.EventDataBatchOptions{MaxBytes: t.opts.MaxBatchBytes}
	}
	inner, err := t.producer.NewEventDataBatch(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("create event data batch: %w", err)
	}
	return newBatch(inner, t.opts.RunID), nil
}

func (t *Transport) Send(ctx context.Context, b transport.Batch) error {
	eb, ok := b.(*batch)
	if !ok {
		return transport.ErrForeignBatch
	}
	if eb.err != nil {
		return fmt.Errorf("add event data: %w", eb.err)
	}
	return t.producer.SendEventDataBatch(ctx, eb.inner, nil)
}

func (t *Transport) Probe(ctx context.Context) error {
	_, err := t.producer.GetEventHubProperties(ctx, nil)
	return err
}

func (t *Transport) Close(ctx context.Context) error {
	return t.producer.Close(ctx)
}
