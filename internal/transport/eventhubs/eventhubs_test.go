package eventhubs

import (
	"context"
	"errors"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azeventhubs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/claimstream/internal/transport"
)

func TestNew_ValidatesOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"missing connection string", Options{HubName: "claims"}, ErrMissingConnectionString},
		{"missing hub", Options{ConnectionString: "Endpoint=sb://example.servicebus.windows.net/;SharedAccessKeyName=send;SharedAccessKey=c2VjcmV0"}, ErrMissingHubName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

type otherBatch struct{}

func (otherBatch) Append([]byte) transport.AppendResult { return transport.Appended }
func (otherBatch) Len() int                             { return 0 }

func TestTransport_RejectsForeignBatch(t *testing.T) {
	tr := &Transport{}
	assert.ErrorIs(t, tr.Send(context.Background(), otherBatch{}), transport.ErrForeignBatch)
}

func addFunc(results ...error) func(*azeventhubs.EventData, *azeventhubs.AddEventDataOptions) error {
	return func(*azeventhubs.EventData, *azeventhubs.AddEventDataOptions) error {
		err := results[0]
		if len(results) > 1 {
			results = results[1:]
		}
		return err
	}
}

func TestBatch_TooLargeReportsFull(t *testing.T) {
	b := &batch{add: addFunc(nil, azeventhubs.ErrEventDataTooLarge)}

	assert.Equal(t, transport.Appended, b.Append([]byte(`{"claim_id":"CLM1"}`)))
	assert.Equal(t, transport.BatchFull, b.Append([]byte(`{"claim_id":"CLM2"}`)))
	assert.Equal(t, 1, b.Len())
	assert.NoError(t, b.err)
}

func TestBatch_AddFailureSurfacesOnSend(t *testing.T) {
	amqpErr := errors.New("amqp: encode failed")
	b := &batch{add: addFunc(amqpErr)}

	// the batch must not look empty, or the loop would skip Send and drop the error
	require.Equal(t, transport.Appended, b.Append([]byte(`{"claim_id":"CLM1"}`)))
	require.Equal(t, 1, b.Len())
	assert.Equal(t, transport.Appended, b.Append([]byte(`{"claim_id":"CLM2"}`)))
	assert.Equal(t, 2, b.Len())

	err := (&Transport{}).Send(context.Background(), b)
	assert.ErrorIs(t, err, amqpErr)
}

func TestBatch_AttachesRunID(t *testing.T) {
	var got *azeventhubs.EventData
	b := &batch{runID: "01HZX", add: func(e *azeventhubs.EventData, _ *azeventhubs.AddEventDataOptions) error {
		got = e
		return nil
	}}

	b.Append([]byte(`{}`))
	require.NotNil(t, got)
	assert.Equal(t, "01HZX", got.Properties["run_id"])
	assert.Equal(t, "application/json", *got.ContentType)
}
