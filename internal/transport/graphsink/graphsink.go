// Package graphsink publishes claim batches into a property graph, linking each
// claim to its policy and hospital.
package graphsink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vanshika/claimstream/internal/claims"
	"github.com/vanshika/claimstream/internal/graph"
	"github.com/vanshika/claimstream/internal/transport"
)

// DefaultMaxRecords bounds the UNWIND list of a single write.
const DefaultMaxRecords = 1000

const insertClaimsCypher = `
UNWIND $claims AS claim
MERGE (p:Policy {id: claim.policy_id})
MERGE (h:Hospital {id: claim.hospital_id})
CREATE (c:Claim)
SET c = claim
CREATE (p)-[:HAS_CLAIM]->(c)
CREATE (c)-[:AT_HOSPITAL]->(h)
`

// Transport writes each batch with a single Cypher statement.
type Transport struct {
	client graph.Client
	limits transport.Limits
	logger *slog.Logger
}

// New wraps client. maxRecords <= 0 uses DefaultMaxRecords.
func New(client graph.Client, maxRecords int, logger *slog.Logger) *Transport {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		client: client,
		limits: transport.Limits{MaxRecords: maxRecords},
		logger: logger,
	}
}

func (t *Transport) NewBatch(_ context.Context) (transport.Batch, error) {
	return transport.NewBufferedBatch(t.limits), nil
}

func (t *Transport) Send(ctx context.Context, batch transport.Batch) error {
	b, ok := batch.(*transport.BufferedBatch)
	if !ok {
		return transport.ErrForeignBatch
	}

	rows := make([]map[string]any, 0, b.Len())
	for i, payload := range b.Payloads() {
		var rec claims.Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			return fmt.Errorf("decode claim %d of batch: %w", i, err)
		}
		rows = append(rows, claimRow(rec))
	}

	summary, err := t.client.ExecuteWrite(ctx, insertClaimsCypher, map[string]any{"claims": rows})
	if err != nil {
		return fmt.Errorf("write %d claims: %w", len(rows), err)
	}
	t.logger.Debug("claims written to graph",
		"claims", len(rows),
		"nodes_created", summary.NodesCreated,
		"relationships_created", summary.RelationshipsCreated,
	)
	return nil
}

// claimRow keeps the record's integer and temporal types so the graph stores
// Integer and DateTime properties rather than floats and strings.
func claimRow(rec claims.Record) map[string]any {
	var reason any
	if rec.DenialReason != nil {
		reason = *rec.DenialReason
	}
	return map[string]any{
		"claim_id":          rec.ClaimID,
		"policy_id":         rec.PolicyID,
		"hospital_id":       rec.HospitalID,
		"claim_date":        rec.ClaimDate,
		"settlement_date":   rec.SettlementDate,
		"diagnosis_code":    rec.DiagnosisCode,
		"claim_type":        string(rec.ClaimType),
		"total_amount":      rec.TotalAmount,
		"admissible_amount": rec.AdmissibleAmount,
		"settlement_status": string(rec.SettlementStatus),
		"denial_reason":     reason,
		"processing_days":   int64(rec.ProcessingDays),
		"event_time":        rec.EventTime,
	}
}

func (t *Transport) Probe(ctx context.Context) error {
	return t.client.VerifyConnectivity(ctx)
}

func (t *Transport) Close(ctx context.Context) error {
	return t.client.Close(ctx)
}
