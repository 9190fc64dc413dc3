package generator

import (
	"encoding/hex"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika/claimstream/internal/claims"
)

const (
	policyKeyspace   = 100000
	hospitalKeyspace = 20000

	minBaseAmount = 8000
	maxBaseAmount = 60000

	minAdmissibleRatio = 0.6
	maxAdmissibleRatio = 0.95

	minProcessingDays = 5
	maxProcessingDays = 45
	maxBackdateDays   = 90

	defaultSeasonalMultiplier = 0.8

	// fraud correlation: large reimbursements with poor admissibility
	fraudAmountThreshold = 150000
	fraudRatioThreshold  = 0.75
)

var seasonalMultipliers = map[time.Month]float64{
	time.December:  1.4,
	time.January:   1.4,
	time.June:      1.6,
	time.July:      1.6,
	time.August:    1.6,
	time.September: 1.6,
}

var claimTypeWeights = []Weighted[claims.ClaimType]{
	{Value: claims.ClaimTypeCashless, Weight: 0.65},
	{Value: claims.ClaimTypeReimbursement, Weight: 0.35},
}

var settlementWeights = []Weighted[claims.SettlementStatus]{
	{Value: claims.StatusSettled, Weight: 0.82},
	{Value: claims.StatusPending, Weight: 0.13},
	{Value: claims.StatusDenied, Weight: 0.05},
}

// DiagnosisCodes is the simplified ICD-10 catalog A10..A98.
var DiagnosisCodes = buildDiagnosisCodes()

func buildDiagnosisCodes() []string {
	codes := make([]string, 0, 89)
	for n := 10; n < 99; n++ {
		codes = append(codes, fmt.Sprintf("A%d", n))
	}
	return codes
}

// SeasonalMultiplier returns the claim amount multiplier for month. Winter and
// monsoon months carry elevated multipliers.
func SeasonalMultiplier(month time.Month) float64 {
	if m, ok := seasonalMultipliers[month]; ok {
		return m
	}
	return defaultSeasonalMultiplier
}

// Generator produces synthetic claim records. It is not safe for concurrent use.
type Generator struct {
	rand *rand.Rand
	now  func() time.Time
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Generator{
		rand: rand.New(rand.NewSource(cfg.Seed)),
		now:  cfg.Now,
	}
}

// Generate samples one claim record anchored at the current time.
func (g *Generator) Generate() claims.Record {
	now := g.now().UTC()
	multiplier := SeasonalMultiplier(now.Month())

	claimType := WeightedChoice(g.rand, claimTypeWeights)

	base := g.intBetween(minBaseAmount, maxBaseAmount)
	total := int64(math.Round(float64(base) * multiplier * g.uniform(0.9, 1.6)))

	ratio := g.uniform(minAdmissibleRatio, maxAdmissibleRatio)
	admissible := int64(math.Round(float64(total) * ratio))

	status := WeightedChoice(g.rand, settlementWeights)

	var reason *string
	if status == claims.StatusDenied {
		r := g.denialReason(claimType, total, ratio)
		reason = &r
	}

	processingDays := g.intBetween(minProcessingDays, maxProcessingDays)
	claimDate := now.AddDate(0, 0, -g.intBetween(1, maxBackdateDays))

	return claims.Record{
		ClaimID:          g.claimID(),
		PolicyID:         fmt.Sprintf("POL%06d", g.intBetween(1, policyKeyspace)),
		HospitalID:       fmt.Sprintf("HSP%06d", g.intBetween(1, hospitalKeyspace)),
		ClaimDate:        claimDate,
		SettlementDate:   claimDate.AddDate(0, 0, processingDays),
		DiagnosisCode:    DiagnosisCodes[g.rand.Intn(len(DiagnosisCodes))],
		ClaimType:        claimType,
		TotalAmount:      total,
		AdmissibleAmount: admissible,
		SettlementStatus: status,
		DenialReason:     reason,
		ProcessingDays:   processingDays,
		EventTime:        now,
	}
}

func (g *Generator) denialReason(claimType claims.ClaimType, total int64, ratio float64) string {
	if isFraudPattern(claimType, total, ratio) {
		return claims.DenialFraudSuspected
	}
	return claims.DenialReasons[g.rand.Intn(len(claims.DenialReasons))]
}

func isFraudPattern(claimType claims.ClaimType, total int64, ratio float64) bool {
	return claimType == claims.ClaimTypeReimbursement &&
		total > fraudAmountThreshold &&
		ratio < fraudRatioThreshold
}

// claimID draws its UUID from the seeded source so seeded runs are reproducible.
func (g *Generator) claimID() string {
	id, err := uuid.NewRandomFromReader(g.rand)
	if err != nil {
		id = uuid.New()
	}
	return "CLM" + strings.ToUpper(hex.EncodeToString(id[:5]))
}

// intBetween returns a uniform integer in [lo, hi].
func (g *Generator) intBetween(lo, hi int) int {
	return lo + g.rand.Intn(hi-lo+1)
}

// uniform returns a uniform float in [lo, hi).
func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rand.Float64()*(hi-lo)
}
