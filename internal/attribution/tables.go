package attribution

import (
	"fmt"

	"github.com/ignite/attribution-engine/internal/domain"
)

// Tables holds the constant weight tables the engine computes with. They are
// fixed at engine construction and effectively read-only afterwards, which is
// what lets any number of requests run concurrently without locking.
type Tables struct {
	TouchpointTypeWeights map[domain.TouchpointType]float64
	StageWeights          map[domain.Stage]float64
	QualityMultipliers    map[domain.QualityTier]float64
	DealSizeMultipliers   map[domain.DealSizeTier]float64
	ExpectedCycleDays     map[domain.DealSizeTier]int
	DefaultCombineWeights CombineWeights
}

// DefaultTables returns the standard B2B weight tables.
func DefaultTables() Tables {
	return Tables{
		TouchpointTypeWeights: map[domain.TouchpointType]float64{
			domain.TouchDemoRequest:       1.5,
			domain.TouchSalesCall:         1.4,
			domain.TouchReferral:          1.6,
			domain.TouchTradeShow:         1.3,
			domain.TouchWebinarAttendance: 1.2,
			domain.TouchContentDownload:   1.1,
			domain.TouchDirectMail:        0.9,
			domain.TouchEmailEngagement:   0.8,
			domain.TouchSocialEngagement:  0.7,
			domain.TouchWebsiteVisit:      0.6,
		},
		StageWeights: map[domain.Stage]float64{
			domain.StageAwareness:     0.8,
			domain.StageInterest:      1.0,
			domain.StageConsideration: 1.2,
			domain.StageIntent:        1.4,
			domain.StageEvaluation:    1.5,
			domain.StagePurchase:      1.3,
		},
		QualityMultipliers: map[domain.QualityTier]float64{
			domain.TierA: 1.5,
			domain.TierB: 1.2,
			domain.TierC: 1.0,
			domain.TierD: 0.7,
		},
		DealSizeMultipliers: map[domain.DealSizeTier]float64{
			domain.TierEnterprise: 1.4,
			domain.TierMidMarket:  1.2,
			domain.TierSMB:        1.0,
		},
		ExpectedCycleDays: map[domain.DealSizeTier]int{
			domain.TierEnterprise: 270,
			domain.TierMidMarket:  150,
			domain.TierSMB:        60,
		},
		DefaultCombineWeights: CombineWeights{
			Time:     0.25,
			Quality:  0.25,
			Account:  0.25,
			Stage:    0.15,
			Velocity: 0.10,
		},
	}
}

// typeWeight looks up a touchpoint type weight, defaulting to 1.0 for types
// missing from an overridden table.
func (t Tables) typeWeight(tt domain.TouchpointType) float64 {
	if w, ok := t.TouchpointTypeWeights[tt]; ok {
		return w
	}
	return 1.0
}

// stageWeight looks up a stage weight, defaulting to 1.0.
func (t Tables) stageWeight(s domain.Stage) float64 {
	if w, ok := t.StageWeights[s]; ok {
		return w
	}
	return 1.0
}

// qualityMultiplier looks up a lead quality multiplier, defaulting to 1.0.
func (t Tables) qualityMultiplier(q domain.QualityTier) float64 {
	if m, ok := t.QualityMultipliers[q]; ok {
		return m
	}
	return 1.0
}

// dealSizeMultiplier looks up a deal size multiplier, defaulting to 1.0.
func (t Tables) dealSizeMultiplier(tier domain.DealSizeTier) float64 {
	if m, ok := t.DealSizeMultipliers[tier]; ok {
		return m
	}
	return 1.0
}

// expectedCycleDays looks up the expected sales cycle for a tier; unknown
// tiers fall back to 180 days.
func (t Tables) expectedCycleDays(tier domain.DealSizeTier) int {
	if d, ok := t.ExpectedCycleDays[tier]; ok {
		return d
	}
	return domain.DefaultSalesCycleDays
}

// CombineWeights is the five-element weight vector governing the linear
// combination of factor maps.
type CombineWeights struct {
	Time     float64 `json:"time" yaml:"time"`
	Quality  float64 `json:"quality" yaml:"quality"`
	Account  float64 `json:"account" yaml:"account"`
	Stage    float64 `json:"stage" yaml:"stage"`
	Velocity float64 `json:"velocity" yaml:"velocity"`
}

// Sum returns the total of all five weights.
func (w CombineWeights) Sum() float64 {
	return w.Time + w.Quality + w.Account + w.Stage + w.Velocity
}

// Normalize validates the vector and rescales it to sum to 1. Negative
// entries and zero-sum vectors are rejected.
func (w CombineWeights) Normalize() (CombineWeights, error) {
	if w.Time < 0 || w.Quality < 0 || w.Account < 0 || w.Stage < 0 || w.Velocity < 0 {
		return CombineWeights{}, fmt.Errorf("combine weights must be non-negative: %+v", w)
	}
	sum := w.Sum()
	if sum <= 0 {
		return CombineWeights{}, fmt.Errorf("combine weights sum to zero")
	}
	return CombineWeights{
		Time:     w.Time / sum,
		Quality:  w.Quality / sum,
		Account:  w.Account / sum,
		Stage:    w.Stage / sum,
		Velocity: w.Velocity / sum,
	}, nil
}

// AsMap returns the weights keyed by factor name, for metadata blocks and the
// model-info endpoint.
func (w CombineWeights) AsMap() map[string]float64 {
	return map[string]float64{
		"time":     w.Time,
		"quality":  w.Quality,
		"account":  w.Account,
		"stage":    w.Stage,
		"velocity": w.Velocity,
	}
}
