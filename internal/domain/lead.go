package domain

import "time"

// Stage enumerates the B2B funnel stages, ordered from first contact to close.
type Stage string

const (
	StageAwareness     Stage = "awareness"
	StageInterest      Stage = "interest"
	StageConsideration Stage = "consideration"
	StageIntent        Stage = "intent"
	StageEvaluation    Stage = "evaluation"
	StagePurchase      Stage = "purchase"
)

// Stages lists every funnel stage in order.
var Stages = []Stage{
	StageAwareness, StageInterest, StageConsideration,
	StageIntent, StageEvaluation, StagePurchase,
}

// Valid reports whether s is one of the known funnel stages.
func (s Stage) Valid() bool {
	switch s {
	case StageAwareness, StageInterest, StageConsideration,
		StageIntent, StageEvaluation, StagePurchase:
		return true
	}
	return false
}

// QualityTier enumerates lead quality grades. The tier is derived from the
// lead score at ingestion (A >= 80, B >= 60, C >= 40, else D) and is treated
// as authoritative by the engine; the engine never re-derives it.
type QualityTier string

const (
	TierA QualityTier = "A"
	TierB QualityTier = "B"
	TierC QualityTier = "C"
	TierD QualityTier = "D"
)

// Lead represents a known individual within an account.
type Lead struct {
	LeadID            string      `json:"lead_id" db:"lead_id"`
	AccountID         string      `json:"account_id" db:"account_id"`
	LeadScore         int         `json:"lead_score" db:"lead_score"`
	DemographicScore  int         `json:"demographic_score" db:"demographic_score"`
	BehavioralScore   int         `json:"behavioral_score" db:"behavioral_score"`
	FirmographicScore int         `json:"firmographic_score" db:"firmographic_score"`
	QualityTier       QualityTier `json:"quality_tier" db:"quality_tier"`
	Stage             Stage       `json:"stage" db:"stage"`
	Source            string      `json:"source" db:"source"`
	CreatedDate       time.Time   `json:"created_date" db:"created_date"`
}
