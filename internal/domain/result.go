package domain

import (
	"encoding/json"
	"math"
	"time"
)

// ModelName is the constant model identifier stamped on every persisted
// attribution result document.
const ModelName = "B2B_Marketing_Attribution"

// AttributionMap maps touchpoint_id to a non-negative attribution value.
// Touchpoints not present have implicit value 0.
type AttributionMap map[string]float64

// TopTouchpoint is one entry of the summary's top-contributors list.
type TopTouchpoint struct {
	TouchpointID     string  `json:"touchpoint_id"`
	AttributionValue float64 `json:"attribution_value"`
	Percentage       float64 `json:"percentage"`
}

// Distribution captures how attribution concentrates across the sorted map.
type Distribution struct {
	Top20Percent    float64 `json:"top_20_percent"`
	Bottom20Percent float64 `json:"bottom_20_percent"`
}

// Summary aggregates a combined attribution map.
type Summary struct {
	TotalAttributionValue float64         `json:"total_attribution_value"`
	TouchpointCount       int             `json:"touchpoint_count"`
	AveragePerTouchpoint  float64         `json:"average_attribution_per_touchpoint"`
	TopTouchpoints        []TopTouchpoint `json:"top_contributing_touchpoints"`
	Distribution          Distribution    `json:"attribution_distribution"`
}

// ChannelMetrics holds the per-channel roll-up of the combined attribution.
//
// ROI is +Inf when a zero-cost channel carries positive attribution; the JSON
// encoding emits null for that case because encoding/json rejects infinities.
type ChannelMetrics struct {
	Channel           string   `json:"channel"`
	TotalAttribution  float64  `json:"total_attribution"`
	TouchpointCount   int      `json:"touchpoint_count"`
	TotalCost         float64  `json:"total_cost"`
	TouchpointTypes   []string `json:"touchpoint_types"`
	ROI               float64  `json:"roi"`
	CostPerAttribution float64 `json:"cost_per_attribution"`
}

// MarshalJSON encodes infinite ROI as null.
func (c ChannelMetrics) MarshalJSON() ([]byte, error) {
	type alias ChannelMetrics
	if math.IsInf(c.ROI, 0) {
		return json.Marshal(struct {
			alias
			ROI *float64 `json:"roi"`
		}{alias: alias(c), ROI: nil})
	}
	return json.Marshal(alias(c))
}

// AlignmentReport is the sales-vs-marketing attribution split with the
// derived alignment score, grade, and recommendations.
type AlignmentReport struct {
	SalesAttribution     float64  `json:"sales_attribution"`
	MarketingAttribution float64  `json:"marketing_attribution"`
	JointAttribution     float64  `json:"joint_attribution"`
	SalesPercentage      float64  `json:"sales_percentage"`
	MarketingPercentage  float64  `json:"marketing_percentage"`
	JointPercentage      float64  `json:"joint_percentage"`
	AlignmentScore       float64  `json:"alignment_score"`
	Grade                string   `json:"grade"`
	Recommendations      []string `json:"recommendations,omitempty"`
}

// ResultMetadata records what a calculation covered and the weights in effect.
type ResultMetadata struct {
	LeadsAnalyzed         int                `json:"leads_analyzed"`
	OpportunitiesAnalyzed int                `json:"opportunities_analyzed"`
	TouchpointsAnalyzed   int                `json:"touchpoints_analyzed"`
	AnalysisDate          time.Time          `json:"analysis_date"`
	AccountIDs            []string           `json:"account_ids,omitempty"`
	AttributionWeights    map[string]float64 `json:"attribution_weights,omitempty"`
}

// AttributionResult is the full result document returned by the calculate
// operation and handed to the result writer.
type AttributionResult struct {
	TimeWeighted      AttributionMap            `json:"time_weighted_attribution"`
	QualityWeighted   AttributionMap            `json:"quality_weighted_attribution"`
	AccountBased      AttributionMap            `json:"account_based_attribution"`
	StageProgression  AttributionMap            `json:"stage_progression_attribution"`
	PipelineVelocity  AttributionMap            `json:"pipeline_velocity_attribution"`
	Combined          AttributionMap            `json:"combined_b2b_attribution"`
	Summary           Summary                   `json:"attribution_summary"`
	ChannelPerformance map[string]ChannelMetrics `json:"channel_performance"`
	Alignment         AlignmentReport           `json:"sales_marketing_alignment"`
	Metadata          ResultMetadata            `json:"metadata"`
}

// ResultDocument is the persisted form of an attribution result: one row per
// calculate call, keyed by a generated id.
type ResultDocument struct {
	ID        string            `json:"id" db:"id"`
	ModelName string            `json:"model_name" db:"model_name"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	Result    *AttributionResult `json:"results" db:"payload"`
	Metadata  DocumentMetadata  `json:"metadata" db:"metadata"`
}

// DocumentMetadata is the metadata sub-block stored alongside the payload.
type DocumentMetadata struct {
	AccountIDs []string `json:"account_ids,omitempty"`
	ModelType  string   `json:"model_type"`
}
