package attribution

import (
	"github.com/ignite/attribution-engine/internal/domain"
)

// FactorInfo describes one attribution factor for the model-info endpoint.
type FactorInfo struct {
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// ModelInfo is the engine metadata block served by the model-info endpoint.
type ModelInfo struct {
	ModelName           string                `json:"model_name"`
	Version             string                `json:"version"`
	Description         string                `json:"description"`
	AttributionFactors  map[string]FactorInfo `json:"attribution_factors"`
	B2BFeatures         []string              `json:"b2b_features"`
	DataRequirements    map[string][]string   `json:"data_requirements"`
	SupportedDealTiers  []string              `json:"supported_deal_tiers"`
	SupportedSalesCycles map[string]string    `json:"supported_sales_cycles"`
}

// ModelInfo returns static engine metadata, with the factor weights read from
// the engine's configured tables so overrides show up here too.
func (s *Service) ModelInfo() ModelInfo {
	w := s.engine.Tables().DefaultCombineWeights
	return ModelInfo{
		ModelName:   "B2B Marketing Attribution Engine",
		Version:     "1.0.0",
		Description: "Comprehensive B2B attribution model designed for complex sales cycles and account-based marketing",
		AttributionFactors: map[string]FactorInfo{
			"time_weighted": {
				Weight:      w.Time,
				Description: "Time decay attribution accounting for long B2B sales cycles (3-18 months)",
			},
			"quality_weighted": {
				Weight:      w.Quality,
				Description: "Lead quality impact based on scoring and demographic fit",
			},
			"account_based": {
				Weight:      w.Account,
				Description: "Account-level attribution considering buying committee and deal complexity",
			},
			"stage_progression": {
				Weight:      w.Stage,
				Description: "Attribution based on touchpoint influence on funnel progression",
			},
			"pipeline_velocity": {
				Weight:      w.Velocity,
				Description: "Impact on sales cycle acceleration and deal velocity",
			},
		},
		B2BFeatures: []string{
			"Long sales cycle optimization (3-18 months)",
			"Lead quality scoring integration",
			"Account-based marketing support",
			"Buying committee analysis",
			"Sales-marketing alignment tracking",
			"Pipeline velocity optimization",
			"Enterprise deal complexity handling",
		},
		DataRequirements: map[string][]string{
			"leads":        {"lead_score", "demographic_score", "behavioral_score", "firmographic_score", "quality_tier"},
			"opportunities": {"deal_size", "sales_cycle_days", "decision_makers_count", "close_date"},
			"touchpoints":  {"engagement_score", "touchpoint_type", "channel", "sales_rep_id", "cost"},
		},
		SupportedDealTiers: []string{"enterprise", "mid-market", "smb"},
		SupportedSalesCycles: map[string]string{
			"enterprise": "270 days (9 months)",
			"mid-market": "150 days (5 months)",
			"smb":        "60 days (2 months)",
		},
	}
}

// TouchpointTypeInfo describes one touchpoint type for the introspection
// endpoint.
type TouchpointTypeInfo struct {
	Weight      float64 `json:"weight"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// TouchpointTypesReport lists the touchpoint types alongside the quality and
// stage weight tables.
type TouchpointTypesReport struct {
	TouchpointTypes         map[string]TouchpointTypeInfo `json:"touchpoint_types"`
	LeadQualityMultipliers  map[string]float64            `json:"lead_quality_multipliers"`
	StageProgressionWeights map[string]float64            `json:"stage_progression_weights"`
}

var touchpointCategories = map[domain.TouchpointType]string{
	domain.TouchDemoRequest:       "High Intent",
	domain.TouchSalesCall:         "High Intent",
	domain.TouchWebinarAttendance: "Engagement",
	domain.TouchContentDownload:   "Engagement",
	domain.TouchTradeShow:         "Engagement",
	domain.TouchEmailEngagement:   "Nurturing",
	domain.TouchDirectMail:        "Nurturing",
	domain.TouchWebsiteVisit:      "Awareness",
	domain.TouchSocialEngagement:  "Awareness",
	domain.TouchReferral:          "Referral",
}

var touchpointDescriptions = map[domain.TouchpointType]string{
	domain.TouchDemoRequest:       "High-intent touchpoint indicating strong purchase consideration",
	domain.TouchSalesCall:         "Direct sales interaction with high conversion potential",
	domain.TouchWebinarAttendance: "Educational content engagement showing interest",
	domain.TouchContentDownload:   "Content consumption indicating research behavior",
	domain.TouchTradeShow:         "In-person event interaction with high engagement value",
	domain.TouchEmailEngagement:   "Email marketing interaction for nurturing",
	domain.TouchWebsiteVisit:      "General website interaction for awareness building",
	domain.TouchSocialEngagement:  "Social media interaction and engagement",
	domain.TouchDirectMail:        "Physical marketing material interaction",
	domain.TouchReferral:          "Word-of-mouth or partner referral with highest trust value",
}

// TouchpointTypes returns the closed touchpoint-type set with weights,
// categories, and descriptions, plus the quality and stage tables.
func (s *Service) TouchpointTypes() TouchpointTypesReport {
	tables := s.engine.Tables()

	types := make(map[string]TouchpointTypeInfo, len(domain.TouchpointTypes))
	for _, tt := range domain.TouchpointTypes {
		weight, ok := tables.TouchpointTypeWeights[tt]
		if !ok {
			weight = 1.0
		}
		category, ok := touchpointCategories[tt]
		if !ok {
			category = "Other"
		}
		description, ok := touchpointDescriptions[tt]
		if !ok {
			description = "Generic touchpoint interaction"
		}
		types[string(tt)] = TouchpointTypeInfo{
			Weight:      weight,
			Category:    category,
			Description: description,
		}
	}

	quality := make(map[string]float64, len(tables.QualityMultipliers))
	for tier, m := range tables.QualityMultipliers {
		quality[string(tier)] = m
	}
	stages := make(map[string]float64, len(tables.StageWeights))
	for stage, w := range tables.StageWeights {
		stages[string(stage)] = w
	}

	return TouchpointTypesReport{
		TouchpointTypes:         types,
		LeadQualityMultipliers:  quality,
		StageProgressionWeights: stages,
	}
}
