package attribution

import (
	"github.com/ignite/attribution-engine/internal/domain"
)

// TimeWeighted computes time-decay attribution accounting for long B2B sales
// cycles. Per opportunity, touchpoint weights are decayed against the
// conversion date, scaled by type weight, normalized to sum to 1, then scaled
// by the deal amount. Touchpoints shared across opportunities on the same
// account accumulate contributions, so per-opportunity conservation holds:
// the values for one deal's touchpoints always sum to its amount.
func (e *Engine) TimeWeighted(opportunities []domain.Opportunity, touchpoints []domain.Touchpoint) domain.AttributionMap {
	result := make(domain.AttributionMap)

	byAccount := groupByAccount(touchpoints)

	for i := range opportunities {
		opp := &opportunities[i]
		accountTouches := byAccount[opp.AccountID]
		if len(accountTouches) == 0 {
			continue
		}

		halfLife := halfLifeDays(opp.CycleDays())
		conversion := opp.ConversionDate()

		weights := make(map[string]float64, len(accountTouches))
		total := 0.0
		for _, tp := range accountTouches {
			w := decayWeight(tp.Timestamp, conversion, halfLife) * e.tables.typeWeight(tp.Type)
			weights[tp.TouchpointID] = w
			total += w
		}

		if total <= 0 {
			continue
		}
		for id, w := range weights {
			result[id] += (w / total) * opp.Amount
		}
	}

	return result
}

// QualityWeighted weights each touchpoint by the quality of the lead behind
// it: engagement base, quality tier multiplier, capped lead-score multiplier,
// and small demographic/firmographic bonuses. Touchpoints whose lead is
// unknown contribute nothing. The output is a unit-free score, never
// normalized to deal value.
func (e *Engine) QualityWeighted(leads []domain.Lead, touchpoints []domain.Touchpoint) domain.AttributionMap {
	byLead := make(map[string]*domain.Lead, len(leads))
	for i := range leads {
		byLead[leads[i].LeadID] = &leads[i]
	}

	result := make(domain.AttributionMap)
	for i := range touchpoints {
		tp := &touchpoints[i]
		lead, ok := byLead[tp.LeadID]
		if !ok {
			continue
		}

		base := tp.EngagementScore / 100.0
		qualityMult := e.tables.qualityMultiplier(lead.QualityTier)
		scoreMult := float64(lead.LeadScore) / 100.0
		if scoreMult > 2.0 {
			scoreMult = 2.0
		}
		demoBonus := 1 + float64(lead.DemographicScore)/1000.0
		firmoBonus := 1 + float64(lead.FirmographicScore)/1000.0

		result[tp.TouchpointID] = base * qualityMult * scoreMult * demoBonus * firmoBonus
	}

	return result
}

// AccountBased computes account-level attribution for deals with multiple
// stakeholders. Touchpoint weights carry type, engagement, and a sales-touch
// uplift, then the whole account is scaled by complexity, committee size, and
// deal size before per-opportunity normalization to the deal amount. The
// account-wide multipliers cancel in normalization; the 1.3 sales uplift does
// not, shifting the within-account share toward sales touches.
func (e *Engine) AccountBased(opportunities []domain.Opportunity, touchpoints []domain.Touchpoint) domain.AttributionMap {
	result := make(domain.AttributionMap)

	byAccount := groupByAccount(touchpoints)

	for i := range opportunities {
		opp := &opportunities[i]
		accountTouches := byAccount[opp.AccountID]
		if len(accountTouches) == 0 {
			continue
		}

		complexity := accountComplexity(opp)
		committeeFactor := 1 + float64(opp.StakeholderCount())*0.1
		dealSizeMult := e.tables.dealSizeMultiplier(opp.DealSizeTier)

		weights := make(map[string]float64, len(accountTouches))
		total := 0.0
		for _, tp := range accountTouches {
			base := e.tables.typeWeight(tp.Type) * (tp.EngagementScore / 100.0)
			if tp.IsSalesTouch {
				base *= 1.3
			}
			w := base * complexity * committeeFactor * dealSizeMult
			weights[tp.TouchpointID] = w
			total += w
		}

		if total <= 0 {
			continue
		}
		for id, w := range weights {
			result[id] += (w / total) * opp.Amount
		}
	}

	return result
}

// StageProgression weights each touchpoint by its influence on funnel
// progression, independently of any opportunity. Unit-free.
func (e *Engine) StageProgression(touchpoints []domain.Touchpoint) domain.AttributionMap {
	result := make(domain.AttributionMap, len(touchpoints))
	for i := range touchpoints {
		tp := &touchpoints[i]
		result[tp.TouchpointID] = (tp.EngagementScore / 100.0) *
			e.tables.stageWeight(tp.StageInfluence) *
			e.tables.typeWeight(tp.Type)
	}
	return result
}

// PipelineVelocity scores touchpoints by how much the deals they touched beat
// or missed the expected sales cycle. Demo requests and sales calls earn an
// extra 1.2x on the velocity signal. Accounts with multiple won deals stamp
// each deal's velocity into the shared touchpoints additively. Unit-free.
func (e *Engine) PipelineVelocity(opportunities []domain.Opportunity, touchpoints []domain.Touchpoint) domain.AttributionMap {
	result := make(domain.AttributionMap)

	byAccount := groupByAccount(touchpoints)

	for i := range opportunities {
		opp := &opportunities[i]
		accountTouches := byAccount[opp.AccountID]
		if len(accountTouches) == 0 {
			continue
		}

		velocity := velocityMultiplier(opp.CycleDays(), e.tables.expectedCycleDays(opp.DealSizeTier))

		for _, tp := range accountTouches {
			base := tp.EngagementScore / 100.0
			impact := velocity
			if tp.Type == domain.TouchDemoRequest || tp.Type == domain.TouchSalesCall {
				impact = velocity * 1.2
			}
			result[tp.TouchpointID] += base * impact
		}
	}

	return result
}

// groupByAccount indexes touchpoints by account id.
func groupByAccount(touchpoints []domain.Touchpoint) map[string][]*domain.Touchpoint {
	byAccount := make(map[string][]*domain.Touchpoint)
	for i := range touchpoints {
		tp := &touchpoints[i]
		byAccount[tp.AccountID] = append(byAccount[tp.AccountID], tp)
	}
	return byAccount
}
