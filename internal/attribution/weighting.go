package attribution

import (
	"math"
	"time"

	"github.com/ignite/attribution-engine/internal/domain"
)

// minHalfLifeDays is the two-week floor on the decay half-life so very short
// cycles do not collapse all weight onto the final touch.
const minHalfLifeDays = 14.0

// halfLifeDays derives the decay half-life from an opportunity's sales cycle.
func halfLifeDays(cycleDays int) float64 {
	return math.Max(float64(cycleDays)*0.3, minHalfLifeDays)
}

// decayWeight returns the time-decay kernel value for a touchpoint at ts
// relative to the conversion instant. Touchpoints after conversion clip to a
// zero gap and score 1.
func decayWeight(ts, conversion time.Time, halfLife float64) float64 {
	days := conversion.Sub(ts).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Exp(-days / halfLife)
}

// accountComplexity computes the cumulative complexity multiplier for a deal:
// tier, buying committee size, and cycle length each add to a 1.0 base.
func accountComplexity(o *domain.Opportunity) float64 {
	complexity := 1.0

	switch o.DealSizeTier {
	case domain.TierEnterprise:
		complexity += 0.3
	case domain.TierMidMarket:
		complexity += 0.15
	}

	stakeholders := o.StakeholderCount()
	if stakeholders > 5 {
		complexity += 0.2
	} else if stakeholders > 3 {
		complexity += 0.1
	}

	if o.SalesCycleDays > 365 {
		complexity += 0.25
	} else if o.SalesCycleDays > 180 {
		complexity += 0.15
	}

	return complexity
}

// velocityMultiplier scores how fast a deal closed relative to expectation.
// Deals faster than expected earn up to a 1.5x bonus; slow deals decay toward
// a 0.5 floor.
func velocityMultiplier(actualDays, expectedDays int) float64 {
	actual := float64(actualDays)
	expected := float64(expectedDays)
	if actual < expected {
		return 1 + ((expected-actual)/expected)*0.5
	}
	return math.Max(0.5, 1-((actual-expected)/expected)*0.3)
}

// alignmentScore measures how close the sales/marketing/joint attribution
// split is to the ideal 40/40/20 balance. Zero total scores 0.
func alignmentScore(sales, marketing, joint float64) float64 {
	total := sales + marketing + joint
	if total == 0 {
		return 0
	}

	salesPct := sales / total * 100
	marketingPct := marketing / total * 100
	jointPct := joint / total * 100

	deviation := math.Abs(marketingPct-40) + math.Abs(salesPct-40) + math.Abs(jointPct-20)
	return math.Max(0, 100-deviation)
}

// AlignmentGrade converts an alignment score to a letter grade.
func AlignmentGrade(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}
