package attribution

import (
	"sort"

	"github.com/ignite/attribution-engine/internal/domain"
)

// Factors bundles the five per-touchpoint factor maps.
type Factors struct {
	TimeWeighted     domain.AttributionMap
	QualityWeighted  domain.AttributionMap
	AccountBased     domain.AttributionMap
	StageProgression domain.AttributionMap
	PipelineVelocity domain.AttributionMap
}

// Combine folds the five factor maps into one using the given weight vector.
// The weights must already be normalized (see CombineWeights.Normalize).
// Every touchpoint appearing in any input map appears in the output; absent
// keys contribute 0.
//
// The combined value is unit-less when the quality/stage/velocity factors
// dominate the chosen weights and currency-denominated when time/account
// dominate. The combiner deliberately does not reconcile units: existing
// consumers depend on the raw factor scores.
func Combine(f Factors, w CombineWeights) domain.AttributionMap {
	combined := make(domain.AttributionMap)

	for _, m := range []domain.AttributionMap{
		f.TimeWeighted, f.QualityWeighted, f.AccountBased,
		f.StageProgression, f.PipelineVelocity,
	} {
		for id := range m {
			combined[id] = 0
		}
	}

	for id := range combined {
		combined[id] = f.TimeWeighted[id]*w.Time +
			f.QualityWeighted[id]*w.Quality +
			f.AccountBased[id]*w.Account +
			f.StageProgression[id]*w.Stage +
			f.PipelineVelocity[id]*w.Velocity
	}

	return combined
}

// Summarize aggregates a combined map: totals, the top five contributors, and
// the top/bottom 20% concentration slices. Sorting is by value descending
// with touchpoint id as the tie-break, so two runs over the same inputs
// produce identical sequences.
func Summarize(combined domain.AttributionMap) domain.Summary {
	if len(combined) == 0 {
		return domain.Summary{}
	}

	total := 0.0
	ids := make([]string, 0, len(combined))
	for id, v := range combined {
		total += v
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		vi, vj := combined[ids[i]], combined[ids[j]]
		if vi != vj {
			return vi > vj
		}
		return ids[i] < ids[j]
	})

	count := len(ids)
	topN := count
	if topN > 5 {
		topN = 5
	}
	top := make([]domain.TopTouchpoint, 0, topN)
	for _, id := range ids[:topN] {
		pct := 0.0
		if total > 0 {
			pct = combined[id] / total * 100
		}
		top = append(top, domain.TopTouchpoint{
			TouchpointID:     id,
			AttributionValue: combined[id],
			Percentage:       pct,
		})
	}

	slice := count / 5
	if slice < 1 {
		slice = 1
	}
	topSum, bottomSum := 0.0, 0.0
	for _, id := range ids[:slice] {
		topSum += combined[id]
	}
	for _, id := range ids[count-slice:] {
		bottomSum += combined[id]
	}

	return domain.Summary{
		TotalAttributionValue: total,
		TouchpointCount:       count,
		AveragePerTouchpoint:  total / float64(count),
		TopTouchpoints:        top,
		Distribution: domain.Distribution{
			Top20Percent:    topSum,
			Bottom20Percent: bottomSum,
		},
	}
}
