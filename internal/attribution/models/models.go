// Package models implements the classic single-journey attribution models
// (first touch, last touch, linear, time decay, U-shaped, W-shaped,
// data-driven). These operate on one buyer journey at a time and carry none
// of the B2B account machinery; they exist for the model comparison surface.
package models

import (
	"math"
	"sort"
	"time"
)

// Touchpoint is one interaction in a buyer journey.
type Touchpoint struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Channel   string    `json:"channel"`
}

// Model distributes a conversion value across the touchpoints of one journey.
// Implementations return an empty map for an empty journey and always account
// for every touchpoint id in the input.
type Model interface {
	Name() string
	Attribute(touchpoints []Touchpoint, conversionValue float64) map[string]float64
}

// byTimestamp returns a copy of the journey sorted by timestamp ascending.
// The sort is stable so simultaneous touches keep their input order.
func byTimestamp(touchpoints []Touchpoint) []Touchpoint {
	sorted := make([]Touchpoint, len(touchpoints))
	copy(sorted, touchpoints)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

func zeroed(touchpoints []Touchpoint) map[string]float64 {
	attribution := make(map[string]float64, len(touchpoints))
	for _, tp := range touchpoints {
		attribution[tp.ID] = 0
	}
	return attribution
}

// FirstTouch gives 100% of the credit to the earliest touchpoint.
type FirstTouch struct{}

func (FirstTouch) Name() string { return "first_touch" }

func (FirstTouch) Attribute(touchpoints []Touchpoint, conversionValue float64) map[string]float64 {
	if len(touchpoints) == 0 {
		return map[string]float64{}
	}
	attribution := zeroed(touchpoints)
	attribution[byTimestamp(touchpoints)[0].ID] = conversionValue
	return attribution
}

// LastTouch gives 100% of the credit to the latest touchpoint.
type LastTouch struct{}

func (LastTouch) Name() string { return "last_touch" }

func (LastTouch) Attribute(touchpoints []Touchpoint, conversionValue float64) map[string]float64 {
	if len(touchpoints) == 0 {
		return map[string]float64{}
	}
	attribution := zeroed(touchpoints)
	sorted := byTimestamp(touchpoints)
	attribution[sorted[len(sorted)-1].ID] = conversionValue
	return attribution
}

// Linear splits the credit equally across every touchpoint.
type Linear struct{}

func (Linear) Name() string { return "linear" }

func (Linear) Attribute(touchpoints []Touchpoint, conversionValue float64) map[string]float64 {
	if len(touchpoints) == 0 {
		return map[string]float64{}
	}
	share := conversionValue / float64(len(touchpoints))
	attribution := make(map[string]float64, len(touchpoints))
	for _, tp := range touchpoints {
		attribution[tp.ID] = share
	}
	return attribution
}

// DefaultHalfLifeDays is the decay half-life used when none is configured.
const DefaultHalfLifeDays = 7.0

// TimeDecay weights touchpoints by 2^(-days_to_conversion / half_life),
// treating the final touch as the conversion instant, then normalizes the
// weights to sum to the conversion value.
type TimeDecay struct {
	HalfLifeDays float64
}

func (TimeDecay) Name() string { return "time_decay" }

func (m TimeDecay) Attribute(touchpoints []Touchpoint, conversionValue float64) map[string]float64 {
	if len(touchpoints) == 0 {
		return map[string]float64{}
	}
	halfLife := m.HalfLifeDays
	if halfLife <= 0 {
		halfLife = DefaultHalfLifeDays
	}

	sorted := byTimestamp(touchpoints)
	conversion := sorted[len(sorted)-1].Timestamp

	weights := make([]float64, len(sorted))
	total := 0.0
	for i, tp := range sorted {
		days := conversion.Sub(tp.Timestamp).Hours() / 24
		if days < 0 {
			days = 0
		}
		weights[i] = math.Exp2(-days / halfLife)
		total += weights[i]
	}

	if total == 0 {
		return zeroed(touchpoints)
	}
	attribution := make(map[string]float64, len(sorted))
	for i, tp := range sorted {
		attribution[tp.ID] = (weights[i] / total) * conversionValue
	}
	return attribution
}

// UShaped gives 40% to the first touch, 40% to the last, and splits the
// remaining 20% across the middle. Journeys of one or two touches degrade to
// full or even credit.
type UShaped struct {
	FirstWeight  float64
	LastWeight   float64
	MiddleWeight float64
}

// DefaultUShaped returns the standard 40/40/20 configuration.
func DefaultUShaped() UShaped {
	return UShaped{FirstWeight: 0.4, LastWeight: 0.4, MiddleWeight: 0.2}
}

func (UShaped) Name() string { return "u_shaped" }

func (m UShaped) Attribute(touchpoints []Touchpoint, conversionValue float64) map[string]float64 {
	if len(touchpoints) == 0 {
		return map[string]float64{}
	}
	sorted := byTimestamp(touchpoints)
	attribution := zeroed(touchpoints)

	switch len(sorted) {
	case 1:
		attribution[sorted[0].ID] = conversionValue
	case 2:
		attribution[sorted[0].ID] = conversionValue * 0.5
		attribution[sorted[1].ID] = conversionValue * 0.5
	default:
		attribution[sorted[0].ID] = conversionValue * m.FirstWeight
		attribution[sorted[len(sorted)-1].ID] = conversionValue * m.LastWeight
		middle := sorted[1 : len(sorted)-1]
		share := conversionValue * m.MiddleWeight / float64(len(middle))
		for _, tp := range middle {
			attribution[tp.ID] = share
		}
	}
	return attribution
}

// WShaped gives 30% each to the first touch, the lead-creation touch (one
// third through the journey) and the opportunity-creation touch (midway), and
// splits the remaining 10% across the rest. Journeys of two or fewer touches
// fall back to the U-shaped model.
type WShaped struct {
	FirstWeight       float64
	LeadWeight        float64
	OpportunityWeight float64
	MiddleWeight      float64
}

// DefaultWShaped returns the standard 30/30/30/10 configuration.
func DefaultWShaped() WShaped {
	return WShaped{FirstWeight: 0.3, LeadWeight: 0.3, OpportunityWeight: 0.3, MiddleWeight: 0.1}
}

func (WShaped) Name() string { return "w_shaped" }

func (m WShaped) Attribute(touchpoints []Touchpoint, conversionValue float64) map[string]float64 {
	if len(touchpoints) == 0 {
		return map[string]float64{}
	}
	if len(touchpoints) <= 2 {
		return DefaultUShaped().Attribute(touchpoints, conversionValue)
	}

	sorted := byTimestamp(touchpoints)
	attribution := zeroed(touchpoints)

	first := sorted[0]
	lead := first
	if idx := len(sorted) / 3; idx > 0 {
		lead = sorted[idx]
	}
	opportunity := sorted[len(sorted)/2]

	attribution[first.ID] += conversionValue * m.FirstWeight
	if lead.ID != first.ID {
		attribution[lead.ID] += conversionValue * m.LeadWeight
	}
	if opportunity.ID != first.ID && opportunity.ID != lead.ID {
		attribution[opportunity.ID] += conversionValue * m.OpportunityWeight
	}

	key := map[string]struct{}{first.ID: {}, lead.ID: {}, opportunity.ID: {}}
	others := make([]Touchpoint, 0, len(sorted))
	for _, tp := range sorted {
		if _, ok := key[tp.ID]; !ok {
			others = append(others, tp)
		}
	}
	if len(others) > 0 {
		share := conversionValue * m.MiddleWeight / float64(len(others))
		for _, tp := range others {
			attribution[tp.ID] += share
		}
	}
	return attribution
}

// DataDriven weights touchpoints by per-channel priors derived from
// historical conversion rates. Unknown channels weigh 1.0.
type DataDriven struct{}

func (DataDriven) Name() string { return "data_driven" }

var channelPriors = map[string]float64{
	"organic_search": 1.2,
	"paid_search":    1.1,
	"social":         0.9,
	"email":          1.0,
	"direct":         1.3,
	"referral":       1.0,
	"display":        0.8,
}

func (DataDriven) Attribute(touchpoints []Touchpoint, conversionValue float64) map[string]float64 {
	if len(touchpoints) == 0 {
		return map[string]float64{}
	}

	weights := make([]float64, len(touchpoints))
	total := 0.0
	for i, tp := range touchpoints {
		w, ok := channelPriors[tp.Channel]
		if !ok {
			w = 1.0
		}
		weights[i] = w
		total += w
	}

	if total == 0 {
		return zeroed(touchpoints)
	}
	attribution := make(map[string]float64, len(touchpoints))
	for i, tp := range touchpoints {
		attribution[tp.ID] = (weights[i] / total) * conversionValue
	}
	return attribution
}
