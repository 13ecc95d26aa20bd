package attribution

import (
	"fmt"
	"math"
	"sort"

	"github.com/ignite/attribution-engine/internal/domain"
)

// Analyzer derives channel-performance and sales-marketing alignment
// diagnostics from a combined attribution map. Like the engine it is pure;
// every method recomputes from its inputs.
type Analyzer struct{}

// NewAnalyzer creates an analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// ChannelPerformance rolls the combined map up by each touchpoint's channel.
// ROI is +Inf for zero-cost channels carrying positive attribution.
func (a *Analyzer) ChannelPerformance(combined domain.AttributionMap, touchpoints []domain.Touchpoint) map[string]domain.ChannelMetrics {
	byID := indexTouchpoints(touchpoints)

	type accum struct {
		attribution float64
		count       int
		cost        float64
		types       map[string]struct{}
	}
	channels := make(map[string]*accum)

	for id, value := range combined {
		tp, ok := byID[id]
		if !ok {
			continue
		}
		c := channels[tp.Channel]
		if c == nil {
			c = &accum{types: make(map[string]struct{})}
			channels[tp.Channel] = c
		}
		c.attribution += value
		c.count++
		c.cost += tp.Cost
		c.types[string(tp.Type)] = struct{}{}
	}

	out := make(map[string]domain.ChannelMetrics, len(channels))
	for name, c := range channels {
		m := domain.ChannelMetrics{
			Channel:          name,
			TotalAttribution: c.attribution,
			TouchpointCount:  c.count,
			TotalCost:        c.cost,
		}
		m.TouchpointTypes = make([]string, 0, len(c.types))
		for t := range c.types {
			m.TouchpointTypes = append(m.TouchpointTypes, t)
		}
		sort.Strings(m.TouchpointTypes)

		if c.cost > 0 {
			m.ROI = (c.attribution - c.cost) / c.cost
			if c.attribution > 0 {
				m.CostPerAttribution = c.cost / c.attribution
			}
		} else if c.attribution > 0 {
			m.ROI = math.Inf(1)
		}
		out[name] = m
	}

	return out
}

// ChannelsByROI returns channel metrics sorted by ROI descending, ties broken
// by channel name, so insight generation is deterministic.
func ChannelsByROI(channels map[string]domain.ChannelMetrics) []domain.ChannelMetrics {
	out := make([]domain.ChannelMetrics, 0, len(channels))
	for _, m := range channels {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ROI != out[j].ROI {
			return out[i].ROI > out[j].ROI
		}
		return out[i].Channel < out[j].Channel
	})
	return out
}

// ChannelInsights generates actionable strings from the roll-up. Rules fire
// in a fixed order over channels in descending-ROI order.
func (a *Analyzer) ChannelInsights(channels map[string]domain.ChannelMetrics) []string {
	if len(channels) == 0 {
		return []string{"No channel data available for analysis"}
	}

	ranked := ChannelsByROI(channels)
	insights := []string{}

	best := ranked[0]
	insights = append(insights, fmt.Sprintf(
		"Best performing channel: %s with ROI of %s", best.Channel, formatROI(best.ROI)))

	worst := ranked[len(ranked)-1]
	if worst.ROI < 0 {
		insights = append(insights, fmt.Sprintf(
			"Consider optimizing %s channel - currently showing negative ROI of %.2f",
			worst.Channel, worst.ROI))
	}

	for _, m := range ranked {
		if m.TouchpointCount > 10 && m.ROI < 1.0 {
			insights = append(insights, fmt.Sprintf(
				"%s has high touchpoint volume (%d) but low ROI (%.2f) - opportunity for optimization",
				m.Channel, m.TouchpointCount, m.ROI))
		}
	}

	for _, m := range ranked {
		if m.TotalCost > 1000 && m.ROI < 2.0 {
			insights = append(insights, fmt.Sprintf(
				"%s is a high-cost channel ($%.0f) with moderate ROI (%.2f) - consider cost optimization",
				m.Channel, m.TotalCost, m.ROI))
		}
	}

	return insights
}

// Alignment partitions the combined attribution by touch flags and computes
// the split, the 40/40/20 alignment score, and the letter grade. Touchpoints
// with neither flag set are excluded from the partition.
func (a *Analyzer) Alignment(combined domain.AttributionMap, touchpoints []domain.Touchpoint) domain.AlignmentReport {
	byID := indexTouchpoints(touchpoints)

	var sales, marketing, joint float64
	for id, value := range combined {
		tp, ok := byID[id]
		if !ok {
			continue
		}
		switch {
		case tp.IsJointTouch():
			joint += value
		case tp.IsSalesTouch:
			sales += value
		case tp.IsMarketingTouch:
			marketing += value
		}
	}

	total := sales + marketing + joint
	report := domain.AlignmentReport{
		SalesAttribution:     sales,
		MarketingAttribution: marketing,
		JointAttribution:     joint,
	}
	if total > 0 {
		report.SalesPercentage = sales / total * 100
		report.MarketingPercentage = marketing / total * 100
		report.JointPercentage = joint / total * 100
	}
	report.AlignmentScore = alignmentScore(sales, marketing, joint)
	report.Grade = AlignmentGrade(report.AlignmentScore)
	return report
}

// AlignmentRecommendations generates improvement recommendations from an
// alignment report. Rules fire in a fixed order.
func (a *Analyzer) AlignmentRecommendations(r domain.AlignmentReport) []string {
	recs := []string{}

	if r.AlignmentScore < 50 {
		recs = append(recs, "Poor sales-marketing alignment detected. Consider implementing joint planning sessions.")
	}

	if r.SalesPercentage > 60 {
		recs = append(recs, "Sales is dominating attribution. Increase marketing's role in lead nurturing and qualification.")
	} else if r.SalesPercentage < 20 {
		recs = append(recs, "Sales involvement is low. Consider more sales-marketing collaboration on qualified leads.")
	}

	if r.MarketingPercentage > 60 {
		recs = append(recs, "Marketing is dominating attribution. Ensure sales is properly engaged in the process.")
	} else if r.MarketingPercentage < 20 {
		recs = append(recs, "Marketing involvement is low. Increase marketing touchpoints throughout the sales cycle.")
	}

	if r.JointPercentage < 10 {
		recs = append(recs, "Very few joint sales-marketing touchpoints. Consider collaborative campaigns and activities.")
	} else if r.JointPercentage > 40 {
		recs = append(recs, "High joint touchpoint percentage. Ensure clear ownership and accountability.")
	}

	if r.AlignmentScore >= 80 {
		recs = append(recs, "Excellent alignment! Continue current collaboration practices and consider sharing best practices.")
	}

	return recs
}

func formatROI(roi float64) string {
	if math.IsInf(roi, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", roi)
}

func indexTouchpoints(touchpoints []domain.Touchpoint) map[string]*domain.Touchpoint {
	byID := make(map[string]*domain.Touchpoint, len(touchpoints))
	for i := range touchpoints {
		byID[touchpoints[i].TouchpointID] = &touchpoints[i]
	}
	return byID
}
