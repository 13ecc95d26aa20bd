package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func journey(n int) []Touchpoint {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	tps := make([]Touchpoint, 0, n)
	for i := 0; i < n; i++ {
		tps = append(tps, Touchpoint{
			ID:        string(rune('a' + i)),
			Timestamp: start.AddDate(0, 0, i),
			Channel:   "email",
		})
	}
	return tps
}

func sum(m map[string]float64) float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}

func TestFirstAndLastTouch(t *testing.T) {
	tps := journey(4)

	first := FirstTouch{}.Attribute(tps, 1000)
	assert.Equal(t, 1000.0, first["a"])
	assert.Equal(t, 0.0, first["d"])

	last := LastTouch{}.Attribute(tps, 1000)
	assert.Equal(t, 0.0, last["a"])
	assert.Equal(t, 1000.0, last["d"])
}

func TestFirstTouchIgnoresInputOrder(t *testing.T) {
	tps := journey(3)
	shuffled := []Touchpoint{tps[2], tps[0], tps[1]}

	attribution := FirstTouch{}.Attribute(shuffled, 100)
	assert.Equal(t, 100.0, attribution["a"])
}

func TestLinearSplitsEvenly(t *testing.T) {
	attribution := Linear{}.Attribute(journey(4), 1000)
	for id, v := range attribution {
		assert.Equal(t, 250.0, v, "touchpoint %s", id)
	}
}

func TestTimeDecayFavorsRecentTouches(t *testing.T) {
	tps := journey(3)
	attribution := TimeDecay{HalfLifeDays: 7}.Attribute(tps, 1000)

	assert.Greater(t, attribution["c"], attribution["b"])
	assert.Greater(t, attribution["b"], attribution["a"])
	assert.InDelta(t, 1000.0, sum(attribution), 1e-9)
}

func TestTimeDecayHalfLifeHalvesWeight(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tps := []Touchpoint{
		{ID: "early", Timestamp: start},
		{ID: "late", Timestamp: start.AddDate(0, 0, 7)},
	}

	attribution := TimeDecay{HalfLifeDays: 7}.Attribute(tps, 3)
	assert.InDelta(t, 1.0, attribution["early"], 1e-9)
	assert.InDelta(t, 2.0, attribution["late"], 1e-9)
}

func TestUShapedDistribution(t *testing.T) {
	attribution := DefaultUShaped().Attribute(journey(5), 1000)

	assert.InDelta(t, 400.0, attribution["a"], 1e-9)
	assert.InDelta(t, 400.0, attribution["e"], 1e-9)
	for _, id := range []string{"b", "c", "d"} {
		assert.InDelta(t, 200.0/3, attribution[id], 1e-9)
	}
}

func TestUShapedSmallJourneys(t *testing.T) {
	single := DefaultUShaped().Attribute(journey(1), 500)
	assert.Equal(t, 500.0, single["a"])

	pair := DefaultUShaped().Attribute(journey(2), 500)
	assert.Equal(t, 250.0, pair["a"])
	assert.Equal(t, 250.0, pair["b"])
}

func TestWShapedDistribution(t *testing.T) {
	// Six touches: first=a, lead=c (index 2), opportunity=d (index 3).
	attribution := DefaultWShaped().Attribute(journey(6), 1000)

	assert.InDelta(t, 300.0, attribution["a"], 1e-9)
	assert.InDelta(t, 300.0, attribution["c"], 1e-9)
	assert.InDelta(t, 300.0, attribution["d"], 1e-9)
	for _, id := range []string{"b", "e", "f"} {
		assert.InDelta(t, 100.0/3, attribution[id], 1e-9)
	}
	assert.InDelta(t, 1000.0, sum(attribution), 1e-9)
}

func TestWShapedFallsBackToUShaped(t *testing.T) {
	attribution := DefaultWShaped().Attribute(journey(2), 800)
	assert.Equal(t, 400.0, attribution["a"])
	assert.Equal(t, 400.0, attribution["b"])
}

func TestDataDrivenUsesChannelPriors(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tps := []Touchpoint{
		{ID: "d1", Timestamp: start, Channel: "direct"},
		{ID: "d2", Timestamp: start.AddDate(0, 0, 1), Channel: "display"},
		{ID: "d3", Timestamp: start.AddDate(0, 0, 2), Channel: "carrier_pigeon"},
	}

	attribution := DataDriven{}.Attribute(tps, 100)
	assert.Greater(t, attribution["d1"], attribution["d3"])
	assert.Greater(t, attribution["d3"], attribution["d2"])
	assert.InDelta(t, 100.0, sum(attribution), 1e-9)
}

func TestEmptyJourney(t *testing.T) {
	for _, name := range Available() {
		model, err := New(name)
		require.NoError(t, err)
		assert.Empty(t, model.Attribute(nil, 1000), name)
	}
}

func TestModelsConserveValue(t *testing.T) {
	tps := journey(7)
	for _, name := range Available() {
		model, err := New(name)
		require.NoError(t, err)
		attribution := model.Attribute(tps, 1234.5)
		assert.InDelta(t, 1234.5, sum(attribution), 1e-9, name)
		for id, v := range attribution {
			assert.False(t, math.Signbit(v) && v != 0, "%s gave %s negative credit", name, id)
		}
	}
}

func TestFactoryRejectsUnknownModel(t *testing.T) {
	_, err := New("shapley")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestCompareRunsAllModelsByDefault(t *testing.T) {
	results := Compare(nil, journey(3), 1000)
	require.Len(t, results, len(Available()))
	for name, attribution := range results {
		assert.InDelta(t, 1000.0, sum(attribution), 1e-9, name)
	}
}

func TestCompareSkipsUnknownNames(t *testing.T) {
	results := Compare([]string{"linear", "nope"}, journey(3), 100)
	require.Len(t, results, 1)
	assert.Contains(t, results, "linear")
}
