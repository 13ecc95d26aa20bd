package attribution

import (
	"context"
	"sync"

	"github.com/ignite/attribution-engine/internal/domain"
)

// Engine computes B2B multi-factor attribution. It is stateless apart from
// its constant tables, so a single Engine serves any number of concurrent
// requests without locking.
type Engine struct {
	tables Tables
}

// NewEngine creates an engine with the given weight tables. Use
// DefaultTables() unless a deployment overrides them via config.
func NewEngine(tables Tables) *Engine {
	return &Engine{tables: tables}
}

// Tables returns the engine's weight tables, for the introspection endpoints.
func (e *Engine) Tables() Tables {
	return e.tables
}

// Result is the output of one Attribute call: the five factor maps, the
// combined map, and its summary.
type Result struct {
	Factors  Factors
	Combined domain.AttributionMap
	Summary  domain.Summary
	Weights  CombineWeights
}

// Attribute runs the five factor calculators over the inputs and combines
// them with the given weights (nil means defaults). The calculators are pure
// and share only the immutable input slices, so they run on parallel
// goroutines; the combiner joins when all five complete.
//
// The context is honored before dispatch and at the join: a cancelled call
// returns ctx.Err() and produces no result.
func (e *Engine) Attribute(
	ctx context.Context,
	leads []domain.Lead,
	opportunities []domain.Opportunity,
	touchpoints []domain.Touchpoint,
	weights *CombineWeights,
) (*Result, error) {
	effective := e.tables.DefaultCombineWeights
	if weights != nil {
		effective = *weights
	}
	normalized, err := effective.Normalize()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var f Factors
	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		f.TimeWeighted = e.TimeWeighted(opportunities, touchpoints)
	}()
	go func() {
		defer wg.Done()
		f.QualityWeighted = e.QualityWeighted(leads, touchpoints)
	}()
	go func() {
		defer wg.Done()
		f.AccountBased = e.AccountBased(opportunities, touchpoints)
	}()
	go func() {
		defer wg.Done()
		f.StageProgression = e.StageProgression(touchpoints)
	}()
	go func() {
		defer wg.Done()
		f.PipelineVelocity = e.PipelineVelocity(opportunities, touchpoints)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	combined := Combine(f, normalized)

	return &Result{
		Factors:  f,
		Combined: combined,
		Summary:  Summarize(combined),
		Weights:  normalized,
	}, nil
}
