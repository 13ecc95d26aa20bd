package attribution

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	engine "github.com/ignite/attribution-engine/internal/attribution"
	"github.com/ignite/attribution-engine/internal/domain"
)

// Service coordinates the attribution engine, the analyzer, the input
// repository, and the result writer. All public methods are safe for
// concurrent use if the underlying repository is concurrency-safe.
type Service struct {
	repo     Repository
	writer   ResultWriter
	engine   *engine.Engine
	analyzer *engine.Analyzer
}

// NewService creates an attribution service. The writer may be nil, in which
// case results are computed but never persisted.
func NewService(repo Repository, writer ResultWriter, eng *engine.Engine) *Service {
	return &Service{
		repo:     repo,
		writer:   writer,
		engine:   eng,
		analyzer: engine.NewAnalyzer(),
	}
}

// Request selects the accounts, window, and optional weight override for an
// analysis call.
type Request struct {
	AccountIDs []string
	From       *time.Time
	To         *time.Time
	Weights    *engine.CombineWeights
}

func (r Request) filter() Filter {
	return Filter{AccountIDs: r.AccountIDs, From: r.From, To: r.To}
}

func (r Request) validate() error {
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidWindow,
			r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
	}
	if r.Weights != nil {
		if _, err := r.Weights.Normalize(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidWeights, err)
		}
	}
	return nil
}

// load fetches the three input sets in a fixed order so partial failures
// surface deterministically.
func (s *Service) load(ctx context.Context, f Filter) ([]domain.Lead, []domain.Opportunity, []domain.Touchpoint, error) {
	leads, err := s.repo.LoadLeads(ctx, f)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: leads: %v", ErrFetchFailed, err)
	}
	opps, err := s.repo.LoadOpportunities(ctx, f)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: opportunities: %v", ErrFetchFailed, err)
	}
	tps, err := s.repo.LoadTouchpoints(ctx, f)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: touchpoints: %v", ErrFetchFailed, err)
	}
	return leads, opps, tps, nil
}

// Calculate runs the full B2B attribution analysis and persists the result
// document. Writer failures are logged and swallowed; the computed result is
// returned either way.
func (s *Service) Calculate(ctx context.Context, req Request) (*domain.AttributionResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	log.Printf("[attribution] calculate: accounts=%d from=%v to=%v",
		len(req.AccountIDs), req.From, req.To)

	leads, opps, tps, err := s.load(ctx, req.filter())
	if err != nil {
		return nil, err
	}

	run, err := s.engine.Attribute(ctx, leads, opps, tps, req.Weights)
	if err != nil {
		return nil, err
	}

	result := &domain.AttributionResult{
		TimeWeighted:       run.Factors.TimeWeighted,
		QualityWeighted:    run.Factors.QualityWeighted,
		AccountBased:       run.Factors.AccountBased,
		StageProgression:   run.Factors.StageProgression,
		PipelineVelocity:   run.Factors.PipelineVelocity,
		Combined:           run.Combined,
		Summary:            run.Summary,
		ChannelPerformance: s.analyzer.ChannelPerformance(run.Combined, tps),
		Alignment:          s.analyzer.Alignment(run.Combined, tps),
		Metadata: domain.ResultMetadata{
			LeadsAnalyzed:         len(leads),
			OpportunitiesAnalyzed: len(opps),
			TouchpointsAnalyzed:   len(tps),
			AnalysisDate:          time.Now().UTC(),
			AccountIDs:            req.AccountIDs,
			AttributionWeights:    run.Weights.AsMap(),
		},
	}

	s.persist(ctx, result, req.AccountIDs)

	log.Printf("[attribution] calculate done: touchpoints=%d total=%.2f",
		result.Summary.TouchpointCount, result.Summary.TotalAttributionValue)
	return result, nil
}

// persist hands the result document to the writer. A nil writer skips
// persistence; a failing writer is logged, never fatal.
func (s *Service) persist(ctx context.Context, result *domain.AttributionResult, accountIDs []string) {
	if s.writer == nil {
		return
	}
	doc := &domain.ResultDocument{
		ID:        uuid.New().String(),
		ModelName: domain.ModelName,
		CreatedAt: time.Now().UTC(),
		Result:    result,
		Metadata: domain.DocumentMetadata{
			AccountIDs: accountIDs,
			ModelType:  "b2b_comprehensive",
		},
	}
	if err := s.writer.WriteResult(ctx, doc); err != nil {
		log.Printf("[attribution] result write failed: %v", err)
	}
}

// ChannelInsightsReport is the channel-insights operation output.
type ChannelInsightsReport struct {
	Channels map[string]domain.ChannelMetrics `json:"channels"`
	Insights []string                         `json:"insights"`
	Summary  InsightsSummary                  `json:"summary"`
}

// InsightsSummary summarizes the channel-insights report.
type InsightsSummary struct {
	TotalChannels         int    `json:"total_channels"`
	BestPerformingChannel string `json:"best_performing_channel,omitempty"`
	AnalysisPeriod        string `json:"analysis_period"`
}

// ChannelInsights computes the channel roll-up with actionable insight
// strings. Nothing is persisted.
func (s *Service) ChannelInsights(ctx context.Context, req Request) (*ChannelInsightsReport, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	leads, opps, tps, err := s.load(ctx, req.filter())
	if err != nil {
		return nil, err
	}

	report := &ChannelInsightsReport{
		Channels: map[string]domain.ChannelMetrics{},
		Summary:  InsightsSummary{AnalysisPeriod: analysisPeriod(req.From, req.To)},
	}
	if len(tps) == 0 {
		report.Insights = []string{"No touchpoint data available for analysis"}
		return report, nil
	}

	run, err := s.engine.Attribute(ctx, leads, opps, tps, req.Weights)
	if err != nil {
		return nil, err
	}

	report.Channels = s.analyzer.ChannelPerformance(run.Combined, tps)
	report.Insights = s.analyzer.ChannelInsights(report.Channels)
	report.Summary.TotalChannels = len(report.Channels)
	if ranked := engine.ChannelsByROI(report.Channels); len(ranked) > 0 {
		report.Summary.BestPerformingChannel = ranked[0].Channel
	}
	return report, nil
}

// AlignmentReport computes the sales-marketing alignment report with
// recommendations and letter grade. Nothing is persisted.
func (s *Service) AlignmentReport(ctx context.Context, req Request) (*domain.AlignmentReport, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	leads, opps, tps, err := s.load(ctx, req.filter())
	if err != nil {
		return nil, err
	}

	if len(tps) == 0 {
		return &domain.AlignmentReport{
			Grade:           engine.AlignmentGrade(0),
			Recommendations: []string{"No touchpoint data available for analysis"},
		}, nil
	}

	run, err := s.engine.Attribute(ctx, leads, opps, tps, req.Weights)
	if err != nil {
		return nil, err
	}

	report := s.analyzer.Alignment(run.Combined, tps)
	report.Recommendations = s.analyzer.AlignmentRecommendations(report)
	return &report, nil
}

func analysisPeriod(from, to *time.Time) string {
	if from != nil && to != nil {
		return fmt.Sprintf("%s to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return "All time"
}
