package attribution_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/ignite/attribution-engine/internal/attribution"
	"github.com/ignite/attribution-engine/internal/domain"
	"github.com/ignite/attribution-engine/internal/service/attribution"
)

// memRepo is an in-memory attribution input repository for unit testing.
type memRepo struct {
	mu           sync.Mutex
	leads        []domain.Lead
	opps         []domain.Opportunity
	touchpoints  []domain.Touchpoint
	failLeads    error
	loadedOrder  []string
}

func (m *memRepo) matches(f attribution.Filter, accountID string) bool {
	if len(f.AccountIDs) == 0 {
		return true
	}
	for _, id := range f.AccountIDs {
		if id == accountID {
			return true
		}
	}
	return false
}

func (m *memRepo) LoadLeads(_ context.Context, f attribution.Filter) ([]domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadedOrder = append(m.loadedOrder, "leads")
	if m.failLeads != nil {
		return nil, m.failLeads
	}
	var out []domain.Lead
	for _, l := range m.leads {
		if m.matches(f, l.AccountID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memRepo) LoadOpportunities(_ context.Context, f attribution.Filter) ([]domain.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadedOrder = append(m.loadedOrder, "opportunities")
	var out []domain.Opportunity
	for _, o := range m.opps {
		if !m.matches(f, o.AccountID) {
			continue
		}
		conv := o.ConversionDate()
		if f.From != nil && conv.Before(*f.From) {
			continue
		}
		if f.To != nil && conv.After(*f.To) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *memRepo) LoadTouchpoints(_ context.Context, f attribution.Filter) ([]domain.Touchpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadedOrder = append(m.loadedOrder, "touchpoints")
	var out []domain.Touchpoint
	for _, tp := range m.touchpoints {
		if !m.matches(f, tp.AccountID) {
			continue
		}
		if f.From != nil && tp.Timestamp.Before(*f.From) {
			continue
		}
		if f.To != nil && tp.Timestamp.After(*f.To) {
			continue
		}
		out = append(out, tp)
	}
	return out, nil
}

// memWriter records written result documents.
type memWriter struct {
	mu   sync.Mutex
	docs []*domain.ResultDocument
	fail error
}

func (m *memWriter) WriteResult(_ context.Context, doc *domain.ResultDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.docs = append(m.docs, doc)
	return nil
}

func (m *memWriter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

var testDay = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

func ptrTime(t time.Time) *time.Time { return &t }

func seededRepo() *memRepo {
	close := testDay.AddDate(0, 0, 90)
	return &memRepo{
		leads: []domain.Lead{{
			LeadID: "lead-1", AccountID: "acct-1", LeadScore: 75,
			DemographicScore: 70, FirmographicScore: 65, QualityTier: domain.TierB,
		}},
		opps: []domain.Opportunity{{
			OpportunityID: "opp-1", AccountID: "acct-1", Amount: 50000,
			CreatedDate: testDay, CloseDate: &close, SalesCycleDays: 90,
			DealSizeTier: domain.TierMidMarket, DecisionMakersCount: 2,
		}},
		touchpoints: []domain.Touchpoint{
			{TouchpointID: "tp-1", LeadID: "lead-1", AccountID: "acct-1",
				Timestamp: testDay.AddDate(0, 0, 10), Type: domain.TouchContentDownload,
				Channel: "content", EngagementScore: 60, StageInfluence: domain.StageConsideration,
				Cost: 50, IsMarketingTouch: true},
			{TouchpointID: "tp-2", LeadID: "lead-1", AccountID: "acct-1",
				Timestamp: testDay.AddDate(0, 0, 80), Type: domain.TouchDemoRequest,
				Channel: "website", EngagementScore: 90, StageInfluence: domain.StageEvaluation,
				IsSalesTouch: true, IsMarketingTouch: true},
		},
	}
}

func newService(repo *memRepo, writer *memWriter) *attribution.Service {
	var w attribution.ResultWriter
	if writer != nil {
		w = writer
	}
	return attribution.NewService(repo, w, engine.NewEngine(engine.DefaultTables()))
}

func TestCalculatePersistsResultDocument(t *testing.T) {
	repo := seededRepo()
	writer := &memWriter{}
	svc := newService(repo, writer)

	result, err := svc.Calculate(context.Background(), attribution.Request{
		AccountIDs: []string{"acct-1"},
	})
	require.NoError(t, err)

	assert.InDelta(t, 50000.0, sumMap(result.TimeWeighted), 1e-9)
	assert.InDelta(t, 50000.0, sumMap(result.AccountBased), 1e-9)
	assert.Equal(t, 1, result.Metadata.LeadsAnalyzed)
	assert.Equal(t, 2, result.Metadata.TouchpointsAnalyzed)
	assert.InDelta(t, 1.0, sumWeights(result.Metadata.AttributionWeights), 1e-9)

	require.Equal(t, 1, writer.count())
	doc := writer.docs[0]
	assert.Equal(t, domain.ModelName, doc.ModelName)
	assert.Equal(t, "b2b_comprehensive", doc.Metadata.ModelType)
	assert.Equal(t, []string{"acct-1"}, doc.Metadata.AccountIDs)
	assert.NotEmpty(t, doc.ID)
	assert.Same(t, result, doc.Result)

	// Loads happen leads, opportunities, touchpoints, in that order.
	assert.Equal(t, []string{"leads", "opportunities", "touchpoints"}, repo.loadedOrder)
}

func TestCalculateEmptyWindowStillPersists(t *testing.T) {
	repo := seededRepo()
	writer := &memWriter{}
	svc := newService(repo, writer)

	// A window before any data exists.
	result, err := svc.Calculate(context.Background(), attribution.Request{
		From: ptrTime(testDay.AddDate(-1, 0, 0)),
		To:   ptrTime(testDay.AddDate(0, 0, -1)),
	})
	require.NoError(t, err)

	assert.Empty(t, result.Combined)
	assert.Equal(t, 0, result.Summary.TouchpointCount)
	assert.Empty(t, result.ChannelPerformance)
	assert.Equal(t, 0.0, result.Alignment.AlignmentScore)
	assert.Equal(t, "F", result.Alignment.Grade)
	assert.Equal(t, 1, writer.count())
}

func TestCalculateRejectsInvertedWindow(t *testing.T) {
	svc := newService(seededRepo(), nil)

	_, err := svc.Calculate(context.Background(), attribution.Request{
		From: ptrTime(testDay.AddDate(0, 1, 0)),
		To:   ptrTime(testDay),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, attribution.ErrInvalidWindow)
}

func TestCalculateRejectsZeroWeights(t *testing.T) {
	writer := &memWriter{}
	svc := newService(seededRepo(), writer)

	_, err := svc.Calculate(context.Background(), attribution.Request{
		Weights: &engine.CombineWeights{},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, attribution.ErrInvalidWeights)
	assert.Equal(t, 0, writer.count())
}

func TestCalculateFetchFailure(t *testing.T) {
	repo := seededRepo()
	repo.failLeads = errors.New("connection refused")
	writer := &memWriter{}
	svc := newService(repo, writer)

	_, err := svc.Calculate(context.Background(), attribution.Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, attribution.ErrFetchFailed)
	assert.Equal(t, 0, writer.count())
}

func TestCalculateCancelledBeforeDispatch(t *testing.T) {
	writer := &memWriter{}
	svc := newService(seededRepo(), writer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Calculate(ctx, attribution.Request{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, writer.count())

	// Subsequent calls on the same service produce identical results.
	first, err := svc.Calculate(context.Background(), attribution.Request{})
	require.NoError(t, err)
	second, err := svc.Calculate(context.Background(), attribution.Request{})
	require.NoError(t, err)
	assert.Equal(t, first.Combined, second.Combined)
}

func TestCalculateWriterFailureIsSwallowed(t *testing.T) {
	writer := &memWriter{fail: errors.New("disk full")}
	svc := newService(seededRepo(), writer)

	result, err := svc.Calculate(context.Background(), attribution.Request{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Combined)
}

func TestCalculateNilWriter(t *testing.T) {
	svc := newService(seededRepo(), nil)

	result, err := svc.Calculate(context.Background(), attribution.Request{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Combined)
}

func TestChannelInsightsReport(t *testing.T) {
	svc := newService(seededRepo(), nil)

	report, err := svc.ChannelInsights(context.Background(), attribution.Request{
		From: ptrTime(testDay),
		To:   ptrTime(testDay.AddDate(0, 6, 0)),
	})
	require.NoError(t, err)

	assert.Len(t, report.Channels, 2)
	assert.NotEmpty(t, report.Insights)
	assert.Equal(t, 2, report.Summary.TotalChannels)
	// The zero-cost website channel has infinite ROI and ranks best.
	assert.Equal(t, "website", report.Summary.BestPerformingChannel)
	assert.Equal(t, "2025-02-01 to 2025-08-01", report.Summary.AnalysisPeriod)
}

func TestChannelInsightsNoData(t *testing.T) {
	svc := newService(&memRepo{}, nil)

	report, err := svc.ChannelInsights(context.Background(), attribution.Request{})
	require.NoError(t, err)
	assert.Empty(t, report.Channels)
	assert.Equal(t, []string{"No touchpoint data available for analysis"}, report.Insights)
	assert.Equal(t, "All time", report.Summary.AnalysisPeriod)
}

func TestAlignmentReport(t *testing.T) {
	svc := newService(seededRepo(), nil)

	report, err := svc.AlignmentReport(context.Background(), attribution.Request{})
	require.NoError(t, err)

	// tp-1 is marketing-only, tp-2 is joint; sales bucket stays empty.
	assert.Equal(t, 0.0, report.SalesAttribution)
	assert.Greater(t, report.MarketingAttribution, 0.0)
	assert.Greater(t, report.JointAttribution, 0.0)
	assert.GreaterOrEqual(t, report.AlignmentScore, 0.0)
	assert.LessOrEqual(t, report.AlignmentScore, 100.0)
	assert.NotEmpty(t, report.Grade)
	assert.NotEmpty(t, report.Recommendations)
}

func TestAlignmentReportNoData(t *testing.T) {
	svc := newService(&memRepo{}, nil)

	report, err := svc.AlignmentReport(context.Background(), attribution.Request{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.AlignmentScore)
	assert.Equal(t, "F", report.Grade)
	assert.Equal(t, []string{"No touchpoint data available for analysis"}, report.Recommendations)
}

func TestModelInfoReflectsConfiguredWeights(t *testing.T) {
	tables := engine.DefaultTables()
	tables.DefaultCombineWeights = engine.CombineWeights{
		Time: 0.4, Quality: 0.2, Account: 0.2, Stage: 0.1, Velocity: 0.1,
	}
	svc := attribution.NewService(&memRepo{}, nil, engine.NewEngine(tables))

	info := svc.ModelInfo()
	assert.Equal(t, "B2B Marketing Attribution Engine", info.ModelName)
	assert.Equal(t, 0.4, info.AttributionFactors["time_weighted"].Weight)
	assert.Len(t, info.AttributionFactors, 5)
	assert.Equal(t, []string{"enterprise", "mid-market", "smb"}, info.SupportedDealTiers)
}

func TestTouchpointTypesReport(t *testing.T) {
	svc := newService(&memRepo{}, nil)

	report := svc.TouchpointTypes()
	require.Len(t, report.TouchpointTypes, 10)

	demo := report.TouchpointTypes["demo_request"]
	assert.Equal(t, 1.5, demo.Weight)
	assert.Equal(t, "High Intent", demo.Category)
	assert.NotEmpty(t, demo.Description)

	assert.Equal(t, 1.2, report.LeadQualityMultipliers["B"])
	assert.Equal(t, 1.5, report.StageProgressionWeights["evaluation"])
}

func sumMap(m domain.AttributionMap) float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}

func sumWeights(m map[string]float64) float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}
