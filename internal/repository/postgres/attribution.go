package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignite/attribution-engine/internal/domain"
	"github.com/ignite/attribution-engine/internal/service/attribution"
)

// AttributionRepo implements attribution.Repository against PostgreSQL.
type AttributionRepo struct{ db *sql.DB }

// NewAttributionRepo creates a Postgres-backed attribution input repository.
func NewAttributionRepo(db *sql.DB) *AttributionRepo { return &AttributionRepo{db: db} }

// LoadLeads returns leads for the filtered accounts. Leads carry no window
// semantics; the dates in the filter only bound opportunities and touchpoints.
func (r *AttributionRepo) LoadLeads(ctx context.Context, f attribution.Filter) ([]domain.Lead, error) {
	q := `
		SELECT lead_id, account_id, lead_score, demographic_score,
		       behavioral_score, firmographic_score, quality_tier,
		       stage, COALESCE(source,''), created_date
		FROM leads`
	args := []interface{}{}
	if len(f.AccountIDs) > 0 {
		q += ` WHERE account_id = ANY($1)`
		args = append(args, pq.Array(f.AccountIDs))
	}
	q += ` ORDER BY created_date`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("load leads: %w", err)
	}
	defer rows.Close()

	var out []domain.Lead
	for rows.Next() {
		var l domain.Lead
		if err := rows.Scan(
			&l.LeadID, &l.AccountID, &l.LeadScore, &l.DemographicScore,
			&l.BehavioralScore, &l.FirmographicScore, &l.QualityTier,
			&l.Stage, &l.Source, &l.CreatedDate,
		); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// LoadOpportunities returns won opportunities whose conversion date falls
// inside the window. Open and lost deals never reach the engine.
func (r *AttributionRepo) LoadOpportunities(ctx context.Context, f attribution.Filter) ([]domain.Opportunity, error) {
	q := `
		SELECT opportunity_id, account_id, lead_ids, amount, created_date,
		       close_date, sales_cycle_days, deal_size_tier,
		       decision_makers_count, influencers_count
		FROM opportunities
		WHERE stage = 'Closed Won'`
	args := []interface{}{}
	idx := 1

	if len(f.AccountIDs) > 0 {
		q += fmt.Sprintf(" AND account_id = ANY($%d)", idx)
		args = append(args, pq.Array(f.AccountIDs))
		idx++
	}
	if f.From != nil {
		q += fmt.Sprintf(" AND COALESCE(close_date, created_date) >= $%d", idx)
		args = append(args, *f.From)
		idx++
	}
	if f.To != nil {
		q += fmt.Sprintf(" AND COALESCE(close_date, created_date) <= $%d", idx)
		args = append(args, *f.To)
		idx++
	}
	q += " ORDER BY created_date"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("load opportunities: %w", err)
	}
	defer rows.Close()

	var out []domain.Opportunity
	for rows.Next() {
		var o domain.Opportunity
		if err := rows.Scan(
			&o.OpportunityID, &o.AccountID, pq.Array(&o.LeadIDs), &o.Amount,
			&o.CreatedDate, &o.CloseDate, &o.SalesCycleDays, &o.DealSizeTier,
			&o.DecisionMakersCount, &o.InfluencersCount,
		); err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// LoadTouchpoints returns touchpoints whose timestamp falls inside the window.
func (r *AttributionRepo) LoadTouchpoints(ctx context.Context, f attribution.Filter) ([]domain.Touchpoint, error) {
	q := `
		SELECT touchpoint_id, lead_id, account_id, timestamp, touchpoint_type,
		       channel, engagement_score, stage_influence, cost,
		       is_sales_touch, is_marketing_touch,
		       campaign_id, content_id, sales_rep_id
		FROM touchpoints
		WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if len(f.AccountIDs) > 0 {
		q += fmt.Sprintf(" AND account_id = ANY($%d)", idx)
		args = append(args, pq.Array(f.AccountIDs))
		idx++
	}
	if f.From != nil {
		q += fmt.Sprintf(" AND timestamp >= $%d", idx)
		args = append(args, *f.From)
		idx++
	}
	if f.To != nil {
		q += fmt.Sprintf(" AND timestamp <= $%d", idx)
		args = append(args, *f.To)
		idx++
	}
	q += " ORDER BY timestamp"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("load touchpoints: %w", err)
	}
	defer rows.Close()

	var out []domain.Touchpoint
	for rows.Next() {
		var tp domain.Touchpoint
		if err := rows.Scan(
			&tp.TouchpointID, &tp.LeadID, &tp.AccountID, &tp.Timestamp, &tp.Type,
			&tp.Channel, &tp.EngagementScore, &tp.StageInfluence, &tp.Cost,
			&tp.IsSalesTouch, &tp.IsMarketingTouch,
			&tp.CampaignID, &tp.ContentID, &tp.SalesRepID,
		); err != nil {
			return nil, fmt.Errorf("scan touchpoint: %w", err)
		}
		out = append(out, tp)
	}
	return out, rows.Err()
}

// ResultRepo implements attribution.ResultWriter against PostgreSQL. The full
// result is stored as a JSONB payload; one row per calculate call.
type ResultRepo struct{ db *sql.DB }

// NewResultRepo creates a Postgres-backed result writer.
func NewResultRepo(db *sql.DB) *ResultRepo { return &ResultRepo{db: db} }

func (r *ResultRepo) WriteResult(ctx context.Context, doc *domain.ResultDocument) error {
	payload, err := json.Marshal(doc.Result)
	if err != nil {
		return fmt.Errorf("marshal result payload: %w", err)
	}
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshal result metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO attribution_results (id, model_name, created_at, payload, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`, doc.ID, doc.ModelName, doc.CreatedAt, payload, metadata)
	if err != nil {
		return fmt.Errorf("insert attribution result: %w", err)
	}
	return nil
}
