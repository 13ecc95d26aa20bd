package domain

import "time"

// DealSizeTier enumerates deal size classes, which drive complexity
// multipliers and expected sales-cycle lookups.
type DealSizeTier string

const (
	TierEnterprise DealSizeTier = "enterprise"
	TierMidMarket  DealSizeTier = "mid-market"
	TierSMB        DealSizeTier = "smb"
)

// DefaultSalesCycleDays is used when an opportunity carries no cycle length.
const DefaultSalesCycleDays = 180

// Opportunity represents a won deal tied to an account. Only won
// opportunities enter the engine; losses are filtered by the repository.
type Opportunity struct {
	OpportunityID       string       `json:"opportunity_id" db:"opportunity_id"`
	AccountID           string       `json:"account_id" db:"account_id"`
	LeadIDs             []string     `json:"lead_ids" db:"lead_ids"`
	Amount              float64      `json:"amount" db:"amount"`
	CreatedDate         time.Time    `json:"created_date" db:"created_date"`
	CloseDate           *time.Time   `json:"close_date" db:"close_date"`
	SalesCycleDays      int          `json:"sales_cycle_days" db:"sales_cycle_days"`
	DealSizeTier        DealSizeTier `json:"deal_size_tier" db:"deal_size_tier"`
	DecisionMakersCount int          `json:"decision_makers_count" db:"decision_makers_count"`
	InfluencersCount    int          `json:"influencers_count" db:"influencers_count"`
}

// ConversionDate returns the close date when present, otherwise the created
// date. This is the instant the time-decay kernel measures against.
func (o *Opportunity) ConversionDate() time.Time {
	if o.CloseDate != nil {
		return *o.CloseDate
	}
	return o.CreatedDate
}

// CycleDays returns the sales cycle length, falling back to the default for
// opportunities that carry none.
func (o *Opportunity) CycleDays() int {
	if o.SalesCycleDays > 0 {
		return o.SalesCycleDays
	}
	return DefaultSalesCycleDays
}

// StakeholderCount returns the buying committee size.
func (o *Opportunity) StakeholderCount() int {
	return o.DecisionMakersCount + o.InfluencersCount
}
