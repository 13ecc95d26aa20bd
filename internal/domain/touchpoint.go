package domain

import "time"

// TouchpointType enumerates the kinds of marketing and sales interactions the
// engine can attribute. The set is closed; the channel field stays a free
// string because the channel space is customer-defined.
type TouchpointType string

const (
	TouchContentDownload   TouchpointType = "content_download"
	TouchWebinarAttendance TouchpointType = "webinar_attendance"
	TouchDemoRequest       TouchpointType = "demo_request"
	TouchTradeShow         TouchpointType = "trade_show"
	TouchSalesCall         TouchpointType = "sales_call"
	TouchEmailEngagement   TouchpointType = "email_engagement"
	TouchWebsiteVisit      TouchpointType = "website_visit"
	TouchSocialEngagement  TouchpointType = "social_engagement"
	TouchDirectMail        TouchpointType = "direct_mail"
	TouchReferral          TouchpointType = "referral"
)

// TouchpointTypes lists every touchpoint type.
var TouchpointTypes = []TouchpointType{
	TouchContentDownload, TouchWebinarAttendance, TouchDemoRequest,
	TouchTradeShow, TouchSalesCall, TouchEmailEngagement,
	TouchWebsiteVisit, TouchSocialEngagement, TouchDirectMail, TouchReferral,
}

// Valid reports whether t is one of the known touchpoint types.
func (t TouchpointType) Valid() bool {
	switch t {
	case TouchContentDownload, TouchWebinarAttendance, TouchDemoRequest,
		TouchTradeShow, TouchSalesCall, TouchEmailEngagement,
		TouchWebsiteVisit, TouchSocialEngagement, TouchDirectMail, TouchReferral:
		return true
	}
	return false
}

// Touchpoint represents a single measured interaction between the vendor and
// a lead at an instant in time.
type Touchpoint struct {
	TouchpointID     string         `json:"touchpoint_id" db:"touchpoint_id"`
	LeadID           string         `json:"lead_id" db:"lead_id"`
	AccountID        string         `json:"account_id" db:"account_id"`
	Timestamp        time.Time      `json:"timestamp" db:"timestamp"`
	Type             TouchpointType `json:"touchpoint_type" db:"touchpoint_type"`
	Channel          string         `json:"channel" db:"channel"`
	EngagementScore  float64        `json:"engagement_score" db:"engagement_score"`
	StageInfluence   Stage          `json:"stage_influence" db:"stage_influence"`
	Cost             float64        `json:"cost" db:"cost"`
	IsSalesTouch     bool           `json:"is_sales_touch" db:"is_sales_touch"`
	IsMarketingTouch bool           `json:"is_marketing_touch" db:"is_marketing_touch"`
	CampaignID       *string        `json:"campaign_id,omitempty" db:"campaign_id"`
	ContentID        *string        `json:"content_id,omitempty" db:"content_id"`
	SalesRepID       *string        `json:"sales_rep_id,omitempty" db:"sales_rep_id"`
}

// IsJointTouch reports whether the touchpoint belongs to both sales and
// marketing (for alignment partitioning).
func (t *Touchpoint) IsJointTouch() bool {
	return t.IsSalesTouch && t.IsMarketingTouch
}
