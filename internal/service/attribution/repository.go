package attribution

import (
	"context"
	"time"

	"github.com/ignite/attribution-engine/internal/domain"
)

// Filter narrows which accounts and which touchpoint window a calculation
// covers. Nil dates and an empty account list mean unbounded. The dates bound
// touchpoint timestamps and opportunity close dates; leads are always loaded
// for the matching accounts regardless of dates.
type Filter struct {
	AccountIDs []string
	From       *time.Time
	To         *time.Time
}

// Repository defines the data access contract for attribution inputs.
// Implementations must be safe for concurrent use.
type Repository interface {
	// LoadLeads returns the leads for the filtered accounts.
	LoadLeads(ctx context.Context, f Filter) ([]domain.Lead, error)

	// LoadOpportunities returns won opportunities for the filtered accounts
	// whose conversion date falls inside the window.
	LoadOpportunities(ctx context.Context, f Filter) ([]domain.Opportunity, error)

	// LoadTouchpoints returns touchpoints for the filtered accounts whose
	// timestamp falls inside the window.
	LoadTouchpoints(ctx context.Context, f Filter) ([]domain.Touchpoint, error)
}

// ResultWriter persists one result document per calculate call.
// Write failures must not fail the calculation; the service logs and moves on.
type ResultWriter interface {
	WriteResult(ctx context.Context, doc *domain.ResultDocument) error
}
