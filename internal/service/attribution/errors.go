package attribution

import "errors"

// Sentinel errors for the attribution service layer.
var (
	ErrInvalidWindow  = errors.New("date_to precedes date_from")
	ErrInvalidWeights = errors.New("invalid attribution weights")
	ErrFetchFailed    = errors.New("failed to load attribution inputs")
)
