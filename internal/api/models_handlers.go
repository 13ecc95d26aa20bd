package api

import (
	"net/http"
	"time"

	"github.com/ignite/attribution-engine/internal/attribution/models"
	"github.com/ignite/attribution-engine/internal/pkg/httputil"
)

// ListModels serves the names of the generic journey attribution models.
func (h *Handlers) ListModels(w http.ResponseWriter, r *http.Request) {
	httputil.Success(w, map[string]any{
		"models": models.Available(),
	}, "Attribution models retrieved successfully")
}

// compareRequest is the request body for the model comparison endpoint.
type compareRequest struct {
	Touchpoints []struct {
		ID        string    `json:"id"`
		Timestamp time.Time `json:"timestamp"`
		Channel   string    `json:"channel"`
	} `json:"touchpoints"`
	ConversionValue float64  `json:"conversion_value"`
	Models          []string `json:"models"`
}

// CompareModels runs the selected journey models over one journey and returns
// the per-model attribution maps side by side.
func (h *Handlers) CompareModels(w http.ResponseWriter, r *http.Request) {
	var body compareRequest
	if !httputil.Decode(w, r, &body) {
		return
	}
	if len(body.Touchpoints) == 0 {
		httputil.BadRequest(w, "touchpoints are required")
		return
	}
	for _, tp := range body.Touchpoints {
		if tp.ID == "" {
			httputil.BadRequest(w, "every touchpoint needs an id")
			return
		}
	}
	value := body.ConversionValue
	if value == 0 {
		value = 1.0
	}

	journey := make([]models.Touchpoint, 0, len(body.Touchpoints))
	for _, tp := range body.Touchpoints {
		journey = append(journey, models.Touchpoint{
			ID:        tp.ID,
			Timestamp: tp.Timestamp,
			Channel:   tp.Channel,
		})
	}

	results := models.Compare(body.Models, journey, value)
	httputil.Success(w, map[string]any{
		"conversion_value": value,
		"results":          results,
	}, "Attribution models compared successfully")
}
