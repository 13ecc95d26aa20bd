package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	engine "github.com/ignite/attribution-engine/internal/attribution"
	"github.com/ignite/attribution-engine/internal/pkg/httputil"
	"github.com/ignite/attribution-engine/internal/service/attribution"
)

// Handlers holds the HTTP handlers for the attribution API.
type Handlers struct {
	svc    *attribution.Service
	health *HealthChecker
}

// NewHandlers creates the handler set.
func NewHandlers(svc *attribution.Service, health *HealthChecker) *Handlers {
	return &Handlers{svc: svc, health: health}
}

// attributionRequest is the shared request body for the three analysis
// endpoints. Dates use the 2006-01-02 form; date_to is inclusive through the
// end of its day.
type attributionRequest struct {
	AccountIDs         []string           `json:"account_ids"`
	DateFrom           string             `json:"date_from"`
	DateTo             string             `json:"date_to"`
	AttributionWeights map[string]float64 `json:"attribution_weights"`
}

const dateLayout = "2006-01-02"

func parseWindow(fromStr, toStr string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromStr != "" {
		d, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date_from %q: use YYYY-MM-DD", fromStr)
		}
		from = &d
	}
	if toStr != "" {
		d, err := time.Parse(dateLayout, toStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date_to %q: use YYYY-MM-DD", toStr)
		}
		end := d.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return from, to, nil
}

func weightsFromMap(m map[string]float64) *engine.CombineWeights {
	if m == nil {
		return nil
	}
	return &engine.CombineWeights{
		Time:     m["time"],
		Quality:  m["quality"],
		Account:  m["account"],
		Stage:    m["stage"],
		Velocity: m["velocity"],
	}
}

func (req attributionRequest) toServiceRequest() (attribution.Request, error) {
	from, to, err := parseWindow(req.DateFrom, req.DateTo)
	if err != nil {
		return attribution.Request{}, err
	}
	return attribution.Request{
		AccountIDs: req.AccountIDs,
		From:       from,
		To:         to,
		Weights:    weightsFromMap(req.AttributionWeights),
	}, nil
}

// writeServiceError maps service errors onto HTTP statuses. Validation errors
// become 400s; fetch failures become 500s carrying the request correlation id.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, attribution.ErrInvalidWindow),
		errors.Is(err, attribution.ErrInvalidWeights):
		httputil.BadRequest(w, err.Error())
	case errors.Is(err, attribution.ErrFetchFailed):
		log.Printf("[api] fetch failure (request %s): %v", middleware.GetReqID(r.Context()), err)
		httputil.JSON(w, http.StatusInternalServerError, httputil.ErrorResponse{
			Error: "failed to load attribution data",
			Code:  middleware.GetReqID(r.Context()),
		})
	default:
		httputil.InternalError(w, err)
	}
}

// CalculateB2B runs the full B2B attribution analysis.
func (h *Handlers) CalculateB2B(w http.ResponseWriter, r *http.Request) {
	var body attributionRequest
	if !httputil.Decode(w, r, &body) {
		return
	}
	req, err := body.toServiceRequest()
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	result, err := h.svc.Calculate(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.Success(w, result, "B2B attribution calculated successfully")
}

// ChannelInsights serves the channel performance roll-up with insights.
func (h *Handlers) ChannelInsights(w http.ResponseWriter, r *http.Request) {
	var body attributionRequest
	if !httputil.Decode(w, r, &body) {
		return
	}
	req, err := body.toServiceRequest()
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	report, err := h.svc.ChannelInsights(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.Success(w, report, "Channel performance insights generated successfully")
}

// AlignmentReport serves the sales-marketing alignment report.
func (h *Handlers) AlignmentReport(w http.ResponseWriter, r *http.Request) {
	var body attributionRequest
	if !httputil.Decode(w, r, &body) {
		return
	}
	req, err := body.toServiceRequest()
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	report, err := h.svc.AlignmentReport(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.Success(w, report, "Sales-marketing alignment report generated successfully")
}

// TouchpointTypes serves the touchpoint-type and weight-table introspection.
func (h *Handlers) TouchpointTypes(w http.ResponseWriter, r *http.Request) {
	httputil.Success(w, h.svc.TouchpointTypes(), "B2B touchpoint types retrieved successfully")
}

// ModelInfo serves the engine metadata block.
func (h *Handlers) ModelInfo(w http.ResponseWriter, r *http.Request) {
	httputil.Success(w, h.svc.ModelInfo(), "B2B model information retrieved successfully")
}

// CalculateLegacy is the pre-B2B calculation endpoint. Every model_name routes
// to the B2B engine; the query-parameter interface is preserved.
func (h *Handlers) CalculateLegacy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	modelName := q.Get("model_name")
	if modelName == "" {
		httputil.BadRequest(w, "model_name query parameter is required")
		return
	}
	log.Printf("[api] legacy attribution endpoint used (model_name=%s) - consider migrating to /attribution/b2b/calculate", modelName)

	var accountIDs []string
	if raw := q.Get("account_ids"); raw != "" {
		accountIDs = strings.Split(raw, ",")
	}

	from, to, err := parseWindow(q.Get("date_from"), q.Get("date_to"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	result, err := h.svc.Calculate(r.Context(), attribution.Request{
		AccountIDs: accountIDs,
		From:       from,
		To:         to,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.Success(w, result, "B2B attribution calculated successfully")
}
