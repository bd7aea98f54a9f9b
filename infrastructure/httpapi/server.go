// Package httpapi exposes the judging engine over HTTP. It is a thin
// adapter: handlers decode JSON, call the engine or the stores, and map
// domain errors onto status codes. All scoring semantics live in
// internal/domain and internal/application.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/venharis/dais/internal/domain"
	"github.com/venharis/dais/internal/ports"
	"github.com/venharis/dais/pkg/logger"
)

// Dependencies is the engine surface the handlers call. Using an
// interface bundle keeps the adapter loosely coupled to the concrete
// engine; *application.Engine satisfies it.
type Dependencies interface {
	CheckReadiness(ctx context.Context, roundID string) (domain.ReadinessReport, error)
	ComputeRound(ctx context.Context, roundID string) (domain.ComputeSummary, error)
	RoundResults(ctx context.Context, roundID string) ([]domain.TeamRoundResult, error)
	SelectTeams(ctx context.Context, roundID, mode string, params map[string]any) (domain.SelectionResult, error)
	PromoteTeams(ctx context.Context, sourceRoundID, targetRoundID string, selection domain.SelectionResult) (domain.PromotionReceipt, error)
}

// IngestStores bundles the write-side store ports the ingest endpoints
// need: creating rounds and criteria, assigning judges, and saving
// scorecards. These are the minimal write counterparts of the reads the
// engine consumes.
type IngestStores struct {
	Rounds      ports.RoundStore
	Criteria    ports.CriterionStore
	Evaluations ports.EvaluationStore
}

// ServerConfig tunes the adapter's protective middleware.
type ServerConfig struct {
	// ComputeRatePerMinute caps accepted compute requests per minute.
	// Zero or negative disables the limiter.
	ComputeRatePerMinute int

	// ComputeRateBurst is the burst allowance on top of the rate.
	ComputeRateBurst int
}

// Server wires the HTTP routes of the judging service.
type Server struct {
	deps    Dependencies
	ingest  IngestStores
	log     logger.Logger
	limiter *rate.Limiter
}

// NewServer creates a Server over the given engine and ingest stores.
// A nil logger falls back to a no-op logger.
func NewServer(deps Dependencies, ingest IngestStores, log logger.Logger, cfg ServerConfig) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	var limiter *rate.Limiter
	if cfg.ComputeRatePerMinute > 0 {
		burst := cfg.ComputeRateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.ComputeRatePerMinute)/60.0), burst)
	}
	return &Server{
		deps:    deps,
		ingest:  ingest,
		log:     log.Named("httpapi"),
		limiter: limiter,
	}
}

// Register attaches all routes to mux. Most specific patterns first is
// not required with method-qualified patterns, but the grouping mirrors
// the request flow: ingest, then readiness, then compute, then selection
// and promotion.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", metricsMiddleware(s.handleHealth, "healthz"))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /rounds", metricsMiddleware(s.handleCreateRound, "create_round"))
	mux.HandleFunc("POST /rounds/{id}/criteria", metricsMiddleware(s.handleCreateCriteria, "create_criteria"))
	mux.HandleFunc("POST /rounds/{id}/judges", metricsMiddleware(s.handleAssignJudges, "assign_judges"))
	mux.HandleFunc("PUT /rounds/{id}/evaluations", metricsMiddleware(s.handleSaveEvaluation, "save_evaluation"))

	mux.HandleFunc("GET /rounds/{id}/readiness", metricsMiddleware(s.handleReadiness, "readiness"))
	mux.HandleFunc("POST /rounds/{id}/compute", metricsMiddleware(s.rateLimited(s.handleCompute), "compute"))
	mux.HandleFunc("GET /rounds/{id}/results", metricsMiddleware(s.handleResults, "results"))
	mux.HandleFunc("POST /rounds/{id}/selection", metricsMiddleware(s.handleSelection, "selection"))
	mux.HandleFunc("POST /rounds/{id}/promotions", metricsMiddleware(s.handlePromotion, "promotion"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// rateLimited guards the heaviest endpoint. Compute walks every
// evaluation of a round, so hammering it during live scoring degrades
// everything else.
func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, errors.New("compute rate limit exceeded, retry later"))
			return
		}
		next.ServeHTTP(w, r)
	}
}

// errorResponse is the JSON body of every non-2xx response. Missing is
// populated only for readiness failures and carries the report's reasons
// verbatim.
type errorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps domain errors onto HTTP status codes: unknown
// entities are 404, unmet preconditions are 409, bad parameters are 400,
// and anything else is a storage or internal fault reported as 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var notReady *domain.NotReadyError
	switch {
	case errors.As(err, &notReady):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:   notReady.Error(),
			Missing: notReady.Missing,
		})
	case errors.Is(err, domain.ErrRoundNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrResultsNotComputed),
		errors.Is(err, domain.ErrTargetRoundNotAhead),
		errors.Is(err, domain.ErrJudgeNotAssigned):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, domain.ErrUnknownMode):
		writeError(w, http.StatusBadRequest, err)
	default:
		s.log.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, err)
	}
}

// decodeJSON decodes a request body into v, rejecting unknown fields so
// typos in client payloads fail loudly instead of being ignored.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}
