package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/venharis/dais/internal/domain"
)

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.CheckReadiness(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	// A not-ready round is still a successful check; callers branch on
	// the ready flag and surface the missing reasons.
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.ComputeRound(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.deps.RoundResults(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// selectionRequest mirrors POST /rounds/{id}/selection. Params are passed
// through to the policy untouched; each policy validates its own.
type selectionRequest struct {
	Mode   string         `json:"mode"`
	Params map[string]any `json:"params"`
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Mode) == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing mode"))
		return
	}

	selection, err := s.deps.SelectTeams(r.Context(), r.PathValue("id"), req.Mode, req.Params)
	if err != nil {
		if isPolicyParamError(err) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, selection)
}

// promotionRequest mirrors POST /rounds/{id}/promotions, where {id} is
// the source round. Mode and params are recorded with each assignment
// for audit.
type promotionRequest struct {
	TargetRoundID string         `json:"target_round_id"`
	TeamIDs       []string       `json:"team_ids"`
	Mode          string         `json:"mode"`
	Params        map[string]any `json:"params"`
}

func (req promotionRequest) validate() error {
	switch {
	case strings.TrimSpace(req.TargetRoundID) == "":
		return errors.New("missing target_round_id")
	case len(req.TeamIDs) == 0:
		return errors.New("missing team_ids")
	}
	return nil
}

func (s *Server) handlePromotion(w http.ResponseWriter, r *http.Request) {
	sourceRoundID := r.PathValue("id")

	var req promotionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	receipt, err := s.deps.PromoteTeams(r.Context(), sourceRoundID, req.TargetRoundID, domain.SelectionResult{
		RoundID: sourceRoundID,
		Mode:    req.Mode,
		Params:  req.Params,
		TeamIDs: req.TeamIDs,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// isPolicyParamError distinguishes bad selection parameters (a client
// fault) from missing results or storage faults. Policy factories wrap
// validation failures with a creation prefix, so the check keys on that.
func isPolicyParamError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "validation failed") ||
		strings.Contains(msg, "parse params")
}
