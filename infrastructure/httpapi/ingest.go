package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/venharis/dais/internal/domain"
)

// createRoundRequest mirrors POST /rounds. An omitted ID is generated
// server-side so callers may but need not manage identifiers.
type createRoundRequest struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Name   string `json:"name"`
}

func (req createRoundRequest) validate() error {
	switch {
	case req.Number < 1:
		return errors.New("number must be at least 1")
	case strings.TrimSpace(req.Name) == "":
		return errors.New("missing name")
	}
	return nil
}

func (s *Server) handleCreateRound(w http.ResponseWriter, r *http.Request) {
	var req createRoundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	round := domain.Round{
		ID:        strings.TrimSpace(req.ID),
		Number:    req.Number,
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: time.Now().UTC(),
	}
	if round.ID == "" {
		round.ID = uuid.NewString()
	}

	if err := s.ingest.Rounds.CreateRound(r.Context(), round); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, round)
}

// criterionRequest is one entry of POST /rounds/{id}/criteria.
type criterionRequest struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	MaxMarks     float64 `json:"max_marks"`
	Weight       float64 `json:"weight"`
	DisplayOrder int     `json:"display_order"`
}

type createCriteriaRequest struct {
	Criteria []criterionRequest `json:"criteria"`
}

func (req createCriteriaRequest) validate() error {
	if len(req.Criteria) == 0 {
		return errors.New("missing criteria")
	}
	for _, c := range req.Criteria {
		switch {
		case strings.TrimSpace(c.Name) == "":
			return errors.New("missing criterion name")
		case c.MaxMarks <= 0:
			return errors.New("max_marks must be positive")
		case c.Weight <= 0:
			return errors.New("weight must be positive")
		}
	}
	return nil
}

func (s *Server) handleCreateCriteria(w http.ResponseWriter, r *http.Request) {
	roundID := r.PathValue("id")

	var req createCriteriaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := s.ingest.Rounds.GetRound(r.Context(), roundID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	criteria := make([]domain.Criterion, 0, len(req.Criteria))
	for _, c := range req.Criteria {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			id = uuid.NewString()
		}
		criteria = append(criteria, domain.Criterion{
			ID:           id,
			RoundID:      roundID,
			Name:         strings.TrimSpace(c.Name),
			MaxMarks:     c.MaxMarks,
			Weight:       c.Weight,
			DisplayOrder: c.DisplayOrder,
		})
	}

	if err := s.ingest.Criteria.CreateCriteria(r.Context(), criteria); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"criteria": criteria})
}

type assignJudgesRequest struct {
	JudgeIDs []string `json:"judge_ids"`
}

func (s *Server) handleAssignJudges(w http.ResponseWriter, r *http.Request) {
	roundID := r.PathValue("id")

	var req assignJudgesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.JudgeIDs) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("missing judge_ids"))
		return
	}
	if _, err := s.ingest.Rounds.GetRound(r.Context(), roundID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.ingest.Rounds.AssignJudges(r.Context(), roundID, req.JudgeIDs); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"assigned": len(req.JudgeIDs)})
}

// saveEvaluationRequest mirrors PUT /rounds/{id}/evaluations. The triple
// (round, judge, team) identifies the scorecard; saving again replaces
// the previous scores, so judges can revise drafts freely.
type saveEvaluationRequest struct {
	JudgeID   string             `json:"judge_id"`
	TeamID    string             `json:"team_id"`
	Scores    map[string]float64 `json:"scores"`
	Submitted bool               `json:"submitted"`
}

func (req saveEvaluationRequest) validate() error {
	switch {
	case strings.TrimSpace(req.JudgeID) == "":
		return errors.New("missing judge_id")
	case strings.TrimSpace(req.TeamID) == "":
		return errors.New("missing team_id")
	case len(req.Scores) == 0:
		return errors.New("missing scores")
	}
	for criterionID, score := range req.Scores {
		if strings.TrimSpace(criterionID) == "" {
			return errors.New("empty criterion id in scores")
		}
		if score < 0 {
			return errors.New("scores must not be negative")
		}
	}
	return nil
}

func (s *Server) handleSaveEvaluation(w http.ResponseWriter, r *http.Request) {
	roundID := r.PathValue("id")

	var req saveEvaluationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := s.ingest.Rounds.GetRound(r.Context(), roundID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	eval := domain.Evaluation{
		ID:        uuid.NewString(),
		RoundID:   roundID,
		JudgeID:   req.JudgeID,
		TeamID:    req.TeamID,
		Scores:    req.Scores,
		Submitted: req.Submitted,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.ingest.Evaluations.SaveEvaluation(r.Context(), eval); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eval)
}
