package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors returned by engine operations. Callers branch on
// these with errors.Is; none of them indicates a storage fault.
var (
	// ErrRoundNotFound indicates that no round exists with the given ID.
	ErrRoundNotFound = errors.New("round not found")

	// ErrRoundNotReady indicates that a round failed its readiness check.
	// The concrete error is a *NotReadyError carrying the reasons.
	ErrRoundNotReady = errors.New("round not ready")

	// ErrResultsNotComputed indicates that selection was requested for a
	// round whose results have never been computed.
	ErrResultsNotComputed = errors.New("results not computed")

	// ErrTargetRoundNotAhead indicates that a promotion target does not
	// follow the source round in the competition sequence.
	ErrTargetRoundNotAhead = errors.New("target round does not follow source round")

	// ErrJudgeNotAssigned indicates that an evaluation was saved for a
	// judge who is not assigned to the round.
	ErrJudgeNotAssigned = errors.New("judge not assigned to round")

	// ErrUnknownMode indicates that no selection policy is registered
	// under the requested mode.
	ErrUnknownMode = errors.New("unknown selection mode")
)

// NotReadyError reports a failed readiness check together with the
// human-readable reasons. It unwraps to ErrRoundNotReady so callers can
// match it without inspecting the reasons.
type NotReadyError struct {
	// RoundID is the round that failed the check.
	RoundID string

	// Missing lists the unmet preconditions, in the same wording the
	// readiness report uses.
	Missing []string
}

// Error implements the error interface for NotReadyError.
func (e *NotReadyError) Error() string {
	return fmt.Sprintf("round %s not ready: %s", e.RoundID, strings.Join(e.Missing, "; "))
}

// Unwrap supports errors.Is(err, ErrRoundNotReady).
func (e *NotReadyError) Unwrap() error { return ErrRoundNotReady }

// NewNotReadyError creates a NotReadyError from a readiness report's
// missing reasons.
func NewNotReadyError(roundID string, missing []string) *NotReadyError {
	return &NotReadyError{RoundID: roundID, Missing: missing}
}
