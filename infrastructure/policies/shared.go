// Package policies provides the selection strategies that decide which
// teams advance out of a computed round. Each policy implements the
// ports.SelectionPolicy interface and is constructed through the Registry
// from a mode string and a parameter map.
package policies

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"

	"github.com/venharis/dais/internal/domain"
)

// Mode identifies a selection strategy.
type Mode string

// Supported selection modes.
const (
	// ModeTopK selects the K best-ranked teams of the round, keeping
	// rank-tied groups at the cutoff whole.
	ModeTopK Mode = "top_k"

	// ModePerJudge lets every judge nominate their personal top N teams
	// and selects the union of the nominations.
	ModePerJudge Mode = "per_judge"
)

// Common errors returned by selection policies.
var (
	// ErrEmptyPolicyName is returned when a policy is created without a
	// name.
	ErrEmptyPolicyName = errors.New("policy name cannot be empty")

	// ErrNoResults is returned when a policy receives an input without
	// computed results. The engine normally catches this earlier and
	// returns domain.ErrResultsNotComputed.
	ErrNoResults = errors.New("selection input has no computed results")
)

// Package-level validator instance for parameter validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// normalizeMode canonicalizes a user-supplied mode string with Unicode
// case folding, so "Top_K" and "TOP_K" resolve like "top_k".
func normalizeMode(s string) Mode {
	caser := cases.Fold()
	return Mode(caser.String(strings.TrimSpace(s)))
}

// ParseMode maps a user-supplied mode string onto one of the built-in
// Mode constants. Unknown strings fail with domain.ErrUnknownMode.
func ParseMode(s string) (Mode, error) {
	switch mode := normalizeMode(s); mode {
	case ModeTopK, ModePerJudge:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownMode, s)
	}
}
