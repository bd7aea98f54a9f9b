package policies

import (
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/venharis/dais/internal/domain"
	"github.com/venharis/dais/internal/ports"
)

var _ ports.SelectionPolicy = (*PerJudgePolicy)(nil)

// PerJudgePolicy advances the union of every judge's personal top N teams.
// Each judge ranks only the teams they evaluated, ordered by that judge's
// own weighted z-score total as recorded in the result breakdowns; the
// selected set is the union of all nominations, so it can be larger than N
// and is never smaller than any single judge's overlap with it.
//
// Ties within one judge's list at the N cutoff resolve by ascending team
// ID, which keeps nominations reproducible across runs.
type PerJudgePolicy struct {
	// name is the unique identifier for this policy instance.
	name string
	// config contains the validated parameters.
	config PerJudgeConfig
}

// PerJudgeConfig parameterizes PerJudgePolicy. The zero value nominates no
// teams.
type PerJudgeConfig struct {
	// N is the number of teams each judge nominates.
	N int `yaml:"n" json:"n" validate:"min=0"`
}

// DefaultPerJudgeConfig returns a PerJudgeConfig that nominates nothing
// until N is set explicitly.
func DefaultPerJudgeConfig() PerJudgeConfig {
	return PerJudgeConfig{N: 0}
}

// NewPerJudgePolicy creates a PerJudgePolicy with a validated
// configuration. Returns ErrEmptyPolicyName if name is empty, or a
// validation error when the configuration violates its constraints.
func NewPerJudgePolicy(name string, config PerJudgeConfig) (*PerJudgePolicy, error) {
	if name == "" {
		return nil, ErrEmptyPolicyName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &PerJudgePolicy{name: name, config: config}, nil
}

// Name returns the identifier this policy instance was created with.
func (p *PerJudgePolicy) Name() string { return p.name }

// Select collects each judge's top N teams and returns their union in
// ascending team ID order.
func (p *PerJudgePolicy) Select(ctx context.Context, input ports.SelectionInput) (domain.SelectionResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.SelectionResult{}, err
	}
	if len(input.Results) == 0 {
		return domain.SelectionResult{}, ErrNoResults
	}

	result := domain.SelectionResult{
		RoundID: input.RoundID,
		Mode:    string(ModePerJudge),
		Params:  map[string]any{"n": p.config.N},
		TeamIDs: []string{},
	}
	if p.config.N <= 0 {
		return result, nil
	}

	type nomination struct {
		teamID    string
		weightedZ float64
	}
	perJudge := make(map[string][]nomination)
	for _, r := range input.Results {
		for _, jb := range r.Breakdown {
			perJudge[jb.JudgeID] = append(perJudge[jb.JudgeID], nomination{
				teamID:    r.TeamID,
				weightedZ: jb.WeightedZ,
			})
		}
	}

	selected := make(map[string]struct{})
	for _, nominations := range perJudge {
		sort.Slice(nominations, func(i, j int) bool {
			if nominations[i].weightedZ != nominations[j].weightedZ {
				return nominations[i].weightedZ > nominations[j].weightedZ
			}
			return nominations[i].teamID < nominations[j].teamID
		})
		limit := p.config.N
		if limit > len(nominations) {
			limit = len(nominations)
		}
		for _, nom := range nominations[:limit] {
			selected[nom.teamID] = struct{}{}
		}
	}

	for teamID := range selected {
		result.TeamIDs = append(result.TeamIDs, teamID)
	}
	sort.Strings(result.TeamIDs)
	return result, nil
}

// Validate verifies the policy is properly configured.
func (p *PerJudgePolicy) Validate() error {
	if err := validate.Struct(p.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters replaces the policy's configuration from a YAML
// node. The configuration is validated before it is applied and remains
// unchanged on error.
func (p *PerJudgePolicy) UnmarshalParameters(params yaml.Node) error {
	var config PerJudgeConfig
	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}
	p.config = config
	return nil
}

// NewPerJudgeFromParams creates a PerJudgePolicy from a parameter map.
// This is the boundary adapter for callers that carry parameters as
// map[string]any.
func NewPerJudgeFromParams(name string, params map[string]any) (ports.SelectionPolicy, error) {
	data, err := yaml.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	cfg := DefaultPerJudgeConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse params: %w", err)
	}

	return NewPerJudgePolicy(name, cfg)
}
