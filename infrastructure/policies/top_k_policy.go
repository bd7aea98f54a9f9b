package policies

import (
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/venharis/dais/internal/domain"
	"github.com/venharis/dais/internal/ports"
)

var _ ports.SelectionPolicy = (*TopKPolicy)(nil)

// TopKPolicy selects the K best-ranked teams of a round from its computed
// results.
//
// Boundary ties are never split: when the team at the cutoff shares its
// rank with teams below the cutoff, the whole tied group is included even
// though the selection then exceeds K. The inverse never happens; a tied
// group is either entirely in or entirely out.
//
// Edge cases: K = 0 selects nothing, and K at or above the team count
// selects every team. The policy reads only the aggregate results; the
// per-judge evaluations in the input are ignored.
type TopKPolicy struct {
	// name is the unique identifier for this policy instance.
	name string
	// config contains the validated parameters.
	config TopKConfig
}

// TopKConfig parameterizes TopKPolicy. The zero value selects no teams.
type TopKConfig struct {
	// K is the number of teams to select before tie expansion at the
	// cutoff rank.
	K int `yaml:"k" json:"k" validate:"min=0"`
}

// DefaultTopKConfig returns a TopKConfig that selects nothing until K is
// set explicitly, so a forgotten parameter never silently advances teams.
func DefaultTopKConfig() TopKConfig {
	return TopKConfig{K: 0}
}

// NewTopKPolicy creates a TopKPolicy with a validated configuration.
// Returns ErrEmptyPolicyName if name is empty, or a validation error when
// the configuration violates its constraints.
func NewTopKPolicy(name string, config TopKConfig) (*TopKPolicy, error) {
	if name == "" {
		return nil, ErrEmptyPolicyName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &TopKPolicy{name: name, config: config}, nil
}

// Name returns the identifier this policy instance was created with.
func (p *TopKPolicy) Name() string { return p.name }

// Select returns the top K teams by rank, expanded to include every team
// tied with the last qualifying rank. Selected team IDs are returned in
// ascending order regardless of rank.
func (p *TopKPolicy) Select(ctx context.Context, input ports.SelectionInput) (domain.SelectionResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.SelectionResult{}, err
	}
	if len(input.Results) == 0 {
		return domain.SelectionResult{}, ErrNoResults
	}

	result := domain.SelectionResult{
		RoundID: input.RoundID,
		Mode:    string(ModeTopK),
		Params:  map[string]any{"k": p.config.K},
		TeamIDs: []string{},
	}
	if p.config.K <= 0 {
		return result, nil
	}

	ranked := make([]domain.TeamRoundResult, len(input.Results))
	copy(ranked, input.Results)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Rank != ranked[j].Rank {
			return ranked[i].Rank < ranked[j].Rank
		}
		return ranked[i].TeamID < ranked[j].TeamID
	})

	if p.config.K >= len(ranked) {
		for _, r := range ranked {
			result.TeamIDs = append(result.TeamIDs, r.TeamID)
		}
		sort.Strings(result.TeamIDs)
		return result, nil
	}

	// Teams sharing the cutoff rank ride along even beyond K.
	boundary := ranked[p.config.K-1].Rank
	for _, r := range ranked {
		if r.Rank > boundary {
			break
		}
		result.TeamIDs = append(result.TeamIDs, r.TeamID)
	}
	sort.Strings(result.TeamIDs)
	return result, nil
}

// Validate verifies the policy is properly configured.
func (p *TopKPolicy) Validate() error {
	if err := validate.Struct(p.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters replaces the policy's configuration from a YAML
// node. The configuration is validated before it is applied and remains
// unchanged on error.
func (p *TopKPolicy) UnmarshalParameters(params yaml.Node) error {
	var config TopKConfig
	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}
	p.config = config
	return nil
}

// NewTopKFromParams creates a TopKPolicy from a parameter map.
// This is the boundary adapter for callers that carry parameters as
// map[string]any, such as the HTTP surface.
func NewTopKFromParams(name string, params map[string]any) (ports.SelectionPolicy, error) {
	data, err := yaml.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	// Start with defaults, then overlay user parameters.
	cfg := DefaultTopKConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse params: %w", err)
	}

	return NewTopKPolicy(name, cfg)
}
