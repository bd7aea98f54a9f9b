package policies

import (
	"fmt"
	"sync"

	"github.com/venharis/dais/internal/domain"
	"github.com/venharis/dais/internal/ports"
)

// PolicyFactory builds a configured SelectionPolicy from a name and a raw
// parameter map.
type PolicyFactory func(name string, params map[string]any) (ports.SelectionPolicy, error)

// Registry is a factory for selection policies keyed by mode. It comes
// with the built-in modes pre-registered and allows additional strategies
// to be registered at runtime.
type Registry struct {
	// factories maps mode strings to their factory functions.
	factories map[Mode]PolicyFactory
	// mu protects concurrent access to the factories map.
	mu sync.RWMutex
}

// NewRegistry creates a policy registry with the built-in top_k and
// per_judge modes pre-registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[Mode]PolicyFactory)}
	r.factories[ModeTopK] = NewTopKFromParams
	r.factories[ModePerJudge] = NewPerJudgeFromParams
	return r
}

// Create resolves the mode string against the registered factories and
// builds a policy configured with the given parameters. Unknown modes fail
// with domain.ErrUnknownMode. A nil params map is treated as empty,
// letting each policy fall back to its defaults.
func (r *Registry) Create(mode string, params map[string]any) (ports.SelectionPolicy, error) {
	normalized := normalizeMode(mode)

	r.mu.RLock()
	factory, ok := r.factories[normalized]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownMode, mode)
	}

	if params == nil {
		params = make(map[string]any)
	}
	policy, err := factory(string(normalized), params)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s policy: %w", normalized, err)
	}
	return policy, nil
}

// Register installs a factory for a custom mode, replacing any existing
// registration. Mode strings are matched case-folded, so register them in
// their canonical lower-case form.
func (r *Registry) Register(mode Mode, factory PolicyFactory) error {
	if mode == "" {
		return fmt.Errorf("mode cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[mode] = factory
	return nil
}

// Modes returns the registered mode strings, for validation and
// introspection.
func (r *Registry) Modes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	modes := make([]string, 0, len(r.factories))
	for mode := range r.factories {
		modes = append(modes, string(mode))
	}
	return modes
}
