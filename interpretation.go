package qthought

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// Measurement describes one measurement of some targets in a basis.
type Measurement struct {
	Basis   Basis
	Targets []string
	Agent   string

	// Record names a subsystem that stores the outcome, e.g. an observer's lab.
	Record string
}

/*
Resolution is what an interpretation decides about a measurement: the outcome,
its Born probability, and the state the system is left in.
*/
type Resolution struct {
	Outcome       int
	Label         string
	Probability   float64
	Probabilities []float64
	Post          []complex128

	// Residual is the weight the post-state keeps outside the selected
	// eigenspace. It is zero for a complete collapse.
	Residual float64
	Definite bool
}

/*
Interpretation decides how a measurement resolves a superposed state into an
outcome, and which recorded facts count as facts an agent may assert.

Resolve must be a deterministic function of the system state, the measurement
and the random source. It must not modify the system it is given.
*/
type Interpretation interface {
	Name() string
	Resolve(system *QuantumSystem, m Measurement, rng *rand.Rand) (Resolution, error)
	Admits(fact Fact) bool
}

/*
sample draws an index from a discrete distribution by walking the cumulative
probabilities. The distribution is renormalized first, so rounding error in
the Born weights does not bias the last outcome.
*/
func sample(probs []float64, rng *rand.Rand) int {
	total := floats.Sum(probs)
	r := rng.Float64() * total

	last := 0
	cumulative := 0.0
	for i, p := range probs {
		if p <= 0 {
			continue
		}
		last = i
		cumulative += p
		if r < cumulative {
			return i
		}
	}
	return last
}

// branchWeights returns the Born weights of the branches and checks they sum to one.
func branchWeights(branches [][]complex128, tol float64) ([]float64, error) {
	probs := make([]float64, len(branches))
	for i, b := range branches {
		n := norm(b)
		probs[i] = n * n
	}
	if total := floats.Sum(probs); !withinTolerance(total, 1, tol) {
		return nil, fmt.Errorf("%w: outcome probabilities sum to %v", ErrNonNormalizedState, total)
	}
	return probs, nil
}

// Factory builds an interpretation from configuration.
type Factory func(cfg *Config) Interpretation

/*
Registry maps names to interpretation factories. Nothing is registered as a
side effect of importing the package: NewRegistry installs the built-in
theories explicitly, and callers add their own with Register.
*/
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.factories[CopenhagenName] = func(*Config) Interpretation {
		return NewCopenhagen()
	}
	r.factories[CollapseName] = func(cfg *Config) Interpretation {
		if cfg == nil {
			cfg = NewConfig()
		}
		return NewCollapse(cfg.Collapse)
	}
	return r
}

func canonicalName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, "_theory")
}

// Register adds a factory under a new name.
func (r *Registry) Register(name string, factory Factory) error {
	key := canonicalName(name)
	if key == "" || factory == nil {
		return fmt.Errorf("register interpretation %q: name and factory are required", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("interpretation %q is already registered", key)
	}
	r.factories[key] = factory
	return nil
}

/*
Lookup builds the named interpretation. Names are case-insensitive and may
carry a "_theory" suffix, so "copenhagen_theory" resolves to "copenhagen".
*/
func (r *Registry) Lookup(name string, cfg *Config) (Interpretation, error) {
	r.mu.RLock()
	factory, ok := r.factories[canonicalName(name)]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInterpretation, name)
	}
	return factory(cfg), nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
