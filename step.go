package qthought

import (
	"fmt"
	"math/rand/v2"
)

// StepKind is the kind of operation a protocol step performs.
type StepKind int

const (
	UnitaryStep StepKind = iota
	MeasurementStep
	AssertionStep
)

func (k StepKind) String() string {
	switch k {
	case UnitaryStep:
		return "unitary"
	case MeasurementStep:
		return "measurement"
	case AssertionStep:
		return "assertion"
	default:
		return fmt.Sprintf("StepKind(%d)", int(k))
	}
}

/*
ProtocolStep is one operation of a protocol: a unitary gate, a measurement
performed by an agent, or an agent's classical assertion. Steps are immutable
once constructed; accessors return copies.
*/
type ProtocolStep struct {
	name        string
	kind        StepKind
	agent       string
	targets     []string
	operator    Operator
	basis       Basis
	record      string
	proposition Proposition
}

// StepOption configures optional parts of a step at construction time.
type StepOption func(*ProtocolStep)

// WithAgent names the agent performing a unitary step, e.g. Wigner undoing
// his friend's measurement.
func WithAgent(agent string) StepOption {
	return func(s *ProtocolStep) {
		s.agent = agent
	}
}

// WithRecord makes a measurement write its outcome into a record subsystem.
func WithRecord(subsystem string) StepOption {
	return func(s *ProtocolStep) {
		s.record = subsystem
	}
}

// NewUnitaryStep builds a step applying op to the targets.
func NewUnitaryStep(name string, op Operator, targets []string, opts ...StepOption) (ProtocolStep, error) {
	s := ProtocolStep{name: name, kind: UnitaryStep, targets: append([]string(nil), targets...), operator: op}
	for _, opt := range opts {
		opt(&s)
	}

	if err := checkTargets(s.targets); err != nil {
		return ProtocolStep{}, fmt.Errorf("step %q: %w", name, err)
	}
	if !op.IsUnitary(DefaultTolerance) {
		return ProtocolStep{}, fmt.Errorf("step %q: %w", name, ErrNotUnitary)
	}
	if s.record != "" {
		return ProtocolStep{}, fmt.Errorf("step %q: %w: only measurements have a record", name, ErrInvalidTargets)
	}
	return s, nil
}

// NewMeasurementStep builds a step in which agent measures the targets in basis.
func NewMeasurementStep(name, agent string, basis Basis, targets []string, opts ...StepOption) (ProtocolStep, error) {
	s := ProtocolStep{
		name:    name,
		kind:    MeasurementStep,
		agent:   agent,
		targets: append([]string(nil), targets...),
		basis:   basis,
	}
	for _, opt := range opts {
		opt(&s)
	}

	if s.agent == "" {
		return ProtocolStep{}, fmt.Errorf("step %q: %w: a measurement needs an agent", name, ErrInvalidProposition)
	}
	if err := checkTargets(s.targets); err != nil {
		return ProtocolStep{}, fmt.Errorf("step %q: %w", name, err)
	}
	if basis.IsZero() {
		return ProtocolStep{}, fmt.Errorf("step %q: %w: no basis", name, ErrInvalidBasis)
	}
	for _, t := range s.targets {
		if t == s.record {
			return ProtocolStep{}, fmt.Errorf("step %q: %w: record %q is also measured", name, ErrInvalidTargets, t)
		}
	}
	return s, nil
}

// NewAssertionStep builds a step in which agent asserts a proposition.
func NewAssertionStep(name, agent string, prop Proposition, opts ...StepOption) (ProtocolStep, error) {
	s := ProtocolStep{
		name:        name,
		kind:        AssertionStep,
		agent:       agent,
		proposition: prop.clone(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	if s.agent == "" {
		return ProtocolStep{}, fmt.Errorf("step %q: %w: an assertion needs an agent", name, ErrInvalidProposition)
	}
	if err := prop.validate(); err != nil {
		return ProtocolStep{}, fmt.Errorf("step %q: %w", name, err)
	}
	if s.record != "" {
		return ProtocolStep{}, fmt.Errorf("step %q: %w: only measurements have a record", name, ErrInvalidTargets)
	}
	return s, nil
}

func checkTargets(targets []string) error {
	if len(targets) == 0 {
		return fmt.Errorf("%w: no targets", ErrInvalidTargets)
	}
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		if t == "" {
			return fmt.Errorf("%w: empty target name", ErrInvalidTargets)
		}
		if seen[t] {
			return fmt.Errorf("%w: %q listed twice", ErrInvalidTargets, t)
		}
		seen[t] = true
	}
	return nil
}

func (s ProtocolStep) Name() string {
	return s.name
}

func (s ProtocolStep) Kind() StepKind {
	return s.kind
}

func (s ProtocolStep) Agent() string {
	return s.agent
}

func (s ProtocolStep) Targets() []string {
	return append([]string(nil), s.targets...)
}

func (s ProtocolStep) Operator() Operator {
	return s.operator
}

func (s ProtocolStep) Basis() Basis {
	return s.basis
}

func (s ProtocolStep) Record() string {
	return s.record
}

func (s ProtocolStep) Proposition() Proposition {
	return s.proposition.clone()
}

func (s ProtocolStep) measurement() Measurement {
	return Measurement{
		Basis:   s.basis,
		Targets: s.Targets(),
		Agent:   s.agent,
		Record:  s.record,
	}
}

/*
execute performs the step as step number index of a run, mutating system in
place. Measurements and assertions return the fact they produce.
*/
func (s ProtocolStep) execute(index int, system *QuantumSystem, interp Interpretation, rng *rand.Rand) (*Fact, error) {
	switch s.kind {
	case UnitaryStep:
		return nil, system.Apply(s.operator, s.targets...)

	case MeasurementStep:
		res, err := system.Measure(s.measurement(), interp, rng)
		if err != nil {
			return nil, err
		}
		return &Fact{
			Agent:       s.agent,
			Time:        index,
			Step:        s.name,
			Proposition: Definite(s.basis, res.Outcome, s.targets...),
			Probability: res.Probability,
			Residual:    res.Residual,
		}, nil

	case AssertionStep:
		if err := s.checkAssertion(index, system); err != nil {
			return nil, err
		}
		return &Fact{
			Agent:       s.agent,
			Time:        index,
			Step:        s.name,
			Proposition: s.proposition.clone(),
			Probability: 1,
		}, nil
	}

	return nil, fmt.Errorf("unknown step kind %v", s.kind)
}

func (s ProtocolStep) checkAssertion(index int, system *QuantumSystem) error {
	p := s.proposition
	pos, err := system.layout.positions(p.Subject)
	if err != nil {
		return err
	}

	dim := system.layout.dimOf(pos)
	switch p.Kind {
	case DefiniteOutcome:
		if p.Basis.Dim() != dim {
			return fmt.Errorf("%w: %d dimensional basis for subject %v of dimension %d", ErrInvalidBasis, p.Basis.Dim(), p.Subject, dim)
		}
	case Superposition:
		if len(p.State) != dim {
			return fmt.Errorf("%w: %d amplitudes for subject %v of dimension %d", ErrDimensionMismatch, len(p.State), p.Subject, dim)
		}
	}

	if p.About > index {
		return fmt.Errorf("%w: claim about step %d recorded at step %d", ErrInvalidProposition, p.About, index)
	}
	return nil
}
