package qthought

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/theapemachine/errnie"
	"gopkg.in/yaml.v3"
)

// Amplitude is a complex amplitude as written in scenario files.
type Amplitude struct {
	Re float64 `yaml:"re"`
	Im float64 `yaml:"im"`
}

/*
Scenario is a declarative thought experiment: the subsystems, an optional
initial state, and the steps the agents take. Each step sets exactly one of
Gate, Measure or Assert.
*/
type Scenario struct {
	Name           string      `yaml:"name"`
	Interpretation string      `yaml:"interpretation"`
	Subsystems     []Subsystem `yaml:"subsystems"`
	Initial        []Amplitude `yaml:"initial"`
	Steps          []StepSpec  `yaml:"steps"`
}

type StepSpec struct {
	Name    string    `yaml:"name"`
	Agent   string    `yaml:"agent"`
	Targets []string  `yaml:"targets"`
	Gate    string    `yaml:"gate"`
	Params  []float64 `yaml:"params"`
	Measure string    `yaml:"measure"`
	Record  string    `yaml:"record"`

	Assert *AssertionSpec `yaml:"assert"`
}

// AssertionSpec is a claim; a non-empty State makes it a superposition claim.
type AssertionSpec struct {
	Subject []string    `yaml:"subject"`
	Basis   string      `yaml:"basis"`
	Outcome int         `yaml:"outcome"`
	Negated bool        `yaml:"negated"`
	State   []Amplitude `yaml:"state"`
	About   *int        `yaml:"about"`
}

// LoadScenario decodes a scenario. Unknown fields are rejected.
func LoadScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	s := &Scenario{}
	if err := dec.Decode(s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("decode scenario: empty document")
		}
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return s, nil
}

func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadScenario(f)
}

/*
Build turns the scenario into a runnable system, protocol and interpretation.
The scenario's interpretation wins over cfg.Interpretation; cfg also supplies
the tolerance and the collapse parameters.
*/
func (s *Scenario) Build(reg *Registry, cfg *Config) (*QuantumSystem, *Protocol, Interpretation, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if reg == nil {
		reg = NewRegistry()
	}

	name := s.Interpretation
	if name == "" {
		name = cfg.Interpretation
	}
	interp, err := reg.Lookup(name, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	system, err := s.system()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	system.SetTolerance(cfg.tolerance())

	dims := make(map[string]int, len(s.Subsystems))
	for _, sub := range s.Subsystems {
		dims[sub.Name] = sub.Dim
	}

	steps := make([]ProtocolStep, 0, len(s.Steps))
	for i, spec := range s.Steps {
		step, err := spec.build(i, dims)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		steps = append(steps, step)
	}

	errnie.Info(
		"Scenario.Build - %s: %d subsystems, %d steps, interpretation %s",
		s.Name, len(s.Subsystems), len(steps), interp.Name(),
	)

	return system, NewProtocol(s.Name, steps...), interp, nil
}

func (s *Scenario) system() (*QuantumSystem, error) {
	if len(s.Initial) == 0 {
		return NewQuantumSystem(s.Subsystems...)
	}
	return NewQuantumSystemFromState(s.Subsystems, amplitudes(s.Initial))
}

func amplitudes(in []Amplitude) []complex128 {
	out := make([]complex128, len(in))
	for i, a := range in {
		out[i] = complex(a.Re, a.Im)
	}
	return out
}

func (spec StepSpec) build(index int, dims map[string]int) (ProtocolStep, error) {
	name := spec.Name
	if name == "" {
		name = fmt.Sprintf("step-%d", index)
	}

	set := 0
	for _, present := range []bool{spec.Gate != "", spec.Measure != "", spec.Assert != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return ProtocolStep{}, fmt.Errorf("step %q: exactly one of gate, measure or assert is required", name)
	}
	if stray := spec.misplaced(); len(stray) > 0 {
		return ProtocolStep{}, fmt.Errorf(
			"%w: step %q does not take %s", ErrInvalidTargets, name, strings.Join(stray, ", "),
		)
	}

	switch {
	case spec.Gate != "":
		op, err := GateByName(spec.Gate, spec.Params...)
		if err != nil {
			return ProtocolStep{}, fmt.Errorf("step %q: %w", name, err)
		}
		var opts []StepOption
		if spec.Agent != "" {
			opts = append(opts, WithAgent(spec.Agent))
		}
		return NewUnitaryStep(name, op, spec.Targets, opts...)

	case spec.Measure != "":
		dim, err := dimOf(dims, spec.Targets)
		if err != nil {
			return ProtocolStep{}, fmt.Errorf("step %q: %w", name, err)
		}
		basis, err := BasisByName(spec.Measure, dim)
		if err != nil {
			return ProtocolStep{}, fmt.Errorf("step %q: %w", name, err)
		}
		var opts []StepOption
		if spec.Record != "" {
			opts = append(opts, WithRecord(spec.Record))
		}
		return NewMeasurementStep(name, spec.Agent, basis, spec.Targets, opts...)
	}

	prop, err := spec.Assert.proposition(dims)
	if err != nil {
		return ProtocolStep{}, fmt.Errorf("step %q: %w", name, err)
	}
	return NewAssertionStep(name, spec.Agent, prop)
}

// misplaced lists the fields that are set but have no meaning for the step's kind.
func (spec StepSpec) misplaced() []string {
	var stray []string
	if spec.Record != "" && spec.Measure == "" {
		stray = append(stray, "record")
	}
	if len(spec.Params) > 0 && spec.Gate == "" {
		stray = append(stray, "params")
	}
	if len(spec.Targets) > 0 && spec.Assert != nil {
		stray = append(stray, "targets")
	}
	return stray
}

func (a *AssertionSpec) proposition(dims map[string]int) (Proposition, error) {
	about := -1
	if a.About != nil {
		about = *a.About
	}

	if len(a.State) > 0 {
		return InSuperposition(amplitudes(a.State), about, a.Subject...), nil
	}

	dim, err := dimOf(dims, a.Subject)
	if err != nil {
		return Proposition{}, err
	}
	basis, err := BasisByName(a.Basis, dim)
	if err != nil {
		return Proposition{}, err
	}

	prop := Definite(basis, a.Outcome, a.Subject...)
	prop.About = about
	if a.Negated {
		prop = prop.Negate()
	}
	return prop, nil
}

func dimOf(dims map[string]int, names []string) (int, error) {
	if len(names) == 0 {
		return 0, fmt.Errorf("%w: no targets", ErrInvalidTargets)
	}
	d := 1
	for _, n := range names {
		nd, ok := dims[n]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownSubsystem, n)
		}
		d *= nd
	}
	return d, nil
}
