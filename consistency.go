package qthought

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Verdict is the overall outcome of a consistency check.
type Verdict int

const (
	Consistent Verdict = iota
	Inconsistent
)

func (v Verdict) String() string {
	if v == Inconsistent {
		return "inconsistent"
	}
	return "consistent"
}

// Rules under which two facts can contradict each other.
const (
	RuleDirect        = "direct-contradiction"
	RuleIncompatible  = "incompatible-observables"
	RuleSuperposition = "superposition-versus-definite"
)

// Contradiction names two facts that cannot both hold, and the rule they break.
type Contradiction struct {
	First  Fact
	Second Fact
	Rule   string
	Detail string
}

/*
Report is the result of checking the facts of one trace. Discarded lists the
facts the interpretation does not admit; they take no part in the check.
Disturbed counts fact pairs that were not compared because a measurement in
between could have changed the earlier fact. Agents counts the examined facts
of each agent.
*/
type Report struct {
	Interpretation string
	Verdict        Verdict
	Contradictions []Contradiction
	Examined       int
	Discarded      []Fact
	Disturbed      int
	Agents         map[string]int
}

func (r *Report) Consistent() bool {
	return r.Verdict == Consistent
}

var checkTolerance = math.Sqrt(DefaultTolerance)

/*
Check reasons about whether the facts recorded in a trace can all be true
together under the given interpretation.

Every definite fact becomes a projector on the full Hilbert space of the trace.
For a pair of facts, the later projector is carried back to the time of the
earlier one through the unitaries that ran in between, including the record
copies of measurements. Two facts contradict each other when their projectors
commute and have no common support, or when different agents hold definite
facts about observables that do not commute. A claim that a subject was in a
superposition contradicts another agent's definite fact about part of that
subject at the same event unless the superposition lies inside that fact's
eigenspace.

Facts are replayed from the trace's ledger and grouped by agent before the
interpretation decides which of them it admits.

Every step and every fact is lifted to a dense matrix over the full space of
the trace, so memory grows with the square of its dimension and each pair of
facts costs a few products cubic in it. Check suits thought experiments of up
to about seven qubits.

An inconsistent set of facts is a result, not an error. Check only fails on a
trace it cannot interpret.
*/
func Check(trace *Trace, interp Interpretation) (*Report, error) {
	if trace == nil {
		return nil, fmt.Errorf("%w: no trace", ErrMalformedTrace)
	}
	if interp == nil {
		return nil, fmt.Errorf("%w: none supplied", ErrUnsupportedInterpretation)
	}

	r, err := newReasoner(trace)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Interpretation: interp.Name(),
		Contradictions: []Contradiction{},
		Discarded:      []Fact{},
		Agents:         make(map[string]int),
	}

	byAgent := trace.Ledger().ByAgent()
	agents := make([]string, 0, len(byAgent))
	for agent := range byAgent {
		agents = append(agents, agent)
	}
	sort.Strings(agents)

	observations := make([]observation, 0, len(trace.Entries))
	for _, agent := range agents {
		for _, f := range byAgent[agent] {
			if !interp.Admits(f) {
				report.Discarded = append(report.Discarded, f)
				continue
			}

			o, err := r.observe(f)
			if err != nil {
				return nil, err
			}
			observations = append(observations, o)
			report.Agents[agent]++
		}
	}

	sort.SliceStable(report.Discarded, func(i, j int) bool {
		return report.Discarded[i].Sequence < report.Discarded[j].Sequence
	})

	sort.SliceStable(observations, func(i, j int) bool {
		if observations[i].event != observations[j].event {
			return observations[i].event < observations[j].event
		}
		return observations[i].fact.Sequence < observations[j].fact.Sequence
	})
	report.Examined = len(observations)

	for i := range observations {
		for j := i + 1; j < len(observations); j++ {
			r.compare(observations[i], observations[j], report)
		}
	}

	if len(report.Contradictions) > 0 {
		report.Verdict = Inconsistent
	}
	return report, nil
}

// observation is a fact lifted onto the full space of its trace.
type observation struct {
	fact  Fact
	event int

	// projector is set for outcome claims, with negation applied.
	projector *mat.CDense
}

/*
reasoner holds, for each step of a trace, the unitary part it applied and, for
measurements, the projectors it measured. Both live on the full space.
*/
type reasoner struct {
	layout    *layout
	evolution []*mat.CDense
	measured  [][]*mat.CDense
}

func newReasoner(trace *Trace) (*reasoner, error) {
	l, err := newLayout(trace.Subsystems)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTrace, err)
	}

	r := &reasoner{
		layout:    l,
		evolution: make([]*mat.CDense, len(trace.Entries)),
		measured:  make([][]*mat.CDense, len(trace.Entries)),
	}

	for i, entry := range trace.Entries {
		if entry.Index != i {
			return nil, fmt.Errorf("%w: entry %d has index %d", ErrMalformedTrace, i, entry.Index)
		}
		if err := r.addStep(i, entry.Step); err != nil {
			return nil, fmt.Errorf("%w: step %d (%s): %w", ErrMalformedTrace, i, entry.Step.name, err)
		}
	}
	return r, nil
}

func (r *reasoner) addStep(i int, step ProtocolStep) error {
	switch step.kind {
	case UnitaryStep:
		pos, err := r.layout.positions(step.targets)
		if err != nil {
			return err
		}
		if step.operator.Dim() != r.layout.dimOf(pos) {
			return ErrDimensionMismatch
		}
		k := r.layout.kernel(pos)
		r.evolution[i] = r.lift(func(v []complex128) []complex128 {
			return k.apply(v, step.operator)
		})

	case MeasurementStep:
		pos, err := r.layout.positions(step.targets)
		if err != nil {
			return err
		}
		if step.basis.Dim() != r.layout.dimOf(pos) {
			return ErrInvalidBasis
		}
		k := r.layout.kernel(pos)
		for _, vec := range step.basis.vectors {
			r.measured[i] = append(r.measured[i], r.lift(func(v []complex128) []complex128 {
				return k.project(v, vec)
			}))
		}

		if step.record != "" {
			rec, ok := r.layout.index[step.record]
			if !ok {
				return fmt.Errorf("%w: record %q", ErrUnknownSubsystem, step.record)
			}
			r.evolution[i] = r.lift(func(v []complex128) []complex128 {
				return r.layout.copyRecord(v, pos, rec, step.basis)
			})
		}
	}
	return nil
}

// lift builds the full-space matrix of a linear map from its action on basis states.
func (r *reasoner) lift(f func([]complex128) []complex128) *mat.CDense {
	n := r.layout.size
	m := mat.NewCDense(n, n, nil)
	e := make([]complex128, n)
	for j := 0; j < n; j++ {
		e[j] = 1
		for i, a := range f(e) {
			if a != 0 {
				m.Set(i, j, a)
			}
		}
		e[j] = 0
	}
	return m
}

func (r *reasoner) observe(f Fact) (observation, error) {
	o := observation{fact: f, event: f.EventTime()}
	p := f.Proposition

	if o.event < 0 || o.event >= len(r.evolution) {
		return o, fmt.Errorf("%w: fact %s refers to step %d of %d", ErrMalformedTrace, f, o.event, len(r.evolution))
	}

	pos, err := r.layout.positions(p.Subject)
	if err != nil {
		return o, fmt.Errorf("%w: fact %s: %w", ErrMalformedTrace, f, err)
	}
	dim := r.layout.dimOf(pos)

	switch p.Kind {
	case DefiniteOutcome:
		if p.Basis.Dim() != dim {
			return o, fmt.Errorf("%w: fact %s: %w", ErrMalformedTrace, f, ErrInvalidBasis)
		}
		if p.Outcome < 0 || p.Outcome >= dim {
			return o, fmt.Errorf("%w: fact %s: %w", ErrMalformedTrace, f, ErrInvalidProposition)
		}

		k := r.layout.kernel(pos)
		vec := p.Basis.vectors[p.Outcome]
		o.projector = r.lift(func(v []complex128) []complex128 {
			return k.project(v, vec)
		})
		if p.Negated {
			o.projector = complementProjector(o.projector)
		}

	case Superposition:
		if len(p.State) != dim {
			return o, fmt.Errorf("%w: fact %s: %w", ErrMalformedTrace, f, ErrDimensionMismatch)
		}
	}

	return o, nil
}

// compare checks one pair of facts, a no later than b, and records what it finds.
func (r *reasoner) compare(a, b observation, report *Report) {
	aSup := a.fact.Proposition.Kind == Superposition
	bSup := b.fact.Proposition.Kind == Superposition

	switch {
	case aSup && bSup:
		r.compareStates(a, b, report)
	case aSup:
		r.compareStateWithOutcome(a, b, a, b, report)
	case bSup:
		r.compareStateWithOutcome(b, a, a, b, report)
	default:
		r.compareOutcomes(a, b, report)
	}
}

func (r *reasoner) compareOutcomes(a, b observation, report *Report) {
	if r.disturbed(a, b) {
		report.Disturbed++
		return
	}

	later := r.transportBack(b.projector, a.event, b.event)

	if commute(a.projector, later, checkTolerance) {
		if isZeroMatrix(mulMatrix(a.projector, later), checkTolerance) {
			report.Contradictions = append(report.Contradictions, Contradiction{
				First:  a.fact,
				Second: b.fact,
				Rule:   RuleDirect,
				Detail: fmt.Sprintf("%q and %q have no common support", a.fact.Proposition, b.fact.Proposition),
			})
		}
		return
	}

	if a.fact.Agent != b.fact.Agent {
		report.Contradictions = append(report.Contradictions, Contradiction{
			First:  a.fact,
			Second: b.fact,
			Rule:   RuleIncompatible,
			Detail: fmt.Sprintf(
				"%s and %s hold definite values of observables that do not commute", a.fact.Agent, b.fact.Agent,
			),
		})
	}
}

// transportBack carries a projector at event to from, p ↦ U† p U.
func (r *reasoner) transportBack(p *mat.CDense, from, to int) *mat.CDense {
	out := p
	for s := to; s > from; s-- {
		if u := r.evolution[s]; u != nil {
			out = sandwich(u, out)
		}
	}
	return out
}

/*
disturbed reports whether a measurement strictly between the two events
measured an observable that does not commute with the earlier fact, carried
forward to that measurement.
*/
func (r *reasoner) disturbed(a, b observation) bool {
	p := a.projector
	for s := a.event + 1; s < b.event; s++ {
		if u := r.evolution[s]; u != nil {
			p = conjugate(u, p)
		}
		for _, q := range r.measured[s] {
			if !commute(p, q, checkTolerance) {
				return true
			}
		}
	}
	return false
}

func (r *reasoner) compareStates(a, b observation, report *Report) {
	if a.event != b.event || !sameNames(a.fact.Proposition.Subject, b.fact.Proposition.Subject) {
		return
	}

	overlap := cmplx.Abs(inner(a.fact.Proposition.State, b.fact.Proposition.State))
	if overlap >= 1-checkTolerance {
		return
	}

	report.Contradictions = append(report.Contradictions, Contradiction{
		First:  a.fact,
		Second: b.fact,
		Rule:   RuleDirect,
		Detail: fmt.Sprintf("claimed states of %v overlap by %.3g", a.fact.Proposition.Subject, overlap),
	})
}

/*
compareStateWithOutcome checks a superposition claim sup against an outcome
claim def. first and second keep the report in event order.
*/
func (r *reasoner) compareStateWithOutcome(sup, def, first, second observation, report *Report) {
	if sup.event != def.event || sup.fact.Agent == def.fact.Agent {
		return
	}

	state := sup.fact.Proposition
	claim := def.fact.Proposition

	subs := make([]Subsystem, len(state.Subject))
	for i, name := range state.Subject {
		subs[i] = r.layout.subsystems[r.layout.index[name]]
	}
	local, err := newLayout(subs)
	if err != nil {
		return
	}
	pos, err := local.positions(claim.Subject)
	if err != nil {
		// The outcome claim is not about a part of the superposed subject.
		return
	}

	branch := local.kernel(pos).project(state.State, claim.Basis.vectors[claim.Outcome])
	weight := norm(branch)
	weight *= weight
	if claim.Negated {
		weight = 1 - weight
	}

	if weight >= 1-checkTolerance {
		return
	}

	report.Contradictions = append(report.Contradictions, Contradiction{
		First:  first.fact,
		Second: second.fact,
		Rule:   RuleSuperposition,
		Detail: fmt.Sprintf("%s claims %s, which holds with weight %.3g in the claimed state", def.fact.Agent, claim, weight),
	})
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
