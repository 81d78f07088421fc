package qthought

import (
	"fmt"
	"math"
	"strings"
)

// PropositionKind distinguishes what an agent claims about a subject.
type PropositionKind int

const (
	// DefiniteOutcome claims a measurement of the subject in a basis had a
	// definite outcome (or, when negated, did not have it).
	DefiniteOutcome PropositionKind = iota

	// Superposition claims the subject was in a given pure state.
	Superposition
)

func (k PropositionKind) String() string {
	switch k {
	case DefiniteOutcome:
		return "definite"
	case Superposition:
		return "superposition"
	default:
		return fmt.Sprintf("PropositionKind(%d)", int(k))
	}
}

/*
Proposition is the content of a fact: a claim about a subject, made of one or
more subsystems, at some event of the protocol.
*/
type Proposition struct {
	Kind    PropositionKind
	Subject []string

	// Basis and Outcome are set for DefiniteOutcome.
	Basis   Basis
	Outcome int
	Negated bool

	// State is set for Superposition, over Subject in the listed order.
	State []complex128

	// About is the index of the step the claim refers to, or -1 for the
	// step at which the claim is recorded.
	About int
}

// Definite builds the claim "measuring subject in basis gave outcome".
func Definite(basis Basis, outcome int, subject ...string) Proposition {
	return Proposition{
		Kind:    DefiniteOutcome,
		Subject: append([]string(nil), subject...),
		Basis:   basis,
		Outcome: outcome,
		About:   -1,
	}
}

/*
InSuperposition builds the claim "subject was in the pure state after step
about". Pass -1 to refer to the step that records the claim.
*/
func InSuperposition(state []complex128, about int, subject ...string) Proposition {
	return Proposition{
		Kind:    Superposition,
		Subject: append([]string(nil), subject...),
		State:   cloneVector(state),
		About:   about,
	}
}

// Negate returns the negated claim. Only outcome claims can be negated.
func (p Proposition) Negate() Proposition {
	next := p.clone()
	next.Negated = !p.Negated
	return next
}

func (p Proposition) clone() Proposition {
	next := p
	next.Subject = append([]string(nil), p.Subject...)
	next.State = cloneVector(p.State)
	return next
}

func (p Proposition) validate() error {
	if len(p.Subject) == 0 {
		return fmt.Errorf("%w: no subject", ErrInvalidProposition)
	}

	seen := make(map[string]bool, len(p.Subject))
	for _, s := range p.Subject {
		if seen[s] {
			return fmt.Errorf("%w: subject %q listed twice", ErrInvalidProposition, s)
		}
		seen[s] = true
	}

	switch p.Kind {
	case DefiniteOutcome:
		if p.Basis.IsZero() {
			return fmt.Errorf("%w: outcome claim without a basis", ErrInvalidProposition)
		}
		if p.Outcome < 0 || p.Outcome >= p.Basis.Dim() {
			return fmt.Errorf("%w: outcome %d outside basis %s", ErrInvalidProposition, p.Outcome, p.Basis.Name())
		}
	case Superposition:
		if p.Negated {
			return fmt.Errorf("%w: superposition claims cannot be negated", ErrInvalidProposition)
		}
		if n := norm(p.State); len(p.State) == 0 || !withinTolerance(n, 1, math.Sqrt(DefaultTolerance)) {
			return fmt.Errorf("%w: claimed state has norm %v", ErrInvalidProposition, n)
		}
	default:
		return fmt.Errorf("%w: unknown kind %v", ErrInvalidProposition, p.Kind)
	}

	return nil
}

func (p Proposition) String() string {
	subject := strings.Join(p.Subject, ",")
	switch p.Kind {
	case DefiniteOutcome:
		op := "="
		if p.Negated {
			op = "≠"
		}
		return fmt.Sprintf("%s[%s] %s %s", subject, p.Basis.Name(), op, p.Basis.Label(p.Outcome))
	case Superposition:
		return fmt.Sprintf("%s in %v", subject, p.State)
	default:
		return subject
	}
}

/*
Fact is an agent's recorded assertion at a point of the protocol. Facts are
values; the ledger hands out copies.
*/
type Fact struct {
	Sequence    uint64
	Agent       string
	Time        int
	Step        string
	Proposition Proposition

	// Probability is the Born probability of a measured outcome, and 1 for
	// inferred claims.
	Probability float64
	Residual    float64
}

// EventTime returns the step index the fact is about.
func (f Fact) EventTime() int {
	if f.Proposition.About >= 0 {
		return f.Proposition.About
	}
	return f.Time
}

func (f Fact) String() string {
	return fmt.Sprintf("#%d %s@%d: %s", f.Sequence, f.Agent, f.EventTime(), f.Proposition)
}
