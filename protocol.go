package qthought

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/theapemachine/errnie"
)

/*
Protocol is an ordered list of steps that agents carry out on a shared quantum
system. A Protocol is immutable: Append returns a new one, so the same value can
be run concurrently from many goroutines.
*/
type Protocol struct {
	name  string
	steps []ProtocolStep
}

func NewProtocol(name string, steps ...ProtocolStep) *Protocol {
	return &Protocol{
		name:  name,
		steps: append([]ProtocolStep(nil), steps...),
	}
}

// Append returns a new protocol with the steps added at the end.
func (p *Protocol) Append(steps ...ProtocolStep) *Protocol {
	next := make([]ProtocolStep, 0, len(p.steps)+len(steps))
	next = append(next, p.steps...)
	next = append(next, steps...)
	return &Protocol{name: p.name, steps: next}
}

func (p *Protocol) Name() string {
	return p.name
}

func (p *Protocol) Steps() []ProtocolStep {
	return append([]ProtocolStep(nil), p.steps...)
}

func (p *Protocol) Len() int {
	return len(p.steps)
}

// TraceEntry is the state of a run right after one step.
type TraceEntry struct {
	Index    int
	Step     ProtocolStep
	Snapshot Snapshot

	// Fact is the fact the step produced, nil for unitary steps.
	Fact *Fact
}

/*
Trace is the complete record of one protocol run: the initial state, then one
entry per executed step. A run that fails keeps the entries of every step that
completed before the failure.
*/
type Trace struct {
	ID             uuid.UUID
	Protocol       string
	Interpretation string
	Subsystems     []Subsystem
	Initial        Snapshot
	Entries        []TraceEntry
}

func (t *Trace) Len() int {
	return len(t.Entries)
}

// Final returns the state after the last executed step.
func (t *Trace) Final() Snapshot {
	if len(t.Entries) == 0 {
		return t.Initial
	}
	return t.Entries[len(t.Entries)-1].Snapshot
}

/*
Ledger replays the facts of the trace, in step order, into a fresh ledger.
Sequence numbers are assigned in that order, which is the order Run recorded
them in.
*/
func (t *Trace) Ledger() *FactLedger {
	ledger := NewFactLedger()
	for _, e := range t.Entries {
		if e.Fact != nil {
			ledger.Record(*e.Fact)
		}
	}
	return ledger
}

// Facts returns every recorded fact in step order.
func (t *Trace) Facts() []Fact {
	return t.Ledger().History(0)
}

/*
Run executes the protocol step by step on a clone of initial, which is never
modified. Measurements draw their outcomes from rng, so a fixed seed gives a
reproducible trace.

When a step fails, Run stops and returns the partial trace together with a
*StepError naming the failed step. Cancelling ctx stops the run between steps.
*/
func (p *Protocol) Run(
	ctx context.Context, initial *QuantumSystem, interp Interpretation, rng *rand.Rand,
) (*Trace, error) {
	if initial == nil {
		return nil, fmt.Errorf("%w: no initial system", ErrDimensionMismatch)
	}
	if interp == nil {
		return nil, fmt.Errorf("%w: none supplied", ErrUnsupportedInterpretation)
	}
	if rng == nil {
		return nil, ErrNoRandomSource
	}

	system := initial.Clone()
	trace := &Trace{
		ID:             uuid.New(),
		Protocol:       p.name,
		Interpretation: interp.Name(),
		Subsystems:     system.Subsystems(),
		Initial:        system.Snapshot(),
		Entries:        make([]TraceEntry, 0, len(p.steps)),
	}

	errnie.Info("Protocol.Run - %s (%d steps) under %s, trace %s", p.name, len(p.steps), interp.Name(), trace.ID)

	ledger := NewFactLedger()

	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return trace, err
		}

		fact, err := step.execute(i, system, interp, rng)
		if err != nil {
			errnie.Info("Protocol.Run - %s stopped at step %d (%s): %v", p.name, i, step.name, err)
			return trace, &StepError{Index: i, Step: step.name, Err: err}
		}

		entry := TraceEntry{Index: i, Step: step, Snapshot: system.Snapshot()}
		if fact != nil {
			recorded := ledger.Record(*fact)
			entry.Fact = &recorded
		}
		trace.Entries = append(trace.Entries, entry)
	}

	return trace, nil
}
