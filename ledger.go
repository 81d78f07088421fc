package qthought

import (
	"sync"
)

/*
FactLedger is the append-only record of every fact asserted during a protocol
run. Facts are numbered in the order they were recorded, so anything that joins
later can replay the complete history in the original order.
*/
type FactLedger struct {
	mu    sync.RWMutex
	facts []Fact
}

// NewFactLedger returns an empty ledger.
func NewFactLedger() *FactLedger {
	return &FactLedger{
		facts: make([]Fact, 0),
	}
}

/*
Record appends a fact, assigns its sequence number and returns a copy of what
was stored. Later changes to the caller's slices do not reach the ledger.
*/
func (l *FactLedger) Record(f Fact) Fact {
	l.mu.Lock()
	defer l.mu.Unlock()

	f.Proposition = f.Proposition.clone()
	f.Sequence = uint64(len(l.facts))
	l.facts = append(l.facts, f)

	out := f
	out.Proposition = f.Proposition.clone()
	return out
}

// History returns copies of all facts with a sequence number of at least since.
func (l *FactLedger) History(since uint64) []Fact {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if since >= uint64(len(l.facts)) {
		return []Fact{}
	}

	out := make([]Fact, 0, uint64(len(l.facts))-since)
	for _, f := range l.facts[since:] {
		f.Proposition = f.Proposition.clone()
		out = append(out, f)
	}
	return out
}

// ByAgent groups the history by asserting agent, keeping the recorded order.
func (l *FactLedger) ByAgent() map[string][]Fact {
	grouped := make(map[string][]Fact)
	for _, f := range l.History(0) {
		grouped[f.Agent] = append(grouped[f.Agent], f)
	}
	return grouped
}

// Len returns the number of recorded facts.
func (l *FactLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.facts)
}
