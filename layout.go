package qthought

import (
	"fmt"
	"math/cmplx"
)

// Subsystem is a named tensor factor of a quantum system.
type Subsystem struct {
	Name string `yaml:"name"`
	Dim  int    `yaml:"dim"`
}

// Qubit returns a two-level subsystem.
func Qubit(name string) Subsystem {
	return Subsystem{Name: name, Dim: 2}
}

/*
layout indexes the computational basis of a tensor product of subsystems.
Subsystem 0 is the most significant digit of the mixed-radix index.
*/
type layout struct {
	subsystems []Subsystem
	strides    []int
	index      map[string]int
	size       int
}

func newLayout(subsystems []Subsystem) (*layout, error) {
	if len(subsystems) == 0 {
		return nil, fmt.Errorf("%w: a system needs at least one subsystem", ErrDimensionMismatch)
	}

	l := &layout{
		subsystems: make([]Subsystem, len(subsystems)),
		strides:    make([]int, len(subsystems)),
		index:      make(map[string]int, len(subsystems)),
		size:       1,
	}
	copy(l.subsystems, subsystems)

	for i := len(subsystems) - 1; i >= 0; i-- {
		s := subsystems[i]
		if s.Name == "" {
			return nil, fmt.Errorf("%w: subsystem %d has no name", ErrInvalidTargets, i)
		}
		if s.Dim < 1 {
			return nil, fmt.Errorf("%w: subsystem %s has dimension %d", ErrDimensionMismatch, s.Name, s.Dim)
		}
		if _, ok := l.index[s.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrSubsystemCollision, s.Name)
		}
		l.index[s.Name] = i
		l.strides[i] = l.size
		l.size *= s.Dim
	}

	return l, nil
}

/*
positions resolves target names to subsystem positions, preserving order.
*/
func (l *layout) positions(targets []string) ([]int, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no targets", ErrInvalidTargets)
	}

	seen := make(map[string]bool, len(targets))
	pos := make([]int, len(targets))
	for i, name := range targets {
		p, ok := l.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSubsystem, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q listed twice", ErrInvalidTargets, name)
		}
		seen[name] = true
		pos[i] = p
	}
	return pos, nil
}

func (l *layout) dimOf(pos []int) int {
	d := 1
	for _, p := range pos {
		d *= l.subsystems[p].Dim
	}
	return d
}

/*
offsets returns, for every index t of the target space (first target most
significant), the offset it contributes to a full index.
*/
func (l *layout) offsets(pos []int) []int {
	dT := l.dimOf(pos)
	offs := make([]int, dT)
	for t := 0; t < dT; t++ {
		rem := t
		off := 0
		for k := len(pos) - 1; k >= 0; k-- {
			d := l.subsystems[pos[k]].Dim
			off += (rem % d) * l.strides[pos[k]]
			rem /= d
		}
		offs[t] = off
	}
	return offs
}

// bases returns every full index whose target digits are all zero.
func (l *layout) bases(pos []int) []int {
	out := make([]int, 0, l.size/l.dimOf(pos))
	for i := 0; i < l.size; i++ {
		zero := true
		for _, p := range pos {
			if l.digit(i, p) != 0 {
				zero = false
				break
			}
		}
		if zero {
			out = append(out, i)
		}
	}
	return out
}

func (l *layout) digit(i, p int) int {
	return (i / l.strides[p]) % l.subsystems[p].Dim
}

/*
kernel binds a layout to a set of target positions and performs the local
linear algebra the system, the interpretations and the reasoner share.
*/
type kernel struct {
	bases   []int
	offsets []int
}

func (l *layout) kernel(pos []int) kernel {
	return kernel{bases: l.bases(pos), offsets: l.offsets(pos)}
}

// apply returns (M on targets ⊗ I) |state⟩ for an operator M on the target space.
func (k kernel) apply(state []complex128, op Operator) []complex128 {
	out := make([]complex128, len(state))
	buf := make([]complex128, len(k.offsets))
	for _, b := range k.bases {
		for t, off := range k.offsets {
			buf[t] = state[b+off]
		}
		for r, off := range k.offsets {
			var acc complex128
			for c := range k.offsets {
				acc += op.m.At(r, c) * buf[c]
			}
			out[b+off] = acc
		}
	}
	return out
}

// project returns (|v⟩⟨v| on targets ⊗ I) |state⟩, unnormalized.
func (k kernel) project(state, v []complex128) []complex128 {
	out := make([]complex128, len(state))
	for _, b := range k.bases {
		var c complex128
		for t, off := range k.offsets {
			c += cmplx.Conj(v[t]) * state[b+off]
		}
		if c == 0 {
			continue
		}
		for t, off := range k.offsets {
			out[b+off] = v[t] * c
		}
	}
	return out
}

// shift moves the record register by `by` steps: |r⟩ ↦ |r+by mod d⟩.
func (l *layout) shift(state []complex128, record, by int) []complex128 {
	d := l.subsystems[record].Dim
	stride := l.strides[record]
	out := make([]complex128, len(state))
	for i, a := range state {
		if a == 0 {
			continue
		}
		r := l.digit(i, record)
		j := i + (((r+by)%d)-r)*stride
		out[j] = a
	}
	return out
}

/*
copyRecord applies the controlled shift Σₖ Pₖ ⊗ Xᵏ: the outcome index of basis
on the targets at pos is added to the record register.
*/
func (l *layout) copyRecord(state []complex128, pos []int, record int, basis Basis) []complex128 {
	k := l.kernel(pos)
	out := make([]complex128, len(state))
	for i := 0; i < basis.Dim(); i++ {
		branch := l.shift(k.project(state, basis.vectors[i]), record, i)
		for j, a := range branch {
			out[j] += a
		}
	}
	return out
}
