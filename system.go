package qthought

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

/*
QuantumSystem holds a normalized state vector over a tensor product of named
subsystems. Every exported operation leaves the state normalized, or returns an
error and leaves the state as it was.

A QuantumSystem is not safe for concurrent use. Independent runs each work on
their own Clone.
*/
type QuantumSystem struct {
	layout    *layout
	state     []complex128
	tolerance float64
}

// NewQuantumSystem creates a system in the all-zero product state |0…0⟩.
func NewQuantumSystem(subsystems ...Subsystem) (*QuantumSystem, error) {
	l, err := newLayout(subsystems)
	if err != nil {
		return nil, err
	}

	state := make([]complex128, l.size)
	state[0] = 1

	return &QuantumSystem{layout: l, state: state, tolerance: DefaultTolerance}, nil
}

/*
NewQuantumSystemFromState creates a system with the given amplitudes, indexed
with the first subsystem as the most significant factor.
*/
func NewQuantumSystemFromState(subsystems []Subsystem, amplitudes []complex128) (*QuantumSystem, error) {
	l, err := newLayout(subsystems)
	if err != nil {
		return nil, err
	}

	if len(amplitudes) != l.size {
		return nil, fmt.Errorf(
			"%w: %d amplitudes for a %d dimensional system", ErrDimensionMismatch, len(amplitudes), l.size,
		)
	}

	qs := &QuantumSystem{layout: l, state: cloneVector(amplitudes), tolerance: DefaultTolerance}
	if err := qs.checkNormalized(); err != nil {
		return nil, err
	}
	return qs, nil
}

// SetTolerance sets the numeric tolerance for the normalization invariant.
func (qs *QuantumSystem) SetTolerance(tol float64) {
	if tol > 0 {
		qs.tolerance = tol
	}
}

// Tolerance returns the tolerance of the normalization invariant.
func (qs *QuantumSystem) Tolerance() float64 {
	return qs.tolerance
}

// Dim returns the dimension of the full Hilbert space.
func (qs *QuantumSystem) Dim() int {
	return qs.layout.size
}

// Subsystems returns a copy of the subsystems, most significant first.
func (qs *QuantumSystem) Subsystems() []Subsystem {
	out := make([]Subsystem, len(qs.layout.subsystems))
	copy(out, qs.layout.subsystems)
	return out
}

// Has reports whether a subsystem of that name exists.
func (qs *QuantumSystem) Has(name string) bool {
	_, ok := qs.layout.index[name]
	return ok
}

// Amplitudes returns a copy of the state vector.
func (qs *QuantumSystem) Amplitudes() []complex128 {
	return cloneVector(qs.state)
}

// Norm returns the norm of the state, 1 within tolerance.
func (qs *QuantumSystem) Norm() float64 {
	return norm(qs.state)
}

// Clone returns an independent copy sharing only the immutable layout.
func (qs *QuantumSystem) Clone() *QuantumSystem {
	return &QuantumSystem{
		layout:    qs.layout,
		state:     cloneVector(qs.state),
		tolerance: qs.tolerance,
	}
}

// Snapshot returns an immutable copy of the current state.
func (qs *QuantumSystem) Snapshot() Snapshot {
	return Snapshot{
		Subsystems: qs.Subsystems(),
		Amplitudes: qs.Amplitudes(),
	}
}

/*
Apply applies a unitary operator to the targets, in the order given. The
operator dimension must equal the product of the target dimensions.
*/
func (qs *QuantumSystem) Apply(op Operator, targets ...string) error {
	pos, err := qs.layout.positions(targets)
	if err != nil {
		return err
	}

	if want := qs.layout.dimOf(pos); op.Dim() != want {
		return fmt.Errorf(
			"%w: %d dimensional operator on targets %v of dimension %d", ErrDimensionMismatch, op.Dim(), targets, want,
		)
	}

	if !op.IsUnitary(qs.tolerance) {
		return ErrNotUnitary
	}

	next := qs.layout.kernel(pos).apply(qs.state, op)
	if n := norm(next); !withinTolerance(n, 1, qs.tolerance) {
		return fmt.Errorf("%w: norm %v after applying operator", ErrNonNormalizedState, n)
	}

	qs.state = next
	return nil
}

/*
Branches returns the unnormalized components Pₖ|ψ⟩ of the state, one per
outcome of the basis on the targets. They sum to |ψ⟩.
*/
func (qs *QuantumSystem) Branches(basis Basis, targets ...string) ([][]complex128, error) {
	pos, err := qs.basisPositions(basis, targets)
	if err != nil {
		return nil, err
	}

	k := qs.layout.kernel(pos)
	out := make([][]complex128, basis.Dim())
	for i := range out {
		out[i] = k.project(qs.state, basis.vectors[i])
	}
	return out, nil
}

// Probabilities returns the Born probabilities of each outcome of the basis.
func (qs *QuantumSystem) Probabilities(basis Basis, targets ...string) ([]float64, error) {
	branches, err := qs.Branches(basis, targets...)
	if err != nil {
		return nil, err
	}

	probs := make([]float64, len(branches))
	for i, b := range branches {
		n := norm(b)
		probs[i] = n * n
	}
	return probs, nil
}

/*
Measure measures the targets in the given basis. When the measurement names a
record subsystem, the outcome index is first written into that register by the
controlled shift Σₖ Pₖ ⊗ Xᵏ. The interpretation then resolves the outcome and
the post-measurement state, which replaces the current one.
*/
func (qs *QuantumSystem) Measure(m Measurement, interp Interpretation, rng *rand.Rand) (Resolution, error) {
	if interp == nil {
		return Resolution{}, fmt.Errorf("%w: none supplied", ErrUnsupportedInterpretation)
	}
	if rng == nil {
		return Resolution{}, ErrNoRandomSource
	}

	pos, err := qs.basisPositions(m.Basis, m.Targets)
	if err != nil {
		return Resolution{}, err
	}

	work := qs.Clone()
	if m.Record != "" {
		rec, ok := qs.layout.index[m.Record]
		if !ok {
			return Resolution{}, fmt.Errorf("%w: record %q", ErrUnknownSubsystem, m.Record)
		}
		for _, p := range pos {
			if p == rec {
				return Resolution{}, fmt.Errorf("%w: record %q is also measured", ErrInvalidTargets, m.Record)
			}
		}
		work.state = qs.layout.copyRecord(qs.state, pos, rec, m.Basis)
	}

	res, err := interp.Resolve(work, m, rng)
	if err != nil {
		return Resolution{}, err
	}

	if len(res.Post) != len(qs.state) {
		return Resolution{}, fmt.Errorf(
			"%w: %s returned %d amplitudes for a %d dimensional system",
			ErrDimensionMismatch, interp.Name(), len(res.Post), len(qs.state),
		)
	}
	if n := norm(res.Post); !withinTolerance(n, 1, qs.tolerance) {
		return Resolution{}, fmt.Errorf("%w: norm %v after %s measurement", ErrNonNormalizedState, n, interp.Name())
	}

	qs.state = cloneVector(res.Post)
	return res, nil
}

/*
TensorWith returns the composite system qs ⊗ other. Neither operand is
modified. Subsystem names must be disjoint.
*/
func (qs *QuantumSystem) TensorWith(other *QuantumSystem) (*QuantumSystem, error) {
	subs := append(qs.Subsystems(), other.Subsystems()...)
	l, err := newLayout(subs)
	if err != nil {
		return nil, err
	}

	tol := qs.tolerance
	if other.tolerance > tol {
		tol = other.tolerance
	}

	return &QuantumSystem{
		layout:    l,
		state:     kronVector(qs.state, other.state),
		tolerance: tol,
	}, nil
}

/*
ReducedDensity traces out every subsystem except the targets and returns the
reduced density matrix, indexed in target order.
*/
func (qs *QuantumSystem) ReducedDensity(targets ...string) (*mat.CDense, error) {
	pos, err := qs.layout.positions(targets)
	if err != nil {
		return nil, err
	}

	k := qs.layout.kernel(pos)
	d := len(k.offsets)
	rho := mat.NewCDense(d, d, nil)
	x := make([]complex128, d)
	for _, b := range k.bases {
		for i, o := range k.offsets {
			x[i] = qs.state[b+o]
		}
		addOuter(rho, x)
	}
	return rho, nil
}

func (qs *QuantumSystem) basisPositions(basis Basis, targets []string) ([]int, error) {
	pos, err := qs.layout.positions(targets)
	if err != nil {
		return nil, err
	}
	if want := qs.layout.dimOf(pos); basis.Dim() != want {
		return nil, fmt.Errorf(
			"%w: %d dimensional basis on targets %v of dimension %d", ErrInvalidBasis, basis.Dim(), targets, want,
		)
	}
	return pos, nil
}

func (qs *QuantumSystem) checkNormalized() error {
	if n := norm(qs.state); !withinTolerance(n, 1, qs.tolerance) {
		return fmt.Errorf("%w: norm %v", ErrNonNormalizedState, n)
	}
	return nil
}
