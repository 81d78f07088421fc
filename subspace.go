package qthought

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/mat"
)

/*
Basis is a complete orthonormal measurement basis. Outcome k of a measurement
in the basis corresponds to the projector |bₖ⟩⟨bₖ|.
*/
type Basis struct {
	name    string
	labels  []string
	vectors [][]complex128
}

/*
NewBasis validates and builds a basis. It needs as many vectors as each vector
has entries, and the vectors must be orthonormal within DefaultTolerance.
Labels are optional; missing ones default to the outcome index.
*/
func NewBasis(name string, vectors [][]complex128, labels ...string) (Basis, error) {
	d := len(vectors)
	if d == 0 {
		return Basis{}, fmt.Errorf("%w: %s has no vectors", ErrInvalidBasis, name)
	}
	if len(labels) > 0 && len(labels) != d {
		return Basis{}, fmt.Errorf("%w: %s has %d labels for %d vectors", ErrInvalidBasis, name, len(labels), d)
	}

	tol := math.Sqrt(DefaultTolerance)
	b := Basis{name: name, labels: make([]string, d), vectors: make([][]complex128, d)}

	for i, v := range vectors {
		if len(v) != d {
			return Basis{}, fmt.Errorf(
				"%w: %s vector %d has %d entries, want %d", ErrInvalidBasis, name, i, len(v), d,
			)
		}
		b.vectors[i] = cloneVector(v)
		if len(labels) > 0 {
			b.labels[i] = labels[i]
		} else {
			b.labels[i] = fmt.Sprintf("%d", i)
		}
	}

	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			want := complex(0, 0)
			if i == j {
				want = 1
			}
			if cmplx.Abs(inner(b.vectors[i], b.vectors[j])-want) > tol {
				return Basis{}, fmt.Errorf("%w: %s vectors %d and %d are not orthonormal", ErrInvalidBasis, name, i, j)
			}
		}
	}

	return b, nil
}

func mustBasis(name string, vectors [][]complex128, labels ...string) Basis {
	b, err := NewBasis(name, vectors, labels...)
	if err != nil {
		panic(err)
	}
	return b
}

// ComputationalBasis returns {|0⟩, …, |d-1⟩}.
func ComputationalBasis(d int) Basis {
	vectors := make([][]complex128, d)
	for i := range vectors {
		vectors[i] = make([]complex128, d)
		vectors[i][i] = 1
	}
	return mustBasis("computational", vectors)
}

// HadamardBasis returns {|+⟩, |-⟩}.
func HadamardBasis() Basis {
	return mustBasis("hadamard", [][]complex128{
		{invSqrt2, invSqrt2},
		{invSqrt2, -invSqrt2},
	}, "+", "-")
}

// CircularBasis returns the eigenbasis of Pauli Y, {|+i⟩, |-i⟩}.
func CircularBasis() Basis {
	return mustBasis("circular", [][]complex128{
		{invSqrt2, invSqrt2 * 1i},
		{invSqrt2, -invSqrt2 * 1i},
	}, "+i", "-i")
}

// BellBasis returns {|Φ+⟩, |Φ-⟩, |Ψ+⟩, |Ψ-⟩} on two qubits.
func BellBasis() Basis {
	return mustBasis("bell", [][]complex128{
		{invSqrt2, 0, 0, invSqrt2},
		{invSqrt2, 0, 0, -invSqrt2},
		{0, invSqrt2, invSqrt2, 0},
		{0, invSqrt2, -invSqrt2, 0},
	}, "Φ+", "Φ-", "Ψ+", "Ψ-")
}

// FourierBasis returns the columns of Fourier(d).
func FourierBasis(d int) Basis {
	f := Fourier(d)
	vectors := make([][]complex128, d)
	for k := range vectors {
		vectors[k] = make([]complex128, d)
		for j := 0; j < d; j++ {
			vectors[k][j] = f.At(j, k)
		}
	}
	return mustBasis("fourier", vectors)
}

/*
BasisByName resolves a named basis of dimension dim. Computational and
Fourier bases exist for every dimension; the others are fixed-size.
*/
func BasisByName(name string, dim int) (Basis, error) {
	if dim < 1 {
		return Basis{}, fmt.Errorf("%w: dimension %d", ErrInvalidBasis, dim)
	}

	var b Basis
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "computational", "z", "standard":
		return ComputationalBasis(dim), nil
	case "fourier":
		return FourierBasis(dim), nil
	case "hadamard", "x", "diagonal":
		b = HadamardBasis()
	case "circular", "y":
		b = CircularBasis()
	case "bell":
		b = BellBasis()
	default:
		return Basis{}, fmt.Errorf("%w: unknown basis %q", ErrInvalidBasis, name)
	}

	if b.Dim() != dim {
		return Basis{}, fmt.Errorf("%w: %s basis has dimension %d, want %d", ErrInvalidBasis, name, b.Dim(), dim)
	}
	return b, nil
}

func (b Basis) Name() string {
	return b.name
}

// Dim returns the dimension of the space, which is also the number of outcomes.
func (b Basis) Dim() int {
	return len(b.vectors)
}

func (b Basis) IsZero() bool {
	return len(b.vectors) == 0
}

// Vector returns a copy of the k-th basis vector.
func (b Basis) Vector(k int) []complex128 {
	return cloneVector(b.vectors[k])
}

func (b Basis) Label(k int) string {
	if k < 0 || k >= len(b.labels) {
		return fmt.Sprintf("%d", k)
	}
	return b.labels[k]
}

// Projector returns |bₖ⟩⟨bₖ|.
func (b Basis) Projector(k int) Operator {
	return Operator{m: outer(b.vectors[k])}
}

/*
Compatible reports whether the observables defined by two bases on the same
space commute, i.e. every projector of one commutes with every projector of
the other.
*/
func (b Basis) Compatible(other Basis, tol float64) bool {
	if b.Dim() != other.Dim() {
		return false
	}
	for i := range b.vectors {
		for j := range other.vectors {
			if !commute(outer(b.vectors[i]), outer(other.vectors[j]), tol) {
				return false
			}
		}
	}
	return true
}

/*
Subspace is the span of a set of vectors, held as an orthonormal set produced
by Gram-Schmidt.
*/
type Subspace struct {
	dim     int
	vectors [][]complex128
}

/*
NewSubspace builds the span of the given vectors in a dim-dimensional space.
Linearly dependent vectors are dropped.
*/
func NewSubspace(dim int, spanning ...[]complex128) (Subspace, error) {
	if dim < 1 {
		return Subspace{}, fmt.Errorf("%w: subspace of dimension %d", ErrDimensionMismatch, dim)
	}

	s := Subspace{dim: dim}
	for i, v := range spanning {
		if len(v) != dim {
			return Subspace{}, fmt.Errorf(
				"%w: vector %d has %d entries, want %d", ErrDimensionMismatch, i, len(v), dim,
			)
		}
		s.add(v)
	}
	return s, nil
}

func (s *Subspace) add(v []complex128) {
	w := cloneVector(v)
	for _, u := range s.vectors {
		c := inner(u, w)
		for i := range w {
			w[i] -= c * u[i]
		}
	}
	if normalize(w) > math.Sqrt(DefaultTolerance) {
		s.vectors = append(s.vectors, w)
	}
}

// Dim returns the dimension of the ambient space.
func (s Subspace) Dim() int {
	return s.dim
}

func (s Subspace) Rank() int {
	return len(s.vectors)
}

func (s Subspace) Projector() Operator {
	m := mat.NewCDense(s.dim, s.dim, nil)
	for _, v := range s.vectors {
		addOuter(m, v)
	}
	return Operator{m: m}
}

// Weight returns ‖Pv‖², the probability of finding v in the subspace.
func (s Subspace) Weight(v []complex128) float64 {
	var w float64
	for _, u := range s.vectors {
		c := inner(u, v)
		w += real(c)*real(c) + imag(c)*imag(c)
	}
	return w
}

// Contains reports whether v lies in the subspace within tol.
func (s Subspace) Contains(v []complex128, tol float64) bool {
	return withinTolerance(s.Weight(v), real(inner(v, v)), tol)
}

// Complement returns the orthogonal complement.
func (s Subspace) Complement() Subspace {
	c := Subspace{dim: s.dim}
	probe := Subspace{dim: s.dim, vectors: append([][]complex128(nil), s.vectors...)}
	for i := 0; i < s.dim && probe.Rank() < s.dim; i++ {
		e := make([]complex128, s.dim)
		e[i] = 1
		before := probe.Rank()
		probe.add(e)
		if probe.Rank() > before {
			c.vectors = append(c.vectors, probe.vectors[probe.Rank()-1])
		}
	}
	return c
}
