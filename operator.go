package qthought

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

/*
Operator is a square complex matrix acting on a finite Hilbert space. Operators
are values: every method that transforms one returns a new Operator and leaves
the receiver untouched.
*/
type Operator struct {
	m *mat.CDense
}

/*
NewOperator builds an operator from its rows. Every row must have as many
entries as there are rows.
*/
func NewOperator(rows [][]complex128) (Operator, error) {
	d := len(rows)
	if d == 0 {
		return Operator{}, fmt.Errorf("%w: operator has no rows", ErrDimensionMismatch)
	}

	data := make([]complex128, 0, d*d)
	for i, row := range rows {
		if len(row) != d {
			return Operator{}, fmt.Errorf(
				"%w: row %d has %d entries, want %d", ErrDimensionMismatch, i, len(row), d,
			)
		}
		data = append(data, row...)
	}

	return Operator{m: mat.NewCDense(d, d, data)}, nil
}

// OperatorFromMatrix copies a square gonum matrix into an Operator.
func OperatorFromMatrix(m mat.CMatrix) (Operator, error) {
	r, c := m.Dims()
	if r != c {
		return Operator{}, fmt.Errorf("%w: %dx%d matrix is not square", ErrDimensionMismatch, r, c)
	}
	return Operator{m: copyMatrix(m)}, nil
}

func mustOperator(rows [][]complex128) Operator {
	op, err := NewOperator(rows)
	if err != nil {
		panic(err)
	}
	return op
}

// Dim returns the dimension of the space the operator acts on, 0 when empty.
func (o Operator) Dim() int {
	if o.m == nil {
		return 0
	}
	r, _ := o.m.Dims()
	return r
}

func (o Operator) IsZero() bool {
	return o.m == nil
}

func (o Operator) At(i, j int) complex128 {
	return o.m.At(i, j)
}

// Matrix returns a copy of the underlying matrix.
func (o Operator) Matrix() *mat.CDense {
	return copyMatrix(o.m)
}

// Dagger returns the conjugate transpose.
func (o Operator) Dagger() Operator {
	return Operator{m: copyMatrix(o.m.H())}
}

// Mul returns o·other.
func (o Operator) Mul(other Operator) (Operator, error) {
	if o.Dim() != other.Dim() {
		return Operator{}, fmt.Errorf(
			"%w: cannot multiply %d and %d dimensional operators", ErrDimensionMismatch, o.Dim(), other.Dim(),
		)
	}
	return Operator{m: mulMatrix(o.m, other.m)}, nil
}

// Tensor returns o ⊗ other, with o acting on the more significant factor.
func (o Operator) Tensor(other Operator) Operator {
	return Operator{m: kronMatrix(o.m, other.m)}
}

// IsUnitary reports whether O†O ≈ I within tol.
func (o Operator) IsUnitary(tol float64) bool {
	if o.IsZero() {
		return false
	}
	return mat.CEqualApprox(adjointMul(o.m, o.m), identityMatrix(o.Dim()), tol)
}

func (o Operator) Commutes(other Operator, tol float64) bool {
	if o.Dim() != other.Dim() {
		return false
	}
	return commute(o.m, other.m, tol)
}

func (o Operator) ApproxEqual(other Operator, tol float64) bool {
	if o.IsZero() || other.IsZero() {
		return o.IsZero() == other.IsZero()
	}
	return mat.CEqualApprox(o.m, other.m, tol)
}

// ApplyTo returns O|v⟩.
func (o Operator) ApplyTo(v []complex128) ([]complex128, error) {
	if len(v) != o.Dim() {
		return nil, fmt.Errorf(
			"%w: vector of length %d for %d dimensional operator", ErrDimensionMismatch, len(v), o.Dim(),
		)
	}
	return mulVector(o.m, v), nil
}

func (o Operator) String() string {
	if o.IsZero() {
		return "[]"
	}
	var b strings.Builder
	for i := 0; i < o.Dim(); i++ {
		b.WriteString("[")
		for j := 0; j < o.Dim(); j++ {
			if j > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%.3g", o.m.At(i, j))
		}
		b.WriteString("]\n")
	}
	return b.String()
}
