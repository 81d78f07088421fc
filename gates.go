package qthought

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

var invSqrt2 = complex(1/math.Sqrt2, 0)

func Identity(d int) Operator {
	return Operator{m: identityMatrix(d)}
}

func PauliX() Operator {
	return mustOperator([][]complex128{
		{0, 1},
		{1, 0},
	})
}

func PauliY() Operator {
	return mustOperator([][]complex128{
		{0, -1i},
		{1i, 0},
	})
}

func PauliZ() Operator {
	return mustOperator([][]complex128{
		{1, 0},
		{0, -1},
	})
}

// Hadamard returns H = 1/√2 [[1, 1], [1, -1]].
func Hadamard() Operator {
	return mustOperator([][]complex128{
		{invSqrt2, invSqrt2},
		{invSqrt2, -invSqrt2},
	})
}

// Phase returns diag(1, e^{iθ}).
func Phase(theta float64) Operator {
	return mustOperator([][]complex128{
		{1, 0},
		{0, cmplx.Exp(complex(0, theta))},
	})
}

func SGate() Operator {
	return Phase(math.Pi / 2)
}

func TGate() Operator {
	return Phase(math.Pi / 4)
}

// RX returns exp(-iθX/2).
func RX(theta float64) Operator {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	return mustOperator([][]complex128{
		{c, s},
		{s, c},
	})
}

// RY returns exp(-iθY/2).
func RY(theta float64) Operator {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return mustOperator([][]complex128{
		{c, -s},
		{s, c},
	})
}

// RZ returns exp(-iθZ/2).
func RZ(theta float64) Operator {
	return mustOperator([][]complex128{
		{cmplx.Exp(complex(0, -theta/2)), 0},
		{0, cmplx.Exp(complex(0, theta/2))},
	})
}

/*
Controlled returns |0⟩⟨0| ⊗ I + |1⟩⟨1| ⊗ op, with the control qubit as the
more significant factor.
*/
func Controlled(op Operator) Operator {
	d := op.Dim()
	rows := make([][]complex128, 2*d)
	for i := range rows {
		rows[i] = make([]complex128, 2*d)
	}
	for i := 0; i < d; i++ {
		rows[i][i] = 1
		for j := 0; j < d; j++ {
			rows[d+i][d+j] = op.At(i, j)
		}
	}
	return mustOperator(rows)
}

func CNOT() Operator {
	return Controlled(PauliX())
}

func CZ() Operator {
	return Controlled(PauliZ())
}

func Toffoli() Operator {
	return Controlled(CNOT())
}

func SWAP() Operator {
	return mustOperator([][]complex128{
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	})
}

// Increment maps |k⟩ to |k+1 mod d⟩.
func Increment(d int) Operator {
	return shift(d, 1)
}

// Decrement maps |k⟩ to |k-1 mod d⟩.
func Decrement(d int) Operator {
	return shift(d, d-1)
}

func shift(d, by int) Operator {
	rows := make([][]complex128, d)
	for i := range rows {
		rows[i] = make([]complex128, d)
	}
	for k := 0; k < d; k++ {
		rows[(k+by)%d][k] = 1
	}
	return mustOperator(rows)
}

/*
AddModulo acts on two d-level registers and maps |a, b⟩ to |a, a+b mod d⟩.
For d = 2 it is CNOT.
*/
func AddModulo(d int) Operator {
	n := d * d
	rows := make([][]complex128, n)
	for i := range rows {
		rows[i] = make([]complex128, n)
	}
	for a := 0; a < d; a++ {
		for b := 0; b < d; b++ {
			rows[a*d+(a+b)%d][a*d+b] = 1
		}
	}
	return mustOperator(rows)
}

// Fourier returns the d-dimensional quantum Fourier transform.
func Fourier(d int) Operator {
	rows := make([][]complex128, d)
	scale := complex(1/math.Sqrt(float64(d)), 0)
	for j := range rows {
		rows[j] = make([]complex128, d)
		for k := 0; k < d; k++ {
			rows[j][k] = scale * cmplx.Exp(complex(0, 2*math.Pi*float64(j*k)/float64(d)))
		}
	}
	return mustOperator(rows)
}

/*
GateByName resolves a gate from its conventional name. Rotation and phase
gates take an angle, qudit gates take the register dimension.
*/
func GateByName(name string, params ...float64) (Operator, error) {
	param := func() (float64, error) {
		if len(params) != 1 {
			return 0, fmt.Errorf("gate %s takes exactly one parameter, got %d", name, len(params))
		}
		return params[0], nil
	}

	dim := func() (int, error) {
		p, err := param()
		if err != nil {
			return 0, err
		}
		if p < 1 || p != math.Trunc(p) {
			return 0, fmt.Errorf("%w: gate %s needs a positive integer dimension, got %v", ErrDimensionMismatch, name, p)
		}
		return int(p), nil
	}

	key := strings.ToUpper(strings.TrimSpace(name))
	switch key {
	case "I", "ID", "IDENTITY":
		if len(params) == 0 {
			return Identity(2), nil
		}
		d, err := dim()
		if err != nil {
			return Operator{}, err
		}
		return Identity(d), nil
	case "X", "NOT":
		return PauliX(), nil
	case "Y":
		return PauliY(), nil
	case "Z":
		return PauliZ(), nil
	case "H", "HADAMARD":
		return Hadamard(), nil
	case "S":
		return SGate(), nil
	case "T":
		return TGate(), nil
	case "CNOT", "CX":
		return CNOT(), nil
	case "CZ":
		return CZ(), nil
	case "SWAP":
		return SWAP(), nil
	case "TOFFOLI", "CCX", "CCNOT":
		return Toffoli(), nil
	case "PHASE", "P":
		theta, err := param()
		if err != nil {
			return Operator{}, err
		}
		return Phase(theta), nil
	case "RX", "RY", "RZ":
		theta, err := param()
		if err != nil {
			return Operator{}, err
		}
		switch key {
		case "RX":
			return RX(theta), nil
		case "RY":
			return RY(theta), nil
		default:
			return RZ(theta), nil
		}
	case "INC", "INCREMENT", "DEC", "DECREMENT", "ADD", "ADDMOD", "QFT", "FOURIER":
		d, err := dim()
		if err != nil {
			return Operator{}, err
		}
		switch key {
		case "INC", "INCREMENT":
			return Increment(d), nil
		case "DEC", "DECREMENT":
			return Decrement(d), nil
		case "ADD", "ADDMOD":
			return AddModulo(d), nil
		default:
			return Fourier(d), nil
		}
	}

	return Operator{}, fmt.Errorf("unknown gate %q", name)
}
