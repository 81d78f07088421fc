package qthought

import (
	"math"
	"math/cmplx"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGates(t *testing.T) {
	Convey("Given the standard gate library", t, func() {
		gates := map[string]Operator{
			"X":       PauliX(),
			"Y":       PauliY(),
			"Z":       PauliZ(),
			"H":       Hadamard(),
			"S":       SGate(),
			"T":       TGate(),
			"RX":      RX(0.3),
			"RY":      RY(1.1),
			"RZ":      RZ(-2.4),
			"CNOT":    CNOT(),
			"CZ":      CZ(),
			"SWAP":    SWAP(),
			"Toffoli": Toffoli(),
			"INC3":    Increment(3),
			"DEC5":    Decrement(5),
			"ADD3":    AddModulo(3),
			"QFT4":    Fourier(4),
		}

		Convey("Then every gate should be unitary", func() {
			for _, g := range gates {
				So(g.IsUnitary(DefaultTolerance), ShouldBeTrue)
			}
		})

		Convey("Then the Hadamard gate should be its own inverse", func() {
			hh, err := Hadamard().Mul(Hadamard())
			So(err, ShouldBeNil)
			So(hh.ApproxEqual(Identity(2), DefaultTolerance), ShouldBeTrue)
		})

		Convey("Then Pauli X and Z should not commute", func() {
			So(PauliX().Commutes(PauliZ(), DefaultTolerance), ShouldBeFalse)
			So(PauliZ().Commutes(SGate(), DefaultTolerance), ShouldBeTrue)
		})

		Convey("Then CNOT should flip the target when the control is set", func() {
			out, err := CNOT().ApplyTo([]complex128{0, 0, 1, 0})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []complex128{0, 0, 0, 1})
		})

		Convey("Then addition modulo 2 should equal CNOT", func() {
			So(AddModulo(2).ApproxEqual(CNOT(), 0), ShouldBeTrue)
		})

		Convey("Then incrementing d times should be the identity", func() {
			acc := Identity(3)
			for i := 0; i < 3; i++ {
				next, err := acc.Mul(Increment(3))
				So(err, ShouldBeNil)
				acc = next
			}
			So(acc.ApproxEqual(Identity(3), DefaultTolerance), ShouldBeTrue)
		})

		Convey("Then a tensor product should act on the combined space", func() {
			xz := PauliX().Tensor(PauliZ())
			So(xz.Dim(), ShouldEqual, 4)

			out, err := xz.ApplyTo([]complex128{0, 1, 0, 0})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []complex128{0, 0, 0, -1})
		})

		Convey("Then the dagger of S should undo S", func() {
			id, err := SGate().Mul(SGate().Dagger())
			So(err, ShouldBeNil)
			So(id.ApproxEqual(Identity(2), DefaultTolerance), ShouldBeTrue)
		})
	})
}

func TestNewOperator(t *testing.T) {
	Convey("Given rows for an operator", t, func() {
		Convey("When the rows are not square", func() {
			_, err := NewOperator([][]complex128{{1, 0}, {0}})

			Convey("Then construction should fail", func() {
				So(err, ShouldWrap, ErrDimensionMismatch)
			})
		})

		Convey("When there are no rows", func() {
			_, err := NewOperator(nil)

			Convey("Then construction should fail", func() {
				So(err, ShouldWrap, ErrDimensionMismatch)
			})
		})

		Convey("When the operator scales the state", func() {
			op, err := NewOperator([][]complex128{{2, 0}, {0, 1}})
			So(err, ShouldBeNil)

			Convey("Then it should not be unitary", func() {
				So(op.IsUnitary(DefaultTolerance), ShouldBeFalse)
			})
		})

		Convey("When multiplying operators of different dimensions", func() {
			_, err := PauliX().Mul(CNOT())

			Convey("Then it should fail", func() {
				So(err, ShouldWrap, ErrDimensionMismatch)
			})
		})

		Convey("When applying to a vector of the wrong length", func() {
			_, err := PauliX().ApplyTo([]complex128{1, 0, 0})

			Convey("Then it should fail", func() {
				So(err, ShouldWrap, ErrDimensionMismatch)
			})
		})
	})
}

func TestGateByName(t *testing.T) {
	Convey("Given gate names as they appear in scenarios", t, func() {
		Convey("When resolving aliases", func() {
			cx, err := GateByName(" cx ")
			So(err, ShouldBeNil)
			not, err := GateByName("NOT")
			So(err, ShouldBeNil)

			Convey("Then they should resolve to the same gates", func() {
				So(cx.ApproxEqual(CNOT(), 0), ShouldBeTrue)
				So(not.ApproxEqual(PauliX(), 0), ShouldBeTrue)
			})
		})

		Convey("When resolving a rotation", func() {
			rx, err := GateByName("rx", math.Pi)
			So(err, ShouldBeNil)

			Convey("Then it should rotate by the given angle", func() {
				So(cmplx.Abs(rx.At(0, 0)), ShouldAlmostEqual, 0, 1e-12)
				So(cmplx.Abs(rx.At(0, 1)), ShouldAlmostEqual, 1, 1e-12)
			})
		})

		Convey("When a rotation is missing its angle", func() {
			_, err := GateByName("RZ")

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a qudit gate has a fractional dimension", func() {
			_, err := GateByName("INC", 2.5)

			Convey("Then it should fail", func() {
				So(err, ShouldWrap, ErrDimensionMismatch)
			})
		})

		Convey("When the name is unknown", func() {
			_, err := GateByName("teleport")

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
