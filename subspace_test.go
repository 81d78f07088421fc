package qthought

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewBasis(t *testing.T) {
	Convey("Given candidate basis vectors", t, func() {
		Convey("When the vectors are not orthogonal", func() {
			_, err := NewBasis("skew", [][]complex128{{1, 0}, {invSqrt2, invSqrt2}})

			Convey("Then the basis should be rejected", func() {
				So(err, ShouldWrap, ErrInvalidBasis)
			})
		})

		Convey("When a vector has the wrong length", func() {
			_, err := NewBasis("short", [][]complex128{{1, 0}, {1}})

			Convey("Then the basis should be rejected", func() {
				So(err, ShouldWrap, ErrInvalidBasis)
			})
		})

		Convey("When the labels do not match the vectors", func() {
			_, err := NewBasis("z", [][]complex128{{1, 0}, {0, 1}}, "up")

			Convey("Then the basis should be rejected", func() {
				So(err, ShouldWrap, ErrInvalidBasis)
			})
		})

		Convey("When the basis is valid but unlabeled", func() {
			b, err := NewBasis("z", [][]complex128{{0, 1}, {1, 0}})
			So(err, ShouldBeNil)

			Convey("Then outcomes should be labeled by index", func() {
				So(b.Dim(), ShouldEqual, 2)
				So(b.Label(1), ShouldEqual, "1")
				So(b.Vector(0), ShouldResemble, []complex128{0, 1})
			})
		})
	})
}

func TestNamedBases(t *testing.T) {
	Convey("Given the named bases", t, func() {
		Convey("When resolving them by name", func() {
			bell, err := BasisByName("Bell", 4)
			So(err, ShouldBeNil)
			x, err := BasisByName("x", 2)
			So(err, ShouldBeNil)
			f, err := BasisByName("fourier", 3)
			So(err, ShouldBeNil)

			Convey("Then they should have the requested dimensions", func() {
				So(bell.Dim(), ShouldEqual, 4)
				So(bell.Label(3), ShouldEqual, "Ψ-")
				So(x.Label(0), ShouldEqual, "+")
				So(f.Dim(), ShouldEqual, 3)
			})
		})

		Convey("When a fixed-size basis is requested at the wrong size", func() {
			_, err := BasisByName("bell", 2)

			Convey("Then it should fail", func() {
				So(err, ShouldWrap, ErrInvalidBasis)
			})
		})

		Convey("When the name is unknown", func() {
			_, err := BasisByName("spiral", 2)

			Convey("Then it should fail", func() {
				So(err, ShouldWrap, ErrInvalidBasis)
			})
		})

		Convey("When comparing observables", func() {
			Convey("Then Z and X measurements should be incompatible", func() {
				So(ComputationalBasis(2).Compatible(HadamardBasis(), DefaultTolerance), ShouldBeFalse)
				So(HadamardBasis().Compatible(CircularBasis(), DefaultTolerance), ShouldBeFalse)
			})

			Convey("Then a basis should be compatible with itself", func() {
				So(BellBasis().Compatible(BellBasis(), DefaultTolerance), ShouldBeTrue)
			})
		})

		Convey("When building a projector", func() {
			p := HadamardBasis().Projector(0)

			Convey("Then it should be idempotent", func() {
				pp, err := p.Mul(p)
				So(err, ShouldBeNil)
				So(pp.ApproxEqual(p, DefaultTolerance), ShouldBeTrue)
			})
		})
	})
}

func TestSubspace(t *testing.T) {
	Convey("Given a span of dependent vectors", t, func() {
		s, err := NewSubspace(3,
			[]complex128{1, 0, 0},
			[]complex128{1, 1, 0},
			[]complex128{2, 2, 0},
		)
		So(err, ShouldBeNil)

		Convey("Then the dependent vector should be dropped", func() {
			So(s.Rank(), ShouldEqual, 2)
			So(s.Dim(), ShouldEqual, 3)
		})

		Convey("Then it should contain vectors of the plane only", func() {
			So(s.Contains([]complex128{0, 3i, 0}, 1e-12), ShouldBeTrue)
			So(s.Contains([]complex128{0, 0, 1}, 1e-12), ShouldBeFalse)
			So(s.Weight([]complex128{0, invSqrt2, invSqrt2}), ShouldAlmostEqual, 0.5, 1e-12)
		})

		Convey("When taking the complement", func() {
			c := s.Complement()

			Convey("Then it should span the rest of the space", func() {
				So(c.Rank(), ShouldEqual, 1)
				So(c.Contains([]complex128{0, 0, 1}, 1e-12), ShouldBeTrue)
			})
		})

		Convey("When building the projector", func() {
			p := s.Projector()

			Convey("Then it should project onto the plane", func() {
				out, err := p.ApplyTo([]complex128{1, 1, 1})
				So(err, ShouldBeNil)
				So(real(out[0]), ShouldAlmostEqual, 1, 1e-12)
				So(real(out[1]), ShouldAlmostEqual, 1, 1e-12)
				So(real(out[2]), ShouldAlmostEqual, 0, 1e-12)
			})
		})
	})

	Convey("Given a vector of the wrong length", t, func() {
		_, err := NewSubspace(2, []complex128{1, 0, 0})

		Convey("Then the span should be rejected", func() {
			So(err, ShouldWrap, ErrDimensionMismatch)
		})
	})
}
