package qecc

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSameState(t *testing.T) {
	Convey("Given states that differ only by a global phase", t, func() {
		phases := []float64{0, 0.3, math.Pi / 2, math.Pi, 4, -2.5}

		Convey("They should compare equal", func() {
			for _, in := range StandardInputs() {
				for _, phi := range phases {
					want := in.Expected()
					ok, err := SameState(want.WithGlobalPhase(phi), want)
					So(err, ShouldBeNil)
					So(ok, ShouldBeTrue)
				}
			}
		})
	})

	Convey("Given genuinely different states", t, func() {
		s := 1 / math.Sqrt2

		Convey("Orthogonal basis states should differ", func() {
			ok, err := SameState(NewQubit(1, 0), NewQubit(0, 1))
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("A relative phase flip should differ", func() {
			ok, err := SameState(NewQubit(complex(s, 0), complex(s, 0)), NewQubit(complex(s, 0), complex(-s, 0)))
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("Swapped magnitudes should differ", func() {
			ok, err := SameState(NewQubit(0.6, 0.8), NewQubit(0.8, 0.6))
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("A logical Y error on an equatorial input should differ", func() {
			in := StandardInputs()[2]
			got := in.Expected().Apply(matY)
			ok, err := SameState(got, in.Expected())
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given inputs that break the numeric assumptions", t, func() {
		Convey("A phase difference beyond the unit disc should be a range error", func() {
			_, err := SameState(NewQubit(0.1, 0), NewQubit(1, 0))
			So(errors.Is(err, ErrNumericRange), ShouldBeTrue)
			So(Classify(err), ShouldEqual, ClassNumericRange)
		})

		Convey("A zero reference amplitude should be a range error", func() {
			_, err := SameState(Qubit{}, NewQubit(1, 0))
			So(errors.Is(err, ErrNumericRange), ShouldBeTrue)
		})
	})
}

func TestClampComponents(t *testing.T) {
	Convey("Given values near the unit interval", t, func() {
		Convey("Slight overshoot should clamp", func() {
			z, err := ClampComponents(complex(1+1e-7, -1-1e-7), 1e-5)
			So(err, ShouldBeNil)
			So(z, ShouldEqual, complex(1, -1))
		})

		Convey("Values inside should pass through", func() {
			z, err := ClampComponents(complex(0.25, -0.5), 1e-5)
			So(err, ShouldBeNil)
			So(z, ShouldEqual, complex(0.25, -0.5))
		})

		Convey("Real overshoot should be an error", func() {
			_, err := ClampComponents(complex(1.5, 0), 1e-5)
			So(errors.Is(err, ErrNumericRange), ShouldBeTrue)
		})

		Convey("NaN should be an error", func() {
			_, err := ClampComponents(complex(0, math.NaN()), 1e-5)
			So(errors.Is(err, ErrNumericRange), ShouldBeTrue)
		})
	})
}

func TestApproxEqual(t *testing.T) {
	Convey("Given the relative comparison", t, func() {
		Convey("Two values near zero should be equal", func() {
			So(ApproxEqual(1e-7, -1e-7, 1e-5), ShouldBeTrue)
		})

		Convey("Close values should be equal", func() {
			So(ApproxEqual(complex(1, 1), complex(1+1e-7, 1), 1e-5), ShouldBeTrue)
		})

		Convey("Distant values should not be", func() {
			So(ApproxEqual(1, 1.1, 1e-5), ShouldBeFalse)
			So(ApproxEqual(1, -1, 1e-5), ShouldBeFalse)
		})
	})

	Convey("Given points on and off the unit circle", t, func() {
		Convey("Unit phases should be recognized", func() {
			for _, phi := range []float64{0, 1, math.Pi / 2, 3, -0.5, -3} {
				z := complex(math.Cos(phi), math.Sin(phi))
				So(onUnitCircle(z, DefaultTolerance), ShouldBeTrue)
			}
		})

		Convey("Shrunk phases should not", func() {
			So(onUnitCircle(complex(0.5, 0), DefaultTolerance), ShouldBeFalse)
			So(onUnitCircle(complex(0.3, 0.3), DefaultTolerance), ShouldBeFalse)
		})

		Convey("modPi should land in [0, π)", func() {
			So(modPi(-0.5), ShouldAlmostEqual, math.Pi-0.5, 1e-12)
			So(modPi(math.Pi+0.25), ShouldAlmostEqual, 0.25, 1e-12)
		})
	})
}
