package units

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestConversionRoundTrip(t *testing.T) {
	Convey("Given a temperature", t, func() {
		T := 300.0

		Convey("EVToKT and KTToEV are inverses", func() {
			So(EVToKT(T)*KTToEV(T), ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("KTToEV(1) equals T*kB", func() {
			So(KTToEV(T), ShouldAlmostEqual, T*BoltzmannEV, 1e-12)
		})
	})
}

func TestFieldFactor(t *testing.T) {
	Convey("Given a temperature and field modulus", t, func() {
		T := 300.0
		E := 1e7

		Convey("FieldFactor is half the EV-to-kT scale times the field modulus", func() {
			So(FieldFactor(T, E), ShouldAlmostEqual, 0.5*EVToKT(T)*E, 1e-6)
		})

		Convey("A zero field produces a zero factor", func() {
			So(FieldFactor(T, 0), ShouldEqual, 0.0)
		})
	})
}
