package model

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDemoJob(t *testing.T) {
	Convey("Given the built-in two-site demo job", t, func() {
		j := DemoJob(0x853c49e6748fea9b, 0xda3e39cb94b95bdb)

		Convey("It passes model validation", func() {
			So(Validate(j), ShouldBeNil)
		})

		Convey("It has exactly one mobile particle", func() {
			So(j.MobileParticleCount(), ShouldEqual, 1)
		})

		Convey("Its RNG increment is odd", func() {
			So(j.RNGInc%2, ShouldEqual, 1)
		})

		Convey("Its pair table is constant (symmetric, zero barrier)", func() {
			So(j.PairTableByID(0).IsConstant(1e-9), ShouldBeTrue)
		})
	})
}
