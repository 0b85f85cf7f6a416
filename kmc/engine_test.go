package kmc

import (
	"testing"

	"github.com/niceyeti/ionhop/cycle"
	"github.com/niceyeti/ionhop/model"

	. "github.com/smartystreets/goconvey/convey"
)

// occupancyFractionOnSite0 drives n KMC cycles and returns the fraction
// of them after which particle 1 (the mobile ion) sits on site 0.
func occupancyFractionOnSite0(e *Engine, n int) float64 {
	onSite0 := 0
	for i := 0; i < n; i++ {
		e.RunCycle()
		if e.Lattice.At(0).ParticleID == 1 {
			onSite0++
		}
	}
	return float64(onSite0) / float64(n)
}

func TestTwoSiteSymmetricOccupancy(t *testing.T) {
	Convey("Given the two-site demo job with a symmetric barrier and no field", t, func() {
		j := model.DemoJob(0x853c49e6748fea9b, 0xda3e39cb94b95bdb)
		So(model.Validate(j), ShouldBeNil)
		e := NewEngine(j)

		Convey("After many cycles the ion occupies site 0 about half the time", func() {
			frac := occupancyFractionOnSite0(e, 200000)
			So(frac, ShouldBeBetween, 0.45, 0.55)
		})
	})
}

func TestNoOpJumpWithFieldIsFieldEnergyOnly(t *testing.T) {
	Convey("Given a no-op jump (state_code_2 == state_code_0) with a nonzero field", t, func() {
		j := model.DemoJob(1, 3)
		j.KMC.FieldModulusVPerM = 1e7
		j.Collections[0].Rules[0].StateCode2 = j.Collections[0].Rules[0].StateCode0
		j.Directions[0].FieldFactor = 1.0
		j.Collections[0].Rules[0].FieldFactor = 1.0

		e := NewEngine(j)
		e.runCycleInner()

		Convey("The barrier reduces to the field energy alone", func() {
			So(e.Cycle.S2, ShouldAlmostEqual, e.Cycle.S0, 1e-12)
			So(e.Cycle.S0toS2Barrier, ShouldAlmostEqual, e.Cycle.FieldEnergy, 1e-9)
		})
	})
}

func TestNormProbabilityAboveOneIsStartUnstable(t *testing.T) {
	Convey("Given a cycle whose normalized probability exceeds one", t, func() {
		j := model.DemoJob(1, 3)
		e := NewEngine(j)
		e.TotalJumpNormalization = 1e6

		Convey("The cycle resolves as start-unstable", func() {
			outcome := e.runCycleInner()
			So(outcome, ShouldEqual, cycle.OutcomeStartUnstable)
			So(e.Cycle.NormProbability, ShouldBeGreaterThan, 1.0)
		})
	})
}

func TestSiteBlockingOnRuleMiss(t *testing.T) {
	Convey("Given a job whose only rule never matches the occupation code it will see", t, func() {
		j := model.DemoJob(1, 3)
		j.Collections[0].Rules[0].StateCode0 = j.Collections[0].Rules[0].StateCode0 + 1
		e := NewEngine(j)

		Convey("The cycle resolves as site blocking", func() {
			outcome := e.RunCycle()
			So(outcome, ShouldEqual, cycle.OutcomeSiteBlocking)
			So(e.Counters.ByParticle[1].SiteBlocking, ShouldEqual, int64(1))
		})
	})
}

func TestDeterministicReplay(t *testing.T) {
	Convey("Given two engines built from the same job and seed", t, func() {
		seed, inc := uint64(0x853c49e6748fea9b), uint64(0xda3e39cb94b95bdb)
		e1 := NewEngine(model.DemoJob(seed, inc))
		e2 := NewEngine(model.DemoJob(seed, inc))

		Convey("They produce identical outcomes and lattice state cycle-for-cycle", func() {
			for i := 0; i < 5000; i++ {
				o1 := e1.RunCycle()
				o2 := e2.RunCycle()
				So(o2, ShouldEqual, o1)
				So(e2.Lattice.At(0).ParticleID, ShouldEqual, e1.Lattice.At(0).ParticleID)
				So(e2.SimulatedTime, ShouldEqual, e1.SimulatedTime)
			}
		})
	})
}
