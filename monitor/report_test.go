package monitor

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/niceyeti/ionhop/plugin"
)

func TestLiveStatsRoundTrip(t *testing.T) {
	Convey("Given a fresh LiveStats", t, func() {
		ls := NewLiveStats()

		Convey("Its initial snapshot is all zero", func() {
			So(ls.Snapshot(), ShouldResemble, BlockReport{})
		})

		Convey("Update then Snapshot returns exactly what was written", func() {
			r := BlockReport{CycleCount: 42, MCSCount: 7, SimulatedTime: 1.5, LatticeEnergyEV: -3.25, CycleRateHz: 100}
			ls.Update(r)
			So(ls.Snapshot(), ShouldResemble, r)
		})
	})
}

func TestServerOnDataOutputComputesRate(t *testing.T) {
	Convey("Given a Server and a SimulationView with nonzero simulated time", t, func() {
		s := NewServer("127.0.0.1:0")
		s.OnDataOutput(plugin.SimulationView{
			CycleCount:      1000,
			MCSCount:        10,
			SimulatedTime:   2.0,
			LatticeEnergyEV: -1.0,
		})

		Convey("LiveStats reflects a cycle rate of cycles/simulatedTime", func() {
			snap := s.stats.Snapshot()
			So(snap.CycleRateHz, ShouldEqual, 500.0)
			So(snap.CycleCount, ShouldEqual, 1000)
			So(snap.LatticeEnergyEV, ShouldEqual, -1.0)
		})
	})

	Convey("Given a SimulationView with zero simulated time", t, func() {
		s := NewServer("127.0.0.1:0")
		s.OnDataOutput(plugin.SimulationView{CycleCount: 5, MCSCount: 1, SimulatedTime: 0})

		Convey("The cycle rate is zero rather than dividing by zero", func() {
			So(s.stats.Snapshot().CycleRateHz, ShouldEqual, 0)
		})
	})

	Convey("Given a SimulationView midway to its goal", t, func() {
		s := NewServer("127.0.0.1:0")
		s.OnDataOutput(plugin.SimulationView{
			CycleCount:   100,
			MCSCount:     50,
			GoalMCSCount: 150,
			SimulatedTime: 5.0,
		})

		Convey("EtaSeconds estimates the remaining wall-clock time from the MCS rate", func() {
			snap := s.stats.Snapshot()
			So(snap.EtaSeconds, ShouldEqual, 10.0)
		})
	})
}

func TestRemainingRunTimeSeconds(t *testing.T) {
	Convey("Given a zero rate", t, func() {
		Convey("The estimate is zero rather than infinite", func() {
			So(RemainingRunTimeSeconds(10, 100, 0), ShouldEqual, 0)
		})
	})

	Convey("Given a run already past its goal", t, func() {
		Convey("The estimate is zero rather than negative", func() {
			So(RemainingRunTimeSeconds(200, 100, 10), ShouldEqual, 0)
		})
	})

	Convey("Given a positive rate and remaining goal", t, func() {
		Convey("The estimate divides the remaining MCS by the rate", func() {
			So(RemainingRunTimeSeconds(50, 150, 10), ShouldEqual, 10)
		})
	})
}
