package checkpoint

import (
	"testing"

	"github.com/niceyeti/ionhop/tracker"

	. "github.com/smartystreets/goconvey/convey"
)

func sampleState() *State {
	return &State{
		Header: Header{MCS: 42, Cycles: 100, Flags: 1},
		Meta: Meta{
			SimulatedTime:      1.5,
			JumpNormalization:  0.9,
			MaxJumpProbability: 0.5,
			LatticeEnergy:      -3.25,
			ProgramRunTime:     10,
			CycleRate:          5,
			SuccessRate:        3,
			TimePerBlock:       2,
			RNGState:           0x853c49e6748fea9b,
			RNGIncrease:        0xda3e39cb94b95bdb | 1,
		},
		Lattice:  []byte{1, 0, 1, 0},
		Counters: []CounterCollection{{CycleCount: 10, MCSCount: 5, RejectionCount: 2, SiteBlockingCount: 1, UnstableStartCount: 0, UnstableEndCount: 0}},

		GlobalTrackers:     []tracker.Vector3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}},
		MobileTrackers:     []tracker.Vector3{{X: 0.1, Y: 0.2, Z: 0.3}},
		StaticTrackers:     []tracker.Vector3{{X: 7, Y: 8, Z: 9}},
		MobileTrackerEnvID: []int64{0},

		JumpStatistics: []JumpStatisticSet{
			{
				Edge:         HistogramState{MinValue: 0, MaxValue: 10, Stepping: 1, Bins: make([]int64, 10)},
				PositiveConf: HistogramState{MinValue: 0, MaxValue: 10, Stepping: 1, Bins: make([]int64, 10)},
				NegativeConf: HistogramState{MinValue: 0, MaxValue: 10, Stepping: 1, Bins: make([]int64, 10)},
				Total:        HistogramState{MinValue: 0, MaxValue: 10, Stepping: 1, Bins: make([]int64, 10)},
			},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	Convey("Given a populated KMC simulation state", t, func() {
		s := sampleState()
		s.JumpStatistics[0].Edge.Bins[3] = 7

		Convey("Encode then Decode reproduces every field", func() {
			buf := s.Encode()
			got, err := Decode(buf, 1, 1)
			So(err, ShouldBeNil)

			So(got.Header.MCS, ShouldEqual, s.Header.MCS)
			So(got.Header.Cycles, ShouldEqual, s.Header.Cycles)
			So(got.Meta, ShouldResemble, s.Meta)
			So(got.Lattice, ShouldResemble, s.Lattice)
			So(got.Counters, ShouldResemble, s.Counters)
			So(got.GlobalTrackers, ShouldResemble, s.GlobalTrackers)
			So(got.MobileTrackers, ShouldResemble, s.MobileTrackers)
			So(got.StaticTrackers, ShouldResemble, s.StaticTrackers)
			So(got.MobileTrackerEnvID, ShouldResemble, s.MobileTrackerEnvID)
			So(got.JumpStatistics[0].Edge.Bins[3], ShouldEqual, int64(7))
		})

		Convey("Re-encoding the decoded state produces a byte-identical buffer", func() {
			buf1 := s.Encode()
			got, err := Decode(buf1, 1, 1)
			So(err, ShouldBeNil)
			buf2 := got.Encode()
			So(buf2, ShouldResemble, buf1)
		})

		Convey("KMC-only sections record -1 when absent (MMC run)", func() {
			mmc := sampleState()
			mmc.MobileTrackers = nil
			mmc.MobileTrackerEnvID = nil
			buf := mmc.Encode()
			So(mmc.Header.MobileTrackerStartByte, ShouldEqual, int32(-1))
			So(mmc.Header.MobileTrackerIdxStartByte, ShouldEqual, int32(-1))

			got, err := Decode(buf, 1, 1)
			So(err, ShouldBeNil)
			So(got.MobileTrackers, ShouldBeEmpty)
			So(got.MobileTrackerEnvID, ShouldBeEmpty)
		})
	})
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	Convey("Given a buffer shorter than the header", t, func() {
		buf := make([]byte, 4)

		Convey("Decode reports a data-consistency error", func() {
			_, err := Decode(buf, 1, 1)
			So(err, ShouldNotBeNil)
		})
	})
}
