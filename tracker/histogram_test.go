package tracker

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestHistogramBinning(t *testing.T) {
	Convey("Given a histogram over [0, 10) with 10 bins", t, func() {
		h := NewHistogram(0, 10, 10)

		Convey("A value below the minimum is counted as underflow", func() {
			h.Add(-1)
			So(h.Underflow, ShouldEqual, int64(1))
		})

		Convey("A value at or above the maximum is counted as overflow", func() {
			h.Add(10)
			h.Add(100)
			So(h.Overflow, ShouldEqual, int64(2))
		})

		Convey("An in-range value lands in round((e-min)/stepping)", func() {
			h.Add(5.5)
			So(h.Bins[6], ShouldEqual, int64(1))
		})

		Convey("Reset zeroes every bin and both overflow counters", func() {
			h.Add(1)
			h.Add(-1)
			h.Add(100)
			h.Reset()
			for _, b := range h.Bins {
				So(b, ShouldEqual, int64(0))
			}
			So(h.Underflow, ShouldEqual, int64(0))
			So(h.Overflow, ShouldEqual, int64(0))
		})
	})
}

func TestHistogramsTable(t *testing.T) {
	Convey("Given a per-collection, per-particle histogram table", t, func() {
		h := NewHistograms(2, 4, 0, 10, 10)

		Convey("Every (collection, particle) slot is independently addressable", func() {
			h.At(0, 1).Edge.Add(3)
			h.At(1, 2).Total.Add(7)

			So(h.At(0, 1).Edge.Bins[3], ShouldEqual, int64(1))
			So(h.At(1, 2).Total.Bins[7], ShouldEqual, int64(1))
			So(h.At(0, 2).Edge.Bins[3], ShouldEqual, int64(0))
		})

		Convey("Reset clears every histogram in the table", func() {
			h.At(0, 0).PositiveConf.Add(2)
			h.Reset()
			So(h.At(0, 0).PositiveConf.Bins[2], ShouldEqual, int64(0))
		})
	})
}
