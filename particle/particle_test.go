package particle

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPeriodicWrap(t *testing.T) {
	Convey("Given a 2x2x2x1 lattice", t, func() {
		size := Size{A: 2, B: 2, C: 2, D: 1}

		Convey("Offsetting every site by (1,0,0,0) lands inside bounds", func() {
			for a := int32(0); a < 2; a++ {
				for b := int32(0); b < 2; b++ {
					for c := int32(0); c < 2; c++ {
						v := Vec4{A: a, B: b, C: c, D: 0}.Add(Vec4{A: 1})
						w := size.Wrap(v)
						So(w.A, ShouldBeBetween, int32(-1), int32(2))
						So(w.A >= 0 && w.A < 2, ShouldBeTrue)
						So(w.B, ShouldEqual, b)
						So(w.C, ShouldEqual, c)
					}
				}
			}
		})

		Convey("Negative components wrap into range", func() {
			w := size.Wrap(Vec4{A: -1, B: -3, C: 5, D: 0})
			So(w.A, ShouldEqual, 1)
			So(w.B, ShouldEqual, 1)
			So(w.C, ShouldEqual, 1)
		})
	})
}

func TestLinearIDRoundTrip(t *testing.T) {
	Convey("Given a lattice of irregular extent", t, func() {
		size := Size{A: 3, B: 2, C: 4, D: 2}

		Convey("Every linear id maps back to its originating vector", func() {
			for id := int64(0); id < size.SiteCount(); id++ {
				v := size.Vector(id)
				So(size.LinearID(v), ShouldEqual, id)
			}
		})
	})
}

func TestOccCodePacking(t *testing.T) {
	Convey("Given a path of particle ids", t, func() {
		ids := []ID{3, 0, 7, 255}
		code := BuildOccCode(ids)

		Convey("Each position unpacks to its original id", func() {
			for i, id := range ids {
				So(code.At(i), ShouldEqual, id)
			}
		})

		Convey("WithAt replaces exactly one byte", func() {
			replaced := code.WithAt(1, 9)
			So(replaced.At(0), ShouldEqual, ids[0])
			So(replaced.At(1), ShouldEqual, ID(9))
			So(replaced.At(2), ShouldEqual, ids[2])
			So(replaced.At(3), ShouldEqual, ids[3])
		})

		Convey("Equal sequences produce equal codes", func() {
			So(BuildOccCode(ids), ShouldEqual, code)
		})
	})

	Convey("IsResolvable excludes only the Null sentinel", t, func() {
		So(IsResolvable(Void), ShouldBeTrue)
		So(IsResolvable(42), ShouldBeTrue)
		So(IsResolvable(Null), ShouldBeFalse)
	})
}
