package pool

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRegisterAndSelect(t *testing.T) {
	Convey("Given a pool with sites registered across two jump counts", t, func() {
		p := New(4)
		reg1 := p.Register(10, 2, true)
		reg2 := p.Register(11, 2, true)
		reg3 := p.Register(20, 3, true)

		Convey("SelectableJumpCount is the sum of position_count*direction_count", func() {
			So(p.SelectableJumpCount, ShouldEqual, int64(2*2+1*3))
		})

		Convey("Every registration points back at its pool's stored environment id", func() {
			So(p.Pools[reg1.PoolID].Environments[reg1.PositionID], ShouldEqual, int64(10))
			So(p.Pools[reg2.PoolID].Environments[reg2.PositionID], ShouldEqual, int64(11))
			So(p.Pools[reg3.PoolID].Environments[reg3.PositionID], ShouldEqual, int64(20))
		})

		Convey("Selection always returns a registered environment id", func() {
			calls := 0
			draw := func(ceil uint32) uint32 {
				v := uint32(calls) % ceil
				calls++
				return v
			}
			seen := map[int64]bool{}
			for i := 0; i < 50; i++ {
				sel := p.Select(draw)
				So(sel.EnvironmentID, ShouldBeGreaterThan, int64(-1))
				seen[sel.EnvironmentID] = true
			}
			So(seen[10] || seen[11] || seen[20], ShouldBeTrue)
		})

		Convey("A pool with zero selectable jumps returns the not-found sentinel", func() {
			empty := New(4)
			sel := empty.Select(func(ceil uint32) uint32 { return 0 })
			So(sel.EnvironmentID, ShouldEqual, int64(-1))
		})
	})
}

func TestUnregisterSwapWithLast(t *testing.T) {
	Convey("Given three sites registered in the same bucket", t, func() {
		p := New(2)
		r1 := p.Register(1, 2, true)
		_ = p.Register(2, 2, true)
		r3 := p.Register(3, 2, true)

		Convey("Removing the first swaps the last entry into its slot", func() {
			moved, didMove := p.Unregister(r1, 2)
			So(didMove, ShouldBeTrue)
			So(moved, ShouldEqual, int64(3))
			So(p.Pools[r1.PoolID].Environments[r1.PositionID], ShouldEqual, int64(3))
			So(p.Pools[r1.PoolID].PositionCount, ShouldEqual, 2)
		})

		Convey("Removing the last entry reports no move", func() {
			_, didMove := p.Unregister(r3, 2)
			So(didMove, ShouldBeFalse)
		})

		Convey("SelectableJumpCount decreases by the removed site's jump count", func() {
			before := p.SelectableJumpCount
			p.Unregister(r1, 2)
			So(p.SelectableJumpCount, ShouldEqual, before-2)
		})
	})
}

func TestUpdateTransitions(t *testing.T) {
	Convey("Given a registered site", t, func() {
		p := New(4)
		reg := p.Register(5, 2, true)

		Convey("No change when count and selectability are unchanged", func() {
			res := p.Update(5, reg, 2, 2, true)
			So(res.CountChanged, ShouldBeFalse)
			So(res.New, ShouldResemble, reg)
		})

		Convey("Becoming unselectable unregisters and reports count changed", func() {
			res := p.Update(5, reg, 2, 2, false)
			So(res.CountChanged, ShouldBeTrue)
			So(res.New, ShouldResemble, NotRegistered)
		})

		Convey("A selectable site moving to a new pool re-registers under the new count", func() {
			res := p.Update(5, reg, 2, 3, true)
			So(res.CountChanged, ShouldBeTrue)
			So(res.New.PoolID, ShouldNotEqual, NotSelectable)
			So(p.Pools[res.New.PoolID].DirectionCount, ShouldEqual, 3)
		})

		Convey("An unregistered site becoming selectable registers fresh", func() {
			notReg := NotRegistered
			res := p.Update(6, notReg, 0, 3, true)
			So(res.CountChanged, ShouldBeTrue)
			So(res.New.PoolID, ShouldNotEqual, NotSelectable)
		})
	})
}
