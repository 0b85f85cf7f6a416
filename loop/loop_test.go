package loop

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// fakeRunner is a deterministic stand-in for kmc.Engine/mmc.Engine that
// accepts every cycle, used to drive the loop's phase and abort logic in
// isolation from the physics.
type fakeRunner struct {
	cycles int64
	mcs    int64
	energy float64
}

func (f *fakeRunner) Step() bool {
	f.cycles++
	f.mcs++
	return true
}
func (f *fakeRunner) CycleCount() int64       { return f.cycles }
func (f *fakeRunner) MCSCount() int64         { return f.mcs }
func (f *fakeRunner) LatticeEnergyEV() float64 { return f.energy }
func (f *fakeRunner) ResetAfterPrerun() {
	f.cycles, f.mcs = 0, 0
}

func TestConfigGoals(t *testing.T) {
	Convey("Given a Config with a non-dividing target", t, func() {
		cfg := Config{TargetMCSP: 1.0, MobileParticleCount: 250, BlockCount: 100}

		Convey("TotalGoalMCS rounds up to a multiple of BlockCount", func() {
			So(cfg.TotalGoalMCS(), ShouldEqual, 300)
		})

		Convey("PrerunGoalMCS rounds up the same way", func() {
			cfg.PrerunTargetMCSP = 0.01
			So(cfg.PrerunGoalMCS()%100, ShouldEqual, 0)
		})
	})

	Convey("Given a Config with no explicit BlockCycles/BlockCount", t, func() {
		cfg := Config{}
		So(cfg.blockCycles(), ShouldEqual, defaultMinBlockCycles)
		So(cfg.blockCount(), ShouldEqual, defaultBlockCount)
	})
}

func TestLoopCompletion(t *testing.T) {
	Convey("Given a loop configured with a tiny goal", t, func() {
		runner := &fakeRunner{}
		cfg := Config{
			BlockCycles:         10,
			BlockCount:          1,
			TargetMCSP:          1,
			MobileParticleCount: 25,
			SkipSave:            true,
		}
		l := New(runner, cfg, nil)

		Convey("Run terminates with AbortCompletion once mcs_count reaches the goal", func() {
			reason := l.Run(context.Background(), nil)
			So(reason, ShouldEqual, AbortCompletion)
			So(runner.MCSCount(), ShouldBeGreaterThanOrEqualTo, cfg.TotalGoalMCS())
		})
	})
}

func TestLoopContextCancellation(t *testing.T) {
	Convey("Given a loop whose context is already cancelled", t, func() {
		runner := &fakeRunner{}
		cfg := Config{BlockCycles: 10, BlockCount: 1, TargetMCSP: 1e9, MobileParticleCount: 1}
		l := New(runner, cfg, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Run returns AbortContext without executing a block", func() {
			reason := l.Run(ctx, nil)
			So(reason, ShouldEqual, AbortContext)
			So(runner.CycleCount(), ShouldEqual, 0)
		})
	})
}

func TestLoopPrerunTransition(t *testing.T) {
	Convey("Given a loop with a pre-run phase", t, func() {
		runner := &fakeRunner{}
		cfg := Config{
			BlockCycles:         5,
			BlockCount:          1,
			UsePrerun:           true,
			PrerunTargetMCSP:    1,
			TargetMCSP:          2,
			MobileParticleCount: 5,
			SkipSave:            true,
		}
		l := New(runner, cfg, nil)
		So(l.Phase(), ShouldEqual, PhasePrerun)

		Convey("Crossing the pre-run goal resets counters and moves to the main phase", func() {
			clock := time.Now()
			tick := func() time.Time { clock = clock.Add(time.Millisecond); return clock }
			reason := l.Run(context.Background(), tick)
			So(l.Phase(), ShouldEqual, PhaseMain)
			So(reason, ShouldEqual, AbortCompletion)
		})
	})
}
