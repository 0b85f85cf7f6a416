// Package loop drives the main simulation loop: block/cycle counters,
// phase transitions (KMC pre-run -> main), abort-condition evaluation,
// and block-boundary checkpoint writes and output-hook invocation. The
// loop itself stays single-threaded and synchronous: no goroutine or
// channel appears inside a block's inner cycle loop, only at the
// cooperative block boundary a caller's context is consulted.
package loop

import (
	"context"
	"math"
	"time"

	"github.com/niceyeti/ionhop/checkpoint"
	"github.com/niceyeti/ionhop/plugin"
	"github.com/niceyeti/ionhop/units"
)

// Runner is the engine-agnostic surface the loop drives; both kmc.Engine
// and mmc.Engine satisfy it without either importing this package.
type Runner interface {
	Step() bool
	CycleCount() int64
	MCSCount() int64
	LatticeEnergyEV() float64
	ResetAfterPrerun()
}

// Snapshotter is implemented by engines that can serialize their full
// mutable state for a checkpoint write. Both kmc.Engine and mmc.Engine
// implement it.
type Snapshotter interface {
	Snapshot() *checkpoint.State
}

// EnergyAborter is implemented only by the MMC engine: the energy-
// relaxation abort condition, evaluated only during the main phase of
// an MMC run.
type EnergyAborter interface {
	ShouldAbort(latticeEnergyEV, ktToEV float64) bool
}

// Phase distinguishes the KMC self-optimizing pre-run from the main
// phase. MMC runs start directly in PhaseMain.
type Phase int

const (
	PhasePrerun Phase = iota
	PhaseMain
)

func (p Phase) checkpointPhase() checkpoint.Phase {
	if p == PhasePrerun {
		return checkpoint.PhasePrerun
	}
	return checkpoint.PhaseMain
}

// AbortReason names why Run returned.
type AbortReason int

const (
	AbortNone AbortReason = iota
	AbortTimeout
	AbortRate
	AbortCompletion
	AbortEnergyRelaxation
	AbortContext
)

func (r AbortReason) String() string {
	switch r {
	case AbortNone:
		return "none"
	case AbortTimeout:
		return "timeout"
	case AbortRate:
		return "rate"
	case AbortCompletion:
		return "completion"
	case AbortEnergyRelaxation:
		return "energy_relaxation"
	case AbortContext:
		return "context"
	default:
		return "unknown"
	}
}

// defaultMinBlockCycles is the floor on cycles_per_execution_loop:
// block size starts at a minimum of 100,000 cycles.
const defaultMinBlockCycles = 100_000

// defaultBlockCount is the default number of blocks total_goal_mcs is
// rounded up to a multiple of.
const defaultBlockCount = 100

// Config carries everything the loop needs beyond the Runner itself:
// goal computation inputs, abort thresholds, and checkpoint I/O
// location.
type Config struct {
	// BlockCycles is cycles_per_execution_loop; defaults to
	// defaultMinBlockCycles when <= 0.
	BlockCycles int64
	// BlockCount is the divisor total_goal_mcs (and prerun_goal_mcs) is
	// rounded up to a multiple of; defaults to defaultBlockCount when
	// <= 0.
	BlockCount int64

	TargetMCSP          float64
	PrerunTargetMCSP    float64
	MobileParticleCount int64
	UsePrerun           bool

	TimeLimitS       float64
	MinSuccessRateHz float64
	TemperatureK     float64

	IODir    string
	SkipSave bool
}

func (c Config) blockCycles() int64 {
	if c.BlockCycles > 0 {
		return c.BlockCycles
	}
	return defaultMinBlockCycles
}

func (c Config) blockCount() int64 {
	if c.BlockCount > 0 {
		return c.BlockCount
	}
	return defaultBlockCount
}

func roundUpToMultiple(n, m int64) int64 {
	if m <= 0 {
		return n
	}
	if n%m == 0 {
		return n
	}
	return (n/m + 1) * m
}

// TotalGoalMCS computes total_goal_mcs = target_mcsp * mobile_particle_count,
// rounded up to a multiple of BlockCount.
func (c Config) TotalGoalMCS() int64 {
	goal := int64(math.Ceil(c.TargetMCSP * float64(c.MobileParticleCount)))
	return roundUpToMultiple(goal, c.blockCount())
}

// PrerunGoalMCS computes prerun_goal_mcs analogously from PrerunTargetMCSP.
func (c Config) PrerunGoalMCS() int64 {
	goal := int64(math.Ceil(c.PrerunTargetMCSP * float64(c.MobileParticleCount)))
	return roundUpToMultiple(goal, c.blockCount())
}

// Loop owns the run-wide phase/abort state machine around a Runner.
type Loop struct {
	Runner     Runner
	Config     Config
	OutputHook plugin.OutputHook

	phase          Phase
	nextPhaseGoal  int64
	runStart       time.Time
	lastBlockTime  time.Time
	lastBlockCount int64
	elapsedS       float64
}

// New builds a Loop starting in the pre-run phase if the job uses one,
// otherwise directly in the main phase.
func New(runner Runner, cfg Config, hook plugin.OutputHook) *Loop {
	l := &Loop{Runner: runner, Config: cfg, OutputHook: hook, phase: PhaseMain}
	if cfg.UsePrerun {
		l.phase = PhasePrerun
		l.nextPhaseGoal = cfg.PrerunGoalMCS()
	} else {
		l.nextPhaseGoal = cfg.TotalGoalMCS()
	}
	return l
}

// Phase returns the loop's current phase.
func (l *Loop) Phase() Phase { return l.phase }

// Run drives the main loop to completion or abort. now defaults to
// time.Now when nil, letting tests substitute a deterministic clock.
func (l *Loop) Run(ctx context.Context, now func() time.Time) AbortReason {
	if now == nil {
		now = time.Now
	}
	l.runStart = now()
	l.lastBlockTime = l.runStart

	for {
		select {
		case <-ctx.Done():
			return AbortContext
		default:
		}

		blockCycles := l.Config.blockCycles()
		for i := int64(0); i < blockCycles; i++ {
			l.Runner.Step()
		}

		blockEnd := now()
		l.elapsedS = blockEnd.Sub(l.runStart).Seconds()

		if l.Runner.MCSCount() >= l.nextPhaseGoal {
			l.finishExecutionBlock(blockEnd)

			if l.phase == PhasePrerun {
				l.phase = PhaseMain
				l.Runner.ResetAfterPrerun()
				l.nextPhaseGoal = l.Config.TotalGoalMCS()
				l.runStart = blockEnd
				l.lastBlockTime = blockEnd
				l.lastBlockCount = 0
				continue
			}
		}

		if reason := l.evaluateAbortConditions(blockEnd); reason != AbortNone {
			return reason
		}

		l.lastBlockTime = blockEnd
		l.lastBlockCount = l.Runner.CycleCount()
	}
}

func (l *Loop) finishExecutionBlock(at time.Time) {
	if !l.Config.SkipSave && l.Config.IODir != "" {
		if snap, ok := l.Runner.(Snapshotter); ok {
			s := snap.Snapshot()
			// A write failure at a block boundary is recoverable — the
			// caller may retry at the next boundary — so the loop does not
			// abort the run over it.
			_ = checkpoint.WriteAtomic(l.Config.IODir, l.phase.checkpointPhase(), s)
		}
	}
	if l.OutputHook != nil {
		l.OutputHook.OnDataOutput(plugin.SimulationView{
			CycleCount:      l.Runner.CycleCount(),
			MCSCount:        l.Runner.MCSCount(),
			GoalMCSCount:    l.nextPhaseGoal,
			SimulatedTime:   l.elapsedS,
			LatticeEnergyEV: l.Runner.LatticeEnergyEV(),
		})
	}
}

// evaluateAbortConditions checks completion, rate, timeout, and (MMC
// only) energy-relaxation abort conditions.
func (l *Loop) evaluateAbortConditions(at time.Time) AbortReason {
	if l.phase == PhaseMain && l.Runner.MCSCount() >= l.Config.TotalGoalMCS() {
		return AbortCompletion
	}

	elapsed := at.Sub(l.runStart).Seconds()
	if elapsed < 1.0 {
		return AbortNone
	}

	intervalS := at.Sub(l.lastBlockTime).Seconds()
	if intervalS > 0 && l.Config.MinSuccessRateHz > 0 {
		cyclesThisInterval := l.Runner.CycleCount() - l.lastBlockCount
		rate := float64(cyclesThisInterval) / intervalS
		if rate < l.Config.MinSuccessRateHz {
			return AbortRate
		}
	}

	if l.Config.TimeLimitS > 0 {
		rate := float64(l.Runner.CycleCount()) / elapsed
		if rate > 0 {
			projected := elapsed + float64(l.Config.blockCycles())/rate
			if projected > l.Config.TimeLimitS {
				return AbortTimeout
			}
		}
	}

	if aborter, ok := l.Runner.(EnergyAborter); ok && l.phase == PhaseMain {
		ktToEV := units.KTToEV(l.Config.TemperatureK)
		if aborter.ShouldAbort(l.Runner.LatticeEnergyEV(), ktToEV) {
			return AbortEnergyRelaxation
		}
	}

	return AbortNone
}
