// Package monitor implements the optional status server: it is not
// itself a plugin, but a reference OutputHook implementation that
// exposes the same per-block snapshot over HTTP/websocket instead of
// (or alongside) a dynamically loaded callback.
package monitor

import (
	"math"

	"github.com/niceyeti/ionhop/atomic_float"
)

// BlockReport is the idempotent snapshot pushed to a connected client
// after every block sync: the same fields plugin.SimulationView carries,
// plus a cycle rate (the view's total cycle count divided by its
// SimulatedTime) and an ETA.
type BlockReport struct {
	CycleCount      int64   `json:"cycleCount"`
	MCSCount        int64   `json:"mcsCount"`
	GoalMCSCount    int64   `json:"goalMcsCount"`
	SimulatedTime   float64 `json:"simulatedTimeS"`
	LatticeEnergyEV float64 `json:"latticeEnergyEV"`
	CycleRateHz     float64 `json:"cycleRateHz"`
	EtaSeconds      float64 `json:"etaSeconds"`
}

// RemainingRunTimeSeconds estimates the wall-clock time left to reach
// goalMCS at the given MCS-per-second rate: (goal-current)/rate. A
// non-finite result (rate is zero or the run is already past goal)
// reports zero rather than NaN or Inf.
func RemainingRunTimeSeconds(currentMCS, goalMCS int64, mcsPerSecond float64) float64 {
	if mcsPerSecond <= 0 {
		return 0
	}
	eta := float64(goalMCS-currentMCS) / mcsPerSecond
	if math.IsInf(eta, 0) || math.IsNaN(eta) || eta < 0 {
		return 0
	}
	return eta
}

// LiveStats holds the most recent BlockReport fields behind atomic
// float operations, so an HTTP handler goroutine can read them while the
// single-threaded solver loop concurrently overwrites them at the next
// block boundary without a mutex: one atomic_float.AtomicFloat64 per
// report value.
type LiveStats struct {
	cycleCount      *atomic_float.AtomicFloat64
	mcsCount        *atomic_float.AtomicFloat64
	goalMCSCount    *atomic_float.AtomicFloat64
	simulatedTime   *atomic_float.AtomicFloat64
	latticeEnergyEV *atomic_float.AtomicFloat64
	cycleRateHz     *atomic_float.AtomicFloat64
	etaSeconds      *atomic_float.AtomicFloat64
}

// NewLiveStats returns a zeroed LiveStats.
func NewLiveStats() *LiveStats {
	return &LiveStats{
		cycleCount:      atomic_float.NewAtomicFloat64(0),
		mcsCount:        atomic_float.NewAtomicFloat64(0),
		goalMCSCount:    atomic_float.NewAtomicFloat64(0),
		simulatedTime:   atomic_float.NewAtomicFloat64(0),
		latticeEnergyEV: atomic_float.NewAtomicFloat64(0),
		cycleRateHz:     atomic_float.NewAtomicFloat64(0),
		etaSeconds:      atomic_float.NewAtomicFloat64(0),
	}
}

// Update overwrites every field from a new report. A compare-and-swap
// failure (a concurrent writer raced this one) is retried: only the
// solver's own loop goroutine ever calls Update, so a retry is a tight
// spin against at most one other attempt, never unbounded contention.
func (ls *LiveStats) Update(r BlockReport) {
	setRetrying(ls.cycleCount, float64(r.CycleCount))
	setRetrying(ls.mcsCount, float64(r.MCSCount))
	setRetrying(ls.goalMCSCount, float64(r.GoalMCSCount))
	setRetrying(ls.simulatedTime, r.SimulatedTime)
	setRetrying(ls.latticeEnergyEV, r.LatticeEnergyEV)
	setRetrying(ls.cycleRateHz, r.CycleRateHz)
	setRetrying(ls.etaSeconds, r.EtaSeconds)
}

func setRetrying(af *atomic_float.AtomicFloat64, v float64) {
	for !af.AtomicSet(v) {
	}
}

// Snapshot reads every field back into a BlockReport for a client
// response.
func (ls *LiveStats) Snapshot() BlockReport {
	return BlockReport{
		CycleCount:      int64(ls.cycleCount.AtomicRead()),
		MCSCount:        int64(ls.mcsCount.AtomicRead()),
		GoalMCSCount:    int64(ls.goalMCSCount.AtomicRead()),
		SimulatedTime:   ls.simulatedTime.AtomicRead(),
		LatticeEnergyEV: ls.latticeEnergyEV.AtomicRead(),
		CycleRateHz:     ls.cycleRateHz.AtomicRead(),
		EtaSeconds:      ls.etaSeconds.AtomicRead(),
	}
}
