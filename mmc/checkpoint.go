package mmc

import (
	"github.com/niceyeti/ionhop/checkpoint"
	"github.com/niceyeti/ionhop/pool"
)

// Snapshot captures the engine's mutable state into a checkpoint.State.
// MMC carries no trackers or jump histograms (transport bookkeeping is
// a KMC concern), so those subspans are left empty and Encode records
// them absent.
func (e *Engine) Snapshot() *checkpoint.State {
	n := e.Lattice.SiteCount()
	lattice := make([]byte, n)
	for id := int64(0); id < n; id++ {
		lattice[id] = e.Lattice.At(id).ParticleID
	}

	return &checkpoint.State{
		Header: checkpoint.Header{
			MCS:    e.AcceptedCount,
			Cycles: e.cycleCount,
		},
		Meta: checkpoint.Meta{
			LatticeEnergy: e.LatticeEnergyEV(),
			RNGState:      e.RNG.State,
			RNGIncrease:   e.RNG.Inc,
		},
		Lattice: lattice,
		Counters: []checkpoint.CounterCollection{{
			CycleCount:     e.cycleCount,
			MCSCount:       e.AcceptedCount,
			RejectionCount: e.RejectedCount,
		}},
	}
}

// Restore overwrites the engine's mutable state from a decoded
// checkpoint.State, reconstructing the selection pool and energies
// rather than copying them.
func (e *Engine) Restore(s *checkpoint.State) {
	n := e.Lattice.SiteCount()
	for id := int64(0); id < n && int(id) < len(s.Lattice); id++ {
		e.Lattice.At(id).ParticleID = s.Lattice[id]
	}
	e.Lattice.Resync(e.Job.TemperatureK)

	maxJumpCount := 0
	for _, counts := range e.Job.JumpCounts {
		if counts > maxJumpCount {
			maxJumpCount = counts
		}
	}
	e.Pool = pool.New(maxJumpCount)
	e.registrations = make([]pool.Registration, n)
	e.registerAllSites()

	if len(s.Counters) > 0 {
		e.cycleCount = s.Counters[0].CycleCount
		e.AcceptedCount = s.Counters[0].MCSCount
		e.RejectedCount = s.Counters[0].RejectionCount
	} else {
		e.cycleCount = s.Header.Cycles
		e.AcceptedCount = s.Header.MCS
	}

	e.RNG.State = s.Meta.RNGState
	e.RNG.Inc = s.Meta.RNGIncrease
}
