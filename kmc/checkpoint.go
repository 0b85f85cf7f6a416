package kmc

import (
	"github.com/niceyeti/ionhop/checkpoint"
	"github.com/niceyeti/ionhop/pool"
	"github.com/niceyeti/ionhop/tracker"
)

// Snapshot captures the engine's full mutable state into a
// checkpoint.State, ready for Encode/WriteAtomic.
func (e *Engine) Snapshot() *checkpoint.State {
	n := e.Lattice.SiteCount()
	lattice := make([]byte, n)
	mobileEnvID := make([]int64, len(e.Trackers.Mobile))
	for id := int64(0); id < n; id++ {
		s := e.Lattice.At(id)
		lattice[id] = byte(s.ParticleID)
		if s.IsMobile && s.MobileTrackerID >= 0 {
			mobileEnvID[s.MobileTrackerID] = id
		}
	}

	counters := make([]checkpoint.CounterCollection, len(e.Counters.ByParticle))
	for i, c := range e.Counters.ByParticle {
		counters[i] = checkpoint.CounterCollection{
			MCSCount:           c.MCS,
			RejectionCount:     c.Rejection,
			SiteBlockingCount:  c.SiteBlocking,
			UnstableStartCount: c.UnstableStart,
			UnstableEndCount:   c.UnstableEnd,
		}
	}

	collectionCount := e.Histograms.CollectionCount()
	particleLimit := e.Histograms.ParticleLimit()
	jumpStats := make([]checkpoint.JumpStatisticSet, 0, collectionCount*particleLimit)
	for c := 0; c < collectionCount; c++ {
		for p := 0; p < particleLimit; p++ {
			jumpStats = append(jumpStats, checkpoint.FromCollectionHistograms(e.Histograms.At(c, byte(p))))
		}
	}

	mobile := make([]tracker.Vector3, len(e.Trackers.Mobile))
	copy(mobile, e.Trackers.Mobile)

	return &checkpoint.State{
		Header: checkpoint.Header{
			MCS:    e.Counters.Cycle.MCSCount,
			Cycles: e.Counters.Cycle.CycleCount,
		},
		Meta: checkpoint.Meta{
			SimulatedTime:      e.SimulatedTime,
			JumpNormalization:  e.TotalJumpNormalization,
			MaxJumpProbability: e.MaxRawProbability,
			LatticeEnergy:      e.LatticeEnergyEV(),
			RNGState:           e.RNG.State,
			RNGIncrease:        e.RNG.Inc,
		},
		Lattice:             lattice,
		Counters:            counters,
		GlobalTrackers:      e.Trackers.FlattenGlobal(),
		MobileTrackers:      mobile,
		StaticTrackers:      e.Trackers.FlattenStatic(),
		MobileTrackerEnvID:  mobileEnvID,
		JumpStatistics:      jumpStats,
	}
}

// Restore overwrites the engine's mutable state from a decoded
// checkpoint.State, reconstructing derived state (energies, selection
// pool, mobile-tracker assignments) rather than copying it.
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

	for trackerID, envID := range s.MobileTrackerEnvID {
		if int(envID) >= 0 && envID < n {
			e.Lattice.At(envID).MobileTrackerID = int64(trackerID)
		}
	}

	for i := range e.Counters.ByParticle {
		if i >= len(s.Counters) {
			break
		}
		c := s.Counters[i]
		e.Counters.ByParticle[i] = ParticleCounters{
			MCS:           c.MCSCount,
			Rejection:     c.RejectionCount,
			SiteBlocking:  c.SiteBlockingCount,
			UnstableStart: c.UnstableStartCount,
			UnstableEnd:   c.UnstableEndCount,
		}
	}
	e.Counters.Cycle.CycleCount = s.Header.Cycles
	e.Counters.Cycle.MCSCount = s.Header.MCS

	if len(s.GlobalTrackers) > 0 {
		e.Trackers.LoadGlobal(s.GlobalTrackers)
	}
	if len(s.StaticTrackers) > 0 {
		e.Trackers.LoadStatic(s.StaticTrackers)
	}
	if len(s.MobileTrackers) > 0 {
		copy(e.Trackers.Mobile, s.MobileTrackers)
	}

	collectionCount := e.Histograms.CollectionCount()
	particleLimit := e.Histograms.ParticleLimit()
	for c := 0; c < collectionCount; c++ {
		for p := 0; p < particleLimit; p++ {
			idx := c*particleLimit + p
			if idx >= len(s.JumpStatistics) {
				continue
			}
			s.JumpStatistics[idx].ApplyTo(e.Histograms.At(c, byte(p)))
		}
	}

	e.SimulatedTime = s.Meta.SimulatedTime
	e.TotalJumpNormalization = s.Meta.JumpNormalization
	e.MaxRawProbability = s.Meta.MaxJumpProbability
	e.RNG.State = s.Meta.RNGState
	e.RNG.Inc = s.Meta.RNGIncrease
}
