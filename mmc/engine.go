// Package mmc implements the Metropolis Monte Carlo engine: pairwise
// swap selection, S0/S2 energetics, and the Metropolis acceptance
// criterion.
package mmc

import (
	"math"

	"github.com/niceyeti/ionhop/env"
	"github.com/niceyeti/ionhop/model"
	"github.com/niceyeti/ionhop/particle"
	"github.com/niceyeti/ionhop/pool"
	"github.com/niceyeti/ionhop/rng"
)

// Outcome classifies how one MMC trial resolved.
type Outcome int

const (
	OutcomeSiteBlocking Outcome = iota
	OutcomeAccepted
	OutcomeRejected
)

// Engine owns the lattice, selection pool, and RNG stream an MMC run
// mutates.
type Engine struct {
	Job     *model.Job
	Lattice *env.Lattice
	Pool    *pool.Pool
	RNG     *rng.PCG32

	registrations []pool.Registration

	// fluctuation is the rolling (S2-S0) ring buffer used by the
	// energy-relaxation abort condition.
	fluctuation    []float64
	fluctuationPos int
	currentSum     float64
	fluctuationFull bool

	AcceptedCount int64
	RejectedCount int64
	cycleCount    int64
}

// Step runs one cycle and reports whether it resolved as accepted,
// satisfying the loop package's engine-agnostic Runner interface.
func (e *Engine) Step() bool {
	return e.RunCycle() == OutcomeAccepted
}

// CycleCount returns the number of MMC trials run so far.
func (e *Engine) CycleCount() int64 { return e.cycleCount }

// MCSCount returns the number of accepted swaps so far.
func (e *Engine) MCSCount() int64 { return e.AcceptedCount }

// LatticeEnergyEV returns the current total lattice energy in eV by
// full recomputation.
func (e *Engine) LatticeEnergyEV() float64 {
	return e.Lattice.TotalEnergyEV(e.Job.TemperatureK)
}

// ResetAfterPrerun is a no-op for MMC: MMC pre-run is declared but not
// implemented. cmd/ionhop refuses an MMC job that requests a pre-run,
// returning a NotImplemented error rather than silently behaving like
// the main run.
func (e *Engine) ResetAfterPrerun() {}

// NewEngine constructs an MMC Engine from a validated Job.
func NewEngine(j *model.Job) *Engine {
	lat := env.NewLattice(j)
	lat.Resync(j.TemperatureK)

	maxJumpCount := 0
	for _, c := range j.JumpCounts {
		if c > maxJumpCount {
			maxJumpCount = c
		}
	}

	n := j.MMC.AbortSequenceLength
	if n <= 0 {
		n = 1
	}

	e := &Engine{
		Job:           j,
		Lattice:       lat,
		Pool:          pool.New(maxJumpCount),
		RNG:           rng.New(j.RNGSeed, j.RNGInc),
		registrations: make([]pool.Registration, lat.SiteCount()),
		fluctuation:   make([]float64, n),
	}
	e.registerAllSites()

	// IsMobile must be set (registerAllSites, above) before link
	// construction: an immobile sender never changes and so needs no
	// outbound link list (spec.md §4.1's mandatory optimization).
	env.BuildLinks(j, lat, !j.Flags.UseKMC, env.DefaultConstantTolerance())
	return e
}

func (e *Engine) registerAllSites() {
	n := e.Lattice.SiteCount()
	for id := int64(0); id < n; id++ {
		s := e.Lattice.At(id)
		def := s.Definition()
		count := e.Job.JumpCounts.DirectionCountAt(s.Position.D)
		if !s.IsStable || count < 0 {
			s.IsMobile = false
			e.registrations[id] = pool.NotRegistered
			continue
		}
		s.IsMobile = true
		if count == 0 {
			e.registrations[id] = pool.NotRegistered
			continue
		}
		e.registrations[id] = e.Pool.Register(id, count, def.IsSelectable(s.ParticleID))
	}
}

// RunCycle executes one MMC trial: selection, rule lookup, energy
// evaluation, and acceptance.
func (e *Engine) RunCycle() Outcome {
	e.cycleCount++
	sel := e.Pool.Select(e.RNG.NextCeiled)
	if sel.EnvironmentID < 0 {
		return OutcomeSiteBlocking
	}

	siteA := e.Lattice.At(sel.EnvironmentID)
	dirs := e.Job.JumpDirections.DirectionsAt(siteA.Position.D)
	dirID := dirs[sel.RelativeJumpID]
	dir := e.Job.DirectionByID(dirID)

	offsetSourceID := e.RNG.NextCeiled(uint32(e.Lattice.SiteCount()))
	sourceVec := e.Lattice.Size().Vector(int64(offsetSourceID))
	targetVec := particle.Vec4{A: sourceVec.A, B: sourceVec.B, C: sourceVec.C, D: dir.Offsets[0].D}
	targetVec = e.Lattice.Size().Wrap(targetVec)
	siteB := e.Lattice.AtVector(targetVec)

	identityRule := &model.JumpRule{
		StateCode2: particle.BuildOccCode([]particle.ID{siteB.ParticleID, siteA.ParticleID}),
	}
	if !withinInteractionRange(e.Lattice.Size(), siteA.Position, siteB.Position, e.Job.InteractionRange) {
		return e.decideSwap(siteA, siteB, identityRule, 0, 0)
	}

	collection := e.Job.CollectionByID(dir.CollectionID)
	code0 := particle.BuildOccCode([]particle.ID{siteA.ParticleID, siteB.ParticleID})
	rule, ok := collection.FindRule(code0)
	if !ok {
		return OutcomeSiteBlocking
	}

	s0 := siteA.EnergyStates[siteA.ParticleID] + siteB.EnergyStates[siteB.ParticleID]
	s2 := e.computeSwappedEnergy(siteA, siteB, rule)

	return e.decideSwap(siteA, siteB, rule, s0, s2)
}

func withinInteractionRange(size particle.Size, a, b particle.Vec4, r int32) bool {
	if r <= 0 {
		return true
	}
	return axisDist(a.A, b.A, size.A) <= r && axisDist(a.B, b.B, size.B) <= r && axisDist(a.C, b.C, size.C) <= r
}

func axisDist(x, y, n int32) int32 {
	d := x - y
	if d < 0 {
		d = -d
	}
	if n > 0 && d > n/2 {
		d = n - d
	}
	return d
}

// computeSwappedEnergy evaluates S2: the energy of the lattice with
// siteA and siteB's occupants swapped, via the same backup/stage/apply/
// restore primitives the KMC engine uses for its local delta. Only the
// links between the two swapped sites are applied, since S2 reads just
// their two energy slots; no other site is modified.
func (e *Engine) computeSwappedEnergy(siteA, siteB *env.State, rule *model.JumpRule) float64 {
	siteA.BackupEnergy()
	siteA.BackupClusters()
	siteB.BackupEnergy()
	siteB.BackupClusters()

	oldA, oldB := siteA.ParticleID, siteB.ParticleID
	newA, newB := rule.StateCode2.At(0), rule.StateCode2.At(1)
	for _, link := range siteA.Links {
		if link.TargetEnvID == siteB.EnvID {
			env.ApplyLinkDelta(e.Job, siteB, link, oldA, newA)
		}
	}
	for _, link := range siteB.Links {
		if link.TargetEnvID == siteA.EnvID {
			env.ApplyLinkDelta(e.Job, siteA, link, oldB, newB)
		}
	}

	s2 := siteA.EnergyStates[newA] + siteB.EnergyStates[newB]

	siteA.RestoreEnergy()
	siteA.RestoreClusters()
	siteB.RestoreEnergy()
	siteB.RestoreClusters()

	return s2
}

// decideSwap applies the Metropolis criterion p_accept = min(1, exp(-Δ))
// and, on acceptance, permanently swaps the two sites' occupants and
// updates the pool.
func (e *Engine) decideSwap(siteA, siteB *env.State, rule *model.JumpRule, s0, s2 float64) Outcome {
	delta := s2 - s0
	p := math.Exp(-delta)
	if p > 1 {
		p = 1
	}
	if p < e.RNG.NextDouble() {
		e.RejectedCount++
		return OutcomeRejected
	}

	oldA, oldB := siteA.ParticleID, siteB.ParticleID
	newA, newB := rule.StateCode2.At(0), rule.StateCode2.At(1)
	for _, link := range siteA.Links {
		env.ApplyLinkDelta(e.Job, e.Lattice.At(link.TargetEnvID), link, oldA, newA)
	}
	for _, link := range siteB.Links {
		env.ApplyLinkDelta(e.Job, e.Lattice.At(link.TargetEnvID), link, oldB, newB)
	}
	siteA.ParticleID, siteB.ParticleID = newA, newB

	e.updateSitePoolRegistration(siteA.EnvID)
	e.updateSitePoolRegistration(siteB.EnvID)

	e.recordFluctuation(delta)
	e.AcceptedCount++
	return OutcomeAccepted
}

func (e *Engine) updateSitePoolRegistration(envID int64) {
	site := e.Lattice.At(envID)
	def := site.Definition()
	oldReg := e.registrations[envID]
	oldCount := 0
	if oldReg.PoolID != pool.NotSelectable {
		oldCount = e.Pool.Pools[oldReg.PoolID].DirectionCount
	}
	newCount := e.Job.JumpCounts.DirectionCountAt(site.Position.D)
	res := e.Pool.Update(envID, oldReg, oldCount, newCount, def.IsSelectable(site.ParticleID))
	e.registrations[envID] = res.New
	if res.MovedHappened {
		e.registrations[res.MovedEnvID] = res.MovedNewReg
	}
}

// recordFluctuation folds delta into the rolling ring buffer the
// energy-relaxation abort condition consults.
func (e *Engine) recordFluctuation(delta float64) {
	old := e.fluctuation[e.fluctuationPos]
	e.fluctuation[e.fluctuationPos] = delta
	e.currentSum += delta - old
	e.fluctuationPos++
	if e.fluctuationPos >= len(e.fluctuation) {
		e.fluctuationPos = 0
		e.fluctuationFull = true
	}
}

// ShouldAbort reports whether the energy-fluctuation abort condition has
// tripped, given the current total lattice energy in eV and the job's
// configured tolerance. Skipped (always false) when tolerance <= 0.
func (e *Engine) ShouldAbort(latticeEnergyEV float64, ktToEV float64) bool {
	if e.Job.MMC.AbortTolerance <= 0 || !e.fluctuationFull {
		return false
	}
	return math.Abs(e.currentSum*ktToEV) <= math.Abs(latticeEnergyEV*e.Job.MMC.AbortTolerance)
}
