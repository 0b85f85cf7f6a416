// Package kmc implements the kinetic Monte Carlo engine: selection,
// path construction, rule lookup, S0/S1/S2 energetics, the
// accept/reject decision, and lattice/tracker/pool advancement.
package kmc

import (
	"math"

	"github.com/niceyeti/ionhop/cycle"
	"github.com/niceyeti/ionhop/env"
	"github.com/niceyeti/ionhop/model"
	"github.com/niceyeti/ionhop/plugin"
	"github.com/niceyeti/ionhop/pool"
	"github.com/niceyeti/ionhop/rng"
	"github.com/niceyeti/ionhop/tracker"
)

// jumpLimitMax clamps max_raw_probability at unity.
const jumpLimitMax = 1.0

// freqSkipThreshold gates the optional frequency pre-skip: a rule whose
// frequency factor falls below this is a candidate for the extra
// uniform pre-test. Left as a build-time constant rather than a job
// parameter since no job in practice needs to tune it.
const freqSkipThreshold = 1e-6

// Engine owns everything a KMC cycle mutates: the lattice, selection
// pool, trackers, histograms, RNG stream, and per-cycle scratch.
type Engine struct {
	Job        *model.Job
	Lattice    *env.Lattice
	Pool       *pool.Pool
	Trackers   *tracker.Set
	Histograms *tracker.Histograms
	RNG        *rng.PCG32
	Cycle      *cycle.State
	Counters   *Counters

	// registrations[envID] is the site's current pool registration, kept
	// outside env.State so the pool package never needs to know about
	// env's internal layout.
	registrations []pool.Registration

	EnergyHook plugin.EnergyHook

	TotalJumpNormalization float64
	MaxRawProbability      float64
	SimulatedTime          float64

	// UseSafeMaxProbability enables the backjump-safe max-probability
	// variant used during the pre-run phase.
	UseSafeMaxProbability bool

	DisableJumpLog bool
	UseFastExp     bool
}

// NewEngine constructs an Engine from a validated Job, allocating the
// lattice, pool, trackers, and histograms, and registering every site
// into the selection pool.
func NewEngine(j *model.Job) *Engine {
	lat := env.NewLattice(j)
	lat.Resync(j.TemperatureK)

	maxJumpCount := 0
	for _, counts := range j.JumpCounts {
		if counts > maxJumpCount {
			maxJumpCount = counts
		}
	}

	p := pool.New(maxJumpCount)
	mobileCount := int(j.MobileParticleCount())
	histMin, histMax, histBins := histogramBounds(j)

	e := &Engine{
		Job:        j,
		Lattice:    lat,
		Pool:       p,
		Trackers:   tracker.NewSet(mobileCount, int(j.LatticeSize.D), len(j.Collections), particleLimit),
		Histograms: tracker.NewHistograms(len(j.Collections), particleLimit, histMin, histMax, histBins),
		RNG:        rng.New(j.RNGSeed, j.RNGInc),
		Cycle:      &cycle.State{},
		Counters:   NewCounters(particleLimit),

		registrations:          make([]pool.Registration, lat.SiteCount()),
		TotalJumpNormalization: 1.0,
		MaxRawProbability:      0,
		DisableJumpLog:         j.Flags.DisableJumpLog,
		UseFastExp:             j.Flags.UseFastExp,
	}

	e.registerAllSites()
	e.assignInitialMobileTrackers()

	// IsMobile must be set (registerAllSites, above) before link
	// construction: an immobile sender never changes and so needs no
	// outbound link list (spec.md §4.1's mandatory optimization).
	env.BuildLinks(j, lat, !j.Flags.UseKMC, env.DefaultConstantTolerance())
	return e
}

const particleLimit = 64

func histogramBounds(j *model.Job) (min, max float64, n int) {
	max = tracker.DefaultMax
	if j.JumpHistogramMax > 0 {
		max = j.JumpHistogramMax
	}
	return tracker.DefaultMin, max, tracker.DefaultBinCount
}

func (e *Engine) registerAllSites() {
	n := e.Lattice.SiteCount()
	for id := int64(0); id < n; id++ {
		e.registerSite(id)
	}
}

func (e *Engine) registerSite(envID int64) {
	s := e.Lattice.At(envID)
	def := s.Definition()
	count := e.Job.JumpCounts.DirectionCountAt(s.Position.D)

	if !s.IsStable || count < 0 {
		s.IsMobile = false
		e.registrations[envID] = pool.NotRegistered
		return
	}
	if count == 0 {
		s.IsMobile = true
		e.registrations[envID] = pool.NotRegistered
		return
	}
	s.IsMobile = true
	selectable := def.IsSelectable(s.ParticleID)
	e.registrations[envID] = e.Pool.Register(envID, count, selectable)
}

func (e *Engine) assignInitialMobileTrackers() {
	var next int64
	n := e.Lattice.SiteCount()
	for id := int64(0); id < n; id++ {
		s := e.Lattice.At(id)
		if s.IsMobile {
			s.MobileTrackerID = next
			next++
		}
	}
}

// uniform returns a draw in [0,1], used for the Metropolis-style
// acceptance comparisons.
func (e *Engine) uniform() float64 {
	return e.RNG.NextDouble()
}

func (e *Engine) expFn(x float64) float64 {
	if e.UseFastExp {
		return fastExp(x)
	}
	return math.Exp(x)
}

// Step runs one cycle and reports whether it resolved as accepted,
// satisfying the loop package's engine-agnostic Runner interface.
func (e *Engine) Step() bool {
	return e.RunCycle() == cycle.OutcomeAccepted
}

// CycleCount returns the number of cycles executed so far.
func (e *Engine) CycleCount() int64 { return e.Counters.Cycle.CycleCount }

// MCSCount returns the number of accepted jumps so far.
func (e *Engine) MCSCount() int64 { return e.Counters.Cycle.MCSCount }

// LatticeEnergyEV returns the current total lattice energy in eV by
// full recomputation.
func (e *Engine) LatticeEnergyEV() float64 {
	return e.Lattice.TotalEnergyEV(e.Job.TemperatureK)
}

// SimulatedTimeS returns the accumulated simulated time in seconds.
func (e *Engine) SimulatedTimeS() float64 { return e.SimulatedTime }

// ResetAfterPrerun zeroes counters and histograms and resets trackers,
// simulated time, and cycle progress. Called once the pre-run phase
// ends (mcs_count >= prerun_goal_mcs), before the main phase begins.
func (e *Engine) ResetAfterPrerun() {
	e.Counters.Reset()
	e.Histograms.Reset()
	e.SimulatedTime = 0
	e.Trackers.Reset()
}

// RunCycle executes exactly one KMC trial: selection, path build, rule
// lookup, energetics, accept/reject, and any resulting lattice
// advancement.
func (e *Engine) RunCycle() cycle.Outcome {
	outcome := e.runCycleInner()
	e.Counters.Cycle.CycleCount++
	if outcome == cycle.OutcomeAccepted {
		e.Counters.Cycle.MCSCount++
	}
	return outcome
}

func (e *Engine) runCycleInner() cycle.Outcome {
	sel := e.Pool.Select(e.RNG.NextCeiled)
	if sel.EnvironmentID < 0 {
		e.Cycle.Outcome = cycle.OutcomeSiteBlocking
		return e.Cycle.Outcome
	}

	origin := e.Lattice.At(sel.EnvironmentID)
	dirID := e.Job.JumpDirections.DirectionsAt(origin.Position.D)[sel.RelativeJumpID]
	dir := e.Job.DirectionByID(dirID)

	e.buildPath(origin, dir)
	e.Cycle.DirectionID = dirID

	collection := e.Job.CollectionByID(dir.CollectionID)
	e.Cycle.CollectionID = dir.CollectionID

	rule, ok := collection.FindRule(e.Cycle.Code0)
	if !ok {
		e.recordSiteBlocking(origin.ParticleID)
		e.Cycle.Outcome = cycle.OutcomeSiteBlocking
		return e.Cycle.Outcome
	}
	e.Cycle.Rule = rule
	e.Cycle.Code1 = rule.StateCode1
	e.Cycle.Code2 = rule.StateCode2

	if e.maybeFrequencySkip(rule, origin.ParticleID) {
		e.Cycle.Outcome = cycle.OutcomeSkipped
		return e.Cycle.Outcome
	}

	e.buildJumpLinks()
	e.computeEnergetics(dir, rule)

	outcome := e.decide(rule, origin.ParticleID)
	e.Cycle.Outcome = outcome
	return outcome
}

func (e *Engine) maybeFrequencySkip(rule *model.JumpRule, particleID byte) bool {
	if rule.FrequencyFactor >= freqSkipThreshold {
		return false
	}
	if e.uniform() < rule.FrequencyFactor/freqSkipThreshold {
		return false
	}
	e.Counters.ByParticle[particleID].Skip++
	e.SimulatedTime += e.timeStep()
	return true
}

func (e *Engine) recordSiteBlocking(particleID byte) {
	e.Counters.ByParticle[particleID].SiteBlocking++
	e.SimulatedTime += e.timeStep()
}
