// Package env implements the environment lattice: the 4D array of
// mutable per-site state, its incremental energy bookkeeping, and the
// link network that drives incremental updates.
package env

import (
	"math"

	"github.com/niceyeti/ionhop/model"
	"github.com/niceyeti/ionhop/particle"
	"github.com/niceyeti/ionhop/units"
)

// ClusterState is the live state of one cluster interaction at a site:
// its current occupation code, the resolved index into the cluster
// table, and a one-slot backup for rollback during a trial evaluation.
type ClusterState struct {
	Code        particle.OccCode
	CodeIndex   int
	backupCode  particle.OccCode
	backupIndex int
}

func (cs *ClusterState) backup() {
	cs.backupCode, cs.backupIndex = cs.Code, cs.CodeIndex
}

func (cs *ClusterState) restore() {
	cs.Code, cs.CodeIndex = cs.backupCode, cs.backupIndex
}

// State is one lattice site's mutable environment state.
type State struct {
	EnvID       int64
	Position    particle.Vec4
	ParticleID  particle.ID
	IsStable    bool
	IsMobile    bool

	def *model.EnvironmentDefinition

	// EnergyStates[particleID] is the energy (kT units) that particle
	// species particleID would have if it occupied this site, given the
	// current neighborhood. Sized MaxLegalParticleID()+1.
	EnergyStates []float64

	Clusters []ClusterState

	Links []model.EnvironmentLink

	PoolID         int
	PoolPositionID int

	MobileTrackerID int64 // -1 if not mobile

	// PathID is transient cycle scratch: which path position (if any)
	// this site currently occupies during an in-progress KMC/MMC trial.
	// -1 when not part of the active path.
	PathID int

	energyBackup []float64
}

const invalidTrackerID = -1

// NewState allocates a site's state from its environment definition:
// energy states sized max(position particle id)+1, cluster states
// sized to the interaction count.
func NewState(envID int64, pos particle.Vec4, def *model.EnvironmentDefinition) *State {
	s := &State{
		EnvID:           envID,
		Position:        pos,
		def:             def,
		EnergyStates:    make([]float64, int(def.MaxLegalParticleID())+1),
		Clusters:        make([]ClusterState, len(def.ClusterInteractions)),
		MobileTrackerID: invalidTrackerID,
		PathID:          -1,
	}
	return s
}

// Definition returns the immutable environment definition governing
// this site.
func (s *State) Definition() *model.EnvironmentDefinition { return s.def }

// Lattice owns every site's State and drives full/incremental energy
// bookkeeping over the job's tables.
type Lattice struct {
	job   *model.Job
	size  particle.Size
	sites []*State
}

// NewLattice allocates a Lattice from a Job: one State per site, each
// wired to its basis position's EnvironmentDefinition.
func NewLattice(j *model.Job) *Lattice {
	n := j.LatticeSize.SiteCount()
	l := &Lattice{job: j, size: j.LatticeSize, sites: make([]*State, n)}
	for id := int64(0); id < n; id++ {
		v := j.LatticeSize.Vector(id)
		def := j.EnvironmentDefinitionAt(v.D)
		st := NewState(id, v, def)
		st.ParticleID = j.InitialLattice[id]
		st.IsStable = def.IsStable
		l.sites[id] = st
	}
	return l
}

// At returns the site state at linear id.
func (l *Lattice) At(id int64) *State { return l.sites[id] }

// AtVector returns the site state at a (wrapped) 4D vector.
func (l *Lattice) AtVector(v particle.Vec4) *State {
	return l.sites[l.size.LinearID(v)]
}

// Size returns the lattice's super-cell size.
func (l *Lattice) Size() particle.Size { return l.size }

// SiteCount returns the number of sites in the lattice.
func (l *Lattice) SiteCount() int64 { return int64(len(l.sites)) }

// occupantAt reads the particle id currently at v, used while building
// scratch occupation buffers for resync or path construction.
func (l *Lattice) occupantAt(v particle.Vec4) particle.ID {
	return l.AtVector(v).ParticleID
}

// Resync performs a full recomputation of every site's energy and
// cluster state from scratch, returning the total lattice energy in
// eV. This is the ground truth incremental updates must match within
// tolerance after a long run of link-delta applications.
func (l *Lattice) Resync(temperatureK float64) float64 {
	for _, s := range l.sites {
		l.resyncSite(s)
	}
	return l.TotalEnergyEV(temperatureK)
}

func (l *Lattice) resyncSite(s *State) {
	def := s.def
	for i := range s.EnergyStates {
		s.EnergyStates[i] = 0
	}

	defectBG := l.job.DefectBackground
	latticeBG := l.job.LatticeBackground
	for _, legal := range def.LegalParticleIDs {
		if !particle.IsResolvable(legal) {
			continue
		}
		s.EnergyStates[legal] += defectBG.Get(s.Position.D, legal)
		s.EnergyStates[legal] += latticeBG.Get(s.Position, legal)
	}

	partners := make([]particle.ID, len(def.PairInteractions))
	for pi, p := range def.PairInteractions {
		v := l.size.Wrap(s.Position.Add(p.Offset))
		partner := l.occupantAt(v)
		partners[pi] = partner
		pt := l.job.PairTableByID(p.PairTableID)
		for _, legal := range def.LegalParticleIDs {
			if !particle.IsResolvable(legal) {
				continue
			}
			s.EnergyStates[legal] += pt.Get(legal, partner)
		}
	}

	for ci, cint := range def.ClusterInteractions {
		ct := l.job.ClusterTableByID(cint.ClusterTableID)
		ids := make([]particle.ID, len(cint.PairIndices))
		for k, pidx := range cint.PairIndices {
			ids[k] = partners[pidx]
		}
		code := particle.BuildOccCode(ids)
		idx, ok := ct.Lookup(code)
		if !ok {
			// Data inconsistency; the caller validated the job model up
			// front (model.Validate) so this should be unreachable in a
			// well-formed run. Leave the cluster state untouched rather
			// than panic on a live lattice.
			continue
		}
		s.Clusters[ci].Code = code
		s.Clusters[ci].CodeIndex = idx
		for _, legal := range def.LegalParticleIDs {
			if !particle.IsResolvable(legal) {
				continue
			}
			s.EnergyStates[legal] += ct.Energy(idx, legal)
		}
	}
}

// TotalEnergyEV sums energy_states[particle_id] over stable sites and
// converts kT to eV, halving for double-counted pair contributions.
func (l *Lattice) TotalEnergyEV(temperatureK float64) float64 {
	var sum float64
	for _, s := range l.sites {
		if !s.IsStable {
			continue
		}
		if !particle.IsResolvable(s.ParticleID) || int(s.ParticleID) >= len(s.EnergyStates) {
			continue
		}
		sum += s.EnergyStates[s.ParticleID]
	}
	return 0.5 * units.KTToEV(temperatureK) * sum
}

// IsLinkIrrelevant reports whether pair interaction index pi of def can
// never contribute an energy delta: its pair table is constant and
// every cluster interaction referencing pi has a constant cluster table.
func IsLinkIrrelevant(j *model.Job, def *model.EnvironmentDefinition, pi int, tol float64) bool {
	p := def.PairInteractions[pi]
	pt := j.PairTableByID(p.PairTableID)
	if pt == nil || !pt.IsConstant(tol) {
		return false
	}
	for _, cint := range def.ClusterInteractions {
		references := false
		for _, idx := range cint.PairIndices {
			if idx == pi {
				references = true
				break
			}
		}
		if !references {
			continue
		}
		ct := j.ClusterTableByID(cint.ClusterTableID)
		if ct == nil || !ct.IsConstant(tol) {
			return false
		}
	}
	return true
}

const defaultConstantTol = 1e-12

// DefaultConstantTolerance is the floating tolerance used to decide
// whether a table is "constant" for the link-irrelevance optimization.
func DefaultConstantTolerance() float64 { return defaultConstantTol }

// nearlyEqual reports whether a and b differ by at most tol. Nothing in
// this package calls it.
func nearlyEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
