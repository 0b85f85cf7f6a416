package model

import "github.com/niceyeti/ionhop/particle"

// Flags packs the boolean job-model switches.
type Flags struct {
	UseKMC           bool // false selects MMC
	UsePrerun        bool
	SkipSave         bool
	UseFastExp       bool
	DisableJumpLog   bool
}

// KMCParams carries the KMC-only job parameters.
type KMCParams struct {
	FieldModulusVPerM      float64
	AttemptFrequencyHz     float64
	FixedNormalizationFactor float64
	PrerunTargetMCSP       float64
}

// MMCParams carries the MMC-only job parameters.
type MMCParams struct {
	AbortTolerance      float64
	AbortSequenceLength int
	AbortSampleLength   int
}

// Job is the complete, immutable input to a simulation run: everything
// an external loader collaborator produces and the engine only reads.
// Apart from the DemoJob fixture in loader.go, nothing in this module
// constructs a Job's contents; validate.go checks it for consistency.
type Job struct {
	LatticeSize particle.Size

	// InitialLattice holds the starting particle id at every site, in
	// the same linear order as particle.Size.LinearID.
	InitialLattice []particle.ID

	// LatticeBackground and DefectBackground are optional (nil when
	// absent).
	LatticeBackground *LatticeBackground
	DefectBackground  *DefectBackground

	// EnvironmentDefinitions is indexed by basis position D.
	EnvironmentDefinitions []*EnvironmentDefinition

	PairTables      []*PairTable
	PairDeltaTables []*PairDeltaTable // parallel to PairTables; nil entries allowed
	ClusterTables   []*ClusterTable

	Directions  []*JumpDirection
	Collections []*JumpCollection

	JumpCounts     JumpCountMapping
	JumpDirections JumpDirectionMapping

	StaticTrackerMapping StaticTrackerMapping
	GlobalTrackerMapping GlobalTrackerMapping

	Flags Flags

	TemperatureK float64
	TargetMCSP   float64
	TimeLimitS   float64

	RNGSeed uint64
	RNGInc  uint64

	KMC KMCParams
	MMC MMCParams

	// InteractionRange bounds the axis-wise periodic distance (on A,B,C)
	// within which an MMC swap pair can produce a nonzero delta.
	InteractionRange int32

	// JumpHistogramMax overrides the default histogram upper bound when
	// positive (CLI `-jumpHistogramMax`).
	JumpHistogramMax float64
}

// PairTableByID returns the pair table with the given id, or nil.
func (j *Job) PairTableByID(id int) *PairTable {
	for _, t := range j.PairTables {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// PairDeltaTableByID returns the precomputed delta table for a pair
// table id, or nil if none was built for it.
func (j *Job) PairDeltaTableByID(id int) *PairDeltaTable {
	for _, t := range j.PairDeltaTables {
		if t != nil && t.PairTableID == id {
			return t
		}
	}
	return nil
}

// ClusterTableByID returns the cluster table with the given id, or nil.
func (j *Job) ClusterTableByID(id int) *ClusterTable {
	for _, t := range j.ClusterTables {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// CollectionByID returns the jump collection with the given id, or nil.
func (j *Job) CollectionByID(id int) *JumpCollection {
	for _, c := range j.Collections {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// DirectionByID returns the jump direction with the given id, or nil.
func (j *Job) DirectionByID(id int) *JumpDirection {
	for _, d := range j.Directions {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// EnvironmentDefinitionAt returns the environment definition for basis
// position d.
func (j *Job) EnvironmentDefinitionAt(d int32) *EnvironmentDefinition {
	if int(d) >= len(j.EnvironmentDefinitions) {
		return nil
	}
	return j.EnvironmentDefinitions[d]
}

// MobileParticleCount counts how many initial-lattice sites are
// occupied by a particle species mobile in at least one collection,
// used to derive the total accepted-MCS goal for a run.
func (j *Job) MobileParticleCount() int64 {
	var mobileMask uint64
	for _, c := range j.Collections {
		mobileMask |= c.MobileParticleMask
	}
	var n int64
	for _, id := range j.InitialLattice {
		if id < 64 && mobileMask&(1<<uint(id)) != 0 {
			n++
		}
	}
	return n
}
