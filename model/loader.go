package model

import (
	"context"
	"math"

	"github.com/niceyeti/ionhop/particle"
)

// Loader is implemented by the out-of-scope SQLite-backed job-model
// loader: it turns a database path and job id into a fully-populated,
// immutable Job. This module declares only the contract; it never
// implements a database driver itself.
type Loader interface {
	LoadJob(ctx context.Context, dbPath string, jobID int64) (*Job, error)
}

// DemoJob builds a minimal, self-contained two-site KMC job: a 2x1x1x1
// lattice with one mobile ion and a symmetric pair interaction (no
// field, symmetric barrier). It exists so cmd/ionhop has a runnable
// default when no database loader is wired in, and so tests can
// exercise the engines without a fixture-building database.
func DemoJob(seed, inc uint64) *Job {
	size := particle.Size{A: 2, B: 1, C: 1, D: 1}

	def := &EnvironmentDefinition{
		PositionD: 0,
		IsStable:  true,
		PairInteractions: []PairInteraction{
			{Offset: particle.Vec4{A: 1, B: 0, C: 0, D: 0}, PairTableID: 0},
		},
		LegalParticleMask:     (1 << 0) | (1 << 1),
		LegalParticleIDs:      []particle.ID{0, 1, particle.Null},
		SelectionParticleMask: 1 << 1,
		UpdateParticleIDs:     []particle.ID{0, 1},
	}

	// A symmetric pair table: every entry equal, so S0 == S2 and the
	// only barrier contribution is the field term (zero here).
	pairRows := make([][]float64, 64)
	for i := range pairRows {
		pairRows[i] = make([]float64, 64)
	}
	pairTable := NewPairTable(0, pairRows)

	direction := &JumpDirection{
		ID:           0,
		CollectionID: 0,
		Offsets: []particle.Vec4{
			{A: 0, B: 0, C: 0, D: 0},
			{A: 1, B: 0, C: 0, D: 0},
		},
		MovementAt: []particle.MovementVector{
			{X: 0, Y: 0, Z: 0},
			{X: 5.0, Y: 0, Z: 0}, // 5 A cell vector
		},
		FieldFactor: 0,
	}

	rule := JumpRule{
		StateCode0:                        particle.BuildOccCode([]particle.ID{1, 0}),
		StateCode1:                        particle.BuildOccCode([]particle.ID{1, 0}),
		StateCode2:                        particle.BuildOccCode([]particle.ID{0, 1}),
		FrequencyFactor:                   1.0,
		FieldFactor:                       0,
		TrackerOrderCode:                  []byte{0, 0},
		StaticVirtualJumpEnergyCorrection: math.NaN(),
	}

	collection := &JumpCollection{
		ID:                 0,
		DirectionIDs:       []int{0},
		Rules:              []JumpRule{rule},
		MobileParticleMask: 1 << 1,
	}

	return &Job{
		LatticeSize:    size,
		InitialLattice: []particle.ID{1, 0},

		EnvironmentDefinitions: []*EnvironmentDefinition{def},
		PairTables:             []*PairTable{pairTable},
		PairDeltaTables:        []*PairDeltaTable{BuildPairDeltaTable(pairTable)},

		Directions:  []*JumpDirection{direction},
		Collections: []*JumpCollection{collection},

		JumpCounts:     JumpCountMapping{1},
		JumpDirections: JumpDirectionMapping{{0}},

		StaticTrackerMapping: StaticTrackerMapping{0},
		GlobalTrackerMapping: GlobalTrackerMapping{-1, 0},

		Flags: Flags{
			UseKMC: true,
		},

		TemperatureK: 300.0,
		TargetMCSP:   1.0,
		TimeLimitS:   0,

		RNGSeed: seed,
		RNGInc:  inc | 1,

		KMC: KMCParams{
			FieldModulusVPerM:        0,
			AttemptFrequencyHz:       1e13,
			FixedNormalizationFactor: 1.0,
			PrerunTargetMCSP:         0,
		},

		InteractionRange: 1,
	}
}
