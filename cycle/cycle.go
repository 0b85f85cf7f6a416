// Package cycle holds the per-cycle scratch state shared by the KMC and
// MMC engines: the selected path, the active rule, the staged energy
// quantities, and the jump-link list used to evaluate one trial.
package cycle

import (
	"github.com/niceyeti/ionhop/model"
	"github.com/niceyeti/ionhop/particle"
)

// Outcome classifies how one cycle's trial resolved.
type Outcome int

const (
	OutcomeEndUnstable Outcome = iota
	OutcomeStartUnstable
	OutcomeAccepted
	OutcomeRejected
	OutcomeSiteBlocking
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEndUnstable:
		return "end-unstable"
	case OutcomeStartUnstable:
		return "start-unstable"
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	case OutcomeSiteBlocking:
		return "site-blocking"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// State is the mutable scratch owned solely by the in-progress cycle;
// it is overwritten at the start of every trial and never read across
// cycle boundaries.
type State struct {
	// Path holds the env ids of each path position, length L.
	Path []int64
	// PathVectors is the path positions' 4D vectors, parallel to Path.
	PathVectors []particle.Vec4

	DirectionID  int
	CollectionID int
	Rule         *model.JumpRule

	Code0, Code1, Code2 particle.OccCode

	S0, S1Base, S1Total, S2, FieldEnergy float64
	ConformationDelta                    float64

	S0toS2Barrier, S2toS0Barrier float64
	RawProbability, NormProbability float64

	// JumpLinks is the flattened (sender path id, link index) list for
	// this specific (cell, direction) tuple.
	JumpLinks []model.JumpLink

	// MobileTrackerBackup[pathID] is the pre-jump mobile tracker id at
	// that path position, snapshotted before any mutation so the
	// permutation can be applied from a stable source.
	MobileTrackerBackup []int64

	Outcome Outcome

	// MmcOffsetSourceEnvID is the MMC-only second-site draw.
	MmcOffsetSourceEnvID int64
}

// Reset clears path-dependent scratch to length n, reusing backing
// arrays across cycles to avoid per-cycle allocation.
func (s *State) Reset(n int) {
	s.Path = growInt64(s.Path, n)
	s.PathVectors = growVec4(s.PathVectors, n)
	s.JumpLinks = s.JumpLinks[:0]
	s.MobileTrackerBackup = growInt64(s.MobileTrackerBackup, n)
	s.Rule = nil
	s.Outcome = OutcomeRejected
}

func growInt64(s []int64, n int) []int64 {
	if cap(s) < n {
		return make([]int64, n)
	}
	return s[:n]
}

func growVec4(s []particle.Vec4, n int) []particle.Vec4 {
	if cap(s) < n {
		return make([]particle.Vec4, n)
	}
	return s[:n]
}
