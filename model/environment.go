package model

import "github.com/niceyeti/ionhop/particle"

// PairInteraction is one relative pair-energy contribution of an
// environment definition: a 4D offset to the partner site plus the pair
// table id governing the interaction.
type PairInteraction struct {
	Offset      particle.Vec4
	PairTableID int
}

// ClusterInteraction references up to 8 of an environment's own pair
// interactions (by index) whose joint occupation forms a cluster
// occupation code, plus the cluster table id that prices that code.
type ClusterInteraction struct {
	// PairIndices indexes into the owning EnvironmentDefinition's
	// PairInteractions, in the order the cluster's occupation code is
	// built. Length is in [1, particle.MaxPathLength].
	PairIndices    []int
	ClusterTableID int
}

// EnvironmentDefinition is the immutable, per-basis-position (D)
// description of what a site's neighborhood looks like: which relative
// offsets it must read for pair and cluster energies, which particle
// species may legally occupy it, and which species participate in
// energy bookkeeping at all.
type EnvironmentDefinition struct {
	PositionD int32

	// IsStable is the static flag for whether a site at this basis
	// position ever participates in energy bookkeeping and selection at
	// all, as opposed to IsMobile which is derived per-site from the
	// current occupant's active jump count.
	IsStable bool

	PairInteractions    []PairInteraction
	ClusterInteractions []ClusterInteraction

	// LegalParticleMask has bit i set iff particle species i may occupy
	// this position; LegalParticleIDs is the same set as a
	// Null-terminated list, matching the source's dual mask+list
	// encoding.
	LegalParticleMask uint64
	LegalParticleIDs  []particle.ID

	// SelectionParticleMask has bit i set iff an occupant of species i
	// is eligible for jump selection at this position.
	SelectionParticleMask uint64

	// UpdateParticleIDs is the set of particle ids that participate in
	// energy updates (i.e., are "energy-update recipients") when this
	// position's occupancy changes.
	UpdateParticleIDs []particle.ID
}

// IsLegal reports whether id may occupy a site described by this
// definition.
func (d *EnvironmentDefinition) IsLegal(id particle.ID) bool {
	if int(id) >= 64 {
		return false
	}
	return d.LegalParticleMask&(1<<uint(id)) != 0
}

// IsSelectable reports whether an occupant of species id is eligible
// for jump selection.
func (d *EnvironmentDefinition) IsSelectable(id particle.ID) bool {
	if int(id) >= 64 {
		return false
	}
	return d.SelectionParticleMask&(1<<uint(id)) != 0
}

// MaxLegalParticleID returns the highest legal particle id, used to size
// the per-site energy-state vector to max(position particle id)+1.
func (d *EnvironmentDefinition) MaxLegalParticleID() particle.ID {
	var max particle.ID
	for _, id := range d.LegalParticleIDs {
		if id > max {
			max = id
		}
	}
	return max
}

// IsUpdateRecipient reports whether id's energy slot must be notified
// when a neighboring site's occupant changes.
func (d *EnvironmentDefinition) IsUpdateRecipient(id particle.ID) bool {
	for _, u := range d.UpdateParticleIDs {
		if u == id {
			return true
		}
	}
	return false
}

// EnvironmentLink is one outbound notification a site must send when
// its occupant changes, so the target's per-particle energy slots stay
// current. Links within a site's list are sorted by TargetPairID so
// traversal order is unit-cell independent.
type EnvironmentLink struct {
	TargetEnvID  int64
	TargetPairID int
	ClusterLinks []ClusterLink
}

// ClusterLink names one cluster on the link target whose occupation
// code byte must be rewritten when the link's source site changes.
type ClusterLink struct {
	ClusterID  int
	CodeByteID int
}

// JumpDirection is one canonical transition: the ordered sequence of
// relative 4D offsets a mobile particle follows, the cartesian movement
// vector contributed at each path position, the field projection
// factor, and the owning jump collection.
type JumpDirection struct {
	ID            int
	CollectionID  int
	Offsets       []particle.Vec4         // length L in [2,8]
	MovementAt    []particle.MovementVector // length L, parallel to Offsets
	FieldFactor   float64
}

// Length returns the path length L of this direction.
func (j *JumpDirection) Length() int { return len(j.Offsets) }

// JumpRule matches a fully-resolved occupation code to its transition
// energetics and tracker-reassignment permutation.
type JumpRule struct {
	StateCode0, StateCode1, StateCode2 particle.OccCode
	FrequencyFactor                    float64
	FieldFactor                        float64

	// TrackerOrderCode[pathID] = sourcePathID: mobile-tracker id at path
	// position pathID after the jump is the pre-jump tracker id that was
	// at sourcePathID.
	TrackerOrderCode []byte

	// StaticVirtualJumpEnergyCorrection, if not NaN, replaces the full
	// transition-delta walk.
	StaticVirtualJumpEnergyCorrection float64
}

// HasStaticCorrection reports whether the rule carries a precomputed
// correction rather than the NaN "recompute dynamically" sentinel.
func (r *JumpRule) HasStaticCorrection() bool {
	return r.StaticVirtualJumpEnergyCorrection == r.StaticVirtualJumpEnergyCorrection // NaN != NaN
}

// JumpCollection groups the jump directions and rules that share a
// mobile-particle mask: all directions a particle species can take, and
// all the occupation-code rules resolving those directions' outcomes.
type JumpCollection struct {
	ID                 int
	DirectionIDs       []int
	Rules              []JumpRule
	MobileParticleMask uint64
}

// FindRule scans the collection's rules linearly for a match on
// StateCode0; no binary search is used, whatever the number of rules. A
// miss means "site blocking".
func (c *JumpCollection) FindRule(code particle.OccCode) (*JumpRule, bool) {
	for i := range c.Rules {
		if c.Rules[i].StateCode0 == code {
			return &c.Rules[i], true
		}
	}
	return nil, false
}

// JumpLink names one (sender path position, link index within that
// sender's environment link list) pair that must be walked when
// evaluating a specific jump at a specific cell.
type JumpLink struct {
	SenderPathID      int
	LinkIndexInSender int
}

// JumpStatus is the precomputed jump_links list for one (cell, jump
// direction) tuple.
type JumpStatus struct {
	JumpLinks []JumpLink
}
