// Package tracker implements the transition-tracking subsystem: mobile,
// static and global displacement trackers plus per-collection jump
// energy histograms.
package tracker

import "github.com/niceyeti/ionhop/particle"

// Vector3 is a displacement accumulator in metres.
type Vector3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// FromMovement converts a particle.MovementVector (cartesian Angstrom)
// scaled by angstromToMetre into a Vector3 in metres.
func FromMovement(m particle.MovementVector, angstromToMetre float64) Vector3 {
	return Vector3{X: m.X * angstromToMetre, Y: m.Y * angstromToMetre, Z: m.Z * angstromToMetre}
}

// SquaredNorm returns |v|^2.
func (v Vector3) SquaredNorm() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Set holds all three tracker collections: mobile (indexed by
// mobile-tracker id, permuted on accepted KMC jumps), static (indexed by
// (position_d, particle_id)), and global (indexed by
// (jump_collection_id, particle_id)).
type Set struct {
	Mobile []Vector3
	static [][]Vector3 // static[positionD][particleID]
	global [][]Vector3 // global[collectionID][particleID]
}

// NewSet allocates a Set. mobileCount is the number of mobile particles
// in the initial lattice; positionCount is LatticeSize.D;
// collectionCount is the number of jump collections.
func NewSet(mobileCount int, positionCount int, collectionCount int, particleLimit int) *Set {
	static := make([][]Vector3, positionCount)
	for i := range static {
		static[i] = make([]Vector3, particleLimit)
	}
	global := make([][]Vector3, collectionCount)
	for i := range global {
		global[i] = make([]Vector3, particleLimit)
	}
	return &Set{
		Mobile: make([]Vector3, mobileCount),
		static: static,
		global: global,
	}
}

// AddStatic accumulates a displacement into the static tracker for
// (positionD, id).
func (s *Set) AddStatic(positionD int32, id particle.ID, d Vector3) {
	s.static[positionD][id] = s.static[positionD][id].Add(d)
}

// StaticAt returns the static tracker value for (positionD, id).
func (s *Set) StaticAt(positionD int32, id particle.ID) Vector3 {
	return s.static[positionD][id]
}

// AddGlobal accumulates a displacement into the global tracker for
// (collectionID, id).
func (s *Set) AddGlobal(collectionID int, id particle.ID, d Vector3) {
	s.global[collectionID][id] = s.global[collectionID][id].Add(d)
}

// GlobalAt returns the global tracker value for (collectionID, id).
func (s *Set) GlobalAt(collectionID int, id particle.ID) Vector3 {
	return s.global[collectionID][id]
}

// Reset zeroes every mobile, static, and global tracker, used after the
// pre-run phase ends.
func (s *Set) Reset() {
	for i := range s.Mobile {
		s.Mobile[i] = Vector3{}
	}
	for _, row := range s.static {
		for i := range row {
			row[i] = Vector3{}
		}
	}
	for _, row := range s.global {
		for i := range row {
			row[i] = Vector3{}
		}
	}
}

// CollectionCount returns the number of jump-collection rows in the
// global tracker table.
func (s *Set) CollectionCount() int { return len(s.global) }

// PositionCount returns the number of basis-position rows in the static
// tracker table.
func (s *Set) PositionCount() int { return len(s.static) }

// ParticleLimit returns the per-row particle slot count shared by the
// static and global tables.
func (s *Set) ParticleLimit() int {
	if len(s.global) > 0 {
		return len(s.global[0])
	}
	if len(s.static) > 0 {
		return len(s.static[0])
	}
	return 0
}

// FlattenGlobal returns the global tracker table as a single row-major
// (collectionID, particleID) slice, the layout checkpoint encoding uses.
func (s *Set) FlattenGlobal() []Vector3 {
	out := make([]Vector3, 0, len(s.global)*s.ParticleLimit())
	for _, row := range s.global {
		out = append(out, row...)
	}
	return out
}

// LoadGlobal overwrites the global tracker table from a row-major
// (collectionID, particleID) flat slice previously produced by
// FlattenGlobal.
func (s *Set) LoadGlobal(flat []Vector3) {
	limit := s.ParticleLimit()
	for c, row := range s.global {
		copy(row, flat[c*limit:(c+1)*limit])
	}
}

// FlattenStatic returns the static tracker table as a single row-major
// (positionD, particleID) slice, the layout checkpoint encoding uses.
func (s *Set) FlattenStatic() []Vector3 {
	out := make([]Vector3, 0, len(s.static)*s.ParticleLimit())
	for _, row := range s.static {
		out = append(out, row...)
	}
	return out
}

// LoadStatic overwrites the static tracker table from a row-major
// (positionD, particleID) flat slice previously produced by
// FlattenStatic.
func (s *Set) LoadStatic(flat []Vector3) {
	limit := s.ParticleLimit()
	for d, row := range s.static {
		copy(row, flat[d*limit:(d+1)*limit])
	}
}

// PermuteMobile applies a jump's tracker reorder permutation: the new
// mobile-tracker id at path position i is the pre-jump id that occupied
// order[i]. backup must hold
// the pre-jump mobile-tracker id at each path position, one entry per
// path position, parallel to order. assignNew is called once per path
// position with the resulting tracker id, letting the caller write it
// back onto the corresponding env state.
func PermuteMobile(order []byte, backup []int64, assignNew func(pathID int, trackerID int64)) {
	for pathID, src := range order {
		assignNew(pathID, backup[src])
	}
}
