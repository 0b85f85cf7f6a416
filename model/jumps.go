package model

import "github.com/niceyeti/ionhop/particle"

// JumpCountMapping gives, per basis position D, the number of jump
// directions a mobile occupant there may attempt. Indexed by D.
type JumpCountMapping []int

// JumpDirectionMapping gives, per basis position D, the list of
// JumpDirection ids available there. Indexed by D, then by local
// direction index.
type JumpDirectionMapping [][]int

// StaticTrackerMapping gives, per basis position D, the global static
// tracker id that owns that position's immobile contribution.
type StaticTrackerMapping []int

// GlobalTrackerMapping gives, per mobile particle species id, the
// global tracker id accumulating its aggregate displacement.
type GlobalTrackerMapping []int

// DirectionCountAt returns how many jump directions a mobile occupant
// at basis position d may attempt.
func (m JumpCountMapping) DirectionCountAt(d int32) int {
	if int(d) >= len(m) {
		return 0
	}
	return m[d]
}

// DirectionsAt returns the JumpDirection ids available at basis
// position d.
func (m JumpDirectionMapping) DirectionsAt(d int32) []int {
	if int(d) >= len(m) {
		return nil
	}
	return m[d]
}

// JumpEnvironment bundles, per basis position D, everything the
// selection pool and KMC path-builder need without further table
// lookups: the collection governing that position, and how many/which
// directions apply.
type JumpEnvironment struct {
	CollectionIDAt []int // indexed by D
	Counts         JumpCountMapping
	Directions     JumpDirectionMapping
}

// BuildOccCodeForPath walks a jump direction's offsets from origin,
// reading ids via the supplied siteOccupant lookup, and packs them into
// a particle.OccCode in path order.
func BuildOccCodeForPath(origin particle.Vec4, size particle.Size, offsets []particle.Vec4, siteOccupant func(particle.Vec4) particle.ID) particle.OccCode {
	ids := make([]particle.ID, len(offsets))
	for i, off := range offsets {
		v := size.Wrap(origin.Add(off))
		ids[i] = siteOccupant(v)
	}
	return particle.BuildOccCode(ids)
}
