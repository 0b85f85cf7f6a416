// Package particle defines the smallest shared vocabulary of the solver:
// particle identities, the 4D lattice vector, and the packed occupation
// code used for O(1) jump-rule lookup.
package particle

// ID identifies a particle species on a lattice site. 0 is the
// void/vacancy species; 255 is a sentinel "null/terminator" value used
// to mark the end of a particle-id list. Valid, resolvable species are
// 0..63.
type ID = byte

const (
	Void  ID = 0
	Null  ID = 255
	Limit int = 64 // legal, resolvable ids are [0, Limit)
)

// IsResolvable reports whether id names an actual species (excludes the
// Null sentinel used to terminate lists).
func IsResolvable(id ID) bool {
	return id != Null
}

// Vec4 is a lattice vector (A, B, C, D): A, B, C index the unit cell and
// are periodic; D indexes the basis position within the cell and is not
// wrapped.
type Vec4 struct {
	A, B, C int32
	D       int32
}

// Add returns v + o componentwise, without periodic wrapping.
func (v Vec4) Add(o Vec4) Vec4 {
	return Vec4{A: v.A + o.A, B: v.B + o.B, C: v.C + o.C, D: v.D + o.D}
}

// Size is the extent of a periodic super-cell: A, B, C repeat counts and
// D the number of basis positions per cell.
type Size struct {
	A, B, C, D int32
}

// CellCount is the number of unit cells, A*B*C.
func (s Size) CellCount() int64 {
	return int64(s.A) * int64(s.B) * int64(s.C)
}

// SiteCount is the total number of lattice sites, A*B*C*D.
func (s Size) SiteCount() int64 {
	return s.CellCount() * int64(s.D)
}

// Wrap periodically trims v's A, B, C components into [0, size.A),
// [0, size.B), [0, size.C); D is left untouched since it is never
// periodic (it indexes a position within the cell, not a repeating
// cell coordinate).
func (s Size) Wrap(v Vec4) Vec4 {
	return Vec4{
		A: wrapAxis(v.A, s.A),
		B: wrapAxis(v.B, s.B),
		C: wrapAxis(v.C, s.C),
		D: v.D,
	}
}

func wrapAxis(x, n int32) int32 {
	if n <= 0 {
		return x
	}
	x %= n
	if x < 0 {
		x += n
	}
	return x
}

// LinearID returns the O(1) linear index of v within a lattice of this
// size, after periodic wrapping of the A/B/C components. Sites are laid
// out D-fastest, matching the block stride the environment lattice
// precomputes on initialization.
func (s Size) LinearID(v Vec4) int64 {
	w := s.Wrap(v)
	return ((int64(w.A)*int64(s.B)+int64(w.B))*int64(s.C)+int64(w.C))*int64(s.D) + int64(w.D)
}

// Vector reconstructs the 4D lattice vector for a linear site id.
func (s Size) Vector(id int64) Vec4 {
	d := int32(id % int64(s.D))
	id /= int64(s.D)
	c := int32(id % int64(s.C))
	id /= int64(s.C)
	b := int32(id % int64(s.B))
	id /= int64(s.B)
	a := int32(id)
	return Vec4{A: a, B: b, C: c, D: d}
}

// MovementVector is a cartesian displacement in Angstrom, the unit used
// by jump directions before trackers convert to metres.
type MovementVector struct {
	X, Y, Z float64
}

// Scale returns v scaled by f.
func (v MovementVector) Scale(f float64) MovementVector {
	return MovementVector{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

// Add returns the componentwise sum v + o.
func (v MovementVector) Add(o MovementVector) MovementVector {
	return MovementVector{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// OccCode packs up to 8 particle ids (one per jump-path position) into a
// single 64-bit value. Equality of occupation codes is exactly equality
// of the particle-id sequence they encode, which is what lets rule
// lookup be an integer compare instead of a slice compare.
type OccCode uint64

// MaxPathLength is the largest jump path length a single OccCode can
// encode (8 bytes).
const MaxPathLength = 8

// BuildOccCode packs ids[0..len(ids)) into an OccCode. Unused high bytes
// (when len(ids) < MaxPathLength) are left zero, i.e. Void.
func BuildOccCode(ids []ID) OccCode {
	var code OccCode
	for i, id := range ids {
		if i >= MaxPathLength {
			break
		}
		code |= OccCode(id) << (8 * uint(i))
	}
	return code
}

// At returns the particle id at path position i (0-based) within code.
func (c OccCode) At(i int) ID {
	return ID(c >> (8 * uint(i)))
}

// WithAt returns a copy of c with path position i's byte replaced by id.
func (c OccCode) WithAt(i int, id ID) OccCode {
	shift := 8 * uint(i)
	mask := OccCode(0xFF) << shift
	return (c &^ mask) | (OccCode(id) << shift)
}
