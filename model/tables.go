// Package model holds the immutable, pre-built job description the
// solver consumes: lattice geometry, interaction tables, jump
// directions/rules, and the mapping tables that connect a lattice
// position+occupant to its available jump directions. Apart from the
// DemoJob fixture, no job is constructed here — it is loaded by an
// external collaborator (a SQLite-backed database) and only validated
// and queried by this module.
package model

import (
	"math"
	"sort"

	"github.com/niceyeti/ionhop/particle"
)

// PairTable is a 2D energy lookup in kT units, indexed
// [centerParticleID][partnerParticleID].
type PairTable struct {
	ID   int
	rows [][]float64
}

// NewPairTable builds a PairTable from a dense [center][partner] matrix.
func NewPairTable(id int, rows [][]float64) *PairTable {
	return &PairTable{ID: id, rows: rows}
}

// Get returns the interaction energy between center and partner.
func (t *PairTable) Get(center, partner particle.ID) float64 {
	return t.rows[center][partner]
}

// IsConstant reports whether every entry of the table is equal within
// tol. A constant pair table can never contribute an energy delta, which
// is exactly the condition the link-irrelevance optimization tests for.
func (t *PairTable) IsConstant(tol float64) bool {
	if len(t.rows) == 0 {
		return true
	}
	first := t.rows[0][0]
	for _, row := range t.rows {
		for _, v := range row {
			if math.Abs(v-first) > tol {
				return false
			}
		}
	}
	return true
}

// PairDeltaTable is the optional 3D precomputed delta lookup
// [originalPartner][newPartner][center], trading two 2D lookups for one
// 3D lookup per incremental update.
type PairDeltaTable struct {
	PairTableID int
	deltas      [][][]float64
}

// BuildPairDeltaTable derives a PairDeltaTable from a PairTable: one
// entry per (originalPartner, newPartner, center) triple.
func BuildPairDeltaTable(t *PairTable) *PairDeltaTable {
	n := len(t.rows)
	deltas := make([][][]float64, n)
	for orig := 0; orig < n; orig++ {
		deltas[orig] = make([][]float64, n)
		for neu := 0; neu < n; neu++ {
			deltas[orig][neu] = make([]float64, n)
			for center := 0; center < n; center++ {
				deltas[orig][neu][center] = t.rows[center][neu] - t.rows[center][orig]
			}
		}
	}
	return &PairDeltaTable{PairTableID: t.ID, deltas: deltas}
}

// Get returns the precomputed delta for replacing originalPartner with
// newPartner as seen by center.
func (d *PairDeltaTable) Get(center, originalPartner, newPartner particle.ID) float64 {
	return d.deltas[originalPartner][newPartner][center]
}

// ClusterTable is a sorted array of occupation codes with a parallel 2D
// energy matrix [tableID-local index is implicit][codeIndex][particleID].
// The code array must stay sorted: small tables (<=8 entries) use linear
// search, larger ones binary search.
type ClusterTable struct {
	ID      int
	codes   []particle.OccCode // sorted ascending
	energy  [][]float64        // energy[codeIndex][particleID]
	linearN int                // threshold below which lookup is linear, per spec note (~8)
}

// NewClusterTable builds a ClusterTable, sorting codes (and permuting
// energy rows to match) if they were not already sorted on load.
func NewClusterTable(id int, codes []particle.OccCode, energy [][]float64) *ClusterTable {
	idx := make([]int, len(codes))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return codes[idx[i]] < codes[idx[j]] })

	sortedCodes := make([]particle.OccCode, len(codes))
	sortedEnergy := make([][]float64, len(codes))
	for i, j := range idx {
		sortedCodes[i] = codes[j]
		sortedEnergy[i] = energy[j]
	}
	return &ClusterTable{ID: id, codes: sortedCodes, energy: sortedEnergy, linearN: 8}
}

// Lookup resolves code to its index in the table. A miss indicates a
// data-consistency failure in the job model, reported via ok=false.
func (t *ClusterTable) Lookup(code particle.OccCode) (index int, ok bool) {
	if len(t.codes) <= t.linearN {
		for i, c := range t.codes {
			if c == code {
				return i, true
			}
		}
		return 0, false
	}
	i := sort.Search(len(t.codes), func(i int) bool { return t.codes[i] >= code })
	if i < len(t.codes) && t.codes[i] == code {
		return i, true
	}
	return 0, false
}

// Energy returns the energy of the legal particle at the given code
// index.
func (t *ClusterTable) Energy(codeIndex int, legalParticle particle.ID) float64 {
	return t.energy[codeIndex][legalParticle]
}

// IsConstant reports whether every energy entry in the table equals the
// first entry within tol.
func (t *ClusterTable) IsConstant(tol float64) bool {
	if len(t.energy) == 0 {
		return true
	}
	first := t.energy[0][0]
	for _, row := range t.energy {
		for _, v := range row {
			if math.Abs(v-first) > tol {
				return false
			}
		}
	}
	return true
}

// DefectBackground is a per-(position, particle) constant energy
// contribution, added once during energy resync and never during a
// cycle.
type DefectBackground struct {
	// rows[D][particleID]
	rows [][]float64
}

func NewDefectBackground(rows [][]float64) *DefectBackground {
	return &DefectBackground{rows: rows}
}

func (b *DefectBackground) Get(positionD int32, id particle.ID) float64 {
	if b == nil {
		return 0
	}
	return b.rows[positionD][id]
}

// LatticeBackground is a per-(A,B,C,D,particle) constant energy
// contribution, optional.
type LatticeBackground struct {
	size  particle.Size
	cells []float64 // flat [siteLinearID*Limit + particleID]
}

// NewLatticeBackground builds a LatticeBackground from a dense 5D
// source array shaped [A][B][C][D][particleID].
func NewLatticeBackground(size particle.Size, src [][][][][]float64) *LatticeBackground {
	flat := make([]float64, size.SiteCount()*int64(particle.Limit))
	for a := int32(0); a < size.A; a++ {
		for b := int32(0); b < size.B; b++ {
			for c := int32(0); c < size.C; c++ {
				for d := int32(0); d < size.D; d++ {
					site := size.LinearID(particle.Vec4{A: a, B: b, C: c, D: d})
					copy(flat[site*int64(particle.Limit):(site+1)*int64(particle.Limit)], src[a][b][c][d])
				}
			}
		}
	}
	return &LatticeBackground{size: size, cells: flat}
}

func (b *LatticeBackground) Get(v particle.Vec4, id particle.ID) float64 {
	if b == nil {
		return 0
	}
	site := b.size.LinearID(v)
	return b.cells[site*int64(particle.Limit)+int64(id)]
}
