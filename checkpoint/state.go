// Package checkpoint implements the simulation state: a single
// contiguous byte buffer partitioned by a header of sub-span offsets,
// written by renaming the previous file to a backup before writing the
// new one.
package checkpoint

import (
	"encoding/binary"
	"math"

	"github.com/niceyeti/ionhop/tracker"
)

// absentStartByte marks a KMC-only subspan absent from an MMC run:
// those sections record -1 as their start byte when absent.
const absentStartByte int32 = -1

// Header carries the byte offsets of every subspan, letting the rest of
// the file be reconstructed by offset arithmetic alone.
type Header struct {
	MCS                       int64
	Cycles                    int64
	Flags                     int32
	MetaStartByte             int32
	LatticeStartByte          int32
	CountersStartByte         int32
	GlobalTrackerStartByte    int32
	MobileTrackerStartByte    int32
	StaticTrackerStartByte    int32
	MobileTrackerIdxStartByte int32
	JumpStatisticsStartByte   int32
}

const headerSize = 8 + 8 + 4*9 + 4 // Mcs, Cycles int64s + 9 int32 fields + 4 bytes of padding to keep 8-byte alignment

// Meta carries the scalar run state: RNG state, simulated time, rates,
// lattice energy, jump normalization.
type Meta struct {
	SimulatedTime     float64
	JumpNormalization float64
	MaxJumpProbability float64
	LatticeEnergy     float64
	ProgramRunTime    int64
	CycleRate         int64
	SuccessRate       int64
	TimePerBlock      int64
	RNGState          uint64
	RNGIncrease       uint64
}

const metaSize = 8 * 10

// CounterCollection mirrors StateCounterCollection_t.
type CounterCollection struct {
	CycleCount        int64
	MCSCount          int64
	RejectionCount    int64
	SiteBlockingCount int64
	UnstableStartCount int64
	UnstableEndCount  int64
}

const counterCollectionSize = 8 * 6

// HistogramState is the on-disk form of one tracker.Histogram.
type HistogramState struct {
	MinValue, MaxValue, Stepping float64
	OverflowCount, UnderflowCount int64
	Bins                          []int64 // length tracker.DefaultBinCount unless overridden
}

func histogramSize(binCount int) int { return 8*3 + 8*2 + 8*binCount }

// State is the fully in-memory mirror of the checkpoint file: every
// subspan as a typed Go value, assembled/disassembled to bytes by
// Encode/Decode.
type State struct {
	Header   Header
	Meta     Meta
	Lattice  []byte // one particle id per site
	Counters []CounterCollection

	GlobalTrackers []tracker.Vector3
	MobileTrackers []tracker.Vector3
	StaticTrackers []tracker.Vector3

	// MobileTrackerEnvID[trackerID] = envID currently holding that
	// tracker, a reverse map needed for restart lookups.
	MobileTrackerEnvID []int64

	JumpStatistics []JumpStatisticSet
}

// JumpStatisticSet mirrors JumpStatistic_t: the four histograms kept
// per (jump-collection, particle) entry.
type JumpStatisticSet struct {
	Edge, PositiveConf, NegativeConf, Total HistogramState
}

func vec3Size() int { return 8 * 3 }

func writeFloat64(buf []byte, off int, v float64) {
	binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
}

func readFloat64(buf []byte, off int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
}
