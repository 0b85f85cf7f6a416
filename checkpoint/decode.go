package checkpoint

import (
	"encoding/binary"
	"fmt"

	"github.com/niceyeti/ionhop/errs"
	"github.com/niceyeti/ionhop/tracker"
)

// Decode reverses Encode, reconstructing every subspan by offset
// arithmetic against the header alone: the header is read first, then
// each subspan pointer is reconstructed from it. collectionCount and
// particleLimit must match the job
// model that produced buf; they are needed to split the trailing jump-
// statistics span into per-(collection,particle) histogram sets, since
// that span's layout is homogeneous but not otherwise self-describing.
func Decode(buf []byte, collectionCount, particleLimit int) (*State, error) {
	const fn = "checkpoint.Decode"
	if len(buf) < headerSize {
		return nil, errs.New(errs.DataConsistency, fn, "buffer shorter than header")
	}

	h := Header{
		MCS:                       int64(binary.LittleEndian.Uint64(buf[0:])),
		Cycles:                    int64(binary.LittleEndian.Uint64(buf[8:])),
		Flags:                     int32(binary.LittleEndian.Uint32(buf[16:])),
		MetaStartByte:             int32(binary.LittleEndian.Uint32(buf[20:])),
		LatticeStartByte:          int32(binary.LittleEndian.Uint32(buf[24:])),
		CountersStartByte:         int32(binary.LittleEndian.Uint32(buf[28:])),
		GlobalTrackerStartByte:    int32(binary.LittleEndian.Uint32(buf[32:])),
		MobileTrackerStartByte:    int32(binary.LittleEndian.Uint32(buf[36:])),
		StaticTrackerStartByte:    int32(binary.LittleEndian.Uint32(buf[40:])),
		MobileTrackerIdxStartByte: int32(binary.LittleEndian.Uint32(buf[44:])),
		JumpStatisticsStartByte:   int32(binary.LittleEndian.Uint32(buf[48:])),
	}

	if int(h.MetaStartByte) != headerSize {
		return nil, errs.New(errs.DataConsistency, fn, "meta span does not immediately follow header")
	}
	if err := boundsCheck(buf, fn, "meta", int(h.MetaStartByte), metaSize); err != nil {
		return nil, err
	}
	meta := decodeMeta(buf[h.MetaStartByte:])

	latticeEnd := int(h.CountersStartByte)
	if err := boundsCheck(buf, fn, "lattice", int(h.LatticeStartByte), latticeEnd-int(h.LatticeStartByte)); err != nil {
		return nil, err
	}
	lattice := append([]byte(nil), buf[h.LatticeStartByte:latticeEnd]...)

	countersEnd := int(h.GlobalTrackerStartByte)
	counterCount := (countersEnd - int(h.CountersStartByte)) / counterCollectionSize
	counters := make([]CounterCollection, counterCount)
	off := int(h.CountersStartByte)
	for i := range counters {
		if err := boundsCheck(buf, fn, "counters", off, counterCollectionSize); err != nil {
			return nil, err
		}
		counters[i] = decodeCounter(buf[off:])
		off += counterCollectionSize
	}

	kmcRun := h.MobileTrackerStartByte != absentStartByte

	globalEnd := int(h.StaticTrackerStartByte)
	if kmcRun {
		globalEnd = int(h.MobileTrackerStartByte)
	}
	globalCount := (globalEnd - int(h.GlobalTrackerStartByte)) / vec3Size()
	globalTrackers, off2, err := decodeVec3Span(buf, fn, int(h.GlobalTrackerStartByte), globalCount)
	if err != nil {
		return nil, err
	}
	_ = off2

	var mobileTrackers []tracker.Vector3
	if kmcRun {
		mobileEnd := int(h.StaticTrackerStartByte)
		mobileCount := (mobileEnd - int(h.MobileTrackerStartByte)) / vec3Size()
		mobileTrackers, _, err = decodeVec3Span(buf, fn, int(h.MobileTrackerStartByte), mobileCount)
		if err != nil {
			return nil, err
		}
	}

	staticEnd := int(h.MobileTrackerIdxStartByte)
	if !kmcRun {
		staticEnd = int(h.JumpStatisticsStartByte)
	}
	staticCount := (staticEnd - int(h.StaticTrackerStartByte)) / vec3Size()
	staticTrackers, _, err := decodeVec3Span(buf, fn, int(h.StaticTrackerStartByte), staticCount)
	if err != nil {
		return nil, err
	}

	var mobileEnvID []int64
	if kmcRun {
		idxEnd := int(h.JumpStatisticsStartByte)
		idxCount := (idxEnd - int(h.MobileTrackerIdxStartByte)) / 8
		mobileEnvID = make([]int64, idxCount)
		p := int(h.MobileTrackerIdxStartByte)
		for i := range mobileEnvID {
			if err := boundsCheck(buf, fn, "mobile tracker index", p, 8); err != nil {
				return nil, err
			}
			mobileEnvID[i] = int64(binary.LittleEndian.Uint64(buf[p:]))
			p += 8
		}
	}

	jumpStats, err := decodeJumpStatistics(buf, fn, int(h.JumpStatisticsStartByte), collectionCount, particleLimit)
	if err != nil {
		return nil, err
	}

	return &State{
		Header:              h,
		Meta:                meta,
		Lattice:             lattice,
		Counters:            counters,
		GlobalTrackers:      globalTrackers,
		MobileTrackers:      mobileTrackers,
		StaticTrackers:      staticTrackers,
		MobileTrackerEnvID:  mobileEnvID,
		JumpStatistics:      jumpStats,
	}, nil
}

func boundsCheck(buf []byte, fn, span string, off, size int) error {
	if off < 0 || size < 0 || off+size > len(buf) {
		return errs.New(errs.DataConsistency, fn, fmt.Sprintf("%s span [%d,%d) out of bounds (buffer length %d)", span, off, off+size, len(buf)))
	}
	return nil
}

func decodeVec3Span(buf []byte, fn string, start, count int) ([]tracker.Vector3, int, error) {
	if count < 0 {
		return nil, 0, errs.New(errs.DataConsistency, fn, "negative vector3 span count")
	}
	out := make([]tracker.Vector3, count)
	off := start
	for i := range out {
		if err := boundsCheck(buf, fn, "vector3", off, vec3Size()); err != nil {
			return nil, 0, err
		}
		out[i] = decodeVec3(buf[off:])
		off += vec3Size()
	}
	return out, off, nil
}

func decodeJumpStatistics(buf []byte, fn string, start, collectionCount, particleLimit int) ([]JumpStatisticSet, error) {
	n := collectionCount * particleLimit
	if n == 0 {
		return nil, nil
	}
	remaining := len(buf) - start
	if remaining < 0 {
		return nil, errs.New(errs.DataConsistency, fn, "jump statistics span starts past end of buffer")
	}
	perSet := remaining / n
	perHistogram := perSet / 4
	binCount := (perHistogram - 40) / 8
	if binCount < 0 || perHistogram*4 != perSet {
		return nil, errs.New(errs.DataConsistency, fn, "jump statistics span does not divide evenly into histogram sets")
	}

	out := make([]JumpStatisticSet, n)
	off := start
	for i := range out {
		var js JumpStatisticSet
		var err error
		if js.Edge, off, err = decodeHistogramChecked(buf, fn, off, binCount); err != nil {
			return nil, err
		}
		if js.PositiveConf, off, err = decodeHistogramChecked(buf, fn, off, binCount); err != nil {
			return nil, err
		}
		if js.NegativeConf, off, err = decodeHistogramChecked(buf, fn, off, binCount); err != nil {
			return nil, err
		}
		if js.Total, off, err = decodeHistogramChecked(buf, fn, off, binCount); err != nil {
			return nil, err
		}
		out[i] = js
	}
	return out, nil
}

func decodeHistogramChecked(buf []byte, fn string, off, binCount int) (HistogramState, int, error) {
	if err := boundsCheck(buf, fn, "histogram", off, histogramSize(binCount)); err != nil {
		return HistogramState{}, 0, err
	}
	h, next := decodeHistogram(buf, off, binCount)
	return h, next, nil
}
