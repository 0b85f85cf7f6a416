package checkpoint

import (
	"encoding/binary"

	"github.com/niceyeti/ionhop/tracker"
)

// Encode serializes s into a single contiguous little-endian byte
// buffer, computing and writing every header offset as it lays out each
// subspan in turn.
func (s *State) Encode() []byte {
	h := s.Header
	h.MetaStartByte = headerSize

	latticeStart := int(h.MetaStartByte) + metaSize
	h.LatticeStartByte = int32(latticeStart)

	countersStart := latticeStart + len(s.Lattice)
	h.CountersStartByte = int32(countersStart)

	globalStart := countersStart + len(s.Counters)*counterCollectionSize
	h.GlobalTrackerStartByte = int32(globalStart)

	mobileStart := globalStart + len(s.GlobalTrackers)*vec3Size()
	if len(s.MobileTrackers) == 0 {
		h.MobileTrackerStartByte = absentStartByte
	} else {
		h.MobileTrackerStartByte = int32(mobileStart)
	}
	mobileEnd := mobileStart
	if len(s.MobileTrackers) > 0 {
		mobileEnd = mobileStart + len(s.MobileTrackers)*vec3Size()
	}

	staticStart := mobileEnd
	h.StaticTrackerStartByte = int32(staticStart)
	staticEnd := staticStart + len(s.StaticTrackers)*vec3Size()

	idxStart := staticEnd
	if len(s.MobileTrackerEnvID) == 0 {
		h.MobileTrackerIdxStartByte = absentStartByte
	} else {
		h.MobileTrackerIdxStartByte = int32(idxStart)
	}
	idxEnd := idxStart
	if len(s.MobileTrackerEnvID) > 0 {
		idxEnd = idxStart + len(s.MobileTrackerEnvID)*8
	}

	jsStart := idxEnd
	h.JumpStatisticsStartByte = int32(jsStart)
	jsEnd := jsStart + jumpStatsByteSize(s.JumpStatistics)

	buf := make([]byte, jsEnd)

	binary.LittleEndian.PutUint64(buf[0:], uint64(h.MCS))
	binary.LittleEndian.PutUint64(buf[8:], uint64(h.Cycles))
	binary.LittleEndian.PutUint32(buf[16:], uint32(h.Flags))
	binary.LittleEndian.PutUint32(buf[20:], uint32(h.MetaStartByte))
	binary.LittleEndian.PutUint32(buf[24:], uint32(h.LatticeStartByte))
	binary.LittleEndian.PutUint32(buf[28:], uint32(h.CountersStartByte))
	binary.LittleEndian.PutUint32(buf[32:], uint32(h.GlobalTrackerStartByte))
	binary.LittleEndian.PutUint32(buf[36:], uint32(h.MobileTrackerStartByte))
	binary.LittleEndian.PutUint32(buf[40:], uint32(h.StaticTrackerStartByte))
	binary.LittleEndian.PutUint32(buf[44:], uint32(h.MobileTrackerIdxStartByte))
	binary.LittleEndian.PutUint32(buf[48:], uint32(h.JumpStatisticsStartByte))

	encodeMeta(buf[h.MetaStartByte:], s.Meta)

	copy(buf[latticeStart:], s.Lattice)

	off := countersStart
	for _, c := range s.Counters {
		encodeCounter(buf[off:], c)
		off += counterCollectionSize
	}

	off = globalStart
	for _, v := range s.GlobalTrackers {
		encodeVec3(buf[off:], v)
		off += vec3Size()
	}

	if len(s.MobileTrackers) > 0 {
		off = mobileStart
		for _, v := range s.MobileTrackers {
			encodeVec3(buf[off:], v)
			off += vec3Size()
		}
	}

	off = staticStart
	for _, v := range s.StaticTrackers {
		encodeVec3(buf[off:], v)
		off += vec3Size()
	}

	if len(s.MobileTrackerEnvID) > 0 {
		off = idxStart
		for _, id := range s.MobileTrackerEnvID {
			binary.LittleEndian.PutUint64(buf[off:], uint64(id))
			off += 8
		}
	}

	off = jsStart
	for _, js := range s.JumpStatistics {
		off = encodeJumpStatisticSet(buf, off, js)
	}

	s.Header = h
	return buf
}

func encodeMeta(buf []byte, m Meta) {
	writeFloat64(buf, 0, m.SimulatedTime)
	writeFloat64(buf, 8, m.JumpNormalization)
	writeFloat64(buf, 16, m.MaxJumpProbability)
	writeFloat64(buf, 24, m.LatticeEnergy)
	binary.LittleEndian.PutUint64(buf[32:], uint64(m.ProgramRunTime))
	binary.LittleEndian.PutUint64(buf[40:], uint64(m.CycleRate))
	binary.LittleEndian.PutUint64(buf[48:], uint64(m.SuccessRate))
	binary.LittleEndian.PutUint64(buf[56:], uint64(m.TimePerBlock))
	binary.LittleEndian.PutUint64(buf[64:], m.RNGState)
	binary.LittleEndian.PutUint64(buf[72:], m.RNGIncrease)
}

func decodeMeta(buf []byte) Meta {
	return Meta{
		SimulatedTime:      readFloat64(buf, 0),
		JumpNormalization:  readFloat64(buf, 8),
		MaxJumpProbability: readFloat64(buf, 16),
		LatticeEnergy:      readFloat64(buf, 24),
		ProgramRunTime:     int64(binary.LittleEndian.Uint64(buf[32:])),
		CycleRate:          int64(binary.LittleEndian.Uint64(buf[40:])),
		SuccessRate:        int64(binary.LittleEndian.Uint64(buf[48:])),
		TimePerBlock:       int64(binary.LittleEndian.Uint64(buf[56:])),
		RNGState:           binary.LittleEndian.Uint64(buf[64:]),
		RNGIncrease:        binary.LittleEndian.Uint64(buf[72:]),
	}
}

func encodeCounter(buf []byte, c CounterCollection) {
	binary.LittleEndian.PutUint64(buf[0:], uint64(c.CycleCount))
	binary.LittleEndian.PutUint64(buf[8:], uint64(c.MCSCount))
	binary.LittleEndian.PutUint64(buf[16:], uint64(c.RejectionCount))
	binary.LittleEndian.PutUint64(buf[24:], uint64(c.SiteBlockingCount))
	binary.LittleEndian.PutUint64(buf[32:], uint64(c.UnstableStartCount))
	binary.LittleEndian.PutUint64(buf[40:], uint64(c.UnstableEndCount))
}

func decodeCounter(buf []byte) CounterCollection {
	return CounterCollection{
		CycleCount:         int64(binary.LittleEndian.Uint64(buf[0:])),
		MCSCount:           int64(binary.LittleEndian.Uint64(buf[8:])),
		RejectionCount:     int64(binary.LittleEndian.Uint64(buf[16:])),
		SiteBlockingCount:  int64(binary.LittleEndian.Uint64(buf[24:])),
		UnstableStartCount: int64(binary.LittleEndian.Uint64(buf[32:])),
		UnstableEndCount:   int64(binary.LittleEndian.Uint64(buf[40:])),
	}
}

func encodeVec3(buf []byte, v tracker.Vector3) {
	writeFloat64(buf, 0, v.X)
	writeFloat64(buf, 8, v.Y)
	writeFloat64(buf, 16, v.Z)
}

func decodeVec3(buf []byte) tracker.Vector3 {
	return tracker.Vector3{X: readFloat64(buf, 0), Y: readFloat64(buf, 8), Z: readFloat64(buf, 16)}
}

func jumpStatsByteSize(js []JumpStatisticSet) int {
	total := 0
	for _, s := range js {
		total += histogramSize(len(s.Edge.Bins))
		total += histogramSize(len(s.PositiveConf.Bins))
		total += histogramSize(len(s.NegativeConf.Bins))
		total += histogramSize(len(s.Total.Bins))
	}
	return total
}

func encodeJumpStatisticSet(buf []byte, off int, js JumpStatisticSet) int {
	off = encodeHistogram(buf, off, js.Edge)
	off = encodeHistogram(buf, off, js.PositiveConf)
	off = encodeHistogram(buf, off, js.NegativeConf)
	off = encodeHistogram(buf, off, js.Total)
	return off
}

func encodeHistogram(buf []byte, off int, h HistogramState) int {
	writeFloat64(buf, off, h.MinValue)
	writeFloat64(buf, off+8, h.MaxValue)
	writeFloat64(buf, off+16, h.Stepping)
	binary.LittleEndian.PutUint64(buf[off+24:], uint64(h.OverflowCount))
	binary.LittleEndian.PutUint64(buf[off+32:], uint64(h.UnderflowCount))
	bo := off + 40
	for _, b := range h.Bins {
		binary.LittleEndian.PutUint64(buf[bo:], uint64(b))
		bo += 8
	}
	return bo
}

func decodeHistogram(buf []byte, off, binCount int) (HistogramState, int) {
	h := HistogramState{
		MinValue:      readFloat64(buf, off),
		MaxValue:      readFloat64(buf, off+8),
		Stepping:      readFloat64(buf, off+16),
		OverflowCount: int64(binary.LittleEndian.Uint64(buf[off+24:])),
		UnderflowCount: int64(binary.LittleEndian.Uint64(buf[off+32:])),
		Bins:          make([]int64, binCount),
	}
	bo := off + 40
	for i := range h.Bins {
		h.Bins[i] = int64(binary.LittleEndian.Uint64(buf[bo:]))
		bo += 8
	}
	return h, bo
}
