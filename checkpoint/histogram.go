package checkpoint

import "github.com/niceyeti/ionhop/tracker"

// FromHistogram captures a live tracker.Histogram as its on-disk form.
func FromHistogram(h *tracker.Histogram) HistogramState {
	bins := make([]int64, len(h.Bins))
	copy(bins, h.Bins)
	return HistogramState{
		MinValue:      h.Min,
		MaxValue:      h.Max,
		Stepping:      h.Stepping,
		OverflowCount: h.Overflow,
		UnderflowCount: h.Underflow,
		Bins:          bins,
	}
}

// ApplyTo overwrites a live tracker.Histogram's bins and bounds with the
// decoded state, used when restoring from a checkpoint.
func (hs HistogramState) ApplyTo(h *tracker.Histogram) {
	h.Min, h.Max, h.Stepping = hs.MinValue, hs.MaxValue, hs.Stepping
	h.Overflow, h.Underflow = hs.OverflowCount, hs.UnderflowCount
	if len(h.Bins) != len(hs.Bins) {
		h.Bins = make([]int64, len(hs.Bins))
	}
	copy(h.Bins, hs.Bins)
}

// FromCollectionHistograms captures a live CollectionHistograms.
func FromCollectionHistograms(c *tracker.CollectionHistograms) JumpStatisticSet {
	return JumpStatisticSet{
		Edge:         FromHistogram(c.Edge),
		PositiveConf: FromHistogram(c.PositiveConf),
		NegativeConf: FromHistogram(c.NegativeConf),
		Total:        FromHistogram(c.Total),
	}
}

// ApplyTo overwrites a live CollectionHistograms with the decoded state.
func (js JumpStatisticSet) ApplyTo(c *tracker.CollectionHistograms) {
	js.Edge.ApplyTo(c.Edge)
	js.PositiveConf.ApplyTo(c.PositiveConf)
	js.NegativeConf.ApplyTo(c.NegativeConf)
	js.Total.ApplyTo(c.Total)
}
