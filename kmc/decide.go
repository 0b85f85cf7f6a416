package kmc

import (
	"github.com/niceyeti/ionhop/cycle"
	"github.com/niceyeti/ionhop/model"
)

// decide resolves the current cycle's trial into an Outcome and
// performs whatever bookkeeping/advancement that outcome implies.
func (e *Engine) decide(rule *model.JumpRule, originParticle byte) cycle.Outcome {
	c := e.Cycle

	if c.S2toS0Barrier < 0 {
		e.Counters.ByParticle[originParticle].UnstableEnd++
		e.SimulatedTime += e.timeStep()
		e.logHistograms()
		return cycle.OutcomeEndUnstable
	}

	if c.NormProbability > 1 {
		e.Counters.ByParticle[originParticle].UnstableStart++
		e.updateMaxProbability(rule)
		e.advanceLattice(rule)
		e.advanceTrackers(rule, originParticle)
		countChanged := e.updatePoolsAfterAdvance(rule)
		if countChanged {
			e.recomputeNormalizationIfPrerun()
		}
		return cycle.OutcomeStartUnstable
	}

	if c.NormProbability >= e.uniform() {
		e.Counters.ByParticle[originParticle].MCS++
		e.updateMaxProbability(rule)
		e.advanceLattice(rule)
		e.SimulatedTime += e.timeStep()
		e.advanceTrackers(rule, originParticle)
		e.updatePoolsAfterAdvance(rule)
		e.logHistograms()
		return cycle.OutcomeAccepted
	}

	e.Counters.ByParticle[originParticle].Rejection++
	e.SimulatedTime += e.timeStep()
	e.logHistograms()
	return cycle.OutcomeRejected
}

// timeStep is the simulated-time advance charged to every end-unstable,
// accepted, rejected, site-blocking and frequency-skipped cycle (the last
// two by their own paths in engine.go); a start-unstable cycle advances
// no time. A constant per-cycle increment keeps the engine's time base
// monotonic and is the natural KMC residence-time proxy once
// total_jump_normalization folds in the attempt-frequency scale.
func (e *Engine) timeStep() float64 {
	if e.Job.KMC.AttemptFrequencyHz <= 0 {
		return 0
	}
	return 1.0 / (e.Job.KMC.AttemptFrequencyHz * e.TotalJumpNormalization)
}

// updateMaxProbability tracks max_raw_probability, clamped at
// jumpLimitMax. The backjump-safe variant additionally considers
// exp(-S2toS0Barrier) when S0toS2 < S2toS0, used during the pre-run
// phase.
func (e *Engine) updateMaxProbability(rule *model.JumpRule) {
	c := e.Cycle
	candidate := c.RawProbability
	if e.UseSafeMaxProbability && c.S0toS2Barrier < c.S2toS0Barrier {
		safe := e.expFn(-c.S2toS0Barrier)
		if safe > candidate {
			candidate = safe
		}
	}
	if candidate > e.MaxRawProbability {
		e.MaxRawProbability = candidate
		if e.MaxRawProbability > jumpLimitMax {
			e.MaxRawProbability = jumpLimitMax
		}
	}
}

// recomputeNormalizationIfPrerun recomputes total_jump_normalization
// from the updated max raw probability; only meaningful during the
// self-optimizing pre-run loop.
func (e *Engine) recomputeNormalizationIfPrerun() {
	if !e.UseSafeMaxProbability || e.MaxRawProbability <= 0 {
		return
	}
	e.TotalJumpNormalization = (1.0 / e.MaxRawProbability) * e.Job.KMC.FixedNormalizationFactor
}

func (e *Engine) logHistograms() {
	if e.DisableJumpLog {
		return
	}
	c := e.Cycle
	h := e.Histograms.At(c.CollectionID, c.Code0.At(0))
	h.Edge.Add(c.S1Base)
	if c.ConformationDelta >= 0 {
		h.PositiveConf.Add(c.ConformationDelta)
	} else {
		h.NegativeConf.Add(-c.ConformationDelta)
	}
	h.Total.Add(c.S0toS2Barrier)
}
