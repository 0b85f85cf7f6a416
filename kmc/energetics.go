package kmc

import (
	"math"

	"github.com/niceyeti/ionhop/env"
	"github.com/niceyeti/ionhop/model"
	"github.com/niceyeti/ionhop/plugin"
)

// computeEnergetics fills S0, S1Base, S1Total, S2, FieldEnergy and the
// two barriers for the current cycle.
func (e *Engine) computeEnergetics(dir *model.JumpDirection, rule *model.JumpRule) {
	c := e.Cycle
	c.S0, c.S1Base = 0, 0

	for i, envID := range c.Path {
		s := e.Lattice.At(envID)
		id := c.Code0.At(i)
		v := s.EnergyStates[id]
		c.S0 += v
		if !s.IsStable {
			c.S1Base += v
		}
	}

	c.FieldEnergy = -(dir.FieldFactor * rule.FieldFactor)

	if rule.HasStaticCorrection() {
		c.S2 = c.S0 + rule.StaticVirtualJumpEnergyCorrection
	} else {
		c.S2 = e.computeS2ByDeltaWalk(rule)
	}

	c.ConformationDelta = c.S2 - c.S0

	c.S1Total = c.S0 + 0.5*(c.S2-c.S0) + c.S1Base
	if e.EnergyHook != nil {
		te := plugin.TransitionEnergies{S0: c.S0, S1Base: c.S1Base, S2: c.S2, Field: c.FieldEnergy, ConformationDelta: c.ConformationDelta}
		e.EnergyHook.SetTransitionStateEnergy(&te)
		c.S0, c.S1Base, c.S2, c.FieldEnergy, c.ConformationDelta = te.S0, te.S1Base, te.S2, te.Field, te.ConformationDelta
		c.S1Total = c.S0 + 0.5*(c.S2-c.S0) + c.S1Base
	}

	c.S0toS2Barrier = (c.S1Total - c.S0) + c.FieldEnergy
	c.S2toS0Barrier = (c.S1Total - c.S2) - c.FieldEnergy
	c.RawProbability = e.expFn(-c.S0toS2Barrier)
	c.NormProbability = c.RawProbability * e.TotalJumpNormalization * rule.FrequencyFactor
}

// computeS2ByDeltaWalk performs the backup/stage/apply/restore dance
// that evaluates the trial end-state's energy without committing it.
//
// Jump links are walked in two explicit passes rather than one fused
// stage-and-apply pass: a receiver cluster reached by more than one
// sender's link must have every sender's byte change staged before any
// of them is resolved against the cluster table, otherwise the first
// resolution would look up an intermediate code the table may not even
// enumerate and silently drop its share of the delta.
func (e *Engine) computeS2ByDeltaWalk(rule *model.JumpRule) float64 {
	path := e.Cycle.Path
	sites := make([]*env.State, len(path))
	for i, envID := range path {
		sites[i] = e.Lattice.At(envID)
		sites[i].BackupEnergy()
		sites[i].BackupClusters()
	}

	for _, jl := range e.Cycle.JumpLinks {
		sender := sites[jl.SenderPathID]
		link := sender.Links[jl.LinkIndexInSender]
		receiver := e.Lattice.At(link.TargetEnvID)
		neu := rule.StateCode2.At(jl.SenderPathID)
		env.StageLinkClusterCodes(receiver, link, neu)
	}

	for _, jl := range e.Cycle.JumpLinks {
		sender := sites[jl.SenderPathID]
		link := sender.Links[jl.LinkIndexInSender]
		receiver := e.Lattice.At(link.TargetEnvID)
		old := e.Cycle.Code0.At(jl.SenderPathID)
		neu := rule.StateCode2.At(jl.SenderPathID)
		env.ApplyPairDelta(e.Job, receiver, link, old, neu)
		env.ApplyStagedClusterDeltas(e.Job, receiver, link)
	}

	var s2 float64
	for i, envID := range path {
		site := e.Lattice.At(envID)
		s2 += site.EnergyStates[rule.StateCode2.At(i)]
	}

	for _, s := range sites {
		s.RestoreEnergy()
		s.RestoreClusters()
	}
	return s2
}

func fastExp(x float64) float64 {
	// Schraudolph's bit-aliasing approximation, valid on the [-50,0]
	// range the hot loop exercises; callers outside that range should
	// fall back to math.Exp. Kept isolated behind UseFastExp since its
	// error grows quickly outside the barrier-energy domain it was
	// tuned for.
	if x < -700 {
		return 0
	}
	const a = (1 << 20) / 0.6931471805599453
	const b = 1023 * (1 << 20)
	bits := int64(a*x + (b - 60801))
	bits <<= 32
	return math.Float64frombits(uint64(bits))
}
