package env

import "github.com/niceyeti/ionhop/model"

// BackupEnergy saves s's current energy-state vector so it can be
// restored after a trial evaluation.
func (s *State) BackupEnergy() {
	if cap(s.energyBackup) < len(s.EnergyStates) {
		s.energyBackup = make([]float64, len(s.EnergyStates))
	}
	s.energyBackup = s.energyBackup[:len(s.EnergyStates)]
	copy(s.energyBackup, s.EnergyStates)
}

// RestoreEnergy reverts s's energy-state vector to the last BackupEnergy
// snapshot.
func (s *State) RestoreEnergy() {
	copy(s.EnergyStates, s.energyBackup)
}

// BackupClusters saves every cluster state on s.
func (s *State) BackupClusters() {
	for i := range s.Clusters {
		s.Clusters[i].backup()
	}
}

// RestoreClusters reverts every cluster state on s to its last
// BackupClusters snapshot.
func (s *State) RestoreClusters() {
	for i := range s.Clusters {
		s.Clusters[i].restore()
	}
}

// ApplyPairDelta applies only the pair-table energy delta of one
// environment link to the receiver: the receiver's TargetPairID
// partner occupant changed from oldOccupant to newOccupant, so every
// particle id the receiver updates on gets the pair-table delta.
// Mutates receiver in place.
func ApplyPairDelta(j *model.Job, receiver *State, link model.EnvironmentLink, oldOccupant, newOccupant byte) {
	def := receiver.def
	pairTableID := def.PairInteractions[link.TargetPairID].PairTableID
	pt := j.PairTableByID(pairTableID)
	pdt := j.PairDeltaTableByID(pairTableID)

	for _, upd := range def.UpdateParticleIDs {
		if int(upd) >= len(receiver.EnergyStates) {
			continue
		}
		var delta float64
		if pdt != nil {
			delta = pdt.Get(upd, oldOccupant, newOccupant)
		} else {
			delta = pt.Get(upd, newOccupant) - pt.Get(upd, oldOccupant)
		}
		receiver.EnergyStates[upd] += delta
	}
}

// StageLinkClusterCodes sets the cluster-code bytes an environment link
// touches on the receiver to their new values, without resolving a new
// code id or applying any energy delta. Callers evaluating a multi-link
// trial must call this for every jump link first, before resolving any
// of them with ApplyStagedClusterDeltas: a receiver cluster touched by
// more than one sender in the same jump path must only ever be looked
// up in its fully-staged form, never an intermediate partial
// combination the cluster table may not enumerate.
func StageLinkClusterCodes(receiver *State, link model.EnvironmentLink, newSenderByte byte) {
	for _, cl := range link.ClusterLinks {
		cs := &receiver.Clusters[cl.ClusterID]
		cs.Code = cs.Code.WithAt(cl.CodeByteID, newSenderByte)
	}
}

// ApplyStagedClusterDeltas resolves and applies the energy delta for
// every cluster link on an environment link whose code was changed by
// a prior StageLinkClusterCodes call, comparing the fully-staged code's
// table index against each cluster's current CodeIndex. A cluster
// touched by more than one link in the same trial only contributes its
// delta once: after the first link resolves it, CodeIndex matches the
// fully-staged code, so a later link touching the same cluster finds no
// further change and applies nothing.
func ApplyStagedClusterDeltas(j *model.Job, receiver *State, link model.EnvironmentLink) {
	def := receiver.def
	for _, cl := range link.ClusterLinks {
		cs := &receiver.Clusters[cl.ClusterID]
		cint := def.ClusterInteractions[cl.ClusterID]
		ct := j.ClusterTableByID(cint.ClusterTableID)

		newIdx, ok := ct.Lookup(cs.Code)
		if !ok || newIdx == cs.CodeIndex {
			continue
		}
		for _, upd := range def.UpdateParticleIDs {
			if int(upd) >= len(receiver.EnergyStates) {
				continue
			}
			receiver.EnergyStates[upd] += ct.Energy(newIdx, upd) - ct.Energy(cs.CodeIndex, upd)
		}
		cs.CodeIndex = newIdx
	}
}

// ApplyLinkDelta applies one environment link's pair and cluster energy
// deltas to the receiver in a single call: the receiver's TargetPairID
// partner occupant changed from oldOccupant to newOccupant. Used by the
// permanent post-acceptance advance, where links are committed one at a
// time and no later link revisits an already-committed cluster code.
// Trial evaluation must not use this directly; it stages every jump
// link's cluster codes first (StageLinkClusterCodes) before resolving
// any of them (ApplyStagedClusterDeltas) — see kmc.computeS2ByDeltaWalk.
func ApplyLinkDelta(j *model.Job, receiver *State, link model.EnvironmentLink, oldOccupant, newOccupant byte) {
	ApplyPairDelta(j, receiver, link, oldOccupant, newOccupant)
	StageLinkClusterCodes(receiver, link, newOccupant)
	ApplyStagedClusterDeltas(j, receiver, link)
}
