package kmc

import (
	"github.com/niceyeti/ionhop/env"
	"github.com/niceyeti/ionhop/model"
	"github.com/niceyeti/ionhop/particle"
)

// buildPath walks dir's relative offsets from origin, populating
// e.Cycle's path, path vectors, and Code0 occupation code.
func (e *Engine) buildPath(origin *env.State, dir *model.JumpDirection) {
	l := e.Lattice
	e.Cycle.Reset(dir.Length())

	e.Cycle.Path[0] = origin.EnvID
	e.Cycle.PathVectors[0] = origin.Position

	for i, off := range dir.Offsets {
		if i == 0 {
			continue
		}
		v := l.Size().Wrap(origin.Position.Add(off))
		site := l.AtVector(v)
		e.Cycle.Path[i] = site.EnvID
		e.Cycle.PathVectors[i] = v
	}

	ids := make([]particle.ID, dir.Length())
	for i, envID := range e.Cycle.Path {
		ids[i] = l.At(envID).ParticleID
	}
	e.Cycle.Code0 = particle.BuildOccCode(ids)

	for i, envID := range e.Cycle.Path {
		e.Cycle.MobileTrackerBackup[i] = l.At(envID).MobileTrackerID
	}
}

// buildJumpLinks populates e.Cycle.JumpLinks: for every stable path
// site, every other path site its environment links point at.
func (e *Engine) buildJumpLinks() {
	e.Cycle.JumpLinks = e.Cycle.JumpLinks[:0]
	path := e.Cycle.Path
	for senderIdx, senderEnvID := range path {
		sender := e.Lattice.At(senderEnvID)
		if !sender.IsStable {
			continue
		}
		for linkIdx, link := range sender.Links {
			for _, recvEnvID := range path {
				if link.TargetEnvID == recvEnvID {
					e.Cycle.JumpLinks = append(e.Cycle.JumpLinks, model.JumpLink{
						SenderPathID:      senderIdx,
						LinkIndexInSender: linkIdx,
					})
				}
			}
		}
	}
}
