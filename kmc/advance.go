package kmc

import (
	"github.com/niceyeti/ionhop/env"
	"github.com/niceyeti/ionhop/model"
	"github.com/niceyeti/ionhop/pool"
	"github.com/niceyeti/ionhop/tracker"
	"github.com/niceyeti/ionhop/units"
)

// advanceLattice permanently applies every path position whose
// occupation changed: for each such site, every environment link is
// invoked with no restore, then the site's particle id is updated.
func (e *Engine) advanceLattice(rule *model.JumpRule) {
	c := e.Cycle
	for i, envID := range c.Path {
		old := c.Code0.At(i)
		neu := rule.StateCode2.At(i)
		if old == neu {
			continue
		}
		sender := e.Lattice.At(envID)
		for _, link := range sender.Links {
			receiver := e.Lattice.At(link.TargetEnvID)
			env.ApplyLinkDelta(e.Job, receiver, link, old, neu)
		}
		sender.ParticleID = neu
	}
}

// advanceTrackers applies the rule's tracker-reorder permutation and
// accumulates movement vectors. The second parameter (the origin
// particle id decide passes) is ignored.
func (e *Engine) advanceTrackers(rule *model.JumpRule, _ byte) {
	c := e.Cycle
	dir := e.Job.DirectionByID(c.DirectionID)

	for pathID, sourcePathID := range rule.TrackerOrderCode {
		site := e.Lattice.At(c.Path[pathID])
		newTrackerID := c.MobileTrackerBackup[sourcePathID]

		if !site.IsMobile && newTrackerID != c.MobileTrackerBackup[pathID] {
			// Immobile path positions must keep their own identity in the
			// permutation.
			continue
		}
		site.MobileTrackerID = newTrackerID

		if int(pathID) >= len(dir.MovementAt) {
			continue
		}
		mv := tracker.FromMovement(dir.MovementAt[pathID], units.AngstromToMetre)
		particleAfter := site.ParticleID

		if newTrackerID >= 0 && int(newTrackerID) < len(e.Trackers.Mobile) {
			e.Trackers.Mobile[newTrackerID] = e.Trackers.Mobile[newTrackerID].Add(mv)
		}
		e.Trackers.AddStatic(site.Position.D, particleAfter, mv)
		e.Trackers.AddGlobal(c.CollectionID, particleAfter, mv)
	}
}

// updatePoolsAfterAdvance re-registers every changed path site into the
// selection pool, returning whether the global selectable jump count
// changed.
func (e *Engine) updatePoolsAfterAdvance(rule *model.JumpRule) bool {
	changed := false
	for i, envID := range e.Cycle.Path {
		old := e.Cycle.Code0.At(i)
		neu := rule.StateCode2.At(i)
		if old == neu {
			continue
		}
		if e.updateSitePoolRegistration(envID) {
			changed = true
		}
	}
	return changed
}

func (e *Engine) updateSitePoolRegistration(envID int64) bool {
	site := e.Lattice.At(envID)
	def := site.Definition()
	oldReg := e.registrations[envID]
	oldCount := 0
	if oldReg.PoolID != pool.NotSelectable {
		oldCount = e.Pool.Pools[oldReg.PoolID].DirectionCount
	}
	newCount := e.Job.JumpCounts.DirectionCountAt(site.Position.D)
	newSelectable := def.IsSelectable(site.ParticleID)

	res := e.Pool.Update(envID, oldReg, oldCount, newCount, newSelectable)
	e.registrations[envID] = res.New
	if res.MovedHappened {
		e.registrations[res.MovedEnvID] = res.MovedNewReg
	}
	return res.CountChanged
}
