package model

import (
	"fmt"

	"github.com/niceyeti/ionhop/errs"
	"github.com/niceyeti/ionhop/particle"
	"github.com/niceyeti/ionhop/rng"
)

// Validate performs the data-consistency checks the loader must pass
// before a Job is handed to the engine: lattice/state size mismatch,
// missing cluster code, an even RNG increment, and similar fatal
// inconsistencies. It returns the first violation found.
func Validate(j *Job) error {
	const fn = "model.Validate"

	wantSites := j.LatticeSize.SiteCount()
	if int64(len(j.InitialLattice)) != wantSites {
		return errs.New(errs.DataConsistency, fn, fmt.Sprintf(
			"initial lattice has %d sites, want %d for size %+v", len(j.InitialLattice), wantSites, j.LatticeSize))
	}

	if !rng.ValidateIncrement(j.RNGInc) {
		return errs.New(errs.DataConsistency, fn, "RNG increment must be odd")
	}

	if int32(len(j.EnvironmentDefinitions)) != j.LatticeSize.D {
		return errs.New(errs.DataConsistency, fn, fmt.Sprintf(
			"have %d environment definitions, want one per D=%d", len(j.EnvironmentDefinitions), j.LatticeSize.D))
	}

	for d, def := range j.EnvironmentDefinitions {
		if def == nil {
			return errs.New(errs.DataConsistency, fn, fmt.Sprintf("environment definition for D=%d is nil", d))
		}
		for _, pi := range def.PairInteractions {
			if j.PairTableByID(pi.PairTableID) == nil {
				return errs.New(errs.DataConsistency, fn, fmt.Sprintf(
					"D=%d references missing pair table %d", d, pi.PairTableID))
			}
		}
		for _, ci := range def.ClusterInteractions {
			ct := j.ClusterTableByID(ci.ClusterTableID)
			if ct == nil {
				return errs.New(errs.DataConsistency, fn, fmt.Sprintf(
					"D=%d references missing cluster table %d", d, ci.ClusterTableID))
			}
			for _, pidx := range ci.PairIndices {
				if pidx < 0 || pidx >= len(def.PairInteractions) {
					return errs.New(errs.DataConsistency, fn, fmt.Sprintf(
						"D=%d cluster interaction references out-of-range pair index %d", d, pidx))
				}
			}
		}
	}

	for _, c := range j.Collections {
		for _, did := range c.DirectionIDs {
			if j.DirectionByID(did) == nil {
				return errs.New(errs.DataConsistency, fn, fmt.Sprintf(
					"collection %d references missing direction %d", c.ID, did))
			}
		}
		for ri, r := range c.Rules {
			if len(r.TrackerOrderCode) == 0 {
				return errs.New(errs.DataConsistency, fn, fmt.Sprintf(
					"collection %d rule %d has empty tracker order code", c.ID, ri))
			}
		}
	}

	if len(j.JumpCounts) != len(j.EnvironmentDefinitions) || len(j.JumpDirections) != len(j.EnvironmentDefinitions) {
		return errs.New(errs.DataConsistency, fn, "jump count/direction mapping size mismatch with environment definitions")
	}

	if j.TemperatureK <= 0 {
		return errs.New(errs.DataConsistency, fn, "temperature must be positive")
	}

	return validateClusterCodes(j)
}

// validateClusterCodes confirms every environment's cluster interactions
// resolve against their cluster table for at least the identity
// (all-void) occupation, catching a missing-code data inconsistency
// before the first full energy resync.
func validateClusterCodes(j *Job) error {
	const fn = "model.validateClusterCodes"
	for d, def := range j.EnvironmentDefinitions {
		for ci, cint := range def.ClusterInteractions {
			ct := j.ClusterTableByID(cint.ClusterTableID)
			ids := make([]particle.ID, len(cint.PairIndices))
			if _, ok := ct.Lookup(particle.BuildOccCode(ids)); !ok {
				return errs.New(errs.DataConsistency, fn, fmt.Sprintf(
					"D=%d cluster interaction %d: all-void code not present in cluster table %d",
					d, ci, cint.ClusterTableID))
			}
		}
	}
	return nil
}
