package env

import (
	"sort"

	"github.com/niceyeti/ionhop/model"
	"github.com/niceyeti/ionhop/particle"
)

// BuildLinks constructs every site's outbound EnvironmentLink list. A
// link X→Y exists iff Y is an energy-update recipient of X's occupancy
// and neither endpoint's pair interaction is link-irrelevant. Links
// are sorted by TargetPairID.
//
// Immobility optimization (spec.md §4.1, mandatory): a sender that can
// never change its occupant (immobile and stable) never needs an
// outbound link list, and a recipient that never receives updates
// (immobile centers, and in MMC any unstable center) never needs a
// link built for it. Callers must set every site's IsMobile (derived
// from its jump-count mapping) before calling BuildLinks.
func BuildLinks(j *model.Job, l *Lattice, isMMC bool, tol float64) {
	for _, s := range l.sites {
		if senderIsLinkIrrelevant(s, isMMC) {
			s.Links = nil
			continue
		}
		s.Links = buildLinksForSite(j, l, s, tol)
	}
}

// senderIsLinkIrrelevant reports whether a site never needs to send
// outbound notifications: it is immobile and stable, or (MMC only) it
// is not stable. Grounded on the original's
// ConstructPreparedLinkingSystem skip condition.
func senderIsLinkIrrelevant(s *State, isMMC bool) bool {
	return (!s.IsMobile && s.IsStable) || (isMMC && !s.IsStable)
}

// recipientNeedsNoLink reports whether a site never receives updates:
// it is not mobile, or not stable. Grounded on the original's
// GetNextLinkFromTargetEnvironment / ResolvePairTargetAndIncreaseLinkCounter
// skip condition.
func recipientNeedsNoLink(s *State) bool {
	return !s.IsMobile || !s.IsStable
}

func buildLinksForSite(j *model.Job, l *Lattice, s *State, tol float64) []model.EnvironmentLink {
	def := s.def
	var links []model.EnvironmentLink

	for pi, p := range def.PairInteractions {
		if IsLinkIrrelevant(j, def, pi, tol) {
			continue
		}
		targetV := l.size.Wrap(s.Position.Add(p.Offset))
		target := l.AtVector(targetV)
		targetDef := target.def

		if len(targetDef.UpdateParticleIDs) == 0 {
			continue
		}
		if recipientNeedsNoLink(target) {
			continue
		}

		// The reciprocal pair index on target pointing back at s is the
		// pair interaction whose offset is the negation of p.Offset.
		reciprocalIdx, ok := findReciprocalPair(targetDef, p.Offset)
		if !ok {
			continue
		}
		if IsLinkIrrelevant(j, targetDef, reciprocalIdx, tol) {
			continue
		}

		clusterLinks := clusterLinksFor(targetDef, reciprocalIdx)

		links = append(links, model.EnvironmentLink{
			TargetEnvID:  target.EnvID,
			TargetPairID: reciprocalIdx,
			ClusterLinks: clusterLinks,
		})
	}

	sort.Slice(links, func(i, j int) bool { return links[i].TargetPairID < links[j].TargetPairID })
	return links
}

// findReciprocalPair finds the pair interaction on def whose relative
// offset is the negation of offset (i.e., points back at the sender).
func findReciprocalPair(def *model.EnvironmentDefinition, offset particle.Vec4) (int, bool) {
	neg := particle.Vec4{A: -offset.A, B: -offset.B, C: -offset.C, D: -offset.D}
	for i, p := range def.PairInteractions {
		if p.Offset == neg {
			return i, true
		}
	}
	return 0, false
}

// clusterLinksFor finds every cluster interaction on def that references
// pair index pairIdx, returning one ClusterLink per reference (the
// occupation-code byte position matches the reference's position within
// the cluster's PairIndices list).
func clusterLinksFor(def *model.EnvironmentDefinition, pairIdx int) []model.ClusterLink {
	var out []model.ClusterLink
	for ci, cint := range def.ClusterInteractions {
		for byteID, idx := range cint.PairIndices {
			if idx == pairIdx {
				out = append(out, model.ClusterLink{ClusterID: ci, CodeByteID: byteID})
			}
		}
	}
	return out
}

// LinkCount returns the total number of outbound links in the lattice.
// With all-constant tables this is exactly zero.
func (l *Lattice) LinkCount() int {
	n := 0
	for _, s := range l.sites {
		n += len(s.Links)
	}
	return n
}
