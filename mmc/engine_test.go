package mmc

import (
	"math"
	"testing"

	"github.com/niceyeti/ionhop/model"
	"github.com/niceyeti/ionhop/particle"

	. "github.com/smartystreets/goconvey/convey"
)

// twoSiteJob builds a minimal binary (species 1/2) two-site job with a
// constant pair table, enough for NewEngine's pool/registration setup;
// detailed-balance tests below call decideSwap directly and supply
// their own S0/S2, so the table's actual values don't matter.
func twoSiteJob() *model.Job {
	def := &model.EnvironmentDefinition{
		PositionD: 0,
		IsStable:  true,
		PairInteractions: []model.PairInteraction{
			{Offset: particle.Vec4{A: 1}, PairTableID: 0},
			{Offset: particle.Vec4{A: -1}, PairTableID: 0},
		},
		LegalParticleMask:     (1 << 1) | (1 << 2),
		LegalParticleIDs:      []particle.ID{1, 2, particle.Null},
		SelectionParticleMask: (1 << 1) | (1 << 2),
		UpdateParticleIDs:     []particle.ID{1, 2},
	}
	rows := make([][]float64, 64)
	for i := range rows {
		rows[i] = make([]float64, 64)
	}
	pt := model.NewPairTable(0, rows)

	rule := func(a, b, na, nb particle.ID) model.JumpRule {
		return model.JumpRule{
			StateCode0:       particle.BuildOccCode([]particle.ID{a, b}),
			StateCode2:       particle.BuildOccCode([]particle.ID{na, nb}),
			FrequencyFactor:  1.0,
			TrackerOrderCode: []byte{0, 1},
		}
	}
	collection := &model.JumpCollection{
		ID:           0,
		DirectionIDs: []int{0},
		Rules: []model.JumpRule{
			rule(1, 1, 1, 1),
			rule(2, 2, 2, 2),
			rule(1, 2, 2, 1),
			rule(2, 1, 1, 2),
		},
		MobileParticleMask: (1 << 1) | (1 << 2),
	}
	direction := &model.JumpDirection{
		ID:           0,
		CollectionID: 0,
		Offsets: []particle.Vec4{
			{A: 0, B: 0, C: 0, D: 0},
			{A: 0, B: 0, C: 0, D: 0},
		},
		MovementAt: []particle.MovementVector{{}, {}},
	}

	return &model.Job{
		LatticeSize:            particle.Size{A: 2, B: 1, C: 1, D: 1},
		InitialLattice:         []particle.ID{1, 2},
		EnvironmentDefinitions: []*model.EnvironmentDefinition{def},
		PairTables:             []*model.PairTable{pt},
		PairDeltaTables:        []*model.PairDeltaTable{model.BuildPairDeltaTable(pt)},
		Directions:             []*model.JumpDirection{direction},
		Collections:            []*model.JumpCollection{collection},
		JumpCounts:             model.JumpCountMapping{1},
		JumpDirections:         model.JumpDirectionMapping{{0}},
		TemperatureK:           300.0,
		InteractionRange:       1,
		MMC: model.MMCParams{
			AbortTolerance:      1e-4,
			AbortSequenceLength: 100,
			AbortSampleLength:   100,
		},
	}
}

func TestMetropolisDetailedBalance(t *testing.T) {
	Convey("Given an MMC engine and a fixed swap rule", t, func() {
		e := NewEngine(twoSiteJob())
		siteA, siteB := e.Lattice.At(0), e.Lattice.At(1)
		rule := &model.JumpRule{
			StateCode2: particle.BuildOccCode([]particle.ID{siteB.ParticleID, siteA.ParticleID}),
		}

		Convey("For a positive energy delta, acceptance fraction matches exp(-delta)", func() {
			delta := 1.0
			trials := 20000
			accepted := 0
			for i := 0; i < trials; i++ {
				siteA.ParticleID, siteB.ParticleID = 1, 2
				if e.decideSwap(siteA, siteB, rule, 0, delta) == OutcomeAccepted {
					accepted++
				}
			}
			frac := float64(accepted) / float64(trials)
			So(frac, ShouldAlmostEqual, math.Exp(-delta), 0.02)
		})

		Convey("For a non-positive energy delta, the swap always accepts", func() {
			trials := 500
			for i := 0; i < trials; i++ {
				siteA.ParticleID, siteB.ParticleID = 1, 2
				outcome := e.decideSwap(siteA, siteB, rule, 1.0, -1.0)
				So(outcome, ShouldEqual, OutcomeAccepted)
			}
		})
	})
}

func TestEnergyFluctuationAbortTripsOnConstantEnergy(t *testing.T) {
	Convey("Given an MMC job whose pair table is constant (every swap is energy-neutral)", t, func() {
		j := twoSiteJob()
		j.PairTables[0] = model.NewPairTable(0, constantRows(5.0))
		j.PairDeltaTables[0] = model.BuildPairDeltaTable(j.PairTables[0])
		e := NewEngine(j)
		latEnergy := e.LatticeEnergyEV()

		Convey("ShouldAbort is false before the fluctuation buffer fills", func() {
			So(e.ShouldAbort(latEnergy, 1.0), ShouldBeFalse)
		})

		Convey("ShouldAbort trips once the rolling sum of zero deltas fills the buffer", func() {
			for i := 0; i < j.MMC.AbortSequenceLength+5; i++ {
				e.RunCycle()
			}
			So(e.ShouldAbort(latEnergy, 1.0), ShouldBeTrue)
		})
	})

	Convey("A non-positive abort tolerance disables the check", func() {
		j := twoSiteJob()
		j.MMC.AbortTolerance = 0
		e := NewEngine(j)
		for i := 0; i < 200; i++ {
			e.RunCycle()
		}
		So(e.ShouldAbort(e.LatticeEnergyEV(), 1.0), ShouldBeFalse)
	})
}

func constantRows(v float64) [][]float64 {
	rows := make([][]float64, 64)
	for i := range rows {
		rows[i] = make([]float64, 64)
		for k := range rows[i] {
			rows[i][k] = v
		}
	}
	return rows
}
