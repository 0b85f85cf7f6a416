package kmc

// ParticleCounters tracks the per-particle-species outcome tallies.
type ParticleCounters struct {
	MCS           int64
	Rejection     int64
	SiteBlocking  int64
	UnstableStart int64
	UnstableEnd   int64
	Skip          int64
}

// CycleCounters tracks the run-wide progress counters.
type CycleCounters struct {
	CycleCount                int64
	MCSCount                  int64
	CyclesPerExecutionLoop    int64
	MCSPerExecutionPhase      int64
	NextExecutionPhaseGoalMCS int64
	TotalSimulationGoalMCS    int64
	PrerunGoalMCS             int64
}

// Counters bundles the cycle-wide and per-particle counters.
type Counters struct {
	Cycle     CycleCounters
	ByParticle []ParticleCounters // indexed by particle id
}

// NewCounters allocates a Counters with particleLimit per-species slots.
func NewCounters(particleLimit int) *Counters {
	return &Counters{ByParticle: make([]ParticleCounters, particleLimit)}
}

// Reset zeroes per-particle counters and cycle progress, but not the
// goal fields, used after the pre-run phase.
func (c *Counters) Reset() {
	for i := range c.ByParticle {
		c.ByParticle[i] = ParticleCounters{}
	}
	c.Cycle.CycleCount = 0
	c.Cycle.MCSCount = 0
}
