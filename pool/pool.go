// Package pool implements the jump-selection pool: a bucketed index
// over mobile sites, bucketed by jump count, that supports O(1) uniform
// random selection and O(1) removal by swap-with-last.
package pool

// NotSelectable is the sentinel pool/position id assigned to a site
// that is not currently eligible for selection.
const NotSelectable = -1

// DirectionPool is the bucket of environment ids sharing one jump
// direction count N.
type DirectionPool struct {
	DirectionCount int
	PositionCount  int
	JumpCount      int // PositionCount * DirectionCount
	Environments   []int64
}

// Pool is the top-level selection pool: a jump-count -> bucket-id map
// plus the global selectable jump count.
type Pool struct {
	// directionPoolMapping[jumpCount] = index into Pools, or
	// NotSelectable if no bucket exists yet for that count.
	directionPoolMapping []int
	Pools                []*DirectionPool

	SelectableJumpCount int64
}

// New builds an empty Pool sized to accept jump counts up to maxCount.
func New(maxCount int) *Pool {
	m := make([]int, maxCount+1)
	for i := range m {
		m[i] = NotSelectable
	}
	return &Pool{directionPoolMapping: m}
}

func (p *Pool) poolIDForCount(count int) int {
	if count < 0 || count >= len(p.directionPoolMapping) {
		return NotSelectable
	}
	return p.directionPoolMapping[count]
}

func (p *Pool) ensurePoolForCount(count int) int {
	id := p.poolIDForCount(count)
	if id != NotSelectable {
		return id
	}
	p.Pools = append(p.Pools, &DirectionPool{DirectionCount: count})
	id = len(p.Pools) - 1
	p.directionPoolMapping[count] = id
	return id
}

// Registration is the outcome of registering or re-registering a site:
// the new (poolID, positionID) the caller's site state must remember.
type Registration struct {
	PoolID     int
	PositionID int
}

// NotRegistered is the zero-value sentinel registration: not selectable.
var NotRegistered = Registration{PoolID: NotSelectable, PositionID: NotSelectable}

// Register pushes envID into the bucket for jumpCount and returns its
// new location. jumpCount <= 0 means "not selectable"; callers must
// check IsSelectable() on the environment definition before calling
// this for jumpCount > 0.
func (p *Pool) Register(envID int64, jumpCount int, selectable bool) Registration {
	if !selectable || jumpCount <= 0 {
		return NotRegistered
	}
	poolID := p.ensurePoolForCount(jumpCount)
	dp := p.Pools[poolID]
	dp.Environments = append(dp.Environments, envID)
	dp.PositionCount++
	dp.JumpCount += jumpCount
	p.SelectableJumpCount += int64(jumpCount)
	return Registration{PoolID: poolID, PositionID: dp.PositionCount - 1}
}

// Unregister removes the entry at reg from its pool via swap-with-last,
// returning the envID of whatever entry was moved into reg's old slot
// (0 and ok=false if reg pointed at the last entry, i.e. nothing moved).
func (p *Pool) Unregister(reg Registration, jumpCount int) (movedEnvID int64, moved bool) {
	if reg.PoolID == NotSelectable {
		return 0, false
	}
	dp := p.Pools[reg.PoolID]
	last := len(dp.Environments) - 1

	if reg.PositionID != last {
		dp.Environments[reg.PositionID] = dp.Environments[last]
		movedEnvID = dp.Environments[reg.PositionID]
		moved = true
	}
	dp.Environments = dp.Environments[:last]
	dp.PositionCount--
	dp.JumpCount -= jumpCount
	p.SelectableJumpCount -= int64(jumpCount)
	return movedEnvID, moved
}

// Selection is a drawn (environment, relative jump id) pair.
type Selection struct {
	EnvironmentID int64
	RelativeJumpID int
}

// next_ceiled_random abstraction: callers supply a draw in
// [0, SelectableJumpCount).
type ceiledRandomFunc func(ceil uint32) uint32

// Select draws a uniform (env_id, relative_jump_id) pair with
// probability proportional to each site's direction count.
func (p *Pool) Select(draw func(ceil uint32) uint32) Selection {
	r := int(draw(uint32(p.SelectableJumpCount)))
	for _, dp := range p.Pools {
		if r >= dp.JumpCount {
			r -= dp.JumpCount
			continue
		}
		return Selection{
			EnvironmentID:  dp.Environments[r/dp.DirectionCount],
			RelativeJumpID: r % dp.DirectionCount,
		}
	}
	return Selection{EnvironmentID: -1, RelativeJumpID: -1}
}

// Update performs the incremental re-bucketing of one site after its
// (particle, jump-count-mapping) changed. It returns whether the global selectable
// jump count changed (signal for time-step recomputation), plus the new
// registration to store on the site and, if an entry moved during
// removal, the moved site's envID and its new registration so the
// caller can update that site too.
type UpdateResult struct {
	New           Registration
	CountChanged  bool
	MovedEnvID    int64
	MovedHappened bool
	MovedNewReg   Registration
}

func (p *Pool) Update(envID int64, old Registration, oldJumpCount int, newJumpCount int, newSelectable bool) UpdateResult {
	oldSelectable := old.PoolID != NotSelectable
	newlySelectable := newSelectable && newJumpCount > 0

	if oldSelectable && newlySelectable && oldJumpCount == newJumpCount {
		return UpdateResult{New: old}
	}

	var res UpdateResult
	if oldSelectable {
		moved, didMove := p.Unregister(old, oldJumpCount)
		res.MovedEnvID = moved
		res.MovedHappened = didMove
		if didMove {
			res.MovedNewReg = Registration{PoolID: old.PoolID, PositionID: old.PositionID}
		}
		res.CountChanged = true
	}
	if newlySelectable {
		res.New = p.Register(envID, newJumpCount, true)
		res.CountChanged = true
	} else {
		res.New = NotRegistered
	}
	return res
}
