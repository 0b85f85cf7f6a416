// Package atomic_float gives a float64 lock-free atomic read/add/set
// built on a uint64 CAS loop and math.Float64bits' bit-preserving
// reinterpretation. monitor.LiveStats uses one instance per reported
// field so the solver's single, synchronous loop goroutine can publish
// block snapshots that an HTTP handler goroutine reads concurrently
// without a mutex.
package atomic_float

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// No unsafe pointer derived from &af.val may be held across a GC
// safepoint: the collector is free to move af if nothing else
// references it at that instant, which would leave a held pointer
// stale. Every use here confines the unsafe.Pointer to a single
// expression.

// AtomicFloat64 encapsulates a float64 for non-locking atomic operations.
type AtomicFloat64 struct {
	val float64
}

// NewAtomicFloat64 encapsulates a float64 for atomic operations.
func NewAtomicFloat64(val float64) *AtomicFloat64 {
	return &AtomicFloat64{
		val: val,
	}
}

// Atomically read the float64.
// This definition is needed to ensure that read values are not stale/dirty local copies,
// or equivalently stated that the value is synchronized with main memory.
func (af *AtomicFloat64) AtomicRead() (value float64) {
	uint_val := atomic.LoadUint64((*uint64)(unsafe.Pointer(&af.val)))
	return math.Float64frombits(uint_val)
}

// Atomically add to the float64.
// Note: online versions of this repeatedly attempt to add @addend to the float in a for loop
// until the addition succeeds, whether or not the pointee changes in between, which is
// logically incorrect. If the pointee changes while we're operating upon it, it is better
// for the caller to know and take some other action (drop the update, recalculate, etc).
func (af *AtomicFloat64) AtomicAdd(addend float64) (newVal float64, succeeded bool) {
	old := af.AtomicRead()
	newVal = old + addend
	succeeded = atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(&af.val)),
		math.Float64bits(old),
		math.Float64bits(newVal))
	return
}

// AtomicSet sets the float64, returns true on success.
func (af *AtomicFloat64) AtomicSet(new_val float64) (succeeded bool) {
	old := af.AtomicRead()
	succeeded = atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(&af.val)),
		math.Float64bits(old),
		math.Float64bits(new_val))
	return
}
