package rc

import (
	"sync"
	"sync/atomic"
)

// sentinel values flank a live control block, overwritten on destruction
// so that a use of a dangling controlBlock pointer can be detected rather
// than silently reading freed memory's leftover bits.
const (
	sentinelAlive     uint64 = 0xA11CE5EEDBEEFA11
	sentinelDestroyed uint64 = 0xDEADF00DDEADF00D
)

// controlBlock is the RC metadata record shared by every strong and weak
// handle referring to the same managed object. It is allocated once, by
// a typed factory, and is never moved or copied; handles hold a pointer
// to it.
type controlBlock[T any] struct {
	headerSentinel atomic.Uint64

	strong atomic.Int64
	weak   atomic.Int64

	obj atomic.Pointer[T]

	objectDestroyed atomic.Bool
	destroyed       atomic.Bool

	finalize func(*T) // runs under the exclusive lock, at most once

	mu sync.RWMutex

	footerSentinel atomic.Uint64
}

// newControlBlock wires a control block around an already-allocated
// managed object with strong=1, weak=0 (spec §4.5's "construction from a
// raw pointer"). The scalar/array distinction spec §4.4 describes as
// "scalar delete or array delete per is_array" lives entirely in which
// finalize closure the caller supplies — MakeShared's scalar closure
// versus MakeSharedArray's reverse-order slice closure — so there is no
// separate is_array flag here for destroyManagedObject to branch on.
func newControlBlock[T any](obj *T, finalize func(*T)) *controlBlock[T] {
	cb := &controlBlock[T]{finalize: finalize}
	cb.headerSentinel.Store(sentinelAlive)
	cb.footerSentinel.Store(sentinelAlive)
	cb.strong.Store(1)
	cb.obj.Store(obj)
	return cb
}

// newArrayControlBlock is the array-factory counterpart; see
// newControlBlock for why there is no separate array bookkeeping field.
func newArrayControlBlock[T any](obj *T, finalize func(*T)) *controlBlock[T] {
	return newControlBlock(obj, finalize)
}

// checkIntegrity verifies both sentinels still carry the alive constant.
func (cb *controlBlock[T]) checkIntegrity() error {
	if cb.headerSentinel.Load() != sentinelAlive || cb.footerSentinel.Load() != sentinelAlive {
		return raise(ErrCorrupted)
	}
	return nil
}

// addStrong requires the caller to already hold a live reference (strong
// or otherwise guaranteed non-zero) to this control block; it bumps the
// strong counter with relaxed ordering (spec §4.4). Every counter
// mutation verifies the integrity sentinels first (spec §4.4); a
// violation is raised and the mutation is skipped rather than applied to
// a corrupted or already-destroyed control block.
func (cb *controlBlock[T]) addStrong() {
	if cb.checkIntegrity() != nil {
		return
	}
	cb.strong.Add(1)
}

// addWeak is the weak counterpart of addStrong.
func (cb *controlBlock[T]) addWeak() {
	if cb.checkIntegrity() != nil {
		return
	}
	cb.weak.Add(1)
}

// tryAddStrong is the only safe path for a weak handle to obtain strong
// ownership: it increments the strong counter iff it is currently
// greater than zero, via a compare-and-swap loop, and reports whether it
// succeeded.
func (cb *controlBlock[T]) tryAddStrong() bool {
	if cb.checkIntegrity() != nil {
		return false
	}
	for {
		cur := cb.strong.Load()
		if cur <= 0 {
			return false
		}
		if cb.strong.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// releaseStrong drops one strong reference. When the prior value was 1,
// it destroys the managed object, then — critically — reads the weak
// counter *before* any self-destruction of the control block: reading it
// afterward risks a concurrent releaseWeak observing a control block
// that is mid-destruction (spec §4.4, §9).
func (cb *controlBlock[T]) releaseStrong() {
	if cb.checkIntegrity() != nil {
		return
	}

	prior := cb.strong.Add(-1) + 1
	if prior <= 0 {
		// Underflow guard (spec §7 error kind 4): a fetch-sub whose
		// prior value was already 0 is a no-op rather than continuing
		// into a second destruction.
		cb.strong.Add(1)
		return
	}
	if prior != 1 {
		return
	}

	cb.destroyManagedObject()

	if cb.weak.Load() == 0 {
		cb.destroySelf()
	}
}

// releaseWeak is the symmetric counterpart of releaseStrong.
func (cb *controlBlock[T]) releaseWeak() {
	if cb.checkIntegrity() != nil {
		return
	}

	prior := cb.weak.Add(-1) + 1
	if prior <= 0 {
		cb.weak.Add(1)
		return
	}
	if prior != 1 {
		return
	}
	if cb.strong.Load() == 0 {
		cb.destroySelf()
	}
}

// destroyManagedObject is gated by objectDestroyed so it runs exactly
// once, regardless of how many releaseStrong calls race to reach zero
// (only one can, but the gate also protects against the finalizer path
// calling in twice by mistake). The winner takes the exclusive lock,
// swaps the managed pointer to null, and runs the finalizer; readers that
// hold a shared lock are guaranteed to have observed a non-null pointer
// before this point, and this call blocks until they release it.
func (cb *controlBlock[T]) destroyManagedObject() {
	if !cb.objectDestroyed.CompareAndSwap(false, true) {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	o := cb.obj.Swap(nil)
	if o != nil && cb.finalize != nil {
		cb.finalize(o)
	}
}

// destroySelf overwrites the integrity sentinels and marks the control
// block destroyed, so that any lingering use (a bug, not a supported
// path) is detectable rather than silently reading freed state.
func (cb *controlBlock[T]) destroySelf() {
	cb.headerSentinel.Store(sentinelDestroyed)
	cb.footerSentinel.Store(sentinelDestroyed)
	cb.destroyed.Store(true)
}

// getPtr returns the current managed pointer, or nil once destroyed.
func (cb *controlBlock[T]) getPtr() *T {
	return cb.obj.Load()
}

// isAlive reports whether the managed object has not yet been destroyed.
func (cb *controlBlock[T]) isAlive() bool {
	return !cb.objectDestroyed.Load()
}

// strongCount and weakCount report the current counter values, used by
// Handle.RefCount/WeakCount/Unique.
func (cb *controlBlock[T]) strongCount() int64 { return cb.strong.Load() }
func (cb *controlBlock[T]) weakCount() int64   { return cb.weak.Load() }
