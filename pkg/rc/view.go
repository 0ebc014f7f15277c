package rc

import "sync/atomic"

// LockedView is the scoped, read-locked dereference of a strong handle
// (spec §4.5): obtaining one acquires a shared lock on the control
// block's mutex, which Release drops. While a view is open, the managed
// object cannot begin destruction — releaseStrong's exclusive lock
// acquisition blocks until every outstanding view releases.
type LockedView[T any] struct {
	ptr      *T
	unlock   func()
	released atomic.Bool
}

// Get returns a pointer to the managed value (or element, for an
// ArrayHandle view) the lock is protecting. It is only valid until
// Release is called.
func (v *LockedView[T]) Get() *T {
	return v.ptr
}

// Release drops the shared lock. Safe to call more than once; only the
// first call has an effect.
func (v *LockedView[T]) Release() {
	if v.released.CompareAndSwap(false, true) {
		v.unlock()
	}
}
