package rc

import (
	"sync/atomic"
	"unsafe"
)

// Handle is a dual-mode strong or weak owning reference to a single
// managed value of type T. A strong Handle keeps the managed object
// alive; a weak Handle only carries the right to test or promote. The
// zero Handle is null and behaves as an expired, no-op reference.
//
// Handle must not be copied by value after its first use; retarget with
// Assign or Move instead. Release exactly once when a Handle goes out of
// scope, since Go runs no destructors.
type Handle[T any] struct {
	cb       *controlBlock[T]
	weak     bool
	released atomic.Bool
}

func newStrongHandle[T any](cb *controlBlock[T]) *Handle[T] {
	return &Handle[T]{cb: cb}
}

// Dereference obtains a scoped, shared-locked view of the managed value.
// It fails with ErrWeakDeref if the handle is weak, or ErrNilHandle if
// the handle is null, or ErrDestroyed if the managed object has already
// been released by its last strong owner.
func (h *Handle[T]) Dereference() (*LockedView[T], error) {
	if h.cb == nil {
		return nil, raise(ErrNilHandle)
	}
	if h.weak {
		return nil, raise(ErrWeakDeref)
	}
	if err := h.cb.checkIntegrity(); err != nil {
		return nil, err
	}

	h.cb.mu.RLock()
	o := h.cb.obj.Load()
	if o == nil {
		h.cb.mu.RUnlock()
		return nil, raise(ErrDestroyed)
	}
	return &LockedView[T]{ptr: o, unlock: h.cb.mu.RUnlock}, nil
}

// IsWeak reports whether the handle is in weak mode.
func (h *Handle[T]) IsWeak() bool { return h.weak }

// IsNull reports whether the handle refers to no control block.
func (h *Handle[T]) IsNull() bool { return h.cb == nil }

// Expired reports whether the control block is absent or its strong
// count has reached zero (spec §4.5).
func (h *Handle[T]) Expired() bool {
	return h.cb == nil || h.cb.strongCount() == 0
}

// RefCount reports the current strong count, or 0 for a null handle.
func (h *Handle[T]) RefCount() int64 {
	if h.cb == nil {
		return 0
	}
	return h.cb.strongCount()
}

// WeakCount reports the current weak count, or 0 for a null handle.
func (h *Handle[T]) WeakCount() int64 {
	if h.cb == nil {
		return 0
	}
	return h.cb.weakCount()
}

// Unique reports whether this handle is strong and the sole strong owner
// of its control block.
func (h *Handle[T]) Unique() bool {
	return !h.weak && h.cb != nil && h.cb.strongCount() == 1
}

// MakeWeak returns a new weak handle sharing h's control block, with one
// additional unit on the weak counter. If h is null or already weak,
// MakeWeak returns a null handle (spec §4.5).
func (h *Handle[T]) MakeWeak() *Handle[T] {
	if h.cb == nil || h.weak {
		return &Handle[T]{}
	}
	h.cb.addWeak()
	return &Handle[T]{cb: h.cb, weak: true}
}

// Lock attempts to promote a weak handle to strong. If h is already
// strong, Lock returns a copy. If h is weak and null (or the managed
// object has already been destroyed), Lock returns a null handle.
func (h *Handle[T]) Lock() *Handle[T] {
	if !h.weak {
		return h.clone()
	}
	if h.cb == nil {
		return &Handle[T]{}
	}
	if !h.cb.tryAddStrong() {
		return &Handle[T]{}
	}
	return &Handle[T]{cb: h.cb}
}

func (h *Handle[T]) clone() *Handle[T] {
	if h.cb == nil {
		return &Handle[T]{weak: h.weak}
	}
	if h.weak {
		h.cb.addWeak()
	} else {
		h.cb.addStrong()
	}
	return &Handle[T]{cb: h.cb, weak: h.weak}
}

// Assign retargets h to share other's control block, releasing h's
// previous reference first. The resulting handle adopts other's
// strong/weak mode and adds one unit to the matching counter, as a copy
// of other would.
func (h *Handle[T]) Assign(other *Handle[T]) {
	if h.cb == other.cb && h.weak == other.weak {
		return
	}
	h.releaseRef()

	h.cb = other.cb
	if h.cb == nil {
		return
	}
	if other.weak {
		h.weak = true
		h.cb.addWeak()
	} else {
		h.weak = false
		h.cb.addStrong()
	}
}

// Move transfers other's reference into h and nulls other out, without
// touching either counter.
func (h *Handle[T]) Move(other *Handle[T]) {
	h.releaseRef()
	h.cb = other.cb
	h.weak = other.weak
	other.cb = nil
}

// Reset releases h's reference and nulls it out.
func (h *Handle[T]) Reset() {
	h.releaseRef()
	h.cb = nil
}

func (h *Handle[T]) releaseRef() {
	if h.cb == nil {
		return
	}
	if h.weak {
		h.cb.releaseWeak()
	} else {
		h.cb.releaseStrong()
	}
}

// Release drops h's contribution to its control block's counters. Safe
// to call more than once; only the first call has an effect.
func (h *Handle[T]) Release() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	h.releaseRef()
	h.cb = nil
}

// Equal compares the exposed managed pointers, null-safe (spec §4.5).
func (h *Handle[T]) Equal(other *Handle[T]) bool {
	return h.rawPtr() == other.rawPtr()
}

// Less orders two handles by their exposed managed pointer, for use in
// sorted containers; the ordering has no meaning beyond consistency.
func (h *Handle[T]) Less(other *Handle[T]) bool {
	return uintptrOf(h.rawPtr()) < uintptrOf(other.rawPtr())
}

func (h *Handle[T]) rawPtr() *T {
	if h.cb == nil {
		return nil
	}
	return h.cb.getPtr()
}

func uintptrOf[T any](p *T) uintptr {
	return uintptr(unsafe.Pointer(p))
}

// Swap exchanges h and other's control block and mode fields via two
// independent, non-atomic assignments. This is not atomic as a pair:
// callers needing an atomically-observed multi-handle exchange must
// supply their own external synchronization (spec §4.5).
func (h *Handle[T]) Swap(other *Handle[T]) {
	h.cb, other.cb = other.cb, h.cb
	h.weak, other.weak = other.weak, h.weak
}
