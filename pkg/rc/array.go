package rc

import "sync/atomic"

// ArrayHandle is the fixed-count array counterpart of Handle: a dual-mode
// strong or weak owning reference to a contiguous run of N managed
// values of type T (spec §4.5's "dereference (array element)" and §4.6's
// array factory).
type ArrayHandle[T any] struct {
	cb       *controlBlock[[]T]
	weak     bool
	released atomic.Bool
}

func newStrongArrayHandle[T any](cb *controlBlock[[]T]) *ArrayHandle[T] {
	return &ArrayHandle[T]{cb: cb}
}

// Len returns the element count, or 0 for a null or already-destroyed
// handle.
func (h *ArrayHandle[T]) Len() int {
	if h.cb == nil {
		return 0
	}
	if o := h.cb.getPtr(); o != nil {
		return len(*o)
	}
	return 0
}

// DereferenceAt obtains a scoped, shared-locked view of element i. Same
// failure modes as Handle.Dereference, plus a panic on an out-of-range
// index, matching Go slice-index semantics.
func (h *ArrayHandle[T]) DereferenceAt(i int) (*LockedView[T], error) {
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
	return &LockedView[T]{ptr: &(*o)[i], unlock: h.cb.mu.RUnlock}, nil
}

// IsWeak reports whether the handle is in weak mode.
func (h *ArrayHandle[T]) IsWeak() bool { return h.weak }

// IsNull reports whether the handle refers to no control block.
func (h *ArrayHandle[T]) IsNull() bool { return h.cb == nil }

// Expired reports whether the control block is absent or its strong
// count has reached zero.
func (h *ArrayHandle[T]) Expired() bool {
	return h.cb == nil || h.cb.strongCount() == 0
}

// RefCount reports the current strong count, or 0 for a null handle.
func (h *ArrayHandle[T]) RefCount() int64 {
	if h.cb == nil {
		return 0
	}
	return h.cb.strongCount()
}

// WeakCount reports the current weak count, or 0 for a null handle.
func (h *ArrayHandle[T]) WeakCount() int64 {
	if h.cb == nil {
		return 0
	}
	return h.cb.weakCount()
}

// MakeWeak returns a new weak handle sharing h's control block. If h is
// null or already weak, MakeWeak returns a null handle.
func (h *ArrayHandle[T]) MakeWeak() *ArrayHandle[T] {
	if h.cb == nil || h.weak {
		return &ArrayHandle[T]{}
	}
	h.cb.addWeak()
	return &ArrayHandle[T]{cb: h.cb, weak: true}
}

// Lock attempts to promote a weak handle to strong; see Handle.Lock.
func (h *ArrayHandle[T]) Lock() *ArrayHandle[T] {
	if !h.weak {
		return h.clone()
	}
	if h.cb == nil {
		return &ArrayHandle[T]{}
	}
	if !h.cb.tryAddStrong() {
		return &ArrayHandle[T]{}
	}
	return &ArrayHandle[T]{cb: h.cb}
}

func (h *ArrayHandle[T]) clone() *ArrayHandle[T] {
	if h.cb == nil {
		return &ArrayHandle[T]{weak: h.weak}
	}
	if h.weak {
		h.cb.addWeak()
	} else {
		h.cb.addStrong()
	}
	return &ArrayHandle[T]{cb: h.cb, weak: h.weak}
}

// Assign retargets h to share other's control block; see Handle.Assign.
func (h *ArrayHandle[T]) Assign(other *ArrayHandle[T]) {
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

// Move transfers other's reference into h and nulls other out.
func (h *ArrayHandle[T]) Move(other *ArrayHandle[T]) {
	h.releaseRef()
	h.cb = other.cb
	h.weak = other.weak
	other.cb = nil
}

// Reset releases h's reference and nulls it out.
func (h *ArrayHandle[T]) Reset() {
	h.releaseRef()
	h.cb = nil
}

func (h *ArrayHandle[T]) releaseRef() {
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
// to call more than once.
func (h *ArrayHandle[T]) Release() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	h.releaseRef()
	h.cb = nil
}

// Swap exchanges h and other's control block and mode fields via two
// independent, non-atomic assignments; see Handle.Swap.
func (h *ArrayHandle[T]) Swap(other *ArrayHandle[T]) {
	h.cb, other.cb = other.cb, h.cb
	h.weak, other.weak = other.weak, h.weak
}

// Equal compares the exposed managed pointers, null-safe.
func (h *ArrayHandle[T]) Equal(other *ArrayHandle[T]) bool {
	return h.rawPtr() == other.rawPtr()
}

func (h *ArrayHandle[T]) rawPtr() *[]T {
	if h.cb == nil {
		return nil
	}
	return h.cb.getPtr()
}
