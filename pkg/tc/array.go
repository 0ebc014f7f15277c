package tc

import (
	"sync"
	"sync/atomic"
)

// arrayObject is the payload side of a fixed-count tracked allocation: a
// Header plus N contiguous values of type T, backed by a slice. The slice
// backing array is a separate allocation from the Header (Go cannot
// parameterize an inline array's length by a runtime value), so the
// payload range classification below covers the slice's backing storage,
// where any embedded handles actually live, rather than a literal
// [Header|payload] block; see DESIGN.md.
type arrayObject[T any] struct {
	header Header
	values []T
}

// ArrayHandle is the array counterpart of Handle: a ROOT or HEAP-EMBEDDED
// owning reference to a fixed-count run of tracked values.
type ArrayHandle[T any] struct {
	kind     handleKind
	coll     *Collector
	collOnce sync.Once
	obj      atomic.Pointer[arrayObject[T]]

	released atomic.Bool
}

func (h *ArrayHandle[T]) header() *Header {
	o := h.obj.Load()
	if o == nil {
		return nil
	}
	return &o.header
}

// bindEmbedded implements embeddable, the array counterpart of
// Handle.bindEmbedded.
func (h *ArrayHandle[T]) bindEmbedded(c *Collector, enclosing *Header) {
	h.kind = kindEmbedded
	h.coll = c
	h.collOnce.Do(func() {})
	c.link(enclosing, h)
}

func (h *ArrayHandle[T]) ensureColl() {
	h.collOnce.Do(func() {
		if h.coll == nil {
			h.coll = Default
		}
	})
}

// newRootArrayHandle wires a fresh ROOT ArrayHandle for a just-allocated
// array object whose root-reference count has already been seeded to 1 by
// the factory.
func newRootArrayHandle[T any](c *Collector, o *arrayObject[T]) *ArrayHandle[T] {
	h := &ArrayHandle[T]{coll: c, kind: kindRoot}
	h.collOnce.Do(func() {})
	h.obj.Store(o)
	return h
}

// Len returns the number of tracked elements, or 0 for a null handle.
func (h *ArrayHandle[T]) Len() int {
	o := h.obj.Load()
	if o == nil {
		return 0
	}
	return len(o.values)
}

// At returns a pointer to element i. It panics on an out-of-range index,
// the same contract as a Go slice index.
func (h *ArrayHandle[T]) At(i int) *T {
	o := h.obj.Load()
	return &o.values[i]
}

// IsNull reports whether the handle currently refers to no array.
func (h *ArrayHandle[T]) IsNull() bool { return h.obj.Load() == nil }

// IsRoot reports the handle's fixed classification.
func (h *ArrayHandle[T]) IsRoot() bool {
	h.ensureColl()
	return h.kind == kindRoot
}

// Reset retargets the handle to no array; see Handle.Reset.
func (h *ArrayHandle[T]) Reset() {
	h.ensureColl()
	h.setReferent(nil)
}

// Assign retargets h to other's current referent; see Handle.Assign.
func (h *ArrayHandle[T]) Assign(other *ArrayHandle[T]) {
	h.ensureColl()
	h.setReferent(other.obj.Load())
}

func (h *ArrayHandle[T]) setReferent(o *arrayObject[T]) {
	old := h.obj.Load()
	if old == o {
		return
	}
	switch h.kind {
	case kindRoot:
		h.obj.Store(o)
		if old != nil {
			h.coll.decRoot(&old.header)
		}
		if o != nil {
			h.coll.incRoot(&o.header)
		}
	case kindEmbedded:
		h.coll.withLock(func() {
			h.obj.Store(o)
		})
	}
}

// Move transfers other's referent into h and nulls other out; see
// Handle.Move.
func (h *ArrayHandle[T]) Move(other *ArrayHandle[T]) {
	h.ensureColl()
	other.ensureColl()

	o := other.obj.Load()
	if h.kind == kindRoot && other.kind == kindRoot {
		old := h.obj.Load()
		h.obj.Store(o)
		other.obj.Store(nil)
		if old != nil {
			h.coll.decRoot(&old.header)
		}
		return
	}
	h.Assign(other)
	other.Reset()
}

// Release drops h's contribution to its referent's root-reference count;
// see Handle.Release for the rationale and the HEAP-EMBEDDED no-op.
func (h *ArrayHandle[T]) Release() {
	h.ensureColl()
	if h.kind != kindRoot {
		return
	}
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	if o := h.obj.Load(); o != nil {
		h.coll.decRoot(&o.header)
	}
}
