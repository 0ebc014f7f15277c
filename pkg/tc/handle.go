package tc

import (
	"sync"
	"sync/atomic"
)

// object is the payload side of a single-value tracked allocation: a
// Header plus one value of type T.
type object[T any] struct {
	header Header
	value  T
}

// Handle is a ROOT or HEAP-EMBEDDED owning reference to a tracked value of
// type T. A Handle returned by New or NewOn is ROOT. A Handle declared as
// an exported struct field of a payload type T2 and allocated through New
// or NewOn for T2 is HEAP-EMBEDDED, discovered and bound automatically by
// reflect.go before the enclosing object's build function runs. A bare
// `var h tc.Handle[T]` that is never embedded in a tracked payload behaves
// as a ROOT handle the first time it is used, defaulting to the package
// Default collector.
//
// Handle must not be copied by value after its first use — it carries
// atomic fields, and sync/atomic's own copy-detection (via go vet) will
// flag a struct copy. Retarget a Handle with Assign or Move instead,
// matching the copy/move transition table in spec §4.2.
type Handle[T any] struct {
	kind     handleKind
	coll     *Collector
	collOnce sync.Once
	obj      atomic.Pointer[object[T]]
	released atomic.Bool // ROOT handles only; guards double Release
}

// header implements embeddedHandle.
func (h *Handle[T]) header() *Header {
	o := h.obj.Load()
	if o == nil {
		return nil
	}
	return &o.header
}

// bindEmbedded implements embeddable: called by reflect.go exactly once,
// before the enclosing object's build function runs, for every Handle
// field reflect.go discovers inside a payload being constructed.
func (h *Handle[T]) bindEmbedded(c *Collector, enclosing *Header) {
	h.kind = kindEmbedded
	h.coll = c
	h.collOnce.Do(func() {})
	c.link(enclosing, h)
}

// ensureColl defaults a bare, never-embedded Handle's collector to
// Default the first time it is used standalone.
func (h *Handle[T]) ensureColl() {
	h.collOnce.Do(func() {
		if h.coll == nil {
			h.coll = Default
		}
	})
}

// newRootHandle wires a fresh ROOT Handle for a just-allocated object
// whose root-reference count has already been seeded to 1 by the factory.
func newRootHandle[T any](c *Collector, o *object[T]) *Handle[T] {
	h := &Handle[T]{coll: c, kind: kindRoot}
	h.collOnce.Do(func() {})
	h.obj.Store(o)
	return h
}

// Get returns the current referent, or nil if the handle is null.
func (h *Handle[T]) Get() *T {
	o := h.obj.Load()
	if o == nil {
		return nil
	}
	return &o.value
}

// IsNull reports whether the handle currently refers to no object.
func (h *Handle[T]) IsNull() bool {
	return h.obj.Load() == nil
}

// IsRoot reports the handle's fixed classification.
func (h *Handle[T]) IsRoot() bool {
	h.ensureColl()
	return h.kind == kindRoot
}

// Reset retargets the handle to no object, following spec §4.2's "null"
// row: a ROOT handle decrements its old referent's root count; a
// HEAP-EMBEDDED handle simply stops publishing a referent.
func (h *Handle[T]) Reset() {
	h.ensureColl()
	h.setReferent(nil)
}

// Assign retargets h to other's current referent, following spec §4.2's
// copy semantics: dec the old referent's root count (if h is ROOT and had
// one), inc the new referent's root count (if h is ROOT and the new
// referent is non-nil); a HEAP-EMBEDDED handle simply republishes.
func (h *Handle[T]) Assign(other *Handle[T]) {
	h.ensureColl()
	h.setReferent(other.obj.Load())
}

func (h *Handle[T]) setReferent(o *object[T]) {
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

// Move transfers other's referent into h and nulls other out. Between two
// ROOT handles this transfers the root-ref without touching the count
// (spec §4.2); moving across kinds (ROOT<->HEAP-EMBEDDED) falls back to
// copy-then-nullify, since the two kinds keep different bookkeeping and a
// HEAP-EMBEDDED handle cannot "give up" a root-ref it never held.
func (h *Handle[T]) Move(other *Handle[T]) {
	h.ensureColl()
	other.ensureColl()

	o := other.obj.Load()
	if h.kind == kindRoot && other.kind == kindRoot {
		old := h.obj.Load()
		h.obj.Store(o)
		other.obj.Store(nil)
		if old != nil {
			// h gives up its previous contribution unconditionally;
			// other's contribution to o (if old == o, the same
			// counter) is never separately touched, because it is
			// simply relabeled as h's — the "transfer without
			// inc/dec" spec calls for.
			h.coll.decRoot(&old.header)
		}
		return
	}
	h.Assign(other)
	other.Reset()
}

// Release drops h's contribution to its referent's root-reference count.
// Go has no destructors, so callers that construct a ROOT Handle are
// responsible for calling Release (typically via defer) exactly once when
// the handle goes out of scope; a HEAP-EMBEDDED handle's Release is a
// documented no-op, since its storage — and therefore its contribution to
// the enclosing object's embedded list — disappears with the enclosing
// object, never by explicit unlinking (spec §4.2).
func (h *Handle[T]) Release() {
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
