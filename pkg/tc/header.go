package tc

import "sync/atomic"

// Finalizer is implemented by payload types that need to run cleanup logic
// when the collector reclaims them. It plays the role of the destructor
// thunk in the original design: the collector calls Finalize exactly once,
// during sweep, and never re-enters it for the same object.
type Finalizer interface {
	Finalize()
}

// Header is the per-allocation control block every tracked object carries.
// It never leaves the tc package; callers only ever see a Handle or
// ArrayHandle.
type Header struct {
	// start and end delimit the payload's storage. Spec parity field:
	// the original design classifies a freshly constructed handle as
	// ROOT or HEAP-EMBEDDED by comparing its own address against this
	// range. Go can determine the same fact more precisely through
	// struct reflection (see reflect.go), so start/end are retained
	// here only as bookkeeping — useful for diagnostics and tests —
	// and are not consulted by the classification path.
	start, end uintptr

	// id is a monotonically increasing registration number, assigned by
	// register for registry bookkeeping.
	id uint64

	// rootRefCnt counts live ROOT handles referring to this object.
	// Ordinary increments/decrements above zero are relaxed atomics;
	// the 0->1 transition is synchronized against collection via the
	// owning collector's lock (see collector.go).
	rootRefCnt atomic.Int32

	// embedded is the head of the intrusive list of HEAP-EMBEDDED
	// handles whose storage lies inside this object's payload. It is
	// read and written only while the owning collector's lock is held:
	// during binding (reflect.go) and during mark (collector.go).
	embedded *listNode

	// mark is read and written only during a collection cycle, under
	// the collector lock; it is never accessed concurrently with
	// anything else, so it needs no atomic type.
	mark bool

	// finalize is bound at construction time to a closure that invokes
	// Finalize on the payload (or the N payloads, in reverse
	// construction order, for an array) if it implements Finalizer.
	// It runs at most once: the partition phase detaches the object from
	// the registry before finalization, so no later cycle reaches it.
	// swept is set, outside the collector lock, just before it runs.
	finalize func()
	swept    bool
}

// embeddedHandle is satisfied by every Handle[T]/ArrayHandle[T] so that
// Header.embedded can hold a type-erased intrusive list across handles of
// unrelated payload types embedded in the same object.
type embeddedHandle interface {
	// header returns the Header of the handle's current referent, or
	// nil if the handle is currently null. Called only under the
	// owning collector's lock, during mark.
	header() *Header
}

// embeddable is satisfied by every Handle[T]/ArrayHandle[T] so that
// reflect.go can discover and bind them as struct fields of an arbitrary
// payload type, without knowing their type parameter in advance.
type embeddable interface {
	bindEmbedded(c *Collector, enclosing *Header)
}

// listNode is a single link in an object's embedded-handle list. It is a
// small heap node rather than a field stored inside the handle itself,
// because Go's atomic.Pointer[T] cannot hold a bare interface value
// without one level of pointer indirection; see DESIGN.md.
type listNode struct {
	h    embeddedHandle
	next *listNode
}

// link appends an embedded handle to this header's list. Must be called
// with the owning collector's lock held.
func (hd *Header) link(h embeddedHandle) {
	hd.embedded = &listNode{h: h, next: hd.embedded}
}

// handleKind is a Handle's or ArrayHandle's fixed classification, set once
// and never changed afterward (spec §3/§4.2).
type handleKind int8

const (
	kindRoot handleKind = iota
	kindEmbedded
)
