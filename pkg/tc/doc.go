// Package tc implements a tracing mark-and-sweep collector for arbitrarily
// cyclic object graphs hosted inside a Go process.
//
// Go already garbage-collects its own heap, so tc is not a replacement for
// that collector — it is a second, independent bookkeeping layer on top of
// it, useful when a caller wants C++-shared_ptr-shaped cyclic structures
// (trees with back-edges, doubly-linked lists, observer graphs) to be
// reclaimed deterministically relative to a root set the caller controls,
// rather than whenever Go's own collector happens to notice the graph is
// unreachable. Every payload value allocated through New or NewArray is
// additionally tracked here: it is registered with a global object
// registry, and every Handle reachable from it is classified as either a
// ROOT (storage outside any tracked object — a local variable, a struct
// field of an untracked type, a global) or HEAP-EMBEDDED (storage inside
// the payload of another tracked object). A Handle returned directly by
// New or NewArray is ROOT; a Handle declared as an exported field of a
// tracked payload type is discovered and bound HEAP-EMBEDDED by a
// one-time struct walk run immediately after allocation, before the
// caller's constructor runs (see reflect.go).
// A Collect pass walks from every object with a positive root-reference
// count along embedded-handle edges and reclaims anything it doesn't
// reach — including cycles, since reachability, not reference counting,
// decides liveness.
//
// Destruction here does not mean "free raw memory": Go's allocator and
// collector retain that job. It means invoking a payload's Finalize hook
// (see the Finalizer interface) exactly once and dropping the registry's
// reference, after which the payload becomes ordinary unreachable Go
// memory and is reclaimed the normal way.
//
// Because Go has no destructors, a ROOT Handle must be released explicitly
// with Release (typically via defer) to drop its contribution to the
// referent's root-reference count; HEAP-EMBEDDED handles need no such
// call — their storage disappears with the enclosing object.
package tc
