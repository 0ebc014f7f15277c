// Package rc implements an atomic reference-counted shared-pointer
// facility with weak references, for non-cyclic sharing with
// deterministic destruction.
//
// A Handle constructed by MakeShared is strong: it owns a unit of a
// control block's strong count, and the managed object is destroyed the
// instant that count reaches zero — unlike pkg/tc, there is no
// collection cycle to wait for. A weak Handle, obtained from a strong one
// via MakeWeak, carries only the right to test or promote; it never
// pins the managed object alive. Promotion (Lock) either returns a fresh
// strong Handle or, if the managed object has already been destroyed, a
// null one.
//
// Dereferencing a strong Handle returns a LockedView: a scoped,
// read-locked accessor that blocks the managed object's destruction for
// as long as the view is held open. This is the mechanism that keeps a
// concurrent release from racing a concurrent read.
//
// Because Go has no destructors, every strong or weak Handle obtained
// from this package must be released exactly once (typically via defer)
// to drop its contribution to the control block's counters.
package rc
