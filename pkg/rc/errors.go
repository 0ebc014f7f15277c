package rc

import "errors"

// Sentinel errors for the memory-safety violation classes described in
// §7: dereferencing a weak or null handle, a corrupted control block, or
// an operation on an already-destroyed managed object. These values
// exist regardless of build tag so callers can always write
// errors.Is(err, rc.ErrWeakDeref); whether a violation surfaces as one
// of these or as a panic is decided by raise, per build tag.
var (
	// ErrWeakDeref is returned when Dereference is called on a weak
	// handle; only strong handles may be dereferenced directly.
	ErrWeakDeref = errors.New("rc: cannot dereference a weak handle")

	// ErrNilHandle is returned when Dereference is called on a handle
	// whose control block is absent (a default-constructed or
	// already-released handle).
	ErrNilHandle = errors.New("rc: cannot dereference a null handle")

	// ErrCorrupted is returned when a control block's integrity
	// sentinels do not match the expected constants, indicating memory
	// corruption or a use of a control block past its destruction.
	ErrCorrupted = errors.New("rc: control block corrupted")

	// ErrDestroyed is returned when an operation observes that the
	// managed object has already been destroyed.
	ErrDestroyed = errors.New("rc: managed object already destroyed")
)
