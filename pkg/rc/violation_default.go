//go:build !dualmem_debug

package rc

import (
	"fmt"
	"runtime"
)

// raise reports a memory-safety violation. In the default (non-release)
// build this returns err to the caller, wrapped with the source location
// of the call that detected the violation (spec §7's "diagnostic error
// carrying the source location"), letting library users handle it as an
// ordinary error — appropriate for a package import, where a silent
// process abort would be a surprising default. errors.Is against the
// unwrapped sentinel still works since %w preserves the chain.
func raise(err error) error {
	if _, file, line, ok := runtime.Caller(1); ok {
		return fmt.Errorf("%w (at %s:%d)", err, file, line)
	}
	return err
}
