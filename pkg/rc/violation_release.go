//go:build dualmem_debug

package rc

import (
	"fmt"
	"runtime"
)

// raise reports a memory-safety violation. Building with the
// dualmem_debug tag selects the release behavior spec.md §7 describes
// for a memory-safety violation: the process aborts rather than
// returning a recoverable error to a caller that may not check it. The
// panic value still carries the source location of the call that
// detected the violation, so an abort's crash dump identifies the site.
func raise(err error) error {
	if _, file, line, ok := runtime.Caller(1); ok {
		err = fmt.Errorf("%w (at %s:%d)", err, file, line)
	}
	panic(err)
}
