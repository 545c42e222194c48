package portfolio

import (
	"errors"
	"fmt"
)

// Configuration errors are user-facing and end a run with a distinct exit status.
var (
	// ErrConfig marks invalid user configuration.
	ErrConfig = errors.New("invalid configuration")

	// ErrSlowdownRatio means no algorithm is fast enough for the requested slowdown ratio.
	ErrSlowdownRatio = errors.New("no portfolio satisfies the requested slowdown ratio")

	// ErrNoValidRuns means the input holds no valid run within the core budget.
	ErrNoValidRuns = errors.New("no valid runs in input data")
)

// invariant panics when cond is false. Used only for internal consistency
// checks whose violation would silently corrupt the optimization input.
func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("invariant violated: "+format, args...))
	}
}
