// Package errutil collects the small error-handling idioms shared by every
// component of the index: picking the first non-nil error out of a batch,
// and panicking on conditions that can only fire if the index itself is
// corrupt (as opposed to ordinary, recoverable, caller-facing failures).
package errutil

import "fmt"

// First returns the first non-nil error among errs, or nil if all are nil.
func First(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// FatalIf panics with a descriptive message if err is non-nil. Reserved for
// invariant violations inside the query path (a corrupted or malformed
// index), never for ordinary I/O or parameter errors, which are returned.
func FatalIf(err error) {
	if err == nil {
		return
	}
	panic(fmt.Sprintf("csidx: fatal: %v", err))
}

// Bug panics unconditionally with a formatted message. Used to flag states
// that the implementation asserts cannot happen.
func Bug(format string, args ...any) {
	panic(fmt.Sprintf("csidx: bug: "+format, args...))
}

// BugOn panics with the formatted message if cond is true.
func BugOn(cond bool, format string, args ...any) {
	if cond {
		Bug(format, args...)
	}
}
