//go:build !linux

package crash

// DebuggerAttached always reports false off Linux; a fault there is
// never suppressed on account of a debugger.
func DebuggerAttached() bool { return false }
