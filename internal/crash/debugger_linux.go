//go:build linux

package crash

import (
	"os"
	"strconv"
	"strings"
)

// DebuggerAttached reports whether a tracer (gdb, delve, strace) is
// attached to this process.
func DebuggerAttached() bool {
	b, err := os.ReadFile("/proc/self/status")
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(b), "\n") {
		if rest, ok := strings.CutPrefix(line, "TracerPid:"); ok {
			pid, err := strconv.Atoi(strings.TrimSpace(rest))
			return err == nil && pid != 0
		}
	}
	return false
}
