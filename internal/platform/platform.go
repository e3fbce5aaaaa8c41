package platform

import (
	"math/bits"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// OSKind classifies the host operating system.
type OSKind string

const (
	OSUnknown OSKind = "unknown"
	OSLinux   OSKind = "linux"
	OSMacOS   OSKind = "macos"
	OSBSD     OSKind = "bsd"
)

// Arch classifies the host processor architecture.
type Arch string

const (
	ArchUnknown Arch = "unknown"
	ArchX86     Arch = "x86"
	ArchX64     Arch = "x64"
	ArchArm     Arch = "arm"
)

// Descriptor is the immutable environment descriptor computed once per
// process.
type Descriptor struct {
	OS   OSKind
	Arch Arch
}

var (
	probeOnce sync.Once
	cached    Descriptor

	// Indirection so tests can stub the syscall and count invocations.
	unameFn = uname
)

// Probe returns the environment descriptor. The underlying uname call
// happens at most once; later calls return the cached value even when
// the first call failed.
func Probe() Descriptor {
	probeOnce.Do(func() {
		sysname, machine, err := unameFn()
		if err != nil {
			log.Error().Err(err).Msg("platform probe failed, falling back to defaults")
			sysname, machine = "", ""
		}
		cached = Classify(sysname, machine, bits.UintSize == 64)
		log.Info().
			Str("os", string(cached.OS)).
			Str("arch", string(cached.Arch)).
			Str("sysname", sysname).
			Str("machine", machine).
			Msg("platform probed")
	})
	return cached
}

// Matches the 32-bit x86 machine family (i386 through i686).
var x86Machine = regexp.MustCompile(`(?i)^i[3-6]86$`)

// Classify maps uname output to a descriptor. os64 reports whether the
// process runs with 64-bit words; it is only consulted when the machine
// string matches nothing, which covers hosts where uname is unavailable
// or returns an empty machine name.
func Classify(sysname, machine string, os64 bool) Descriptor {
	return Descriptor{
		OS:   classifyOS(sysname),
		Arch: classifyArch(machine, os64),
	}
}

func classifyOS(sysname string) OSKind {
	switch strings.ToLower(sysname) {
	case "darwin":
		return OSMacOS
	case "linux":
		return OSLinux
	case "bsd":
		return OSBSD
	default:
		return OSUnknown
	}
}

// classifyArch applies an ordered chain: the x86-32 family wins over
// everything, then exact x86_64, then the arm prefix, then the word-size
// fallback. The order must not change.
func classifyArch(machine string, os64 bool) Arch {
	switch {
	case x86Machine.MatchString(machine):
		return ArchX86
	case strings.EqualFold(machine, "x86_64"):
		return ArchX64
	case strings.HasPrefix(strings.ToLower(machine), "arm"):
		return ArchArm
	case os64:
		return ArchX64
	default:
		return ArchX86
	}
}
