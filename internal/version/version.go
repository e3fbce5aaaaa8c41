package version

import "github.com/Masterminds/semver/v3"

// Set at build time via -ldflags.
var (
	Version = "0.9.0"
	Commit  = "dev"
)

// Semver returns the parsed server version. An unparseable build string
// degrades to 0.0.0 rather than failing startup.
func Semver() *semver.Version {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return semver.MustParse("0.0.0")
	}
	return v
}
