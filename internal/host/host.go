// Package host defines the application-host contract the bootstrap
// drives, plus the in-tree core host that implements it.
package host

import (
	"context"

	"github.com/Masterminds/semver/v3"

	"github.com/lumenserver/lumen/internal/apppaths"
	"github.com/lumenserver/lumen/internal/platform"
)

// Progress receives coarse startup progress in percent.
type Progress func(percent float64)

// Host is the composed server as the bootstrap sees it: two-phase
// startup, a version, and disposal. Everything else is opaque.
type Host interface {
	// Init performs first-phase startup. It must complete before
	// RunStartupTasks is invoked.
	Init(ctx context.Context, progress Progress) error
	// RunStartupTasks performs second-phase startup.
	RunStartupTasks(ctx context.Context) error
	Version() *semver.Version
	// Close releases every resource the host owns. The bootstrap is the
	// only caller.
	Close() error
}

// Params carries everything a host construction needs. The bootstrap
// injects the collaborators; it never calls them itself.
type Params struct {
	Paths   apppaths.Paths
	Env     platform.Descriptor
	FS      FileSystem
	Power   PowerManager
	Network NetworkManager
	Images  ImageEncoder
}

// NewParams returns Params for the given paths and environment with
// the default collaborator set.
func NewParams(paths apppaths.Paths, env platform.Descriptor) Params {
	return Params{
		Paths:   paths,
		Env:     env,
		FS:      OSFileSystem{},
		Power:   NopPowerManager{},
		Network: InterfaceNetworkManager{},
		Images:  NullImageEncoder{},
	}
}
