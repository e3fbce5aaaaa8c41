// Package storage holds the process-wide storage-engine registration.
// Exactly one provider serves the whole process; registration happens
// during bootstrap, before any persistent-storage access.
package storage

import (
	"database/sql"
	"sync"

	"github.com/rs/zerolog/log"
)

// Provider supplies the persistent storage engine.
type Provider interface {
	Name() string
	Open(path string) (*sql.DB, error)
}

var (
	mu       sync.Mutex
	provider Provider
)

// Register installs the storage provider. The first registration wins
// and later calls are no-ops, so repeated bootstrap passes stay
// idempotent.
func Register(p Provider) {
	mu.Lock()
	defer mu.Unlock()
	if provider != nil {
		return
	}
	provider = p
	log.Info().Str("provider", p.Name()).Msg("storage provider registered")
}

// Active returns the registered provider, or nil when none is set.
func Active() Provider {
	mu.Lock()
	defer mu.Unlock()
	return provider
}
