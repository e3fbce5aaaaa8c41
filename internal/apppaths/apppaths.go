package apppaths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Paths groups the directories the server reads and writes. Resolved
// once at startup and never mutated afterwards.
type Paths struct {
	Data    string
	Install string
	Temp    string
	Log     string
}

// ErrNoExecutable is returned when the executable location cannot be
// determined; path resolution has nothing to anchor on in that case.
var ErrNoExecutable = errors.New("cannot determine executable location")

// Resolve computes the application directory set. When override is
// non-empty it is used verbatim as the data directory, otherwise a
// per-user conventional location is chosen. The install directory is
// the directory containing the executable.
func Resolve(executable, override string) (Paths, error) {
	if executable == "" {
		return Paths{}, ErrNoExecutable
	}
	data := override
	if data == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Paths{}, fmt.Errorf("resolve user data directory: %w", err)
		}
		data = filepath.Join(base, "lumen")
	}
	return Paths{
		Data:    data,
		Install: filepath.Dir(executable),
		Temp:    filepath.Join(data, "temp"),
		Log:     filepath.Join(data, "logs"),
	}, nil
}

// ConfigDir is where the server configuration lives inside the data
// directory.
func (p Paths) ConfigDir() string {
	return filepath.Join(p.Data, "config")
}
