//go:build unix

package lifecycle

import (
	"os/exec"
	"syscall"

	"github.com/rs/zerolog/log"
)

// spawnDetached launches the restart successor in its own session so
// it survives this process's exit.
func spawnDetached(path string, args []string) error {
	cmd := exec.Command(path, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	log.Info().Int("pid", cmd.Process.Pid).Msg("successor started")
	return cmd.Process.Release()
}
