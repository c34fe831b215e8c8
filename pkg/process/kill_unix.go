//go:build unix

package process

import (
	"errors"

	"golang.org/x/sys/unix"
)

func forceKill(pid int) error {
	err := unix.Kill(pid, unix.SIGKILL)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}
