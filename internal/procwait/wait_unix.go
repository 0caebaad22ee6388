//go:build linux || darwin

package procwait

import (
	"context"
	"fmt"
	"syscall"
	"time"
)

// Wait blocks until the process with the given PID exits or ctx is done.
// Signal 0 only probes for existence. An error is returned at once if the
// process is not running when Wait is called.
func Wait(ctx context.Context, pid int) error {
	if err := syscall.Kill(pid, 0); err != nil {
		return fmt.Errorf("process %d not found: %w", pid, err)
	}

	tick := time.NewTicker(pollInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			if err := syscall.Kill(pid, 0); err != nil {
				return nil
			}
		}
	}
}
