package procwait

import (
	"context"
	"fmt"

	"golang.org/x/sys/windows"
)

// Wait blocks until the process with the given PID exits or ctx is done.
// The handle wait is sliced by pollInterval so cancellation is noticed.
func Wait(ctx context.Context, pid int) error {
	h, err := windows.OpenProcess(windows.SYNCHRONIZE, false, uint32(pid))
	if err != nil {
		return fmt.Errorf("process %d not found: %w", pid, err)
	}
	defer windows.CloseHandle(h)

	ms := uint32(pollInterval.Milliseconds())
	for {
		event, err := windows.WaitForSingleObject(h, ms)
		if err != nil {
			return fmt.Errorf("waiting for process %d: %w", pid, err)
		}
		switch event {
		case windows.WAIT_OBJECT_0:
			return nil
		case uint32(windows.WAIT_TIMEOUT):
			if err := ctx.Err(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unexpected wait result for process %d: %d", pid, event)
		}
	}
}
