//go:build !linux && !darwin && !windows

package procwait

import (
	"context"
	"errors"
)

// Wait is not implemented on this platform.
func Wait(ctx context.Context, pid int) error {
	return errors.New("procwait: unsupported platform")
}
