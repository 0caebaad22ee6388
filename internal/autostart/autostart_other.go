//go:build !linux && !darwin && !windows

package autostart

import "errors"

var errUnsupported = errors.New("autostart: unsupported platform")

func Enable(Entry) error { return errUnsupported }
func Disable() error     { return errUnsupported }
func Enabled() bool      { return false }
