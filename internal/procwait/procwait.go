// Package procwait watches a browser process so a crash or an external
// quit ends the window session even when no DevTools event arrives.
package procwait

import "time"

const pollInterval = 500 * time.Millisecond
