// Package zoom tracks the window's zoom level. Level 0 is 100%; each step
// scales by 1.2, the same curve Chromium uses for its zoom levels.
package zoom

import "math"

const stepFactor = 1.2

// Level is a bounded zoom level. The zero value is level 0 with no bounds;
// use New for a bounded one.
type Level struct {
	level    int
	min, max int
}

// New returns a Level at 0 bounded to [min, max].
func New(min, max int) *Level {
	return &Level{min: min, max: max}
}

// In raises the level by one step and reports whether it changed.
func (l *Level) In() bool { return l.set(l.level + 1) }

// Out lowers the level by one step and reports whether it changed.
func (l *Level) Out() bool { return l.set(l.level - 1) }

// Reset returns to level 0 and reports whether it changed.
func (l *Level) Reset() bool { return l.set(0) }

// Current returns the level.
func (l *Level) Current() int { return l.level }

// Factor returns the scale factor for the current level.
func (l *Level) Factor() float64 {
	return math.Pow(stepFactor, float64(l.level))
}

func (l *Level) set(n int) bool {
	if l.min != 0 || l.max != 0 {
		if n < l.min {
			n = l.min
		}
		if n > l.max {
			n = l.max
		}
	}
	if n == l.level {
		return false
	}
	l.level = n
	return true
}
