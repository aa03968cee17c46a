// Package safego runs goroutines that log panics instead of crashing the
// process.
package safego

import (
	"runtime/debug"

	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// Go runs fn on a new goroutine and recovers any panic.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("[safego] goroutine panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
