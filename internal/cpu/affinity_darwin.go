//go:build darwin

// Package cpu gives each execution unit its own OS thread, optionally
// pinned to a core, for the strongest isolation the runtime offers.
package cpu

import (
	"runtime"
)

// SetupWorkerAffinity locks the calling goroutine to an OS thread. Core
// pinning is not available on macOS, so the thread lock is all it does.
// Returns a cleanup function to be deferred by the execution unit.
func SetupWorkerAffinity(workerID int) func() {
	runtime.LockOSThread()

	return runtime.UnlockOSThread
}
