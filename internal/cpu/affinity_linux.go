//go:build linux

// Package cpu gives each execution unit its own OS thread, optionally
// pinned to a core, for the strongest isolation the runtime offers.
package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore pins the current OS thread to one CPU core. Must be called
// after runtime.LockOSThread(). Worker ids beyond the core count wrap.
func pinToCore(workerID int) error {
	core := workerID % runtime.NumCPU()
	if core < 0 {
		core = -core
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(core)

	return unix.SchedSetaffinity(0, &mask) // 0 = current thread
}

// SetupWorkerAffinity locks the calling goroutine to an OS thread and pins
// that thread to a core derived from workerID. A pinning failure is not
// fatal; the thread lock alone still holds. Returns a cleanup function to
// be deferred by the execution unit.
func SetupWorkerAffinity(workerID int) func() {
	runtime.LockOSThread()
	_ = pinToCore(workerID)

	return runtime.UnlockOSThread
}
