//go:build windows

// Package cpu gives each execution unit its own OS thread, optionally
// pinned to a core, for the strongest isolation the runtime offers.
package cpu

import (
	"runtime"
	"syscall"
)

var (
	kernel32              = syscall.NewLazyDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	getCurrentThread      = kernel32.NewProc("GetCurrentThread")
)

// pinToCore pins the current OS thread to one CPU core via
// SetThreadAffinityMask. Must be called after runtime.LockOSThread().
func pinToCore(workerID int) error {
	core := workerID % runtime.NumCPU()
	if core < 0 {
		core = -core
	}

	handle, _, _ := getCurrentThread.Call()
	mask := uintptr(1) << core

	prev, _, err := setThreadAffinityMask.Call(handle, mask)
	if prev == 0 {
		return err
	}
	return nil
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
