//go:build !debug

package offload

// debugLog is a no-op unless built with -tags debug.
func debugLog(string, ...interface{}) {}
