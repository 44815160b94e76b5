//go:build !windows

package cli

import "syscall"

// isProcessRunning reports whether the PID from ozone.pid is still alive.
// Signal 0 performs the existence and permission checks without delivering
// anything.
func isProcessRunning(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}

// stopProcess asks the server to shut down. The serve loop treats SIGTERM
// like Ctrl-C and drains in-flight requests before exiting.
func stopProcess(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}
