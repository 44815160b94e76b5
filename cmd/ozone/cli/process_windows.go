//go:build windows

package cli

import "os"

// isProcessRunning probes the PID from ozone.pid. Windows has no signal 0;
// sending os.Interrupt is the closest supported liveness check.
func isProcessRunning(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(os.Interrupt) != os.ErrProcessDone
}

// stopProcess terminates the server outright; Windows offers no SIGTERM
// equivalent for a graceful drain.
func stopProcess(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}
