package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// stopWait bounds how long `ozone stop` waits for the drain to finish.
const stopWait = 5 * time.Second

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a background Ozone server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop()
		},
	}
}

func runStop() error {
	pid, err := readPID()
	if err != nil {
		return fmt.Errorf("no PID file at %s; is the server running?", pidFilePath())
	}
	if !isProcessRunning(pid) {
		removePID()
		return fmt.Errorf("process %d is already gone; removed stale PID file", pid)
	}

	if err := stopProcess(pid); err != nil {
		return fmt.Errorf("signal server: %w", err)
	}
	fmt.Printf("Waiting for Ozone (PID %d) to drain...\n", pid)

	deadline := time.Now().Add(stopWait)
	for time.Now().Before(deadline) {
		if !isProcessRunning(pid) {
			removePID()
			fmt.Println("Stopped.")
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("process %d still running after %s; it may be draining connections, check %s", pid, stopWait, logFilePath())
}
