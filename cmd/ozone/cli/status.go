package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the Ozone server is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	pid, err := readPID()
	if err != nil {
		fmt.Println("Ozone is not running.")
		return nil
	}
	if !isProcessRunning(pid) {
		removePID()
		fmt.Printf("Ozone is not running; removed stale PID file %s.\n", pidFilePath())
		return nil
	}

	fmt.Printf("Ozone is running (PID %d)\n", pid)

	if status, url, err := probeHealth(); err != nil {
		fmt.Printf("  Health:  %s unreachable (%v)\n", url, err)
	} else {
		fmt.Printf("  Health:  %s (%d)\n", url, status)
	}
	fmt.Printf("  Logs:    %s\n", logFilePath())
	return nil
}

// probeHealth hits /healthz on the configured listen address, substituting
// loopback for a wildcard bind host.
func probeHealth() (int, string, error) {
	host := viper.GetString("server.host")
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	port := viper.GetInt("server.port")
	if port == 0 {
		port = 8080
	}
	url := fmt.Sprintf("http://%s:%d/healthz", host, port)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return 0, url, err
	}
	resp.Body.Close()
	return resp.StatusCode, url, nil
}
