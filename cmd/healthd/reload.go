package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
)

// newReloadCommand sends SIGHUP to a running healthd process, the same
// signal cmd/server/signal.go listens for to hot-reload configuration.
func newReloadCommand(pidFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Signal a running healthd to reload its silencers file and hosts",
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := readPIDFile(*pidFile)
			if err != nil {
				return err
			}

			proc, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("find process %d: %w", pid, err)
			}
			if err := proc.Signal(syscall.SIGHUP); err != nil {
				return fmt.Errorf("signal process %d: %w", pid, err)
			}

			cmd.Printf("sent SIGHUP to pid %d\n", pid)
			return nil
		},
	}
}
