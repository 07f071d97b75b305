package main

import (
	"github.com/spf13/cobra"
)

const (
	serviceName    = "healthd"
	serviceVersion = "0.1.0"
)

func newRootCommand() *cobra.Command {
	var configPath string
	var pidFile string

	root := &cobra.Command{
		Use:   "healthd",
		Short: "Health and alarm evaluation engine",
		Long:  "healthd evaluates per-chart alarm expressions on a fixed cadence, applies hysteresis, and dispatches notifications through an external notifier program.",
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the healthd config file")
	root.PersistentFlags().StringVar(&pidFile, "pid-file", "healthd.pid", "path to the pid file written by run and read by reload")

	root.AddCommand(
		newRunCommand(&configPath, &pidFile),
		newReloadCommand(&pidFile),
		newSilenceCommand(&configPath),
		newVersionCommand(),
	)

	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the healthd version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Printf("%s version %s\n", serviceName, serviceVersion)
			return nil
		},
	}
}
