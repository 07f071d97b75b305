// Command healthd runs the health/alarm evaluation engine: cobra CLI front
// end over internal/supervisor.MainLoop, the way cmd/server/main.go is a
// thin wrapper over the alert-history service's own wiring.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
