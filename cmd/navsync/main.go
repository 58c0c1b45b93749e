package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "navsync",
		Short: "Router / native-history state reconciler",
		Long: `Navsync keeps a router's URL and state in sync with a native
navigation/history surface: it issues native navigations for router
transitions, intercepts their events, and rolls both sides back when a
transition is cancelled or fails.

Commands:
  sim      Replay a scripted transition scenario and print the trace
  serve    Serve a WebSocket-backed navigation surface
  version  Print version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		simCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
