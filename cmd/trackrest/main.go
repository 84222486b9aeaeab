package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at release time via -ldflags.
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "trackrest",
		Short: "Trackrest resource API server",
		Long: `Trackrest serves a resource-oriented REST API over trackable objects:
filterable, orderable collections with ownership-aware visibility and
per-object authorization.`,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
