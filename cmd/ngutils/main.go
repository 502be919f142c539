package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ngclient/ngutils/internal/config"
	"github.com/ngclient/ngutils/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "ngutils",
		Short: "Header tag and form style class service",
		Long: `ngutils keeps the page model of rich-client host pages: the tags
contributed to the document head and the style classes of each form.

It serves the model over HTTP, pushes changes to watching pages over
WebSocket and can render heads and pages from a saved model.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to "+config.ConfigFileName+" (default ./"+config.ConfigFileName+" if present)")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		renderCmd(),
		viewportCmd(),
		versionCmd(),
	)
	return rootCmd
}
