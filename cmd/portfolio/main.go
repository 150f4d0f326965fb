// Command portfolio previews, checks and simulates the portfolio site.
package main

import (
	"fmt"
	"io/fs"
	"os"

	"portfolio/internal/version"
	"portfolio/web"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "portfolio",
		Short:         "Portfolio site tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(serveCmd(), simulateCmd(), checkLinksCmd(), versionCmd())
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := version.Info()
			fmt.Fprintf(cmd.OutOrStdout(), "portfolio %s (commit %s, %s)\n", info["version"], info["commit"], info["go"])
		},
	}
}

// siteFS is the site directory when set, else the embedded copy.
func siteFS(dir string) fs.FS {
	if dir == "" {
		return web.Site()
	}
	return os.DirFS(dir)
}
