package main

import (
	"fmt"

	"portfolio/internal/linkcheck"

	"github.com/spf13/cobra"
)

func checkLinksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-links [dir]",
		Short: "Report relative links in HTML files that point at missing files",
		Long:  "Check-links scans every HTML file under dir (the embedded site when omitted) and exits non-zero if any relative href, src, poster or srcset target is missing.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			report, err := linkcheck.Check(siteFS(dir))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range report.Failures {
				fmt.Fprintf(out, "missing: %s\n", f)
			}
			fmt.Fprintf(out, "checked %d HTML files, %d broken links\n", report.Files, len(report.Failures))
			return report.Err()
		},
	}
}
