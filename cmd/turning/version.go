package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/turning"
	"github.com/aretw0/turning/internal/presentation/tui"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of turning",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		tui.PrintBanner(out, tui.DetectProfile(out), strings.TrimSpace(turning.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
