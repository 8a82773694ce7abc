package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/turning/internal/cli"
	"github.com/aretw0/turning/internal/presentation/tui"
	"github.com/aretw0/turning/pkg/domain"
)

var reportCmd = &cobra.Command{
	Use:   "report [suite]",
	Short: "Inspect stored reports",
	Long: `Without a suite, lists the suites with a stored report. With a suite, prints its
last report. --delete removes it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		backends, err := cli.OpenBackends(cfg)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, backends.Close())
		}()
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			failingOnly, _ := cmd.Flags().GetBool("failing")
			var suites []string
			switch {
			case failingOnly && backends.Failing == nil:
				return fmt.Errorf("store %q cannot filter failing suites, use sqlite", cfg.Store)
			case failingOnly:
				suites, err = backends.Failing(ctx)
			default:
				suites, err = backends.Store.List(ctx)
			}
			if err != nil {
				return err
			}
			for _, s := range suites {
				fmt.Fprintln(out, s)
			}
			return nil
		}

		suite := args[0]
		if del, _ := cmd.Flags().GetBool("delete"); del {
			if err := backends.Store.Delete(ctx, suite); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted report of %q\n", suite)
			return nil
		}

		report, err := backends.Store.Load(ctx, suite)
		if err != nil {
			return err
		}
		printReport(out, cmd.ErrOrStderr(), report)
		return nil
	},
}

func printReport(out, errOut io.Writer, report *domain.Report) {
	fmt.Fprintf(out, "Run %s of %q, seed %q, started %s\n",
		report.RunID, report.Suite, report.Seed, report.StartedAt.Format("2006-01-02 15:04:05"))
	for _, c := range report.Cases {
		fmt.Fprintf(out, "  %-8s %-10s attempts=%d %s\n", c.ID, c.Status, c.Attempts, c.Duration)
		for _, e := range c.Errors {
			fmt.Fprintf(out, "    %s\n", e)
		}
	}
	tui.NewReporter(out, errOut, tui.WithProfile(tui.DetectProfile(out))).Summary(report)
}

func init() {
	reportCmd.Flags().Bool("delete", false, "Delete the stored report")
	reportCmd.Flags().Bool("failing", false, "List only suites whose last run failed (sqlite)")
	rootCmd.AddCommand(reportCmd)
}
