package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/turning"
	"github.com/aretw0/turning/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run <model.yaml>",
	Short: "Run the test cases of a model",
	Long: `Generates the test cases of the model and replays them with no-op handlers,
storing the report in the configured store. Exits with status 1 when a test case fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		flags := cmd.Flags()
		opts := searchOptions(cmd)
		if v, _ := flags.GetBool("bail"); v {
			opts = append(opts, turning.Bail())
		}
		if ids, _ := flags.GetStringSlice("filter"); len(ids) > 0 {
			opts = append(opts, turning.Filter(ids...))
		}
		if v, _ := flags.GetBool("verbose"); v {
			opts = append(opts, turning.Verbose())
		}
		if v, _ := flags.GetBool("list"); v {
			opts = append(opts, turning.ListOnly())
		}
		if n, _ := flags.GetInt("max-attempts"); n > 1 {
			opts = append(opts, turning.MaxAttempts(n))
		}
		if n, _ := flags.GetInt("concurrency"); n > 0 {
			opts = append(opts, turning.StateTestConcurrency(n))
		}
		if v, _ := flags.GetBool("rerun-failed"); v {
			opts = append(opts, turning.RerunFailed())
		}

		suite, _ := flags.GetString("suite")
		lockKey, _ := flags.GetString("lock")
		debug, _ := flags.GetBool("debug")
		report, err := cli.Run(ctx, cfg, cli.RunConfig{
			ModelPath: args[0],
			Suite:     suite,
			LockKey:   lockKey,
			Debug:     debug,
			Out:       cmd.OutOrStdout(),
			ErrOut:    cmd.ErrOrStderr(),
			Options:   opts,
		})
		if err != nil {
			if sig := ctx.Signal(); sig != nil {
				return fmt.Errorf("interrupted by %s: %w", sig, err)
			}
			return err
		}
		if !report.ListOnly && !report.Passed() {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	addSearchFlags(runCmd)
	runCmd.Flags().Bool("bail", false, "Stop at the first failed test case")
	runCmd.Flags().StringSlice("filter", nil, "Run only these test case ids, e.g. 2,1.3")
	runCmd.Flags().BoolP("verbose", "v", false, "Print the states after every step")
	runCmd.Flags().Bool("list", false, "List the test cases without running them")
	runCmd.Flags().Int("max-attempts", 1, "Attempts per test case before it fails")
	runCmd.Flags().Int("concurrency", 0, "State invariants checked at once (0: unbounded)")
	runCmd.Flags().Bool("rerun-failed", false, "Run only the test cases that failed last time, with the same seed")
	runCmd.Flags().String("suite", "", "Name of the stored report (default: model name)")
	runCmd.Flags().String("lock", "", "Lock key shared by runs against the same environment (default: suite)")
	rootCmd.AddCommand(runCmd)
}
