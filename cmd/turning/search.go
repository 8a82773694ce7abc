package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/turning"
	"github.com/aretw0/turning/internal/cli"
	"github.com/aretw0/turning/internal/compiler"
)

// addSearchFlags registers the flags shaping the generated test cases.
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().String("seed", "", "Random seed (default: today's date)")
	cmd.Flags().Int("depth", 0, "Transitions explored from each root (0: unbounded)")
	cmd.Flags().Int("min-count", 0, "Times every transition must be traversed (default 10)")
	cmd.Flags().Bool("allow-unreachable", false, "Warn instead of failing on unreachable declarations")
}

func searchOptions(cmd *cobra.Command) []turning.RunOption {
	var opts []turning.RunOption
	if seed, _ := cmd.Flags().GetString("seed"); seed != "" {
		opts = append(opts, turning.RandomSeed(seed))
	}
	if depth, _ := cmd.Flags().GetInt("depth"); depth > 0 {
		opts = append(opts, turning.Depth(depth))
	}
	if n, _ := cmd.Flags().GetInt("min-count"); n > 0 {
		opts = append(opts, turning.MinTransitionSearchCount(n))
	}
	if allow, _ := cmd.Flags().GetBool("allow-unreachable"); allow {
		opts = append(opts, turning.AllowUnreachable())
	}
	return opts
}

// plan reads the model and searches it with the flags of cmd.
func plan(cmd *cobra.Command, path string) (*cli.Model, *turning.Plan, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cfg.Logger(debug)
	if err != nil {
		return nil, nil, err
	}
	model, err := cli.ReadModel(path)
	if err != nil {
		return nil, nil, err
	}
	p, err := model.Compile(turning.WithLogger[compiler.Context](logger)).Search(searchOptions(cmd)...)
	if err != nil {
		return nil, nil, err
	}
	return model, p, nil
}
