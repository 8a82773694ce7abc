package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <model.yaml>",
	Short: "Check the model for consistency",
	Long: `Checks declarations against the defined states, resolves manual cases and searches
the model, reporting unreachable states and transitions.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, p, err := plan(cmd, args[0])
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Model %q is valid! ✅ %d test cases, %d combinations\n",
			model.Name, p.Cases(), len(p.Graph.Combinations))
		if p.Warning != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", p.Warning)
		}
		return nil
	},
}

func init() {
	addSearchFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}
