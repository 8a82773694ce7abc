package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/turning/internal/presentation/tui"
)

var listCmd = &cobra.Command{
	Use:   "list <model.yaml>",
	Short: "List the generated test cases",
	Long:  `Searches the model and renders its test cases as a markdown outline.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, p, err := plan(cmd, args[0])
		if err != nil {
			return err
		}

		doc := tui.Markdown(fmt.Sprintf("%s (seed %q)", model.Name, p.Seed), p.Forest)
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Fprint(cmd.OutOrStdout(), doc)
			return nil
		}
		width, _ := cmd.Flags().GetInt("width")
		render, err := tui.NewRenderer(width)
		if err != nil {
			return err
		}
		out, err := render(doc)
		if err != nil {
			return fmt.Errorf("failed to render markdown: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	addSearchFlags(listCmd)
	listCmd.Flags().Bool("raw", false, "Print markdown without rendering it")
	listCmd.Flags().Int("width", 100, "Word wrap width")
	rootCmd.AddCommand(listCmd)
}
