package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/turning/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <model.yaml>",
	Short: "Export the combination graph visualization",
	Long: `Searches the model and outputs a Mermaid diagram (graph TD) of the state combinations
it reaches. With --case, the path of that test case is highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, p, err := plan(cmd, args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if id, _ := cmd.Flags().GetString("case"); id != "" {
			steps, ok := p.Steps(id)
			if !ok {
				return fmt.Errorf("test case %q not found (%d test cases)", id, p.Cases())
			}
			overlay = graph.OverlayFor(steps)
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(p.Graph, overlay))
		return nil
	},
}

func init() {
	addSearchFlags(graphCmd)
	graphCmd.Flags().String("case", "", "Highlight the path of this test case id")
	rootCmd.AddCommand(graphCmd)
}
