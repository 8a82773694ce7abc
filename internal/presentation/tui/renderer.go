package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/turning/internal/assembler"
	"github.com/aretw0/turning/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer(wordWrap int) (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render, nil
}

// Markdown lists a forest of test cases as nested markdown lists.
func Markdown(title string, forest []*domain.PathStart) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "%d test cases.\n\n", domain.CountCases(forest))

	var walk func(list []*domain.PathStart, prefix string, depth int)
	walk = func(list []*domain.PathStart, prefix string, depth int) {
		for i, start := range list {
			id := assembler.CaseID(prefix, i)
			pad := strings.Repeat("  ", depth)
			fmt.Fprintf(&b, "%s- **Test Case %s**\n", pad, id)
			for _, via := range start.Vias() {
				line := "`" + via.Node.Description() + "`"
				if via.CaseName != "" {
					line += " _" + via.CaseName + "_"
				}
				fmt.Fprintf(&b, "%s  - %s\n", pad, line)
			}
			walk(start.Spawns, id, depth+1)
		}
	}
	walk(forest, "", 0)
	return b.String()
}
