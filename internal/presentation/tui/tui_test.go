package tui_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/turning/internal/presentation/tui"
	"github.com/aretw0/turning/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	initNode = &domain.Node{Kind: domain.KindInitialize, Alias: "open", States: []string{"page:home"}, Label: "open home"}
	turnNode = &domain.Node{Kind: domain.KindTurn, Alias: "login", ObsoletePatterns: []string{"page:home"}, States: []string{"page:dashboard"}, Label: "log in"}
)

func newReporter() (*tui.Reporter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return tui.NewReporter(&out, &errOut, tui.WithProfile(termenv.Ascii)), &out, &errOut
}

func TestReporter_Progress(t *testing.T) {
	r, out, _ := newReporter()

	r.TestCase("1.2", 1)
	r.Step(&domain.Via{Node: turnNode, States: []string{"page:dashboard"}, CaseName: "happy"}, 1)
	r.States([]string{"page:dashboard", "user:signed-in"}, 1)
	r.Retry("1.2", 2, 3, 1)

	assert.Equal(t, strings.Join([]string{
		"  Test Case 1.2",
		"    " + turnNode.Description() + " <happy>",
		"    Current states [page:dashboard,user:signed-in]",
		"    Retrying test case 1.2 (2/3)",
		"",
	}, "\n"), out.String())
}

func TestReporter_Failure(t *testing.T) {
	r, out, errOut := newReporter()

	r.Failure(`State "page:home" test failed`, errors.New("line one\nline two"), 0)

	assert.Empty(t, out.String())
	assert.Equal(t, strings.Join([]string{
		"",
		`   State "page:home" test failed `,
		"",
		"  line one",
		"  line two",
		"",
		"",
	}, "\n"), errOut.String())
}

func TestReporter_Summary(t *testing.T) {
	tests := []struct {
		name    string
		report  *domain.Report
		out     string
		errPart string
	}{
		{
			name: "All Passed",
			report: &domain.Report{Completed: true, Cases: []domain.CaseRecord{
				{ID: "1", Status: domain.StatusPassed},
			}},
			out: "1 passed, 0 failed\n",
		},
		{
			name: "Failures",
			report: &domain.Report{Completed: true, FailedIDs: []string{"1.1", "2"}, Cases: []domain.CaseRecord{
				{ID: "1", Status: domain.StatusPassed},
				{ID: "1.1", Status: domain.StatusFailed},
				{ID: "2", Status: domain.StatusFailed},
			}},
			out:     "1 passed, 2 failed\n",
			errPart: " Failed test cases \n\n  1.1\n  2\n",
		},
		{
			name:   "Interrupted",
			report: &domain.Report{Completed: false},
			out:    "0 passed, 0 failed, interrupted\n",
		},
		{
			name:   "List Only",
			report: &domain.Report{ListOnly: true, Cases: make([]domain.CaseRecord, 3)},
			out:    "3 test cases\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, out, errOut := newReporter()
			r.Summary(tt.report)
			assert.Equal(t, tt.out, out.String())
			if tt.errPart == "" {
				assert.Empty(t, errOut.String())
			} else {
				assert.Contains(t, errOut.String(), tt.errPart)
			}
		})
	}
}

func TestReporter_Warning(t *testing.T) {
	r, _, errOut := newReporter()
	r.Warning("Unreachable states:\n  a")
	assert.Equal(t, "Unreachable states:\n  a\n", errOut.String())
}

func TestDetectProfile(t *testing.T) {
	assert.Equal(t, termenv.Ascii, tui.DetectProfile(&bytes.Buffer{}))
}

func TestMarkdown(t *testing.T) {
	child := &domain.PathStart{Via: domain.Via{Node: &domain.Node{Kind: domain.KindSpawn, Alias: "fork", States: []string{"tab:new"}}}}
	root := &domain.PathStart{
		Via:    domain.Via{Node: initNode},
		Turn:   &domain.PathTurn{Via: domain.Via{Node: turnNode, CaseName: "happy"}},
		Spawns: []*domain.PathStart{child},
	}

	md := tui.Markdown("Plan", []*domain.PathStart{root})

	assert.True(t, strings.HasPrefix(md, "# Plan\n\n2 test cases.\n\n"))
	assert.Contains(t, md, "- **Test Case 1**\n  - `"+initNode.Description()+"`\n  - `"+turnNode.Description()+"` _happy_\n")
	assert.Contains(t, md, "  - **Test Case 1.1**\n")

	render, err := tui.NewRenderer(80)
	require.NoError(t, err)
	rendered, err := render(md)
	require.NoError(t, err)
	assert.Contains(t, rendered, "Test Case 1.1")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, termenv.Ascii, "v1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.NotContains(t, buf.String(), "\x1b[")
}
