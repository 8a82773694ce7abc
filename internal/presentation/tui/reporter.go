package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/turning/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const indentSize = 2

// Reporter prints run progress to a console.
// Headers are green, state lines gray, failures red on a badge.
type Reporter struct {
	out     io.Writer
	errOut  io.Writer
	profile termenv.Profile

	mu sync.Mutex
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithProfile forces a color profile, e.g. termenv.Ascii to disable colors.
func WithProfile(p termenv.Profile) ReporterOption {
	return func(r *Reporter) {
		r.profile = p
	}
}

// NewReporter creates a reporter writing progress to out and failures to errOut.
// Colors are enabled only when out is a terminal.
func NewReporter(out, errOut io.Writer, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		out:     out,
		errOut:  errOut,
		profile: DetectProfile(out),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DetectProfile returns the color profile of the environment for terminals and Ascii otherwise.
func DetectProfile(w io.Writer) termenv.Profile {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return termenv.EnvColorProfile()
	}
	return termenv.Ascii
}

func indent(text string, depth int) string {
	pad := strings.Repeat(" ", indentSize*depth)
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}

func (r *Reporter) style(s string, fg string) termenv.Style {
	return r.profile.String(s).Foreground(r.profile.Color(fg))
}

func (r *Reporter) println(w io.Writer, text string, depth int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(w, indent(text, depth))
}

// TestCase prints the test case header.
func (r *Reporter) TestCase(id string, depth int) {
	r.println(r.out, r.style("Test Case "+id, "2").String(), depth)
}

// Step prints a node of the test case.
func (r *Reporter) Step(via *domain.Via, depth int) {
	name := via.Node.Description()
	if via.CaseName != "" {
		name += " <" + via.CaseName + ">"
	}
	r.println(r.out, name, depth+1)
}

// States prints the states after a step.
func (r *Reporter) States(states []string, depth int) {
	line := fmt.Sprintf("Current states [%s]", strings.Join(states, ","))
	r.println(r.out, r.style(line, "8").String(), depth+1)
}

func (r *Reporter) badge(text string, depth int) {
	b := r.profile.String(" " + text + " ").Background(r.profile.Color("1"))
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.errOut)
	fmt.Fprintln(r.errOut, indent(b.String(), depth))
	fmt.Fprintln(r.errOut)
}

// Failure prints a red badge with the error below it.
func (r *Reporter) Failure(title string, err error, depth int) {
	r.badge(title, depth+1)
	if err != nil {
		r.println(r.errOut, r.style(err.Error(), "1").String(), depth+1)
		r.println(r.errOut, "", 0)
	}
}

// Retry announces another attempt.
func (r *Reporter) Retry(id string, attempt, maxAttempts int, depth int) {
	line := fmt.Sprintf("Retrying test case %s (%d/%d)", id, attempt, maxAttempts)
	r.println(r.out, r.style(line, "3").String(), depth+1)
}

// Warning prints a yellow message.
func (r *Reporter) Warning(message string) {
	r.println(r.errOut, r.style(message, "3").String(), 0)
}

// Summary lists the failed test cases, if any.
func (r *Reporter) Summary(report *domain.Report) {
	if report.ListOnly {
		r.println(r.out, fmt.Sprintf("%d test cases", len(report.Cases)), 0)
		return
	}
	passed, failed := report.Counts()
	if len(report.FailedIDs) > 0 {
		r.badge("Failed test cases", 0)
		r.println(r.errOut, strings.Join(report.FailedIDs, "\n"), 1)
		r.println(r.errOut, "", 0)
	}
	line := fmt.Sprintf("%d passed, %d failed", passed, failed)
	color := "2"
	if failed > 0 {
		color = "1"
	}
	if !report.Completed {
		line += ", interrupted"
		color = "3"
	}
	r.println(r.out, r.style(line, color).String(), 0)
}
