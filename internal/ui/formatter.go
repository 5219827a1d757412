package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"scr/internal/domain"
)

// Formatter formats and displays reports
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{out: out}
}

// PrintRunSummary displays the statistics of a report followed by the tree of failures
func (f *Formatter) PrintRunSummary(run *domain.Run) {
	st := run.Stats()
	cyan := color.New(color.FgCyan)
	white := color.New(color.FgWhite)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	fmt.Fprint(f.out, "\n")
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                      Test Report Statistics                   ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")

	row := func(label string, c *color.Color, value any) {
		fmt.Fprintf(f.out, "│ %-31s │ ", label)
		c.Fprintf(f.out, "%-27v", value)
		fmt.Fprintln(f.out, " │")
	}
	sep := "├─────────────────────────────────┼─────────────────────────────┤"

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	row("Feature Files", white, len(run.Suites))
	fmt.Fprintln(f.out, sep)
	row("Scenarios", white, countScenarios(run))
	fmt.Fprintln(f.out, sep)
	row("Total Steps", white, st.Total)
	fmt.Fprintln(f.out, sep)
	row("Passed Steps", green, st.Passed)
	fmt.Fprintln(f.out, sep)
	row("Failed Steps", red, st.Failed)
	fmt.Fprintln(f.out, sep)
	row("Skipped Steps", yellow, st.Skipped)
	fmt.Fprintln(f.out, sep)
	statusColor := green
	if run.Status == domain.StatusFailed {
		statusColor = red
	}
	row("Status", statusColor, run.Status)
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")

	fmt.Fprintln(f.out)
	if run.Status != domain.StatusFailed {
		green.Fprintln(f.out, "✓ All scenarios passed!")
		return
	}
	red.Fprintf(f.out, "✗ %d step(s) failed\n", st.Failed)
	fmt.Fprintln(f.out)
	f.PrintTree(run, true)
}

// PrintTree prints feature files, scenarios and steps. With onlyFailed, passing
// branches are left out.
func (f *Formatter) PrintTree(run *domain.Run, onlyFailed bool) {
	suites := visibleSuites(run.Suites, onlyFailed)
	for i, s := range suites {
		last := i == len(suites)-1
		f.printSuite(s, "", last, onlyFailed)
	}
}

func (f *Formatter) printSuite(s *domain.Suite, prefix string, isLast, onlyFailed bool) {
	connector, childPrefix := branch(prefix, isLast)

	label := s.Name
	if s.Metadata != nil {
		if attempt, ok := s.Metadata["attempt"]; ok && fmt.Sprint(attempt) != "0" {
			label = fmt.Sprintf("%s (attempt %v)", label, attempt)
		}
	}
	if len(s.Tests) > 0 {
		color.New(color.FgYellow).Fprintf(f.out, "%s%s\n", connector, label)
	} else {
		color.New(color.FgCyan).Fprintf(f.out, "%s%s\n", connector, label)
	}

	children := visibleSuites(s.Suites, onlyFailed)
	tests := visibleTests(s.Tests, onlyFailed)
	for i, child := range children {
		f.printSuite(child, childPrefix, i == len(children)-1 && len(tests) == 0, onlyFailed)
	}
	for i, t := range tests {
		c, _ := branch(childPrefix, i == len(tests)-1)
		f.printTest(t, c)
	}
}

func (f *Formatter) printTest(t *domain.Test, connector string) {
	switch t.Status {
	case domain.StatusFailed:
		color.New(color.FgRed).Fprintf(f.out, "%s✗ %s (%dms)\n", connector, t.Name, t.Duration)
		if t.Output != "" {
			first, _, _ := strings.Cut(t.Output, "\n")
			color.New(color.FgHiBlack).Fprintf(f.out, "%s    %s\n", strings.Repeat(" ", len([]rune(connector))), first)
		}
	case domain.StatusSkipped:
		color.New(color.FgYellow).Fprintf(f.out, "%s- %s\n", connector, t.Name)
	default:
		color.New(color.FgGreen).Fprintf(f.out, "%s✓ %s (%dms)\n", connector, t.Name, t.Duration)
	}
}

func branch(prefix string, isLast bool) (connector, childPrefix string) {
	if isLast {
		return prefix + "└── ", prefix + "    "
	}
	return prefix + "├── ", prefix + "│   "
}

func visibleSuites(suites []*domain.Suite, onlyFailed bool) []*domain.Suite {
	if !onlyFailed {
		return suites
	}
	var out []*domain.Suite
	for _, s := range suites {
		if s.Status == domain.StatusFailed {
			out = append(out, s)
		}
	}
	return out
}

func visibleTests(tests []*domain.Test, onlyFailed bool) []*domain.Test {
	if !onlyFailed {
		return tests
	}
	var out []*domain.Test
	for _, t := range tests {
		if t.Status == domain.StatusFailed {
			out = append(out, t)
		}
	}
	return out
}

func countScenarios(run *domain.Run) int {
	var n int
	var walk func(s *domain.Suite)
	walk = func(s *domain.Suite) {
		if len(s.Tests) > 0 {
			n++
		}
		for _, child := range s.Suites {
			walk(child)
		}
	}
	for _, s := range run.Suites {
		walk(s)
	}
	return n
}
