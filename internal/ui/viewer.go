package ui

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"scr/internal/domain"
)

// Viewer displays a report in an interactive TUI
type Viewer interface {
	View(run *domain.Run) error
}

// Entry is one step of a report together with the suites that contain it
type Entry struct {
	File     string
	Scenario string
	Metadata map[string]any
	Test     *domain.Test
}

// FlattenRun lists every test of run in report order. With onlyFailed, only failing
// tests are listed.
func FlattenRun(run *domain.Run, onlyFailed bool) []Entry {
	var entries []Entry
	var walk func(s *domain.Suite, path []string)
	walk = func(s *domain.Suite, path []string) {
		path = append(path, s.Name)
		for _, t := range s.Tests {
			if onlyFailed && t.Status != domain.StatusFailed {
				continue
			}
			e := Entry{Scenario: s.Name, Metadata: s.Metadata, Test: t}
			if len(path) > 1 {
				e.File = strings.Join(path[:len(path)-1], " › ")
			}
			entries = append(entries, e)
		}
		for _, child := range s.Suites {
			walk(child, path)
		}
	}
	for _, s := range run.Suites {
		walk(s, nil)
	}
	return entries
}

// ReportViewer browses the steps of a Sauce JSON report
type ReportViewer struct{}

// NewReportViewer creates a new ReportViewer
func NewReportViewer() *ReportViewer {
	return &ReportViewer{}
}

// View displays the report. F toggles between failed steps and all steps.
func (rv *ReportViewer) View(run *domain.Run) error {
	if len(FlattenRun(run, false)) == 0 {
		color.Yellow("The report contains no steps.")
		return nil
	}

	onlyFailed := run.Status == domain.StatusFailed
	var entries []Entry

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		st := run.Stats()
		scope := "all steps"
		if onlyFailed {
			scope = "failed steps"
		}
		headerView.SetText(fmt.Sprintf(" Report %s (%d steps, %d failed) | showing %s | ↑↓ navigate, [yellow]F[white] toggle failed, → details, ← back, Ctrl+C exit ",
			statusTag(run.Status), st.Total, st.Failed, scope))
	}

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(entries) {
			statsView.SetText("")
			detailsView.SetText("[gray]Nothing to show[white]")
			return
		}
		statsView.SetText(formatEntryStats(entries[index]))
		detailsView.SetText(formatEntryDetails(entries[index]))
	}

	reload := func() {
		entries = FlattenRun(run, onlyFailed)
		list.Clear()
		for i, e := range entries {
			list.AddItem(listItemText(i, e), "", 0, nil)
		}
		updateHeader()
		updateDetails()
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'f' || event.Rune() == 'F' {
				onlyFailed = !onlyFailed
				reload()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})

	reload()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func statusTag(s domain.Status) string {
	switch s {
	case domain.StatusFailed:
		return "[red]" + string(s) + "[white]"
	case domain.StatusSkipped:
		return "[yellow]" + string(s) + "[white]"
	default:
		return "[green]" + string(s) + "[white]"
	}
}

func listItemText(index int, e Entry) string {
	name := e.Test.Name
	if name == "" {
		name = fmt.Sprintf("Step %d", index+1)
	}
	switch e.Test.Status {
	case domain.StatusFailed:
		return fmt.Sprintf("[yellow]%d.[red] ✗ %s[white]", index+1, name)
	case domain.StatusSkipped:
		return fmt.Sprintf("[yellow]%d.[gray] - %s[white]", index+1, name)
	default:
		return fmt.Sprintf("[yellow]%d.[white] %s", index+1, name)
	}
}

// formatEntryStats formats the header line of the selected step
func formatEntryStats(e Entry) string {
	file := e.File
	if file == "" {
		file = "Unknown file"
	}
	return fmt.Sprintf("[cyan]path:[white] [yellow]%s[white]::[yellow]%s[white]\n", file, e.Scenario)
}

// formatEntryDetails formats a step for display using tview color tags
func formatEntryDetails(e Entry) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)
	t := e.Test

	fmt.Fprintf(w, "%s Step: %s\n\n", statusTag(t.Status), t.Name)
	fmt.Fprintf(w, "[cyan]Duration:\t[white]%dms\n", t.Duration)
	if !t.StartTime.IsZero() {
		fmt.Fprintf(w, "[cyan]Started:\t[white]%s\n", t.StartTime.UTC().Format("2006-01-02 15:04:05.000"))
	}
	if t.VideoTimestamp != nil {
		fmt.Fprintf(w, "[cyan]Video:\t[white]%.3fs\n", *t.VideoTimestamp)
	}
	if loc, ok := e.Metadata["sourceLocation"].(map[string]any); ok {
		fmt.Fprintf(w, "[cyan]Location:\t[white]%v:%v\n", loc["uri"], loc["line"])
	}
	fmt.Fprintf(w, "\n")

	if t.Output != "" {
		fmt.Fprintf(w, "[yellow]Output:[white]\n%s\n\n", tview.Escape(t.Output))
	}

	if len(t.Attachments) > 0 {
		fmt.Fprintf(w, "[yellow]Attachments:[white]\n")
		for _, a := range t.Attachments {
			fmt.Fprintf(w, "  %s\t[gray]%s[white]\n", a.Name, a.ContentType)
		}
	}

	w.Flush()
	return builder.String()
}
