package ui

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"irverify/internal/domain"
	"irverify/internal/storage"
)

// ErrorViewer displays report entries in an interactive TUI
type ErrorViewer struct {
	storage storage.Storage
}

// NewErrorViewer creates a new ErrorViewer
func NewErrorViewer(st storage.Storage) *ErrorViewer {
	return &ErrorViewer{storage: st}
}

// View displays report entries in an interactive TUI
func (ev *ErrorViewer) View(results *domain.RunOutput) error {
	if len(results.Details) == 0 {
		color.Green("✓ No IR failures found!")
		return nil
	}

	// Track resolved test cases (by index) - load from JSON
	resolved := make(map[int]bool)
	for i, failure := range results.Details {
		if failure.Resolved {
			resolved[i] = true
		}
	}

	// Function to save resolved status to the report file
	saveResolvedStatus := func() error {
		for i := range results.Details {
			results.Details[i].Resolved = resolved[i]
		}
		return ev.storage.SaveOutput(results)
	}

	// Create the application
	app := tview.NewApplication()

	// Create list for report entries (left side)
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true).
		SetSelectedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
			// When Enter is pressed, we'll show details (handled by key handler)
		})

	// Function to get formatted text for a list item
	getListItemText := func(index int) string {
		failure := results.Details[index]
		_, testName := splitID(failure.TestCase)
		if testName == "" {
			testName = fmt.Sprintf("Case %d", index+1)
		}

		// Check if resolved
		if resolved[index] {
			return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, testName)
		}
		marker := "[red]✗"
		if failure.Warning() {
			marker = "[yellow]⚠"
		}
		return fmt.Sprintf("%s [yellow]%d.[white] %s", marker, index+1, testName)
	}

	// Function to update list item display with resolved status
	updateListItem := func(index int) {
		if index < 0 || index >= list.GetItemCount() {
			return
		}
		mainText := getListItemText(index)
		list.SetItemText(index, mainText, "")
	}

	// Add entries to the list with numbers and colors
	for i := range results.Details {
		mainText := getListItemText(i)
		list.AddItem(mainText, "", 0, nil)
	}

	// Set list colors for better visibility
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	// Create stats header view (shows suite and test case info)
	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	// Create text view for error details (right side)
	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	// Create a container with right padding for the details view
	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	// Create right side layout: stats on top, details below
	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	// Create simple flex layout: list on left (1/3), details on right (2/3)
	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	// Count unresolved entries
	countUnresolved := func() int {
		count := 0
		for i := range results.Details {
			if !resolved[i] {
				count++
			}
		}
		return count
	}

	// Create header text view (so we can update it)
	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	// Function to update header
	updateHeader := func() {
		unresolved := countUnresolved()
		headerText := fmt.Sprintf(" IR Failures (%d total, %d unresolved) | Use ↑↓ to navigate, [yellow]R[white] to mark resolved, → to view details, ← to go back, Ctrl+C to exit ", len(results.Details), unresolved)
		headerView.SetText(headerText)
	}

	// Set initial header
	updateHeader()

	// Update details when selection changes
	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(results.Details) {
			failure := results.Details[index]

			// Update stats header
			statsText := ev.formatFailureStats(failure, index+1)
			statsView.SetText(statsText)

			// Update error details
			detailsView.SetText(ev.formatFailureDetails(failure))
		}
	}

	// Set up keyboard handlers for list
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
			if event.Rune() == 'r' || event.Rune() == 'R' {
				index := list.GetCurrentItem()
				if index >= 0 && index < len(results.Details) {
					resolved[index] = !resolved[index]
					updateListItem(index)
					updateHeader()
					updateDetails()
					if err := saveResolvedStatus(); err != nil {
						statsView.SetText(fmt.Sprintf("[red]%v[white]", err))
					}
				}
				return nil
			}
		}
		return event
	})

	// Set up keyboard handlers for details view
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

	// Update details when list selection changes
	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})

	// Set initial details
	updateDetails()

	// Create main layout with title
	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(
			tview.NewBox().SetDrawFunc(func(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
				return x, y, width, height
			}),
			1, 0, false,
		).
		AddItem(flex, 0, 1, true)

	// Run the application
	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}

// formatFailureDetails formats a report entry for display using tview color tags ([red], [cyan], etc.)
func (ev *ErrorViewer) formatFailureDetails(failure domain.Failure) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	if failure.Warning() {
		fmt.Fprintf(w, "[yellow]⚠ %s[white]\n\n", failure.Kind)
	} else {
		fmt.Fprintf(w, "[red]✗ %s[white]\n\n", failure.Kind)
	}

	fmt.Fprintf(w, "[cyan]Case:\t%s[white]\n", failure.TestCase)
	if failure.RuleIndex >= 0 {
		fmt.Fprintf(w, "[cyan]Rule:\t#%d[white]\n", failure.RuleIndex)
	}
	if failure.NodeKind != "" {
		fmt.Fprintf(w, "[cyan]Node:\t%s[white]\n", failure.NodeKind)
	}
	fmt.Fprintf(w, "\n")

	if failure.Expected != "" || failure.Actual != "" {
		fmt.Fprintf(w, "[yellow]Expected:[white]\t%s\n", failure.Expected)
		fmt.Fprintf(w, "[yellow]Actual:[white]\t%s\n\n", failure.Actual)
	}

	if failure.Detail != "" {
		fmt.Fprintf(w, "[yellow]Detail:[white]\n%s\n", tview.Escape(failure.Detail))
	}

	w.Flush()
	return builder.String()
}

// formatFailureStats formats the stats header for a report entry
func (ev *ErrorViewer) formatFailureStats(failure domain.Failure, number int) string {
	suite, testCase := splitID(failure.TestCase)
	if testCase == "" {
		testCase = fmt.Sprintf("Case %d", number)
	}
	status := "[red]open"
	if failure.Resolved {
		status = "[gray]resolved"
	}
	return fmt.Sprintf("[cyan]suite:[white] [yellow]%s[white]::[yellow]%s[white]  %s[white]\n", suite, testCase, status)
}
