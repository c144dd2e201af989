package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tidlog/tidlog/internal/engine"
	"github.com/tidlog/tidlog/internal/timeutil"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Timer and completion colors aligned with the TUI palette.
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	runningStyle = lipgloss.NewStyle()
	doneStyle = lipgloss.NewStyle()
	timeStyle = lipgloss.NewStyle()
	titleStyle = lipgloss.NewStyle()
}

// TaskTable renders a list of tasks as a formatted table. Elapsed time for a
// running timer is computed against now.
func TaskTable(w io.Writer, tasks []engine.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	// Calculate column widths.
	const pad = 2
	idW, titleW, timeW := 4, 7, 7
	for _, t := range tasks {
		idW = max(idW, len(shortID(t.ID))+pad)
		titleW = max(titleW, min(len(t.Title)+pad, 50)) //nolint:mnd // max title column width
		timeW = max(timeW, len(timeutil.FormatDuration(t.Elapsed(now)))+pad)
	}

	// Print header.
	header := fmt.Sprintf("%-*s %-*s %-*s %-7s %s",
		idW, "ID", titleW, "TITLE", timeW, "TIME", "TIMER", "STATUS")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	// Print rows.
	for _, t := range tasks {
		title := t.Title
		const maxTitle = 48
		if len(title) > maxTitle {
			title = title[:maxTitle-3] + "..."
		}
		if t.Completed {
			title = doneStyle.Render(title)
		}

		timer := dimStyle.Render("--")
		if t.TimerRunning {
			timer = runningStyle.Render("on")
		}

		status := "open"
		if t.Completed {
			status = doneStyle.Render("done")
		}

		row := fmt.Sprintf("%-*s %s %s %s %s",
			idW, shortID(t.ID),
			padRight(title, titleW),
			padRight(timeStyle.Render(timeutil.FormatDuration(t.Elapsed(now))), timeW),
			padRight(timer, 7), //nolint:mnd // timer column width
			status)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail.
func TaskDetail(w io.Writer, t engine.Task, entries []engine.LogEntry, now time.Time) {
	titleLine := fmt.Sprintf("Task %s: %s", shortID(t.ID), t.Title)
	fmt.Fprintln(w, titleStyle.Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", len([]rune(titleLine))))

	status := "open"
	if t.Completed {
		status = "done"
	}
	printField(w, "Status", status)
	if t.TimerRunning {
		printField(w, "Timer", runningStyle.Render("running"))
		if t.StartTime != nil {
			printField(w, "Started", timeutil.FormatStamp(*t.StartTime))
		}
	} else {
		printField(w, "Timer", dimStyle.Render("stopped"))
	}
	printField(w, "Time spent", timeStyle.Render(timeutil.FormatDuration(t.Elapsed(now))))
	printField(w, "Created", timeutil.FormatStamp(t.CreatedAt))
	if t.CompletedAt != nil {
		printField(w, "Completed", timeutil.FormatStamp(*t.CompletedAt))
	}
	printField(w, "Entries", fmt.Sprintf("%d", len(entries)))

	if t.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, t.Description)
	}
}

// LogTable renders the time-log entries of a task as a formatted table.
func LogTable(w io.Writer, entries []engine.LogEntry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No time-log entries found.")
		return
	}

	const pad = 2
	idW, durW := 4, 10
	for _, e := range entries {
		idW = max(idW, len(shortID(e.ID))+pad)
		durW = max(durW, len(timeutil.FormatDuration(e.Duration(now)))+pad)
	}

	header := fmt.Sprintf("%-*s %-21s %-21s %-*s",
		idW, "ID", "START", "STOP", durW, "DURATION")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	var total time.Duration
	for _, e := range entries {
		total += e.Duration(now)

		stop := dimStyle.Render(padRight("running", 21)) //nolint:mnd // stamp column width
		if e.Stop != nil {
			stop = padRight(timeutil.FormatStamp(*e.Stop), 21) //nolint:mnd // stamp column width
		}

		row := fmt.Sprintf("%-*s %-21s %s %s",
			idW, shortID(e.ID),
			timeutil.FormatStamp(e.Start),
			stop,
			timeStyle.Render(timeutil.FormatDuration(e.Duration(now))))
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total: %s\n", timeStyle.Render(timeutil.FormatDuration(total)))
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// padRight pads a possibly styled string to the given visible width.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

// shortID returns the 8-character prefix used for display and addressing.
func shortID(id string) string {
	const displayLen = 8
	if len(id) > displayLen {
		return id[:displayLen]
	}
	return id
}

func formatElapsed(d time.Duration) string {
	return timeutil.FormatDuration(d)
}
