package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/tidlog/tidlog/internal/engine"
	"github.com/tidlog/tidlog/internal/timeutil"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []engine.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t, now))
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t engine.Task, entries []engine.LogEntry, now time.Time) {
	fmt.Fprintln(w, formatTaskLine(t, now))

	// Timestamps line.
	ts := "  created:" + t.CreatedAt.Format("2006-01-02")
	if t.CompletedAt != nil {
		ts += " completed:" + t.CompletedAt.Format("2006-01-02")
	}
	ts += fmt.Sprintf(" entries:%d", len(entries))
	fmt.Fprintln(w, ts)

	if t.Description != "" {
		for _, line := range strings.Split(t.Description, "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// LogCompact renders time-log entries in one-line-per-record compact format.
func LogCompact(w io.Writer, entries []engine.LogEntry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No time-log entries found.")
		return
	}

	for _, e := range entries {
		stop := "running"
		if e.Stop != nil {
			stop = timeutil.FormatStamp(*e.Stop)
		}
		fmt.Fprintf(w, "%s %s .. %s (%s)\n",
			shortID(e.ID), timeutil.FormatStamp(e.Start), stop,
			timeutil.FormatDuration(e.Duration(now)))
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t engine.Task, now time.Time) string {
	status := "open"
	if t.Completed {
		status = "done"
	}
	line := shortID(t.ID) + " [" + status + "] " + t.Title +
		" time:" + timeutil.FormatDuration(t.Elapsed(now))

	if t.TimerRunning {
		line += " timer:on"
	}

	return line
}
