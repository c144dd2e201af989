// Package engine owns the authoritative task and time-log model. All
// mutations flow through Dispatch, which maps a command to a structurally
// new state without touching the old one.
package engine

import (
	"time"
)

// Mode is a task's interaction mode. At most one task across the whole
// collection is in a non-list mode at a time (the open task).
type Mode string

// Task modes.
const (
	ModeList      Mode = "list"
	ModeQuickEdit Mode = "quickEdit"
	ModeFullEdit  Mode = "fullEdit"
	ModeTimeLog   Mode = "timeLog"
)

// editable reports whether m is an edit-like mode. Completed tasks reject
// transitions into these.
func (m Mode) editable() bool {
	return m == ModeQuickEdit || m == ModeFullEdit
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeList, ModeQuickEdit, ModeFullEdit, ModeTimeLog:
		return true
	}
	return false
}

// Task is a user-created to-do item with optional timer tracking.
type Task struct {
	ID          string
	Title       string
	Description string
	Mode        Mode

	TimerRunning bool
	StartTime    *time.Time    // set while the timer runs, nil otherwise
	TimeSpent    time.Duration // accumulated over closed intervals

	// SortOrder defines manual ordering among active tasks only.
	// Completed tasks keep their stale value but are never ordered by it.
	SortOrder int

	Completed   bool
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// Elapsed returns the task's total tracked time including the live portion
// of a running timer. Recomputed on demand; never stored.
func (t Task) Elapsed(now time.Time) time.Duration {
	total := t.TimeSpent
	if t.TimerRunning && t.StartTime != nil {
		total += now.Sub(*t.StartTime)
	}
	return total
}

// stopped returns a copy of the task with its timer stopped at now,
// folding the elapsed interval into TimeSpent.
func (t Task) stopped(now time.Time) Task {
	if t.StartTime != nil {
		t.TimeSpent += now.Sub(*t.StartTime)
	}
	t.TimerRunning = false
	t.StartTime = nil
	return t
}

// LogEntry is one start/stop interval attached to a task. An entry with a
// nil Stop is open; at most one entry system-wide is open at a time.
type LogEntry struct {
	ID     string
	TaskID string
	Start  time.Time
	Stop   *time.Time
}

// Open reports whether the entry has no stop time yet.
func (e LogEntry) Open() bool { return e.Stop == nil }

// Duration returns the entry's length, using now as the stop time for an
// open entry.
func (e LogEntry) Duration(now time.Time) time.Duration {
	if e.Stop != nil {
		return e.Stop.Sub(e.Start)
	}
	return now.Sub(e.Start)
}
