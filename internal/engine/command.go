package engine

import (
	"time"
)

// Command is one of the fixed set of user intents the engine accepts.
type Command interface {
	// Name returns a short action name for activity logging.
	Name() string
}

// AddTask creates a new task at the top of the active list. A title that
// trims to empty is silently rejected.
type AddTask struct {
	Title string
}

// DeleteTask removes a task and cascade-deletes its time-log history.
// Unknown ids are a no-op.
type DeleteTask struct {
	ID string
}

// SaveTask applies a closed set of field updates to one task. Nil fields
// are left untouched. A title that trims to empty retains the prior title.
// Setting a non-list mode makes the task the open task and forces any
// previously open task back to list mode.
type SaveTask struct {
	ID          string
	Title       *string
	Description *string
	Mode        *Mode
}

// CompleteTask toggles a task's completed flag. Completing stops a running
// timer and closes any open edit; reactivating re-inserts the task at the
// top of the active ordering.
type CompleteTask struct {
	ID string
}

// ToggleTimer starts the task's timer, stopping any other running timer
// first, or stops it if it is already running.
type ToggleTimer struct {
	ID string
}

// UpdateLogEntry edits a historical entry's boundaries. An edit that would
// make the entry stop before it starts is rejected. The open entry's stop
// cannot be set this way; stopping a timer is ToggleTimer's job.
type UpdateLogEntry struct {
	EntryID string
	Start   *time.Time
	Stop    *time.Time
}

// DeleteLogEntry removes a closed entry from history. The currently open
// entry is refused.
type DeleteLogEntry struct {
	EntryID string
}

// SortTasks moves the dragged task to the target task's position within
// the active ordering. Completed tasks are untouched.
type SortTasks struct {
	DraggedID string
	TargetID  string
}

// Name implements Command.
func (AddTask) Name() string { return "add" }

// Name implements Command.
func (DeleteTask) Name() string { return "delete" }

// Name implements Command.
func (SaveTask) Name() string { return "save" }

// Name implements Command.
func (CompleteTask) Name() string { return "complete" }

// Name implements Command.
func (ToggleTimer) Name() string { return "toggle-timer" }

// Name implements Command.
func (UpdateLogEntry) Name() string { return "update-entry" }

// Name implements Command.
func (DeleteLogEntry) Name() string { return "delete-entry" }

// Name implements Command.
func (SortTasks) Name() string { return "sort" }
