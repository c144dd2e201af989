package engine

import (
	"strings"
	"time"

	"github.com/tidlog/tidlog/internal/ident"
	"github.com/tidlog/tidlog/internal/timeutil"
)

// Dispatch applies a command to a state snapshot and returns the resulting
// snapshot plus whether anything changed. The input state is never mutated.
// All timestamps within one invocation use the single now value, rounded to
// whole seconds, so task fields and log boundaries cannot drift apart.
//
// Validation rejections and references to ids no longer present are
// deliberate no-ops: the old state is returned with changed == false.
func Dispatch(s State, cmd Command, now time.Time) (State, bool) {
	now = timeutil.RoundToSecond(now)

	switch c := cmd.(type) {
	case AddTask:
		return addTask(s, c, now)
	case DeleteTask:
		return deleteTask(s, c)
	case SaveTask:
		return saveTask(s, c)
	case CompleteTask:
		return completeTask(s, c, now)
	case ToggleTimer:
		return toggleTimer(s, c, now)
	case UpdateLogEntry:
		return updateLogEntry(s, c)
	case DeleteLogEntry:
		return deleteLogEntry(s, c)
	case SortTasks:
		return sortTasks(s, c)
	default:
		return s, false
	}
}

// topSortOrder returns the sort order that places a task first among the
// active tasks: one below the current minimum, or 0 when the list is empty.
func topSortOrder(tasks map[string]Task) int {
	minOrder := 1
	seen := false
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		if !seen || t.SortOrder < minOrder {
			minOrder = t.SortOrder
			seen = true
		}
	}
	return minOrder - 1
}

func addTask(s State, c AddTask, now time.Time) (State, bool) {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return s, false
	}

	out := s.clone()
	id := ident.New()
	out.Tasks[id] = Task{
		ID:        id,
		Title:     title,
		Mode:      ModeList,
		SortOrder: topSortOrder(s.Tasks),
		CreatedAt: now,
	}
	return out, true
}

func deleteTask(s State, c DeleteTask) (State, bool) {
	if _, ok := s.Tasks[c.ID]; !ok {
		return s, false
	}

	out := s.clone()
	delete(out.Tasks, c.ID)
	if out.OpenTaskID == c.ID {
		out.OpenTaskID = ""
	}

	// History is cascade-deleted with its task. If the task owned the open
	// entry the running pointer is cleared with it, so nothing dangles.
	for id, e := range out.Log {
		if e.TaskID != c.ID {
			continue
		}
		if out.RunningEntryID == id {
			out.RunningEntryID = ""
		}
		delete(out.Log, id)
	}

	return out, true
}

func saveTask(s State, c SaveTask) (State, bool) {
	t, ok := s.Tasks[c.ID]
	if !ok {
		return s, false
	}

	changed := false
	if c.Title != nil {
		// An empty title is rejected at the command boundary; the prior
		// title is retained.
		if title := strings.TrimSpace(*c.Title); title != "" && title != t.Title {
			t.Title = title
			changed = true
		}
	}
	if c.Description != nil && *c.Description != t.Description {
		t.Description = *c.Description
		changed = true
	}

	out := s.clone()
	if c.Mode != nil && c.Mode.Valid() && modeAllowed(t, *c.Mode) && *c.Mode != t.Mode {
		if *c.Mode != ModeList {
			// This task becomes the open task; any previously open task is
			// forced back to list mode.
			if prev, ok := out.Tasks[out.OpenTaskID]; ok && prev.ID != t.ID {
				prev.Mode = ModeList
				out.Tasks[prev.ID] = prev
			}
			out.OpenTaskID = t.ID
		} else if out.OpenTaskID == t.ID {
			out.OpenTaskID = ""
		}
		t.Mode = *c.Mode
		changed = true
	}

	if !changed {
		return s, false
	}
	out.Tasks[t.ID] = t
	return out, true
}

// modeAllowed rejects edit-mode transitions on completed tasks. The time
// log stays reachable so history can be reviewed after completion.
func modeAllowed(t Task, m Mode) bool {
	return !(t.Completed && m.editable())
}

func completeTask(s State, c CompleteTask, now time.Time) (State, bool) {
	t, ok := s.Tasks[c.ID]
	if !ok {
		return s, false
	}

	out := s.clone()

	if !t.Completed {
		if t.TimerRunning {
			t = t.stopped(now)
			out.closeRunningEntry(now)
		}
		t.Completed = true
		t.CompletedAt = &now
		t.Mode = ModeList
		if out.OpenTaskID == t.ID {
			out.OpenTaskID = ""
		}
	} else {
		// Reactivation: the old manual position went stale while the task
		// was out of the active set, so it re-enters at the top.
		t.Completed = false
		t.CompletedAt = nil
		t.SortOrder = topSortOrder(out.Tasks)
	}

	out.Tasks[t.ID] = t
	return out, true
}

func toggleTimer(s State, c ToggleTimer, now time.Time) (State, bool) {
	t, ok := s.Tasks[c.ID]
	if !ok {
		return s, false
	}

	out := s.clone()

	if t.TimerRunning {
		t = t.stopped(now)
		out.closeRunningEntry(now)
		out.Tasks[t.ID] = t
		return out, true
	}

	// Only one timer runs at a time: stop the other task first.
	if running, ok := out.Log[out.RunningEntryID]; ok {
		if other, ok := out.Tasks[running.TaskID]; ok && other.ID != t.ID {
			out.Tasks[other.ID] = other.stopped(now)
		}
		out.closeRunningEntry(now)
	}

	t.TimerRunning = true
	t.StartTime = &now
	out.Tasks[t.ID] = t

	entry := LogEntry{ID: ident.New(), TaskID: t.ID, Start: now}
	out.Log[entry.ID] = entry
	out.RunningEntryID = entry.ID

	return out, true
}

// closeRunningEntry sets the open entry's stop to now and clears the
// running pointer. No-op when nothing is running.
func (s *State) closeRunningEntry(now time.Time) {
	e, ok := s.Log[s.RunningEntryID]
	if !ok {
		return
	}
	e.Stop = &now
	s.Log[e.ID] = e
	s.RunningEntryID = ""
}

func updateLogEntry(s State, c UpdateLogEntry) (State, bool) {
	e, ok := s.Log[c.EntryID]
	if !ok {
		return s, false
	}

	start := e.Start
	stop := e.Stop
	if c.Start != nil {
		start = timeutil.RoundToSecond(*c.Start)
	}
	if c.Stop != nil {
		if e.Open() {
			// Closing the open entry is not a history edit; that path is
			// ToggleTimer's.
			return s, false
		}
		rounded := timeutil.RoundToSecond(*c.Stop)
		stop = &rounded
	}

	// An entry must not stop before it starts; violating edits are
	// rejected outright rather than clamped.
	if stop != nil && stop.Before(start) {
		return s, false
	}
	if start.Equal(e.Start) && equalStop(stop, e.Stop) {
		return s, false
	}

	out := s.clone()
	e.Start = start
	e.Stop = stop
	out.Log[e.ID] = e

	if t, ok := out.Tasks[e.TaskID]; ok {
		if t.TimerRunning && out.RunningEntryID == e.ID {
			// Keep the cached start in step with the authoritative entry.
			t.StartTime = &start
		}
		t.TimeSpent = closedTotal(out.Log, t.ID)
		out.Tasks[t.ID] = t
	}

	return out, true
}

func equalStop(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func deleteLogEntry(s State, c DeleteLogEntry) (State, bool) {
	e, ok := s.Log[c.EntryID]
	if !ok || s.RunningEntryID == c.EntryID {
		return s, false
	}

	out := s.clone()
	delete(out.Log, c.EntryID)

	if t, ok := out.Tasks[e.TaskID]; ok {
		t.TimeSpent = closedTotal(out.Log, t.ID)
		out.Tasks[t.ID] = t
	}

	return out, true
}

// closedTotal re-projects a task's accumulated time from its closed log
// entries. Used after manual history edits so the accumulator and the log
// agree again.
func closedTotal(log map[string]LogEntry, taskID string) time.Duration {
	var total time.Duration
	for _, e := range log {
		if e.TaskID == taskID && e.Stop != nil {
			total += e.Stop.Sub(e.Start)
		}
	}
	return total
}

func sortTasks(s State, c SortTasks) (State, bool) {
	if c.DraggedID == c.TargetID {
		return s, false
	}

	active := Active(s)
	draggedIdx, targetIdx := -1, -1
	for i, t := range active {
		switch t.ID {
		case c.DraggedID:
			draggedIdx = i
		case c.TargetID:
			targetIdx = i
		}
	}
	if draggedIdx < 0 || targetIdx < 0 {
		return s, false
	}

	moved := active[draggedIdx]
	active = append(active[:draggedIdx], active[draggedIdx+1:]...)
	active = append(active[:targetIdx], append([]Task{moved}, active[targetIdx:]...)...)

	out := s.clone()
	for i, t := range active {
		stored := out.Tasks[t.ID]
		stored.SortOrder = i
		out.Tasks[stored.ID] = stored
	}
	return out, true
}
