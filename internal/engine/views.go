package engine

import (
	"sort"
	"time"
)

// Active returns the non-completed tasks in manual order (ascending
// SortOrder). Ties fall back to creation time, newest first, matching how
// fresh tasks enter at the top.
func Active(s State) []Task {
	var tasks []Task
	for _, t := range s.Tasks {
		if !t.Completed {
			tasks = append(tasks, t)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].SortOrder != tasks[j].SortOrder {
			return tasks[i].SortOrder < tasks[j].SortOrder
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks
}

// Completed returns the completed tasks, most recently completed first.
func Completed(s State) []Task {
	var tasks []Task
	for _, t := range s.Tasks {
		if t.Completed {
			tasks = append(tasks, t)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].CompletedAt, tasks[j].CompletedAt
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})
	return tasks
}

// EntriesFor returns one task's log entries ordered by start time. The
// association is always derived by filtering the log; tasks never hold
// their own entry collections.
func EntriesFor(s State, taskID string) []LogEntry {
	var entries []LogEntry
	for _, e := range s.Log {
		if e.TaskID == taskID {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Start.Equal(entries[j].Start) {
			return entries[i].Start.Before(entries[j].Start)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// TotalTime returns a task's tracked time from its accumulator plus the
// live portion of a running timer.
func TotalTime(s State, taskID string, now time.Time) time.Duration {
	t, ok := s.Tasks[taskID]
	if !ok {
		return 0
	}
	return t.Elapsed(now)
}

// LoggedTime sums a task's log entries, counting an open entry up to now.
// After history edits this agrees with TotalTime; both views exist so
// either can cross-check the other.
func LoggedTime(s State, taskID string, now time.Time) time.Duration {
	var total time.Duration
	for _, e := range s.Log {
		if e.TaskID == taskID {
			total += e.Duration(now)
		}
	}
	return total
}

// RunningTask returns the task whose timer is running, if any.
func RunningTask(s State) (Task, bool) {
	e, ok := s.Log[s.RunningEntryID]
	if !ok {
		return Task{}, false
	}
	t, ok := s.Tasks[e.TaskID]
	return t, ok
}
