package engine

import (
	"fmt"
)

// State is the aggregate root: the task collection, the time log, and the
// two derived pointers. Treat values as immutable snapshots; Dispatch
// returns a new State rather than mutating in place.
type State struct {
	Tasks          map[string]Task
	Log            map[string]LogEntry
	OpenTaskID     string // id of the single task not in list mode, "" if none
	RunningEntryID string // id of the single open log entry, "" if none
}

// NewState returns an empty state with initialized maps.
func NewState() State {
	return State{
		Tasks: make(map[string]Task),
		Log:   make(map[string]LogEntry),
	}
}

// clone returns a shallow copy with fresh maps. Task and LogEntry are value
// types, so writing into the copies never leaks into the original.
func (s State) clone() State {
	out := State{
		Tasks:          make(map[string]Task, len(s.Tasks)),
		Log:            make(map[string]LogEntry, len(s.Log)),
		OpenTaskID:     s.OpenTaskID,
		RunningEntryID: s.RunningEntryID,
	}
	for id, t := range s.Tasks {
		out.Tasks[id] = t
	}
	for id, e := range s.Log {
		out.Log[id] = e
	}
	return out
}

// Check verifies the aggregate invariants. A violation means state was
// mutated outside the dispatch contract; there is no recovery path.
func (s State) Check() error {
	var openCount, runningCount int
	for id, t := range s.Tasks {
		if t.ID != id {
			return fmt.Errorf("task map key %q does not match task id %q", id, t.ID)
		}
		if t.Mode != ModeList {
			openCount++
			if s.OpenTaskID != id {
				return fmt.Errorf("task %q is in mode %q but open pointer is %q", id, t.Mode, s.OpenTaskID)
			}
		}
		if t.TimerRunning {
			runningCount++
			if t.StartTime == nil {
				return fmt.Errorf("task %q has a running timer but no start time", id)
			}
		} else if t.StartTime != nil {
			return fmt.Errorf("task %q has a start time but no running timer", id)
		}
		if t.Completed != (t.CompletedAt != nil) {
			return fmt.Errorf("task %q completed flag disagrees with completion time", id)
		}
	}
	if openCount > 1 {
		return fmt.Errorf("%d tasks are open at once", openCount)
	}
	if s.OpenTaskID != "" {
		t, ok := s.Tasks[s.OpenTaskID]
		if !ok {
			return fmt.Errorf("open pointer references missing task %q", s.OpenTaskID)
		}
		if t.Mode == ModeList {
			return fmt.Errorf("open pointer references task %q in list mode", s.OpenTaskID)
		}
	}

	var openEntries int
	for id, e := range s.Log {
		if e.ID != id {
			return fmt.Errorf("log map key %q does not match entry id %q", id, e.ID)
		}
		if e.Stop != nil && e.Stop.Before(e.Start) {
			return fmt.Errorf("entry %q stops before it starts", id)
		}
		if e.Open() {
			openEntries++
			if s.RunningEntryID != id {
				return fmt.Errorf("entry %q is open but running pointer is %q", id, s.RunningEntryID)
			}
		}
	}
	if openEntries > 1 {
		return fmt.Errorf("%d log entries are open at once", openEntries)
	}
	if runningCount > 1 {
		return fmt.Errorf("%d timers are running at once", runningCount)
	}
	if s.RunningEntryID != "" {
		e, ok := s.Log[s.RunningEntryID]
		if !ok {
			return fmt.Errorf("running pointer references missing entry %q", s.RunningEntryID)
		}
		if !e.Open() {
			return fmt.Errorf("running pointer references closed entry %q", s.RunningEntryID)
		}
		t, ok := s.Tasks[e.TaskID]
		if !ok {
			return fmt.Errorf("running entry %q references missing task %q", s.RunningEntryID, e.TaskID)
		}
		if !t.TimerRunning {
			return fmt.Errorf("running entry %q belongs to task %q whose timer is off", s.RunningEntryID, e.TaskID)
		}
		if t.StartTime == nil || !t.StartTime.Equal(e.Start) {
			return fmt.Errorf("task %q start time disagrees with its running entry", e.TaskID)
		}
	} else if runningCount > 0 {
		return fmt.Errorf("a timer is running but no entry is open")
	}

	return nil
}
