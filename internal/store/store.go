// Package store persists engine state snapshots to a JSON file slot.
// The engine never performs I/O itself; the surrounding command or TUI
// loads a snapshot, dispatches against it, and saves the result.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tidlog/tidlog/internal/engine"
	"github.com/tidlog/tidlog/internal/filelock"
)

const fileMode = 0o600

// snapshotVersion is bumped on incompatible snapshot layout changes.
const snapshotVersion = 1

// snapshot is the wire shape of engine state. The id-keyed mappings are
// flattened to ordered record lists and rebuilt on load.
type snapshot struct {
	Version        int           `json:"version"`
	Tasks          []taskRecord  `json:"tasks"`
	TimeLog        []entryRecord `json:"timeLog"`
	OpenTaskID     string        `json:"openTaskId,omitempty"`
	RunningEntryID string        `json:"runningEntryId,omitempty"`
}

// taskRecord serializes one task. Instants are epoch milliseconds and
// timeSpent is a millisecond count, so snapshots stay locale-free.
type taskRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Mode        string `json:"mode"`
	TimerOn     bool   `json:"isTimerRunning"`
	StartTime   *int64 `json:"startTime"`
	TimeSpent   int64  `json:"timeSpent"`
	SortOrder   int    `json:"sortOrder"`
	Completed   bool   `json:"isCompleted"`
	CompletedAt *int64 `json:"completedAt"`
	CreatedAt   int64  `json:"createdAt"`
}

// entryRecord serializes one time-log interval. A nil stop marks the open
// entry.
type entryRecord struct {
	ID     string `json:"id"`
	TaskID string `json:"taskId"`
	Start  int64  `json:"start"`
	Stop   *int64 `json:"stop"`
}

// Load reads the snapshot at path into engine state.
//
// A missing file yields an empty initial state with no error. A malformed
// or internally inconsistent snapshot also degrades to the empty state,
// returning the parse error so the caller can report it; startup never
// fails on bad persisted data.
func Load(path string) (engine.State, error) {
	data, err := os.ReadFile(path) //nolint:gosec // snapshot path from trusted config
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return engine.NewState(), nil
		}
		return engine.NewState(), fmt.Errorf("reading snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return engine.NewState(), fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	if snap.Version != snapshotVersion {
		return engine.NewState(), fmt.Errorf("unsupported snapshot version %d in %s", snap.Version, path)
	}

	s := decode(snap)
	if err := s.Check(); err != nil {
		return engine.NewState(), fmt.Errorf("inconsistent snapshot %s: %w", path, err)
	}
	return s, nil
}

// Save writes the state snapshot atomically (temp file + rename) under an
// advisory lock, so concurrent invocations never interleave partial writes.
// The in-memory state stays authoritative regardless of the outcome.
func Save(path string, s engine.State) error {
	data, err := json.MarshalIndent(encode(s), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	if err := EnsureDir(path); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	unlock, err := filelock.Lock(path + ".lock")
	if err != nil {
		return fmt.Errorf("acquiring snapshot lock: %w", err)
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), fileMode); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

func encode(s engine.State) snapshot {
	snap := snapshot{
		Version:        snapshotVersion,
		Tasks:          make([]taskRecord, 0, len(s.Tasks)),
		TimeLog:        make([]entryRecord, 0, len(s.Log)),
		OpenTaskID:     s.OpenTaskID,
		RunningEntryID: s.RunningEntryID,
	}

	for _, t := range s.Tasks {
		snap.Tasks = append(snap.Tasks, taskRecord{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Mode:        string(t.Mode),
			TimerOn:     t.TimerRunning,
			StartTime:   millisPtr(t.StartTime),
			TimeSpent:   t.TimeSpent.Milliseconds(),
			SortOrder:   t.SortOrder,
			Completed:   t.Completed,
			CompletedAt: millisPtr(t.CompletedAt),
			CreatedAt:   t.CreatedAt.UnixMilli(),
		})
	}
	// Deterministic record order keeps snapshots diffable.
	sort.Slice(snap.Tasks, func(i, j int) bool {
		if snap.Tasks[i].CreatedAt != snap.Tasks[j].CreatedAt {
			return snap.Tasks[i].CreatedAt < snap.Tasks[j].CreatedAt
		}
		return snap.Tasks[i].ID < snap.Tasks[j].ID
	})

	for _, e := range s.Log {
		snap.TimeLog = append(snap.TimeLog, entryRecord{
			ID:     e.ID,
			TaskID: e.TaskID,
			Start:  e.Start.UnixMilli(),
			Stop:   millisPtr(e.Stop),
		})
	}
	sort.Slice(snap.TimeLog, func(i, j int) bool {
		if snap.TimeLog[i].Start != snap.TimeLog[j].Start {
			return snap.TimeLog[i].Start < snap.TimeLog[j].Start
		}
		return snap.TimeLog[i].ID < snap.TimeLog[j].ID
	})

	return snap
}

func decode(snap snapshot) engine.State {
	s := engine.NewState()
	s.OpenTaskID = snap.OpenTaskID
	s.RunningEntryID = snap.RunningEntryID

	for _, r := range snap.Tasks {
		s.Tasks[r.ID] = engine.Task{
			ID:           r.ID,
			Title:        r.Title,
			Description:  r.Description,
			Mode:         engine.Mode(r.Mode),
			TimerRunning: r.TimerOn,
			StartTime:    timePtr(r.StartTime),
			TimeSpent:    time.Duration(r.TimeSpent) * time.Millisecond,
			SortOrder:    r.SortOrder,
			Completed:    r.Completed,
			CompletedAt:  timePtr(r.CompletedAt),
			CreatedAt:    time.UnixMilli(r.CreatedAt),
		}
	}
	for _, r := range snap.TimeLog {
		s.Log[r.ID] = engine.LogEntry{
			ID:     r.ID,
			TaskID: r.TaskID,
			Start:  time.UnixMilli(r.Start),
			Stop:   timePtr(r.Stop),
		}
	}
	return s
}

func millisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func timePtr(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms)
	return &t
}

// EnsureDir creates the directory that will hold the snapshot file.
func EnsureDir(path string) error {
	const dirMode = 0o750
	return os.MkdirAll(filepath.Dir(path), dirMode)
}
