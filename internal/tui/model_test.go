package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidlog/tidlog/internal/config"
	"github.com/tidlog/tidlog/internal/engine"
	"github.com/tidlog/tidlog/internal/store"
	"github.com/tidlog/tidlog/internal/timeutil"
)

var testBase = time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)

// dispatchAdd dispatches AddTask and returns the new state plus the
// created task's id.
func dispatchAdd(t *testing.T, s engine.State, title string, now time.Time) (engine.State, string) {
	t.Helper()
	out, changed := engine.Dispatch(s, engine.AddTask{Title: title}, now)
	require.True(t, changed)
	for id := range out.Tasks {
		if _, existed := s.Tasks[id]; !existed {
			return out, id
		}
	}
	t.Fatal("no new task found after AddTask")
	return out, ""
}

// testConfig returns a config rooted in a fresh temp directory.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewDefault("test")
	cfg.SetDir(filepath.Join(t.TempDir(), "list"))
	return cfg
}

func TestApplyKeepsChangeWhenSaveFails(t *testing.T) {
	tmp := t.TempDir()
	cfg := config.NewDefault("test")
	cfg.SetDir(filepath.Join(tmp, "list"))

	s, id := dispatchAdd(t, engine.NewState(), "write report", testBase)
	require.NoError(t, store.Save(cfg.SnapshotPath(), s))

	m := New(cfg)
	require.NoError(t, m.err)
	require.Len(t, m.active, 1)

	// Break persistence: the snapshot's parent becomes a regular file.
	blocked := filepath.Join(tmp, "blocked")
	require.NoError(t, os.WriteFile(blocked, nil, 0o600))
	cfg.SetDir(filepath.Join(blocked, "list"))

	m.apply(engine.ToggleTimer{ID: id}, id, "")

	// The in-memory change sticks; only the save error is surfaced.
	assert.True(t, m.state.Tasks[id].TimerRunning)
	require.Len(t, m.active, 1)
	assert.True(t, m.active[0].TimerRunning)
	assert.Error(t, m.err)
}

func TestScrollFollowsCursorIntoCompletedSection(t *testing.T) {
	s := engine.NewState()
	var ids []string
	for i := 0; i < 8; i++ {
		var id string
		s, id = dispatchAdd(t, s, fmt.Sprintf("task %d", i), testBase.Add(time.Duration(i)*time.Minute))
		ids = append(ids, id)
	}
	for _, id := range ids[5:] {
		var changed bool
		s, changed = engine.Dispatch(s, engine.CompleteTask{ID: id}, testBase.Add(time.Hour))
		require.True(t, changed)
	}

	m := &Model{cfg: config.NewDefault("test"), state: s, now: time.Now, showCompleted: true, width: 80, height: 10}
	m.rebuild()
	require.Len(t, m.active, 5)
	require.Len(t, m.completed, 3)

	// The last completed task renders two rows below its cursor index
	// because of the section's blank line and header.
	m.cursor = m.rowCount() - 1
	m.ensureVisible()

	row := m.displayRow()
	assert.GreaterOrEqual(t, row, m.scrollOff)
	assert.Less(t, row, m.scrollOff+m.visibleRows())
}

func TestCommitEntryEditAcceptsZeroLength(t *testing.T) {
	cfg := testConfig(t)

	s, id := dispatchAdd(t, engine.NewState(), "tracked", testBase)
	s, _ = engine.Dispatch(s, engine.ToggleTimer{ID: id}, testBase)
	s, _ = engine.Dispatch(s, engine.ToggleTimer{ID: id}, testBase.Add(time.Minute))
	require.NoError(t, store.Save(cfg.SnapshotPath(), s))

	m := New(cfg)
	require.NoError(t, m.err)
	entry := engine.EntriesFor(m.state, id)[0]

	m.view = viewEditEntry
	m.timeLog = timeLogState{
		taskID:  id,
		entryID: entry.ID,
		start:   newInput("", timeutil.FormatStamp(entry.Start)),
		stop:    newInput("", timeutil.FormatStamp(entry.Start)),
	}
	m.commitEntryEdit()

	require.NoError(t, m.err)
	updated := m.state.Log[entry.ID]
	require.NotNil(t, updated.Stop)
	assert.True(t, updated.Stop.Equal(updated.Start))
	assert.Equal(t, time.Duration(0), m.state.Tasks[id].TimeSpent)
	assert.Equal(t, viewTimeLog, m.view)
}
