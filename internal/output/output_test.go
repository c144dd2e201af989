package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidlog/tidlog/internal/engine"
)

func TestDetectPrecedence(t *testing.T) {
	assert.Equal(t, FormatJSON, Detect(true, true, true))
	assert.Equal(t, FormatCompact, Detect(false, true, true))
	assert.Equal(t, FormatTable, Detect(false, true, false))

	t.Setenv("TIDLOG_OUTPUT", "json")
	assert.Equal(t, FormatJSON, Detect(false, false, false))

	t.Setenv("TIDLOG_OUTPUT", "compact")
	assert.Equal(t, FormatCompact, Detect(false, false, false))

	t.Setenv("TIDLOG_OUTPUT", "")
	assert.Equal(t, FormatTable, Detect(false, false, false))
}

func TestTaskViewElapsedIncludesRunningInterval(t *testing.T) {
	start := time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)
	now := start.Add(90 * time.Second)

	task := engine.Task{
		ID:           "abc123",
		Title:        "write report",
		TimerRunning: true,
		StartTime:    &start,
		TimeSpent:    30 * time.Second,
		CreatedAt:    start,
	}

	v := NewTaskView(task, now)
	assert.Equal(t, int64(120_000), v.ElapsedMS)
	assert.Equal(t, "2:00", v.Elapsed)
	assert.True(t, v.TimerRunning)
}

func TestEntryViewOpenEntry(t *testing.T) {
	start := time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)
	now := start.Add(45 * time.Second)

	e := engine.LogEntry{ID: "e1", TaskID: "t1", Start: start}
	v := NewEntryView(e, now)

	assert.True(t, v.Open)
	assert.Nil(t, v.Stop)
	assert.Equal(t, int64(45_000), v.DurationMS)
}

func TestJSONErrorEnvelope(t *testing.T) {
	var buf bytes.Buffer
	JSONError(&buf, "TASK_NOT_FOUND", "no task matching \"zz\"", map[string]any{"ref": "zz"})

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "TASK_NOT_FOUND", resp.Code)
	assert.Equal(t, "zz", resp.Details["ref"])
}

func TestTaskTablePlainOutput(t *testing.T) {
	DisableColor()

	now := time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)
	tasks := []engine.Task{
		{ID: "aaaa1111bbbb", Title: "first task", TimeSpent: 65 * time.Second, CreatedAt: now},
		{ID: "cccc2222dddd", Title: "second task", Completed: true, CreatedAt: now},
	}

	var buf bytes.Buffer
	TaskTable(&buf, tasks, now)
	out := buf.String()

	assert.Contains(t, out, "aaaa1111")
	assert.Contains(t, out, "first task")
	assert.Contains(t, out, "1:05")
	assert.Contains(t, out, "done")
	assert.Equal(t, 3, strings.Count(out, "\n"), "header plus one line per task")
}
