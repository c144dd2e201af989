package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/tidlog/tidlog/internal/engine"
)

// JSON writes data as indented JSON to the given writer.
func JSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorResponse is the JSON envelope for structured error output.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// JSONError writes a structured error to the given writer as JSON.
func JSONError(w io.Writer, code, msg string, details map[string]any) {
	resp := ErrorResponse{Error: msg, Code: code, Details: details}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp) // best-effort; if writer fails, nothing we can do
}

// TaskView is the JSON projection of a task with derived display fields.
type TaskView struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Mode         string     `json:"mode"`
	TimerRunning bool       `json:"isTimerRunning"`
	Completed    bool       `json:"isCompleted"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	SortOrder    int        `json:"sortOrder"`
	ElapsedMS    int64      `json:"elapsedMs"`
	Elapsed      string     `json:"elapsed"`
}

// EntryView is the JSON projection of a time-log entry.
type EntryView struct {
	ID         string     `json:"id"`
	TaskID     string     `json:"taskId"`
	Start      time.Time  `json:"start"`
	Stop       *time.Time `json:"stop,omitempty"`
	Open       bool       `json:"open"`
	DurationMS int64      `json:"durationMs"`
	Duration   string     `json:"duration"`
}

// NewTaskView builds a TaskView, computing elapsed time against now.
func NewTaskView(t engine.Task, now time.Time) TaskView {
	elapsed := t.Elapsed(now)
	return TaskView{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Mode:         string(t.Mode),
		TimerRunning: t.TimerRunning,
		Completed:    t.Completed,
		CompletedAt:  t.CompletedAt,
		CreatedAt:    t.CreatedAt,
		SortOrder:    t.SortOrder,
		ElapsedMS:    elapsed.Milliseconds(),
		Elapsed:      formatElapsed(elapsed),
	}
}

// NewTaskViews maps a task slice to views.
func NewTaskViews(tasks []engine.Task, now time.Time) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, NewTaskView(t, now))
	}
	return views
}

// NewEntryView builds an EntryView, computing duration against now for an
// open entry.
func NewEntryView(e engine.LogEntry, now time.Time) EntryView {
	d := e.Duration(now)
	return EntryView{
		ID:         e.ID,
		TaskID:     e.TaskID,
		Start:      e.Start,
		Stop:       e.Stop,
		Open:       e.Open(),
		DurationMS: d.Milliseconds(),
		Duration:   formatElapsed(d),
	}
}

// NewEntryViews maps an entry slice to views.
func NewEntryViews(entries []engine.LogEntry, now time.Time) []EntryView {
	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, NewEntryView(e, now))
	}
	return views
}
