package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)

// addTask dispatches AddTask and returns the new state plus the created
// task's id.
func addTestTask(t *testing.T, s State, title string, now time.Time) (State, string) {
	t.Helper()
	out, changed := Dispatch(s, AddTask{Title: title}, now)
	require.True(t, changed)
	for id := range out.Tasks {
		if _, existed := s.Tasks[id]; !existed {
			return out, id
		}
	}
	t.Fatal("no new task found after AddTask")
	return out, ""
}

func TestAddTask(t *testing.T) {
	s, id := addTestTask(t, NewState(), "  Buy milk  ", base)

	task := s.Tasks[id]
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, ModeList, task.Mode)
	assert.False(t, task.Completed)
	assert.False(t, task.TimerRunning)
	assert.Zero(t, task.TimeSpent)
	assert.Equal(t, 0, task.SortOrder)
	assert.True(t, base.Equal(task.CreatedAt))
	assert.NoError(t, s.Check())
}

func TestAddTaskEmptyTitleRejected(t *testing.T) {
	s := NewState()

	out, changed := Dispatch(s, AddTask{Title: "   "}, base)
	assert.False(t, changed)
	assert.Empty(t, out.Tasks)
}

func TestAddTaskStacksOnTop(t *testing.T) {
	s, a := addTestTask(t, NewState(), "A", base)
	s, b := addTestTask(t, s, "B", base.Add(time.Minute))

	// Newest first: B gets a lower sort order than A.
	assert.Less(t, s.Tasks[b].SortOrder, s.Tasks[a].SortOrder)

	active := Active(s)
	require.Len(t, active, 2)
	assert.Equal(t, b, active[0].ID)
	assert.Equal(t, a, active[1].ID)
}

func TestDeleteTaskIdempotent(t *testing.T) {
	s, id := addTestTask(t, NewState(), "doomed", base)

	afterFirst, changed := Dispatch(s, DeleteTask{ID: id}, base)
	assert.True(t, changed)
	assert.Empty(t, afterFirst.Tasks)

	afterSecond, changed := Dispatch(afterFirst, DeleteTask{ID: id}, base)
	assert.False(t, changed)
	assert.Equal(t, afterFirst, afterSecond)
}

func TestDeleteTaskCascadesHistory(t *testing.T) {
	s, id := addTestTask(t, NewState(), "tracked", base)
	s, _ = Dispatch(s, ToggleTimer{ID: id}, base)
	s, _ = Dispatch(s, ToggleTimer{ID: id}, base.Add(time.Minute))
	s, _ = Dispatch(s, ToggleTimer{ID: id}, base.Add(2*time.Minute))
	require.Len(t, s.Log, 2)
	require.NotEmpty(t, s.RunningEntryID)

	s, changed := Dispatch(s, DeleteTask{ID: id}, base.Add(3*time.Minute))
	assert.True(t, changed)
	assert.Empty(t, s.Log)
	assert.Empty(t, s.RunningEntryID)
	assert.NoError(t, s.Check())
}

func TestDeleteOpenTaskClearsPointer(t *testing.T) {
	s, id := addTestTask(t, NewState(), "open", base)
	mode := ModeFullEdit
	s, _ = Dispatch(s, SaveTask{ID: id, Mode: &mode}, base)
	require.Equal(t, id, s.OpenTaskID)

	s, _ = Dispatch(s, DeleteTask{ID: id}, base)
	assert.Empty(t, s.OpenTaskID)
	assert.NoError(t, s.Check())
}

func TestSaveTaskTitleAndDescription(t *testing.T) {
	s, id := addTestTask(t, NewState(), "old title", base)

	title := "  new title  "
	desc := "some notes"
	s, changed := Dispatch(s, SaveTask{ID: id, Title: &title, Description: &desc}, base)
	assert.True(t, changed)
	assert.Equal(t, "new title", s.Tasks[id].Title)
	assert.Equal(t, "some notes", s.Tasks[id].Description)
}

func TestSaveTaskEmptyTitleRetained(t *testing.T) {
	s, id := addTestTask(t, NewState(), "keep me", base)

	empty := "   "
	out, changed := Dispatch(s, SaveTask{ID: id, Title: &empty}, base)
	assert.False(t, changed)
	assert.Equal(t, "keep me", out.Tasks[id].Title)
}

func TestSaveTaskUnknownIDNoop(t *testing.T) {
	s := NewState()
	title := "ghost"

	out, changed := Dispatch(s, SaveTask{ID: "nope", Title: &title}, base)
	assert.False(t, changed)
	assert.Empty(t, out.Tasks)
}

func TestSaveTaskOpensAndClosesMode(t *testing.T) {
	s, id := addTestTask(t, NewState(), "editable", base)

	mode := ModeQuickEdit
	s, changed := Dispatch(s, SaveTask{ID: id, Mode: &mode}, base)
	assert.True(t, changed)
	assert.Equal(t, ModeQuickEdit, s.Tasks[id].Mode)
	assert.Equal(t, id, s.OpenTaskID)
	assert.NoError(t, s.Check())

	listMode := ModeList
	s, changed = Dispatch(s, SaveTask{ID: id, Mode: &listMode}, base)
	assert.True(t, changed)
	assert.Equal(t, ModeList, s.Tasks[id].Mode)
	assert.Empty(t, s.OpenTaskID)
	assert.NoError(t, s.Check())
}

func TestSaveTaskSecondOpenForcesFirstClosed(t *testing.T) {
	s, first := addTestTask(t, NewState(), "first", base)
	s, second := addTestTask(t, s, "second", base)

	mode := ModeFullEdit
	s, _ = Dispatch(s, SaveTask{ID: first, Mode: &mode}, base)
	s, _ = Dispatch(s, SaveTask{ID: second, Mode: &mode}, base)

	assert.Equal(t, ModeList, s.Tasks[first].Mode)
	assert.Equal(t, ModeFullEdit, s.Tasks[second].Mode)
	assert.Equal(t, second, s.OpenTaskID)
	assert.NoError(t, s.Check())
}

func TestSaveTaskCompletedRejectsEditModes(t *testing.T) {
	s, id := addTestTask(t, NewState(), "done soon", base)
	s, _ = Dispatch(s, CompleteTask{ID: id}, base)

	for _, mode := range []Mode{ModeQuickEdit, ModeFullEdit} {
		m := mode
		out, changed := Dispatch(s, SaveTask{ID: id, Mode: &m}, base)
		assert.False(t, changed, "mode %s should be rejected", mode)
		assert.Equal(t, ModeList, out.Tasks[id].Mode)
	}

	// The time log stays reachable for completed tasks.
	logMode := ModeTimeLog
	out, changed := Dispatch(s, SaveTask{ID: id, Mode: &logMode}, base)
	assert.True(t, changed)
	assert.Equal(t, ModeTimeLog, out.Tasks[id].Mode)
	assert.NoError(t, out.Check())
}

func TestTimerRoundTrip(t *testing.T) {
	s, id := addTestTask(t, NewState(), "Buy milk", base)

	s, changed := Dispatch(s, ToggleTimer{ID: id}, base)
	require.True(t, changed)
	task := s.Tasks[id]
	assert.True(t, task.TimerRunning)
	require.NotNil(t, task.StartTime)
	assert.True(t, base.Equal(*task.StartTime))
	require.Len(t, s.Log, 1)
	require.NotEmpty(t, s.RunningEntryID)
	assert.True(t, s.Log[s.RunningEntryID].Open())
	assert.NoError(t, s.Check())

	stop := base.Add(5 * time.Second)
	s, changed = Dispatch(s, ToggleTimer{ID: id}, stop)
	require.True(t, changed)
	task = s.Tasks[id]
	assert.False(t, task.TimerRunning)
	assert.Nil(t, task.StartTime)
	assert.Equal(t, 5*time.Second, task.TimeSpent)
	assert.Empty(t, s.RunningEntryID)

	entries := EntriesFor(s, id)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Stop)
	assert.Equal(t, 5*time.Second, entries[0].Stop.Sub(entries[0].Start))
	assert.NoError(t, s.Check())
}

func TestTimerSwitchStopsOther(t *testing.T) {
	s, first := addTestTask(t, NewState(), "first", base)
	s, second := addTestTask(t, s, "second", base)

	s, _ = Dispatch(s, ToggleTimer{ID: first}, base)
	s, _ = Dispatch(s, ToggleTimer{ID: second}, base.Add(10*time.Second))

	assert.False(t, s.Tasks[first].TimerRunning)
	assert.Equal(t, 10*time.Second, s.Tasks[first].TimeSpent)
	assert.True(t, s.Tasks[second].TimerRunning)

	running, ok := RunningTask(s)
	require.True(t, ok)
	assert.Equal(t, second, running.ID)

	// Exactly one closed entry for first, one open for second.
	firstEntries := EntriesFor(s, first)
	require.Len(t, firstEntries, 1)
	assert.NotNil(t, firstEntries[0].Stop)
	secondEntries := EntriesFor(s, second)
	require.Len(t, secondEntries, 1)
	assert.True(t, secondEntries[0].Open())
	assert.NoError(t, s.Check())
}

func TestCompleteStopsRunningTimer(t *testing.T) {
	s, id := addTestTask(t, NewState(), "finish me", base)
	s, _ = Dispatch(s, ToggleTimer{ID: id}, base)

	done := base.Add(7 * time.Second)
	s, changed := Dispatch(s, CompleteTask{ID: id}, done)
	require.True(t, changed)

	task := s.Tasks[id]
	assert.True(t, task.Completed)
	require.NotNil(t, task.CompletedAt)
	assert.True(t, done.Equal(*task.CompletedAt))
	assert.False(t, task.TimerRunning)
	assert.Equal(t, 7*time.Second, task.TimeSpent)
	assert.Equal(t, ModeList, task.Mode)
	assert.Empty(t, s.RunningEntryID)

	entries := EntriesFor(s, id)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Stop)
	assert.True(t, done.Equal(*entries[0].Stop))
	assert.NoError(t, s.Check())
}

func TestCompleteClosesOpenEdit(t *testing.T) {
	s, id := addTestTask(t, NewState(), "editing", base)
	mode := ModeQuickEdit
	s, _ = Dispatch(s, SaveTask{ID: id, Mode: &mode}, base)

	s, _ = Dispatch(s, CompleteTask{ID: id}, base)
	assert.Equal(t, ModeList, s.Tasks[id].Mode)
	assert.Empty(t, s.OpenTaskID)
	assert.NoError(t, s.Check())
}

func TestReactivateReinsertsAtTop(t *testing.T) {
	s, a := addTestTask(t, NewState(), "A", base)
	s, b := addTestTask(t, s, "B", base)
	s, _ = Dispatch(s, CompleteTask{ID: a}, base)

	s, changed := Dispatch(s, CompleteTask{ID: a}, base.Add(time.Minute))
	require.True(t, changed)

	task := s.Tasks[a]
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedAt)

	active := Active(s)
	require.Len(t, active, 2)
	assert.Equal(t, a, active[0].ID)
	assert.Equal(t, b, active[1].ID)
}

func TestUpdateLogEntryRejectsInvertedRange(t *testing.T) {
	s, id := addTestTask(t, NewState(), "tracked", base)
	s, _ = Dispatch(s, ToggleTimer{ID: id}, base)
	s, _ = Dispatch(s, ToggleTimer{ID: id}, base.Add(time.Minute))

	entry := EntriesFor(s, id)[0]
	badStart := entry.Stop.Add(time.Hour)

	out, changed := Dispatch(s, UpdateLogEntry{EntryID: entry.ID, Start: &badStart}, base)
	assert.False(t, changed)
	assert.Equal(t, s.Log, out.Log)
}

func TestUpdateLogEntryAllowsZeroLength(t *testing.T) {
	s, id := addTestTask(t, NewState(), "tracked", base)
	s, _ = Dispatch(s, ToggleTimer{ID: id}, base)
	s, _ = Dispatch(s, ToggleTimer{ID: id}, base.Add(time.Minute))

	entry := EntriesFor(s, id)[0]
	stop := entry.Start

	s, changed := Dispatch(s, UpdateLogEntry{EntryID: entry.ID, Stop: &stop}, base)
	require.True(t, changed)

	updated := EntriesFor(s, id)[0]
	require.NotNil(t, updated.Stop)
	assert.True(t, updated.Stop.Equal(updated.Start))
	assert.Equal(t, time.Duration(0), s.Tasks[id].TimeSpent)
	assert.NoError(t, s.Check())
}

func TestUpdateLogEntryReprojectsTimeSpent(t *testing.T) {
	s, id := addTestTask(t, NewState(), "tracked", base)
	s, _ = Dispatch(s, ToggleTimer{ID: id}, base)
	s, _ = Dispatch(s, ToggleTimer{ID: id}, base.Add(time.Minute))
	require.Equal(t, time.Minute, s.Tasks[id].TimeSpent)

	entry := EntriesFor(s, id)[0]
	earlier := entry.Start.Add(-30 * time.Second)

	s, changed := Dispatch(s, UpdateLogEntry{EntryID: entry.ID, Start: &earlier}, base)
	require.True(t, changed)
	assert.Equal(t, 90*time.Second, s.Tasks[id].TimeSpent)
	assert.Equal(t, s.Tasks[id].TimeSpent, LoggedTime(s, id, base))
	assert.NoError(t, s.Check())
}

func TestUpdateLogEntryOpenEntryStopRefused(t *testing.T) {
	s, id := addTestTask(t, NewState(), "running", base)
	s, _ = Dispatch(s, ToggleTimer{ID: id}, base)

	entry := s.Log[s.RunningEntryID]
	stop := base.Add(time.Minute)

	out, changed := Dispatch(s, UpdateLogEntry{EntryID: entry.ID, Stop: &stop}, base)
	assert.False(t, changed)
	assert.True(t, out.Log[entry.ID].Open())
	assert.True(t, out.Tasks[id].TimerRunning)
}

func TestUpdateLogEntryOpenEntryStartMovesTaskStart(t *testing.T) {
	s, id := addTestTask(t, NewState(), "running", base)
	s, _ = Dispatch(s, ToggleTimer{ID: id}, base)

	entry := s.Log[s.RunningEntryID]
	earlier := base.Add(-2 * time.Minute)

	s, changed := Dispatch(s, UpdateLogEntry{EntryID: entry.ID, Start: &earlier}, base)
	require.True(t, changed)
	require.NotNil(t, s.Tasks[id].StartTime)
	assert.True(t, earlier.Equal(*s.Tasks[id].StartTime))
	assert.NoError(t, s.Check())
}

func TestDeleteLogEntry(t *testing.T) {
	s, id := addTestTask(t, NewState(), "tracked", base)
	s, _ = Dispatch(s, ToggleTimer{ID: id}, base)
	s, _ = Dispatch(s, ToggleTimer{ID: id}, base.Add(time.Minute))

	entry := EntriesFor(s, id)[0]
	s, changed := Dispatch(s, DeleteLogEntry{EntryID: entry.ID}, base)
	require.True(t, changed)
	assert.Empty(t, s.Log)
	assert.Zero(t, s.Tasks[id].TimeSpent)
	assert.NoError(t, s.Check())
}

func TestDeleteLogEntryRefusesOpenEntry(t *testing.T) {
	s, id := addTestTask(t, NewState(), "running", base)
	s, _ = Dispatch(s, ToggleTimer{ID: id}, base)

	out, changed := Dispatch(s, DeleteLogEntry{EntryID: s.RunningEntryID}, base)
	assert.False(t, changed)
	assert.Len(t, out.Log, 1)
}

func TestSortTasksSelfNoop(t *testing.T) {
	s, a := addTestTask(t, NewState(), "A", base)

	out, changed := Dispatch(s, SortTasks{DraggedID: a, TargetID: a}, base)
	assert.False(t, changed)
	assert.Equal(t, s, out)
}

func TestSortTasksMoveAndRestore(t *testing.T) {
	s, a := addTestTask(t, NewState(), "A", base)
	s, b := addTestTask(t, s, "B", base)
	s, c := addTestTask(t, s, "C", base)

	// Active order is newest-first: C, B, A.
	order := func(s State) []string {
		var ids []string
		for _, t := range Active(s) {
			ids = append(ids, t.ID)
		}
		return ids
	}
	require.Equal(t, []string{c, b, a}, order(s))

	s, changed := Dispatch(s, SortTasks{DraggedID: a, TargetID: c}, base)
	require.True(t, changed)
	assert.Equal(t, []string{a, c, b}, order(s))

	// Contiguous reassignment.
	active := Active(s)
	for i, task := range active {
		assert.Equal(t, i, task.SortOrder)
	}

	s, _ = Dispatch(s, SortTasks{DraggedID: a, TargetID: b}, base)
	assert.Equal(t, []string{c, b, a}, order(s))
}

func TestSortTasksIgnoresCompleted(t *testing.T) {
	s, a := addTestTask(t, NewState(), "A", base)
	s, b := addTestTask(t, s, "B", base)
	s, done := addTestTask(t, s, "done", base)
	s, _ = Dispatch(s, CompleteTask{ID: done}, base)

	completedBefore := s.Tasks[done].SortOrder
	s, _ = Dispatch(s, SortTasks{DraggedID: a, TargetID: b}, base)
	assert.Equal(t, completedBefore, s.Tasks[done].SortOrder)

	out, changed := Dispatch(s, SortTasks{DraggedID: a, TargetID: done}, base)
	assert.False(t, changed, "target outside the active set is a no-op")
	assert.Equal(t, s, out)
}

func TestDispatchNeverMutatesInput(t *testing.T) {
	s, id := addTestTask(t, NewState(), "frozen", base)
	snapshot := s.clone()

	mode := ModeFullEdit
	title := "changed"
	cmds := []Command{
		AddTask{Title: "another"},
		SaveTask{ID: id, Title: &title, Mode: &mode},
		ToggleTimer{ID: id},
		CompleteTask{ID: id},
		DeleteTask{ID: id},
	}
	for _, cmd := range cmds {
		_, _ = Dispatch(s, cmd, base.Add(time.Minute))
		assert.Equal(t, snapshot, s, "input state mutated by %T", cmd)
	}
}

func TestInvariantsHoldAcrossCommandSequence(t *testing.T) {
	s := NewState()
	now := base

	step := func(cmd Command) {
		t.Helper()
		now = now.Add(13 * time.Second)
		s, _ = Dispatch(s, cmd, now)
		require.NoError(t, s.Check(), "after %T", cmd)
	}

	var a, b string
	s, a = addTestTask(t, s, "alpha", now)
	s, b = addTestTask(t, s, "beta", now)

	mode := ModeQuickEdit
	logMode := ModeTimeLog
	step(ToggleTimer{ID: a})
	step(SaveTask{ID: b, Mode: &mode})
	step(ToggleTimer{ID: b})
	step(SaveTask{ID: a, Mode: &logMode})
	step(CompleteTask{ID: b})
	step(ToggleTimer{ID: a})
	step(CompleteTask{ID: a})
	step(CompleteTask{ID: b})
	step(SortTasks{DraggedID: a, TargetID: b})
	step(DeleteTask{ID: a})
	step(DeleteTask{ID: b})

	assert.Empty(t, s.Tasks)
}
