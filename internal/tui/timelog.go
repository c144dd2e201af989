package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tidlog/tidlog/internal/engine"
	"github.com/tidlog/tidlog/internal/timeutil"
)

// timeLogState holds the state of the per-task time-log screen.
type timeLogState struct {
	taskID  string
	cursor  int
	entryID string // entry being edited or deleted

	start textinput.Model
	stop  textinput.Model
	focus int // 0 start, 1 stop
}

func (m *Model) startTimeLog() {
	t, ok := m.selectedTask()
	if !ok {
		return
	}
	mode := engine.ModeTimeLog
	m.apply(engine.SaveTask{ID: t.ID, Mode: &mode}, t.ID, "")

	m.timeLog = timeLogState{taskID: t.ID}
	m.view = viewTimeLog
}

func (m *Model) closeTimeLog() {
	mode := engine.ModeList
	m.apply(engine.SaveTask{ID: m.timeLog.taskID, Mode: &mode}, m.timeLog.taskID, "")
	m.view = viewList
}

func (m *Model) entries() []engine.LogEntry {
	return engine.EntriesFor(m.state, m.timeLog.taskID)
}

func (m *Model) handleTimeLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.entries()

	switch msg.String() {
	case "q", keyEsc:
		m.closeTimeLog()
	case "j", "down":
		if m.timeLog.cursor < len(entries)-1 {
			m.timeLog.cursor++
		}
	case "k", "up":
		if m.timeLog.cursor > 0 {
			m.timeLog.cursor--
		}
	case "e", "enter":
		m.startEntryEdit(entries)
	case "d":
		m.startEntryDelete(entries)
	}
	return m, nil
}

func (m *Model) startEntryEdit(entries []engine.LogEntry) {
	if m.timeLog.cursor >= len(entries) {
		return
	}
	e := entries[m.timeLog.cursor]
	m.timeLog.entryID = e.ID

	stop := ""
	if e.Stop != nil {
		stop = timeutil.FormatStamp(*e.Stop)
	}
	m.timeLog.start = newInput("Start (YYYY-MM-DD HH:MM:SS)", timeutil.FormatStamp(e.Start))
	m.timeLog.stop = newInput("Stop (YYYY-MM-DD HH:MM:SS)", stop)
	m.timeLog.focus = 0
	m.timeLog.start.Focus()
	m.view = viewEditEntry
}

func (m *Model) startEntryDelete(entries []engine.LogEntry) {
	if m.timeLog.cursor >= len(entries) {
		return
	}
	e := entries[m.timeLog.cursor]
	if e.Open() {
		m.err = fmt.Errorf("cannot delete the running entry; stop the timer first")
		return
	}
	m.timeLog.entryID = e.ID
	m.view = viewConfirmDeleteEntry
}

func (m *Model) handleEntryEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		m.view = viewTimeLog
		return m, nil
	case "enter":
		m.commitEntryEdit()
		return m, nil
	case "tab", "shift+tab":
		m.timeLog.focus = 1 - m.timeLog.focus
		if m.timeLog.focus == 0 {
			m.timeLog.stop.Blur()
			m.timeLog.start.Focus()
		} else {
			m.timeLog.start.Blur()
			m.timeLog.stop.Focus()
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.timeLog.focus == 0 {
		m.timeLog.start, cmd = m.timeLog.start.Update(msg)
	} else {
		m.timeLog.stop, cmd = m.timeLog.stop.Update(msg)
	}
	return m, cmd
}

func (m *Model) commitEntryEdit() {
	entry, ok := m.state.Log[m.timeLog.entryID]
	if !ok {
		m.view = viewTimeLog
		return
	}

	cmd := engine.UpdateLogEntry{EntryID: m.timeLog.entryID}

	start, err := timeutil.ParseStamp(m.timeLog.start.Value())
	if err != nil {
		m.err = fmt.Errorf("invalid start time: %w", err)
		return
	}
	cmd.Start = &start

	stopStr := strings.TrimSpace(m.timeLog.stop.Value())
	if stopStr != "" {
		if entry.Open() {
			m.err = fmt.Errorf("the running entry has no stop time; stop the timer first")
			return
		}
		stop, err := timeutil.ParseStamp(stopStr)
		if err != nil {
			m.err = fmt.Errorf("invalid stop time: %w", err)
			return
		}
		if stop.Before(start) {
			m.err = fmt.Errorf("stop time must not be before start time")
			return
		}
		cmd.Stop = &stop
	}

	m.apply(cmd, entry.TaskID, "")
	m.view = viewTimeLog
}

func (m *Model) handleEntryDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.apply(engine.DeleteLogEntry{EntryID: m.timeLog.entryID}, m.timeLog.taskID, "")
		m.view = viewTimeLog
		m.clampEntryCursor()
	case "n", "N", keyEsc, "q":
		m.view = viewTimeLog
	}
	return m, nil
}

func (m *Model) clampEntryCursor() {
	if n := len(m.entries()); m.timeLog.cursor >= n && n > 0 {
		m.timeLog.cursor = n - 1
	}
	if m.timeLog.cursor < 0 {
		m.timeLog.cursor = 0
	}
}

// --- View rendering ---

func (m *Model) viewTimeLog() string {
	now := m.now()
	t, ok := m.state.Tasks[m.timeLog.taskID]
	if !ok {
		return "Task not found."
	}

	heading := fmt.Sprintf("Time log: %s", truncate(t.Title, m.width-12)) //nolint:mnd // heading prefix width
	lines := []string{titleBarStyle.Width(m.width).Render(heading)}

	entries := m.entries()
	if len(entries) == 0 {
		lines = append(lines, dimStyle.Render("  No entries yet. Start the timer with space."))
	}

	for i, e := range entries {
		stop := dimStyle.Render("running")
		if e.Stop != nil {
			stop = timeutil.FormatStamp(*e.Stop)
		}
		row := fmt.Sprintf("%s .. %s  %s",
			timeutil.FormatStamp(e.Start), stop,
			timeStyle.Render(timeutil.FormatDuration(e.Duration(now))))
		if i == m.timeLog.cursor {
			row = selectedStyle.Render("▌") + " " + row
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}

	lines = append(lines, "",
		sectionStyle.Render("Total: "+timeutil.FormatDuration(engine.TotalTime(m.state, t.ID, now))))

	body := strings.Join(lines, "\n")

	switch m.view {
	case viewEditEntry:
		return lipgloss.JoinVertical(lipgloss.Left, body, "", m.viewEntryEdit())
	case viewConfirmDeleteEntry:
		return lipgloss.JoinVertical(lipgloss.Left, body, "", m.viewEntryDeleteConfirm())
	}

	footer := statusBarStyle.Render(" e:edit d:delete esc:back")
	if m.err != nil {
		footer = errorStyle.Render(truncate("Error: "+m.err.Error(), m.width)) + "\n" + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, "", footer)
}

func (m *Model) viewEntryEdit() string {
	content := lipgloss.NewStyle().Bold(true).Render("Edit entry") + "\n\n" +
		"Start: " + m.timeLog.start.View() + "\n" +
		"Stop:  " + m.timeLog.stop.View() + "\n\n" +
		dimStyle.Render("enter:save  esc:cancel  tab:switch field")
	if m.err != nil {
		content += "\n" + errorStyle.Render(m.err.Error())
	}
	return dialogStyle.Render(content)
}

func (m *Model) viewEntryDeleteConfirm() string {
	content := errorStyle.Render("Delete entry?") + "\n\n" +
		dimStyle.Render("y:yes  n:no")
	return dialogStyle.Render(content)
}
