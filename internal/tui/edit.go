package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tidlog/tidlog/internal/engine"
)

// editState holds the text inputs for the add and edit screens.
type editState struct {
	taskID    string // empty while adding
	title     textinput.Model
	desc      textinput.Model
	focusDesc bool
}

const inputWidth = 60

func newInput(placeholder, value string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 0
	in.Width = inputWidth
	in.SetValue(value)
	return in
}

func (m *Model) startAdd() {
	m.edit = editState{title: newInput("Task title", "")}
	m.edit.title.Focus()
	m.view = viewAdd
}

func (m *Model) startQuickEdit() {
	t, ok := m.selectedTask()
	if !ok || t.Completed {
		return
	}
	// Opening the editor claims the task; any other open editor is closed.
	mode := engine.ModeQuickEdit
	m.apply(engine.SaveTask{ID: t.ID, Mode: &mode}, t.ID, "")

	m.edit = editState{taskID: t.ID, title: newInput("Task title", t.Title)}
	m.edit.title.Focus()
	m.view = viewQuickEdit
}

func (m *Model) startFullEdit() {
	t, ok := m.selectedTask()
	if !ok || t.Completed {
		return
	}
	mode := engine.ModeFullEdit
	m.apply(engine.SaveTask{ID: t.ID, Mode: &mode}, t.ID, "")

	m.edit = editState{
		taskID: t.ID,
		title:  newInput("Task title", t.Title),
		desc:   newInput("Description", t.Description),
	}
	m.edit.title.Focus()
	m.view = viewFullEdit
}

func (m *Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		m.cancelEdit()
		return m, nil
	case "enter":
		m.commitEdit()
		return m, nil
	case "tab", "shift+tab":
		if m.view == viewFullEdit {
			m.edit.focusDesc = !m.edit.focusDesc
			if m.edit.focusDesc {
				m.edit.title.Blur()
				m.edit.desc.Focus()
			} else {
				m.edit.desc.Blur()
				m.edit.title.Focus()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.edit.focusDesc {
		m.edit.desc, cmd = m.edit.desc.Update(msg)
	} else {
		m.edit.title, cmd = m.edit.title.Update(msg)
	}
	return m, cmd
}

func (m *Model) cancelEdit() {
	if m.edit.taskID != "" {
		mode := engine.ModeList
		m.apply(engine.SaveTask{ID: m.edit.taskID, Mode: &mode}, m.edit.taskID, "")
	}
	m.view = viewList
}

func (m *Model) commitEdit() {
	title := m.edit.title.Value()

	if m.edit.taskID == "" {
		m.apply(engine.AddTask{Title: title}, "", title)
		m.view = viewList
		return
	}

	mode := engine.ModeList
	cmd := engine.SaveTask{ID: m.edit.taskID, Title: &title, Mode: &mode}
	if m.view == viewFullEdit {
		desc := m.edit.desc.Value()
		cmd.Description = &desc
	}
	m.apply(cmd, m.edit.taskID, title)
	m.view = viewList
}

func (m *Model) viewEdit() string {
	var heading string
	switch m.view {
	case viewAdd:
		heading = "New task"
	case viewQuickEdit:
		heading = "Edit title"
	default:
		heading = "Edit task"
	}

	content := lipgloss.NewStyle().Bold(true).Render(heading) + "\n\n" +
		m.edit.title.View()
	if m.view == viewFullEdit {
		content += "\n\n" + m.edit.desc.View()
	}
	content += "\n\n" + dimStyle.Render("enter:save  esc:cancel")
	if m.view == viewFullEdit {
		content += dimStyle.Render("  tab:switch field")
	}

	return dialogStyle.Render(content)
}
