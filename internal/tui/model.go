// Package tui implements the interactive terminal UI for tidlog lists.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tidlog/tidlog/internal/config"
	"github.com/tidlog/tidlog/internal/engine"
	"github.com/tidlog/tidlog/internal/store"
	"github.com/tidlog/tidlog/internal/timeutil"
)

// view represents the current screen state.
type view int

const (
	viewList view = iota
	viewConfirmDelete
	viewAdd
	viewQuickEdit
	viewFullEdit
	viewTimeLog
	viewEditEntry
	viewConfirmDeleteEntry
)

// Key and layout constants.
const (
	keyEsc = "esc"

	listChrome  = 2 // blank line + status bar below the task area
	errorChrome = 1 // extra line when error toast is displayed
)

// Model is the top-level bubbletea model.
type Model struct {
	cfg   *config.Config
	state engine.State

	active    []engine.Task
	completed []engine.Task

	view          view
	cursor        int
	scrollOff     int
	showCompleted bool
	width         int
	height        int
	err           error
	now           func() time.Time // clock for duration display; defaults to time.Now

	// Delete confirmation.
	deleteID    string
	deleteTitle string

	// Text editing (add, quick edit, full edit).
	edit editState

	// Time-log screen.
	timeLog timeLogState
}

// New creates a Model from a config, loading the current snapshot.
func New(cfg *config.Config) *Model {
	m := &Model{cfg: cfg, now: time.Now, showCompleted: cfg.ShowCompleted()}
	m.reload()
	return m
}

// SetNow overrides the clock function used for duration display (for testing).
func (m *Model) SetNow(fn func() time.Time) {
	m.now = fn
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tickCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case ReloadMsg:
		m.reload()
		return m, nil
	case TickMsg:
		return m, m.tickCmd()
	case errMsg:
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.view {
	case viewConfirmDelete:
		return m.viewDeleteConfirm()
	case viewAdd, viewQuickEdit, viewFullEdit:
		return m.viewEdit()
	case viewTimeLog, viewEditEntry, viewConfirmDeleteEntry:
		return m.viewTimeLog()
	default:
		return m.viewList()
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys.
	if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c"))) {
		return m, tea.Quit
	}

	switch m.view {
	case viewList:
		return m.handleListKey(msg)
	case viewConfirmDelete:
		return m.handleDeleteKey(msg)
	case viewAdd, viewQuickEdit, viewFullEdit:
		return m.handleEditKey(msg)
	case viewTimeLog:
		return m.handleTimeLogKey(msg)
	case viewEditEntry:
		return m.handleEntryEditKey(msg)
	case viewConfirmDeleteEntry:
		return m.handleEntryDeleteKey(msg)
	}

	return m, nil
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", keyEsc:
		return m, tea.Quit
	case "j", "down":
		if m.cursor < m.rowCount()-1 {
			m.cursor++
			m.ensureVisible()
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			m.ensureVisible()
		}
	case "J", "shift+down":
		m.moveSelected(1)
	case "K", "shift+up":
		m.moveSelected(-1)
	case " ", "s":
		if t, ok := m.selectedTask(); ok {
			m.apply(engine.ToggleTimer{ID: t.ID}, t.ID, t.Title)
		}
	case "c", "enter":
		if t, ok := m.selectedTask(); ok {
			m.apply(engine.CompleteTask{ID: t.ID}, t.ID, t.Title)
		}
	case "d":
		m.handleDeleteStart()
	case "a":
		m.startAdd()
	case "i":
		m.startQuickEdit()
	case "e":
		m.startFullEdit()
	case "t":
		m.startTimeLog()
	case "v":
		m.showCompleted = !m.showCompleted
		m.clampCursor()
	}
	return m, nil
}

func (m *Model) handleDeleteStart() {
	if t, ok := m.selectedTask(); ok {
		m.deleteID = t.ID
		m.deleteTitle = t.Title
		m.view = viewConfirmDelete
	}
}

func (m *Model) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.apply(engine.DeleteTask{ID: m.deleteID}, m.deleteID, m.deleteTitle)
		m.view = viewList
	case "n", "N", keyEsc, "q":
		m.view = viewList
	}
	return m, nil
}

// moveSelected reorders the selected active task by one position up or down.
// Completed tasks have no ordering and are ignored.
func (m *Model) moveSelected(delta int) {
	t, ok := m.selectedTask()
	if !ok || t.Completed {
		return
	}
	idx := -1
	for i, a := range m.active {
		if a.ID == t.ID {
			idx = i
			break
		}
	}
	target := idx + delta
	if idx < 0 || target < 0 || target >= len(m.active) {
		return
	}
	m.apply(engine.SortTasks{DraggedID: t.ID, TargetID: m.active[target].ID}, t.ID, "")
	m.cursor += delta
	m.ensureVisible()
}

// apply dispatches a command, commits the result, and persists it. The
// in-memory state stays authoritative for the session: a failed save is
// surfaced as an error toast but never rolls the change back.
func (m *Model) apply(cmd engine.Command, taskID, detail string) {
	next, changed := engine.Dispatch(m.state, cmd, m.now())
	if !changed {
		return
	}
	m.state = next
	m.err = nil
	m.rebuild()

	if err := store.Save(m.cfg.SnapshotPath(), next); err != nil {
		m.err = fmt.Errorf("saving state: %w", err)
		return
	}
	store.LogMutation(m.cfg.Dir(), cmd.Name(), taskID, detail)
}

// reload re-reads the snapshot from disk, keeping the cursor in range.
func (m *Model) reload() {
	st, err := store.Load(m.cfg.SnapshotPath())
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.state = st
	m.rebuild()
}

func (m *Model) rebuild() {
	m.active = engine.Active(m.state)
	m.completed = engine.Completed(m.state)
	m.clampCursor()
}

// rowCount returns the number of selectable rows in the list view.
func (m *Model) rowCount() int {
	n := len(m.active)
	if m.showCompleted {
		n += len(m.completed)
	}
	return n
}

// selectedTask resolves the cursor to a task, active rows first.
func (m *Model) selectedTask() (engine.Task, bool) {
	if m.cursor < len(m.active) {
		return m.active[m.cursor], true
	}
	i := m.cursor - len(m.active)
	if m.showCompleted && i < len(m.completed) {
		return m.completed[i], true
	}
	return engine.Task{}, false
}

func (m *Model) clampCursor() {
	if n := m.rowCount(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureVisible()
}

// chromeHeight returns the lines consumed by non-row elements below the task
// area: blank line + status bar (+ error line when an error is shown).
func (m *Model) chromeHeight() int {
	h := listChrome + 1 // header line
	if m.err != nil {
		h += errorChrome
	}
	return h
}

// sectionChrome is the number of non-selectable rows (separating blank
// plus section header) rendered before the completed tasks.
const sectionChrome = 2

func (m *Model) visibleRows() int {
	n := m.height - m.chromeHeight()
	if n < 1 {
		return 1
	}
	return n
}

// displayRow maps the cursor to its index among the rendered rows, which
// run sectionChrome past the task index once the completed section is shown.
func (m *Model) displayRow() int {
	if m.showCompleted && len(m.completed) > 0 && m.cursor >= len(m.active) {
		return m.cursor + sectionChrome
	}
	return m.cursor
}

// ensureVisible adjusts the scroll offset so the cursor stays on screen.
// Offsets are in display rows so the completed section's header rows count
// against the window.
func (m *Model) ensureVisible() {
	row := m.displayRow()
	maxVis := m.visibleRows()
	switch {
	case row >= m.scrollOff+maxVis:
		m.scrollOff = row - maxVis + 1
	case row < m.scrollOff:
		m.scrollOff = row
	}
}

// --- Messages ---

// ReloadMsg is sent by the file watcher to trigger a state refresh.
type ReloadMsg struct{}

type errMsg struct{ err error }

// TickMsg is sent periodically to refresh running-timer displays.
type TickMsg struct{}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.cfg.TickIntervalDuration(), func(time.Time) tea.Msg { return TickMsg{} })
}

// --- Styles ---

var (
	titleBarStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("237"))

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Strikethrough(true)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("244"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	dialogPadY = 1
	dialogPadX = 2

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(dialogPadY, dialogPadX)
)

// --- View rendering ---

func (m *Model) viewList() string {
	now := m.now()

	header := titleBarStyle.Width(m.width).Render(truncate(m.cfg.List.Name, m.width-2)) //nolint:mnd // padding

	var lines []string
	rows := m.renderRows(now)

	start := m.scrollOff
	end := start + m.visibleRows()
	if end > len(rows) {
		end = len(rows)
	}
	if start > len(rows) {
		start = len(rows)
	}
	lines = append(lines, rows[start:end]...)

	if len(m.active) == 0 && (!m.showCompleted || len(m.completed) == 0) {
		lines = append(lines, dimStyle.Render("  No tasks. Press a to add one."))
	}

	body := strings.Join(lines, "\n")

	// Clamp or pad to the available height so the status bar stays put.
	targetHeight := m.height - m.chromeHeight()
	if targetHeight > 0 {
		actual := strings.Count(body, "\n") + 1
		if actual > targetHeight {
			bodyLines := strings.SplitN(body, "\n", targetHeight+1)
			body = strings.Join(bodyLines[:targetHeight], "\n")
		} else if actual < targetHeight {
			body += strings.Repeat("\n", targetHeight-actual)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, "", m.renderStatusBar())
}

// renderRows builds one display line per selectable row, plus the completed
// section header when that section is visible.
func (m *Model) renderRows(now time.Time) []string {
	var rows []string

	for i, t := range m.active {
		rows = append(rows, m.renderTaskRow(t, m.cursor == i, now))
	}

	if m.showCompleted && len(m.completed) > 0 {
		rows = append(rows, "", sectionStyle.Render(fmt.Sprintf("Completed (%d)", len(m.completed))))
		for i, t := range m.completed {
			rows = append(rows, m.renderTaskRow(t, m.cursor == len(m.active)+i, now))
		}
	}

	return rows
}

func (m *Model) renderTaskRow(t engine.Task, selected bool, now time.Time) string {
	marker := "  "
	if t.TimerRunning {
		marker = runningStyle.Render("▶ ")
	}

	elapsed := timeutil.FormatDuration(t.Elapsed(now))
	elapsedW := lipgloss.Width(elapsed) + 2 //nolint:mnd // gap before elapsed column

	titleW := m.width - lipgloss.Width(marker) - elapsedW - 2 //nolint:mnd // row padding
	if titleW < 4 {
		titleW = 4
	}
	plain := truncate(t.Title, titleW)
	gap := titleW - lipgloss.Width(plain)
	if gap < 0 {
		gap = 0
	}
	title := plain
	switch {
	case t.Completed:
		title = doneStyle.Render(plain)
	case t.TimerRunning:
		title = runningStyle.Render(plain)
	}

	row := marker + title + strings.Repeat(" ", gap) + "  " + timeStyle.Render(elapsed)
	if selected {
		return selectedStyle.Render("▌") + row
	}
	return " " + row
}

func (m *Model) renderStatusBar() string {
	running := ""
	if t, ok := engine.RunningTask(m.state); ok {
		running = " | " + runningStyle.Render("▶ "+truncate(t.Title, 20)) //nolint:mnd // running label width
	}
	status := fmt.Sprintf(" %d tasks%s | a:add space:timer c:done t:log d:del v:completed q:quit",
		len(m.active), running)
	status = truncate(status, m.width)

	if m.err != nil {
		errStr := errorStyle.Render(truncate("Error: "+m.err.Error(), m.width))
		return errStr + "\n" + statusBarStyle.Render(status)
	}

	return statusBarStyle.Render(status)
}

func (m *Model) viewDeleteConfirm() string {
	content := errorStyle.Render("Delete task?") + "\n\n" +
		fmt.Sprintf("  %s", m.deleteTitle) + "\n\n" +
		dimStyle.Render("y:yes  n:no")

	return dialogStyle.Render(content)
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	// Slice by runes to avoid breaking multi-byte UTF-8 characters.
	runes := []rune(s)
	target := maxLen - 3 //nolint:mnd // room for "..."
	if target > len(runes) {
		target = len(runes)
	}
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}
