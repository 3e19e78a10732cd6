package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"todo/internal/config"
	"todo/internal/journal"
	"todo/internal/task"
	"todo/internal/todolist"
)

const dateLayout = "2006-01-02"

// History is the read side of the action journal.
type History interface {
	Recent(limit int) ([]journal.Entry, error)
}

type formState struct {
	taskID   string
	title    string
	due      string
	priority string
	index    int
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7CC15"))
	faintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doneTitle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Bold(true)
	actionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4081")).Bold(true)
)

type Model struct {
	store       *todolist.Store
	history     History
	cfg         config.Config
	log         *log.Logger
	now         func() time.Time
	tasks       []task.Task
	cursor      int
	input       textinput.Model
	status      string
	confirmDel  bool
	pendingDel  []string
	bulkDel     bool
	form        *formState
	showHistory bool
}

func New(store *todolist.Store, history History, cfg config.Config, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		store:   store,
		history: history,
		cfg:     cfg,
		log:     logger,
		now:     time.Now,
		status:  fmt.Sprintf("Press '%s' to add, '%s' to select, '%s' to complete.", cfg.Keys.Add, keyName(cfg.Keys.Select), cfg.Keys.Complete),
		input:   ti,
	}
	m.refresh()
	return m
}

func Run(store *todolist.Store, history History, cfg config.Config, logger *log.Logger, firstLaunch bool) error {
	m := New(store, history, cfg, logger)
	if firstLaunch {
		m.status = "Welcome! Press '" + cfg.Keys.Add + "' to create your first task."
	}
	program := tea.NewProgram(m)
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.form != nil {
			return m.updateFormMode(msg.String(), msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		if len(m.tasks) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case k.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.tasks))
		}
	case k.Add:
		return m.startForm(nil)
	case k.Edit:
		t, ok := m.current()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startForm(&t)
	case k.Select:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.store.ToggleSelected(t.ID)
		m.refresh()
		m.status = fmt.Sprintf("%d selected", len(m.store.SelectedIDs()))
	case k.ClearSelection:
		m.store.ResetSelected()
		m.refresh()
		m.status = "Selection cleared"
	case k.Complete:
		if n := len(m.store.SelectedIDs()); n > 0 {
			m.store.CompleteSelected()
			m.refresh()
			m.status = fmt.Sprintf("Updated %d %s", n, plural(n, "task"))
			return m, nil
		}
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.store.ToggleComplete(t.ID)
		m.refresh()
		m.status = "Toggled task"
	case k.Delete:
		if ids := m.store.SelectedIDs(); len(ids) > 0 {
			m.confirmDel = true
			m.bulkDel = true
			m.pendingDel = ids
			m.status = fmt.Sprintf("Delete %d selected %s? y/n", len(ids), plural(len(ids), "task"))
			return m, nil
		}
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.confirmDel = true
		m.pendingDel = []string{t.ID}
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
	case k.PriorityUp, k.PriorityDown:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		if key == k.PriorityUp {
			t.Priority = t.Priority.Next()
		} else {
			t.Priority = t.Priority.Prev()
		}
		m.applyUpdate(t)
		m.status = "Priority: " + task.PriorityShortLabel(t.Priority)
	case k.DueForward, k.DueBack:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		days := 1
		if key == k.DueBack {
			days = -1
		}
		t.DueDate = t.DueDate.In(m.now().Location()).AddDate(0, 0, days)
		m.applyUpdate(t)
		m.status = "Due: " + formatDate(t.DueDate, m.now())
	case k.Detail:
		t, ok := m.current()
		if !ok {
			m.status = "No tasks"
			return m, nil
		}
		now := m.now()
		info := fmt.Sprintf("%s • %s • due %s (%s) • %s",
			t.Title, task.PriorityLabel(t.Priority), formatDate(t.DueDate, now), task.DueDateLabel(t.DueDate, now), humanDone(t.Completed))
		m.status = info
	case k.History:
		m.showHistory = !m.showHistory
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("To-do list"))
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(fmt.Sprintf("No tasks yet. Press '%s' to add one.", m.cfg.Keys.Add))
	} else {
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("\n---\n")

	switch {
	case m.form != nil:
		b.WriteString(m.formTitle())
		b.WriteString(" (tab/shift+tab to move, enter to save/next, esc to cancel)")
		b.WriteString("\n\n")
		b.WriteString(m.renderFormBox())
		b.WriteString("\n")
		b.WriteString("Field: " + m.form.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
	case m.showHistory:
		b.WriteString(m.renderHistoryPanel())
	default:
		b.WriteString(m.renderDetailPanel())
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	if n := len(m.store.SelectedIDs()); n > 0 && m.form == nil {
		b.WriteString(renderBulkActions(m.cfg.Keys, n))
		b.WriteString("\n")
	}
	b.WriteString(faintStyle.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.resetDelete()
		return m, nil
	case "y", "Y":
		if len(m.pendingDel) == 0 {
			m.status = "Nothing to delete"
			m.resetDelete()
			return m, nil
		}
		n := len(m.pendingDel)
		if m.bulkDel {
			n = m.store.DeleteSelected()
		} else {
			m.store.Delete(m.pendingDel[0])
		}
		m.refresh()
		m.status = fmt.Sprintf("Deleted %d %s", n, plural(n, "task"))
		m.resetDelete()
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) resetDelete() {
	m.confirmDel = false
	m.bulkDel = false
	m.pendingDel = nil
}

func (m Model) startForm(t *task.Task) (tea.Model, tea.Cmd) {
	now := m.now()
	if t == nil {
		m.form = &formState{
			due:      formatDate(now, now),
			priority: strings.ToLower(m.cfg.DefaultPriority.String()),
		}
	} else {
		m.form = &formState{
			taskID:   t.ID,
			title:    t.Title,
			due:      formatDate(t.DueDate, now),
			priority: strings.ToLower(t.Priority.String()),
		}
	}
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentHint()
	m.input.Focus()
	m.status = m.formPrompt()
	return m, textinput.Blink
}

func (m Model) updateFormMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.form = nil
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case "tab", "down":
		m.moveField(1)
		return m, nil
	case "shift+tab", "up":
		m.moveField(-1)
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.setCurrentValue(m.input.Value())
		if m.form.index >= len(formFields())-1 {
			return m.submitForm()
		}
		m.moveField(1)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) moveField(delta int) {
	m.form.setCurrentValue(m.input.Value())
	m.form.index = wrapIndex(m.form.index+delta, len(formFields()))
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentHint()
	m.status = m.formPrompt()
}

// submitForm validates the form before touching the store; the store never
// sees a blank title or a missing due date.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.form.title)
	if title == "" {
		m.status = "Title cannot be empty"
		m.jumpToField(0)
		return m, nil
	}
	due, err := parseDue(m.form.due, m.now())
	if err != nil {
		m.status = fmt.Sprintf("due date invalid: %v", err)
		m.jumpToField(1)
		return m, nil
	}
	priority, err := task.ParsePriority(m.form.priority)
	if err != nil {
		m.status = fmt.Sprintf("priority invalid: %v", err)
		m.jumpToField(2)
		return m, nil
	}

	var id string
	if m.form.taskID == "" {
		id = m.store.Add(title, due, priority).ID
		m.status = "Added task"
	} else {
		t, ok := m.store.Get(m.form.taskID)
		if !ok {
			m.status = "Task no longer exists"
			m.log.Warn("edit of unknown task dropped", "id", m.form.taskID)
		} else {
			t.Title = title
			t.DueDate = due
			t.Priority = priority
			m.store.Update(t)
			m.status = "Task saved"
		}
		id = m.form.taskID
	}

	m.form = nil
	m.input.SetValue("")
	m.input.Blur()
	m.refresh()
	m.focus(id)
	return m, nil
}

func (m *Model) jumpToField(i int) {
	m.form.index = i
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentHint()
}

// applyUpdate writes t back and keeps the cursor on it after the re-sort.
func (m *Model) applyUpdate(t task.Task) {
	if !m.store.Update(t) {
		m.log.Warn("update of unknown task dropped", "id", t.ID)
	}
	m.refresh()
	m.focus(t.ID)
}

func (m *Model) refresh() {
	m.tasks = m.store.Tasks()
	m.cursor = clampCursor(m.cursor, len(m.tasks))
}

func (m *Model) focus(id string) {
	for i, t := range m.tasks {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m Model) current() (task.Task, bool) {
	if len(m.tasks) == 0 {
		return task.Task{}, false
	}
	return m.tasks[clampCursor(m.cursor, len(m.tasks))], true
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s edit • %s select • %s complete • %s delete • %s/%s priority • %s/%s due • %s detail • %s history • %s quit",
		k.Up, k.Down, k.Add, k.Edit, keyName(k.Select), k.Complete, k.Delete, k.PriorityUp, k.PriorityDown, k.DueBack, k.DueForward, k.Detail, k.History, k.Quit)
}

func renderBulkActions(k config.Keymap, n int) string {
	return actionStyle.Render(fmt.Sprintf("%s delete %d %s • %s complete %d %s • %s clear selection",
		k.Delete, n, plural(n, "task"), k.Complete, n, plural(n, "task"), k.ClearSelection))
}

func (m Model) renderTaskList() string {
	now := m.now()
	var b strings.Builder
	for i, t := range m.tasks {
		cursor := " "
		if m.cursor == i && m.form == nil {
			cursor = ">"
		}

		checkbox := "[ ]"
		if t.Selected {
			checkbox = selectedStyle.Render("[x]")
		}

		title := t.Title
		label := lipgloss.NewStyle().Foreground(task.PriorityColor(t.Priority)).Render(task.PriorityLabel(t.Priority))
		if t.Completed {
			title = doneTitle.Render(title)
			label = lipgloss.NewStyle().Foreground(task.CompletedColor).Render(task.CompletedLabel)
		}

		b.WriteString(fmt.Sprintf("%s %s %s  %s  %s", cursor, checkbox, title, label, faintStyle.Render(task.DueDateLabel(t.DueDate, now))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetailPanel() string {
	t, ok := m.current()
	if !ok {
		return "No task selected"
	}
	now := m.now()
	var b strings.Builder
	b.WriteString("Task\n")
	b.WriteString(fmt.Sprintf("Title     : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Status    : %s\n", humanDone(t.Completed)))
	b.WriteString(fmt.Sprintf("Priority  : %s\n", task.PriorityShortLabel(t.Priority)))
	b.WriteString(fmt.Sprintf("Due       : %s (%s)\n", formatDate(t.DueDate, now), task.DueDateLabel(t.DueDate, now)))
	b.WriteString(fmt.Sprintf("Created   : %s\n", t.CreatedAt.In(now.Location()).Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Selected  : %t\n", t.Selected))
	return b.String()
}

func (m Model) renderHistoryPanel() string {
	if m.history == nil {
		return "History unavailable"
	}
	entries, err := m.history.Recent(m.cfg.HistorySize)
	if err != nil {
		m.log.Error("read history", "err", err)
		return fmt.Sprintf("History unavailable: %v", err)
	}
	if len(entries) == 0 {
		return "History\n(no actions yet)"
	}
	loc := m.now().Location()
	var b strings.Builder
	b.WriteString("History\n")
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-16s %s", e.At.In(loc).Format("15:04:05"), e.Action, e.Summary)
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderFormBox() string {
	fields := formFields()
	values := []string{m.form.title, m.form.due, m.form.priority}
	var b strings.Builder
	for i, name := range fields {
		prefix := " "
		if i == m.form.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-10s : %s\n", prefix, name, val))
	}
	return b.String()
}

func (m Model) formTitle() string {
	if m.form.taskID == "" {
		return "New task"
	}
	return "Edit task"
}

func (m Model) formPrompt() string {
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, Esc to cancel.",
		m.form.currentLabel(), m.form.index+1, len(formFields()))
}

func formFields() []string {
	return []string{"title", "due date", "priority"}
}

func fieldHints() []string {
	return []string{"Task title", "YYYY-MM-DD, today, tomorrow or +N", "high, medium or low"}
}

func (fs formState) currentLabel() string {
	return formFields()[fs.index]
}

func (fs formState) currentHint() string {
	return fieldHints()[fs.index]
}

func (fs formState) currentValue() string {
	switch fs.index {
	case 0:
		return fs.title
	case 1:
		return fs.due
	case 2:
		return fs.priority
	default:
		return ""
	}
}

func (fs *formState) setCurrentValue(v string) {
	switch fs.index {
	case 0:
		fs.title = v
	case 1:
		fs.due = v
	case 2:
		fs.priority = v
	}
}

// parseDue reads a due date relative to now. The result is midnight of the
// chosen day in now's location.
func parseDue(v string, now time.Time) (time.Time, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case v == "":
		return time.Time{}, fmt.Errorf("due date is required")
	case v == "today":
		return today, nil
	case v == "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case strings.HasPrefix(v, "+"):
		n, err := strconv.Atoi(v[1:])
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("expected +N days, got %q", v)
		}
		return today.AddDate(0, 0, n), nil
	}
	return time.ParseInLocation(dateLayout, v, now.Location())
}

func formatDate(t, now time.Time) string {
	return t.In(now.Location()).Format(dateLayout)
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}
