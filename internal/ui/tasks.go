package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskflow/internal/api"
	"taskflow/internal/config"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
)

type taskMode int

const (
	modeList taskMode = iota
	modeAdd
	modeEdit
)

type tasksState struct {
	cursor     int
	mode       taskMode
	input      textinput.Model
	editor     *editorState
	confirmDel bool
	pendingDel *api.Task
	filter     api.ListFilter
	status     string
}

// editorState walks the user through a task's editable fields one input
// at a time.
type editorState struct {
	taskID      string
	title       string
	description string
	priority    string
	tags        string
	due         string
	recurrence  string
	index       int
}

func newTasksState(cfg config.Config) tasksState {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	return tasksState{
		input:  ti,
		filter: api.ListFilter{Sort: api.SortCreated, Order: api.OrderDesc},
		status: "Press 'a' to add, space to toggle, 'd' to delete.",
	}
}

func (a App) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.list.editor != nil {
		return a.updateTaskEditor(msg.String(), msg)
	}
	if a.list.confirmDel {
		return a.updateDeleteConfirm(msg.String())
	}
	if a.list.mode == modeAdd {
		return a.updateAddMode(msg.String(), msg)
	}
	return a.updateTaskList(msg.String())
}

func (a App) updateTaskList(key string) (tea.Model, tea.Cmd) {
	if m, cmd, handled := a.updateGlobal(key); handled {
		return m, cmd
	}
	k := a.cfg.Keys
	switch key {
	case k.Down, "down":
		if len(a.tasks) == 0 {
			return a, nil
		}
		a.list.cursor = clampCursor(a.list.cursor+1, len(a.tasks))
	case k.Up, "up":
		if a.list.cursor > 0 {
			a.list.cursor = clampCursor(a.list.cursor-1, len(a.tasks))
		}
	case k.Add:
		a.list.mode = modeAdd
		a.list.input.Placeholder = "Task title"
		a.list.input.SetValue("")
		a.list.input.Focus()
		a.list.status = "Add mode: type a title and press Enter"
	case k.Toggle:
		if len(a.tasks) == 0 {
			return a, nil
		}
		task := a.tasks[a.list.cursor]
		svc := a.svc
		id := task.ID
		return a, func() tea.Msg {
			_, err := svc.ToggleTask(context.Background(), id)
			return taskMutatedMsg{verb: "toggled", err: err}
		}
	case k.Delete:
		if len(a.tasks) == 0 {
			return a, nil
		}
		t := a.tasks[a.list.cursor]
		a.list.confirmDel = true
		a.list.pendingDel = &t
		a.list.status = fmt.Sprintf("Delete %q? y/n", t.Title)
	case k.Edit:
		if len(a.tasks) == 0 {
			a.list.status = "No tasks to edit"
			return a, nil
		}
		return a.startTaskEdit(a.tasks[a.list.cursor])
	case k.Filter:
		a.list.filter.Status = nextStatus(a.list.filter.Status)
		return a.refilter()
	case k.Priority:
		a.list.filter.Priority = nextPriorityFilter(a.list.filter.Priority)
		return a.refilter()
	case k.Sort:
		a.list.filter.Sort = nextSort(a.list.filter.Sort)
		return a.refilter()
	case k.Order:
		if a.list.filter.Order == api.OrderDesc {
			a.list.filter.Order = api.OrderAsc
		} else {
			a.list.filter.Order = api.OrderDesc
		}
		return a.refilter()
	}
	return a, nil
}

// refilter refetches with the updated filter; filtering and sorting are
// the server's job.
func (a App) refilter() (tea.Model, tea.Cmd) {
	a.list.status = "Filter: " + describeFilter(a.list.filter)
	a2, cmd := a.refreshTasks()
	return a2, cmd
}

func (a App) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case a.cfg.Keys.Cancel:
		a.list.mode = modeList
		a.list.input.SetValue("")
		a.list.input.Blur()
		a.list.status = "Cancelled"
		return a, nil
	case a.cfg.Keys.Confirm:
		title := strings.TrimSpace(a.list.input.Value())
		if err := validateTitle(title); err != "" {
			a.list.status = err
			return a, nil
		}
		a.list.input.SetValue("")
		a.list.input.Blur()
		a.list.mode = modeList
		svc := a.svc
		return a, func() tea.Msg {
			_, err := svc.CreateTask(context.Background(), api.TaskCreate{Title: title})
			return taskMutatedMsg{verb: "created", err: err}
		}
	default:
		var cmd tea.Cmd
		a.list.input, cmd = a.list.input.Update(msg)
		return a, cmd
	}
}

func (a App) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", a.cfg.Keys.Cancel:
		a.list.status = "Delete cancelled"
		a.list.confirmDel = false
		a.list.pendingDel = nil
		return a, nil
	case "y", "Y":
		if a.list.pendingDel == nil {
			a.list.confirmDel = false
			return a, nil
		}
		id := a.list.pendingDel.ID
		a.list.confirmDel = false
		a.list.pendingDel = nil
		svc := a.svc
		return a, func() tea.Msg {
			err := svc.DeleteTask(context.Background(), id)
			return taskMutatedMsg{verb: "deleted", err: err}
		}
	default:
		return a, nil
	}
}

func (a App) startTaskEdit(t api.Task) (tea.Model, tea.Cmd) {
	a.list.editor = &editorState{
		taskID:      t.ID,
		title:       t.Title,
		description: t.Description,
		priority:    string(t.Priority),
		tags:        strings.Join(t.Tags, ", "),
		due:         t.DueDate,
		recurrence:  string(t.Recurrence),
	}
	a.list.mode = modeEdit
	a.list.input.SetValue(a.list.editor.currentValue())
	a.list.input.Placeholder = a.list.editor.currentLabel()
	a.list.input.Focus()
	a.list.status = "Edit: Enter to advance, Esc to cancel, tab to move"
	return a, nil
}

func (a App) updateTaskEditor(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ed := a.list.editor
	switch key {
	case a.cfg.Keys.Cancel:
		a.list.editor = nil
		a.list.mode = modeList
		a.list.input.Blur()
		a.list.status = "Edit cancelled"
		return a, nil
	case "tab", "down":
		ed.setCurrentValue(a.list.input.Value())
		ed.index = (ed.index + 1) % len(editorFields())
		a.syncEditorInput()
		return a, nil
	case "shift+tab", "up":
		ed.setCurrentValue(a.list.input.Value())
		ed.index = (ed.index + len(editorFields()) - 1) % len(editorFields())
		a.syncEditorInput()
		return a, nil
	case a.cfg.Keys.Confirm:
		ed.setCurrentValue(a.list.input.Value())
		if ed.index >= len(editorFields())-1 {
			return a.saveTaskEdit()
		}
		ed.index++
		a.syncEditorInput()
		return a, nil
	default:
		var cmd tea.Cmd
		a.list.input, cmd = a.list.input.Update(msg)
		return a, cmd
	}
}

func (a *App) syncEditorInput() {
	a.list.input.SetValue(a.list.editor.currentValue())
	a.list.input.Placeholder = a.list.editor.currentLabel()
	a.list.status = fmt.Sprintf("Editing %s (field %d of %d)",
		a.list.editor.currentLabel(), a.list.editor.index+1, len(editorFields()))
}

// saveTaskEdit validates every field locally, then issues one partial
// update with all of them.
func (a App) saveTaskEdit() (tea.Model, tea.Cmd) {
	ed := a.list.editor

	title := strings.TrimSpace(ed.title)
	if msg := validateTitle(title); msg != "" {
		a.list.status = msg
		return a, nil
	}
	description := strings.TrimSpace(ed.description)
	if len(description) > maxDescriptionLen {
		a.list.status = fmt.Sprintf("Description too long (max %d chars)", maxDescriptionLen)
		return a, nil
	}
	priority, ok := parsePriority(ed.priority)
	if !ok {
		a.list.status = "Priority must be high, medium, low, or empty"
		return a, nil
	}
	due := strings.TrimSpace(ed.due)
	if due != "" {
		if _, err := time.Parse(api.DateLayout, due); err != nil {
			a.list.status = "Due date must be YYYY-MM-DD"
			return a, nil
		}
	}
	recurrence, ok := parseRecurrence(ed.recurrence)
	if !ok {
		a.list.status = "Recurrence must be daily, weekly, monthly, or empty"
		return a, nil
	}
	tags := parseTags(ed.tags)

	update := api.TaskUpdate{
		Title:       &title,
		Description: &description,
		Priority:    &priority,
		Tags:        &tags,
		DueDate:     &due,
		Recurrence:  &recurrence,
	}
	id := ed.taskID

	a.list.editor = nil
	a.list.mode = modeList
	a.list.input.Blur()

	svc := a.svc
	return a, func() tea.Msg {
		_, err := svc.UpdateTask(context.Background(), id, update)
		return taskMutatedMsg{verb: "updated", err: err}
	}
}

func (a App) viewTasks() string {
	var b strings.Builder
	b.WriteString(a.navBar())
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("My Tasks"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(describeFilter(a.list.filter)))
	b.WriteString("\n\n")

	if a.list.editor != nil {
		b.WriteString(a.viewTaskEditor())
	} else if len(a.tasks) == 0 {
		b.WriteString(dimStyle.Render("No tasks. Press 'a' to add one."))
		b.WriteString("\n")
	} else {
		for i, t := range a.tasks {
			cursor := " "
			if a.list.cursor == i && a.list.mode == modeList {
				cursor = ">"
			}
			checkbox := "[ ]"
			title := t.Title
			if t.Completed {
				checkbox = "[x]"
				title = doneStyle.Render(title)
			}
			extras := make([]string, 0, 3)
			if t.DueDate != "" {
				extras = append(extras, "due:"+t.DueDate)
			}
			if len(t.Tags) > 0 {
				extras = append(extras, "#"+strings.Join(t.Tags, " #"))
			}
			if t.Recurrence != api.RecurrenceNone {
				extras = append(extras, string(t.Recurrence))
			}
			line := fmt.Sprintf("%s %s %s %s", cursor, checkbox, priorityGlyph(t.Priority), title)
			if len(extras) > 0 {
				line += " " + dimStyle.Render("["+strings.Join(extras, " | ")+"]")
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if a.list.mode == modeAdd {
		b.WriteString("\nAdd Task: ")
		b.WriteString(a.list.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.toastLine())
	b.WriteString("\n")
	b.WriteString(a.list.status)
	b.WriteString("\n")
	k := a.cfg.Keys
	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"%s/%s move • %s add • %s toggle • %s delete • %s edit • %s status • %s priority • %s sort • %s order • %s quit",
		k.Up, k.Down, k.Add, k.Toggle, k.Delete, k.Edit, k.Filter, k.Priority, k.Sort, k.Order, k.Quit)))
	return b.String()
}

func (a App) viewTaskEditor() string {
	ed := a.list.editor
	fields := editorFields()
	values := []string{ed.title, ed.description, ed.priority, ed.tags, ed.due, ed.recurrence}

	var b strings.Builder
	for i, name := range fields {
		prefix := " "
		if i == ed.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = dimStyle.Render("(empty)")
		}
		b.WriteString(fmt.Sprintf("%s %-24s : %s\n", prefix, name, val))
	}
	b.WriteString("\n")
	b.WriteString("Field: " + ed.currentLabel())
	b.WriteString("\n")
	b.WriteString(a.list.input.View())
	b.WriteString("\n")
	return b.String()
}

func editorFields() []string {
	return []string{
		"title",
		"description",
		"priority (high/medium/low)",
		"tags (comma separated)",
		"due date (YYYY-MM-DD)",
		"recurrence (daily/weekly/monthly)",
	}
}

func (ed editorState) currentLabel() string {
	return editorFields()[ed.index]
}

func (ed editorState) currentValue() string {
	switch ed.index {
	case 0:
		return ed.title
	case 1:
		return ed.description
	case 2:
		return ed.priority
	case 3:
		return ed.tags
	case 4:
		return ed.due
	case 5:
		return ed.recurrence
	default:
		return ""
	}
}

func (ed *editorState) setCurrentValue(v string) {
	switch ed.index {
	case 0:
		ed.title = v
	case 1:
		ed.description = v
	case 2:
		ed.priority = v
	case 3:
		ed.tags = v
	case 4:
		ed.due = v
	case 5:
		ed.recurrence = v
	}
}

func validateTitle(title string) string {
	if title == "" {
		return "Title cannot be empty"
	}
	if len(title) > maxTitleLen {
		return fmt.Sprintf("Title too long (max %d chars)", maxTitleLen)
	}
	return ""
}

func parsePriority(v string) (api.Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return api.PriorityNone, true
	case "high":
		return api.PriorityHigh, true
	case "medium":
		return api.PriorityMedium, true
	case "low":
		return api.PriorityLow, true
	}
	return api.PriorityNone, false
}

func parseRecurrence(v string) (api.Recurrence, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return api.RecurrenceNone, true
	case "daily":
		return api.RecurrenceDaily, true
	case "weekly":
		return api.RecurrenceWeekly, true
	case "monthly":
		return api.RecurrenceMonthly, true
	}
	return api.RecurrenceNone, false
}

func parseTags(v string) []string {
	parts := strings.Split(v, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func nextStatus(s api.Status) api.Status {
	switch s {
	case api.StatusAny:
		return api.StatusPending
	case api.StatusPending:
		return api.StatusCompleted
	default:
		return api.StatusAny
	}
}

func nextPriorityFilter(p api.Priority) api.Priority {
	switch p {
	case api.PriorityNone:
		return api.PriorityHigh
	case api.PriorityHigh:
		return api.PriorityMedium
	case api.PriorityMedium:
		return api.PriorityLow
	default:
		return api.PriorityNone
	}
}

func nextSort(s api.SortField) api.SortField {
	switch s {
	case api.SortCreated:
		return api.SortDueDate
	case api.SortDueDate:
		return api.SortPriority
	case api.SortPriority:
		return api.SortTitle
	default:
		return api.SortCreated
	}
}

func describeFilter(f api.ListFilter) string {
	status := "all"
	if f.Status != api.StatusAny {
		status = string(f.Status)
	}
	priority := "any"
	if f.Priority != api.PriorityNone {
		priority = string(f.Priority)
	}
	return fmt.Sprintf("status:%s priority:%s sort:%s %s", status, priority, f.Sort, f.Order)
}
