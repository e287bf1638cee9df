package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskflow/internal/api"
	"taskflow/internal/calendar"
	"taskflow/internal/config"
)

// calState holds the calendar cursor and the grab state. A grabbed task
// hovers over whichever cell the cursor sits on; dropping writes that
// cell's date, cancelling restores nothing because nothing was changed
// yet.
type calState struct {
	anchor  time.Time
	view    calendar.ViewMode
	cellIdx int
	taskIdx int
	drag    *api.Task
}

func newCalState(cfg config.Config, now time.Time) calState {
	return calState{
		anchor: now,
		view:   calViewFromConfig(cfg.DefaultView),
	}
}

// cells returns the grid for the current anchor and view. The day view
// is a one-cell grid so the drag logic is identical across views.
func (c calState) cells() []calendar.Cell {
	switch c.view {
	case calendar.ViewWeek:
		return calendar.WeekDays(c.anchor)
	case calendar.ViewDay:
		d := time.Date(c.anchor.Year(), c.anchor.Month(), c.anchor.Day(), 0, 0, 0, 0, c.anchor.Location())
		return []calendar.Cell{{Date: d, InMonth: true}}
	default:
		return calendar.MonthGrid(c.anchor)
	}
}

func (a App) updateCalendar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	k := a.cfg.Keys

	// Escape always clears the grab, even mid-hover.
	if key == k.Cancel {
		a.cal.drag = nil
		return a, nil
	}

	if a.cal.drag == nil {
		if m, cmd, handled := a.updateGlobal(key); handled {
			return m, cmd
		}
	}

	cells := a.cal.cells()
	cols := 7
	if a.cal.view == calendar.ViewDay {
		cols = 1
	}

	switch key {
	case k.Left, "left":
		a.cal.cellIdx = clampCursor(a.cal.cellIdx-1, len(cells))
		a.cal.taskIdx = 0
	case k.Right, "right":
		a.cal.cellIdx = clampCursor(a.cal.cellIdx+1, len(cells))
		a.cal.taskIdx = 0
	case k.Up, "up":
		if a.cal.view == calendar.ViewDay {
			a.cal.taskIdx--
			a.clampCalTask(cells)
			return a, nil
		}
		a.cal.cellIdx = clampCursor(a.cal.cellIdx-cols, len(cells))
		a.cal.taskIdx = 0
	case k.Down, "down":
		if a.cal.view == calendar.ViewDay {
			a.cal.taskIdx++
			a.clampCalTask(cells)
			return a, nil
		}
		a.cal.cellIdx = clampCursor(a.cal.cellIdx+cols, len(cells))
		a.cal.taskIdx = 0
	case k.Prev:
		a.cal.anchor = calendar.Prev(a.cal.anchor, a.cal.view)
		a.cal.cellIdx = clampCursor(a.cal.cellIdx, len(a.cal.cells()))
	case k.Next:
		a.cal.anchor = calendar.Next(a.cal.anchor, a.cal.view)
		a.cal.cellIdx = clampCursor(a.cal.cellIdx, len(a.cal.cells()))
	case k.Today:
		a.cal.anchor = a.now()
		a.cal.cellIdx = a.todayCellIdx()
		a.cal.taskIdx = 0
	case k.View:
		a.cal.view = nextCalView(a.cal.view)
		a.cal.cellIdx = clampCursor(a.cal.cellIdx, len(a.cal.cells()))
		a.cal.taskIdx = 0
	case "tab":
		if a.cal.drag == nil {
			a.cal.taskIdx++
			a.clampCalTask(cells)
		}
	case k.Grab:
		if a.cal.drag != nil {
			return a, nil
		}
		due := calendar.TasksOn(a.tasks, cells[clampCursor(a.cal.cellIdx, len(cells))].Key())
		if len(due) == 0 {
			return a, nil
		}
		t := due[clampCursor(a.cal.taskIdx, len(due))]
		a.cal.drag = &t
	case k.Confirm:
		if a.cal.drag == nil {
			return a, nil
		}
		return a.dropTask(cells)
	}
	return a, nil
}

// dropTask commits the grab onto the focused cell: one partial update
// carrying only the new due date. Dropping back on the original day is
// a no-op with no request.
func (a App) dropTask(cells []calendar.Cell) (tea.Model, tea.Cmd) {
	target := cells[clampCursor(a.cal.cellIdx, len(cells))].Key()
	task := *a.cal.drag
	a.cal.drag = nil
	if target == task.DueDate {
		return a, nil
	}
	svc := a.svc
	date := target
	return a, func() tea.Msg {
		_, err := svc.UpdateTask(context.Background(), task.ID, api.TaskUpdate{DueDate: &date})
		return rescheduledMsg{date: date, err: err}
	}
}

func (a *App) clampCalTask(cells []calendar.Cell) {
	due := calendar.TasksOn(a.tasks, cells[clampCursor(a.cal.cellIdx, len(cells))].Key())
	a.cal.taskIdx = clampCursor(a.cal.taskIdx, len(due))
}

// todayCellIdx locates today in the current grid, or 0 when today is
// off-grid.
func (a App) todayCellIdx() int {
	today := a.now()
	for i, c := range a.cal.cells() {
		if calendar.SameDay(c.Date, today) {
			return i
		}
	}
	return 0
}

func nextCalView(v calendar.ViewMode) calendar.ViewMode {
	switch v {
	case calendar.ViewMonth:
		return calendar.ViewWeek
	case calendar.ViewWeek:
		return calendar.ViewDay
	default:
		return calendar.ViewMonth
	}
}

func (a App) viewCalendar() string {
	var b strings.Builder
	b.WriteString(a.navBar())
	b.WriteString("\n\n")

	header := a.cal.anchor.Format("January 2006")
	if a.cal.view == calendar.ViewDay {
		header = a.cal.anchor.Format("Monday, January 2, 2006")
	} else if a.cal.view == calendar.ViewWeek {
		start := calendar.StartOfWeek(a.cal.anchor)
		header = start.Format("Jan 2") + " – " + start.AddDate(0, 0, 6).Format("Jan 2, 2006")
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(a.cal.view.String() + " view"))
	b.WriteString("\n\n")

	if a.cal.drag != nil {
		b.WriteString(warnStyle.Render("Moving: " + a.cal.drag.Title))
		b.WriteString(dimStyle.Render("  (enter to drop, esc to cancel)"))
		b.WriteString("\n\n")
	}

	switch a.cal.view {
	case calendar.ViewDay:
		b.WriteString(a.viewCalDay())
	default:
		b.WriteString(a.viewCalGrid())
	}

	b.WriteString("\n")
	b.WriteString(a.toastLine())
	b.WriteString("\n")
	k := a.cfg.Keys
	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"%s/%s/%s/%s move • tab next task • %s grab • %s drop • %s cancel • %s/%s page • %s today • %s view",
		k.Left, k.Down, k.Up, k.Right, k.Grab, k.Confirm, k.Cancel, k.Prev, k.Next, k.Today, k.View)))
	return b.String()
}

func (a App) viewCalGrid() string {
	cells := a.cal.cells()
	cellW := 16
	if a.width > 0 && a.width/7-2 < cellW {
		cellW = a.width/7 - 2
		if cellW < 8 {
			cellW = 8
		}
	}

	var b strings.Builder
	var names strings.Builder
	for _, d := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		names.WriteString(lipgloss.NewStyle().Width(cellW + 2).Align(lipgloss.Center).Render(d))
	}
	b.WriteString(dimStyle.Render(names.String()))
	b.WriteString("\n")

	today := a.now()
	for row := 0; row < len(cells)/7; row++ {
		rendered := make([]string, 0, 7)
		for col := 0; col < 7; col++ {
			idx := row*7 + col
			rendered = append(rendered, a.renderCell(cells[idx], idx, cellW, today))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
		b.WriteString("\n")
	}
	return b.String()
}

func (a App) renderCell(c calendar.Cell, idx, width int, today time.Time) string {
	focused := idx == a.cal.cellIdx

	day := fmt.Sprintf("%d", c.Date.Day())
	switch {
	case calendar.SameDay(c.Date, today):
		day = todayStyle.Render(day)
	case !c.InMonth:
		day = dimStyle.Render(day)
	}

	lines := []string{day}
	due := calendar.TasksOn(a.tasks, c.Key())
	shown := due
	if len(shown) > calendar.MaxCellTasks {
		shown = shown[:calendar.MaxCellTasks]
	}
	for i, t := range shown {
		title := truncate(t.Title, width-2)
		switch {
		case t.Completed:
			title = doneStyle.Render(title)
		case focused && i == clampCursor(a.cal.taskIdx, len(due)) && a.cal.drag == nil:
			title = selectedStyle.Render(title)
		default:
			title = priorityStyle(t.Priority).Render(title)
		}
		lines = append(lines, title)
	}
	if n := len(due) - calendar.MaxCellTasks; n > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("+%d more", n)))
	}
	for len(lines) < calendar.MaxCellTasks+2 {
		lines = append(lines, "")
	}

	style := cellStyle
	if focused {
		style = cellCursorStyle
		if a.cal.drag != nil {
			style = cellHoverStyle
		}
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func (a App) viewCalDay() string {
	cells := a.cal.cells()
	key := cells[0].Key()
	due := calendar.TasksOn(a.tasks, key)

	var b strings.Builder
	if len(due) == 0 {
		b.WriteString(dimStyle.Render("Nothing due on this day."))
		b.WriteString("\n")
		return b.String()
	}
	for i, t := range due {
		cursor := " "
		if i == clampCursor(a.cal.taskIdx, len(due)) {
			cursor = ">"
		}
		checkbox := "[ ]"
		title := t.Title
		if t.Completed {
			checkbox = "[x]"
			title = doneStyle.Render(title)
		}
		b.WriteString(fmt.Sprintf("%s %s %s %s\n", cursor, checkbox, priorityGlyph(t.Priority), title))
		if t.Description != "" {
			b.WriteString("      " + dimStyle.Render(truncate(t.Description, 60)) + "\n")
		}
	}
	return b.String()
}
