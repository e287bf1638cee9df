// Package calendar builds date grids and buckets tasks by due date. The
// grid math is pure so the reschedule logic stays testable without any
// terminal events.
package calendar

import (
	"time"

	"taskflow/internal/api"
)

// ViewMode selects which grid algorithm runs. It is independent of the
// anchor date: switching views never moves the cursor.
type ViewMode int

const (
	ViewMonth ViewMode = iota
	ViewWeek
	ViewDay
)

func (v ViewMode) String() string {
	switch v {
	case ViewWeek:
		return "week"
	case ViewDay:
		return "day"
	default:
		return "month"
	}
}

// MaxCellTasks is how many tasks a month cell shows before the overflow
// indicator takes over.
const MaxCellTasks = 3

// Cell is one day of a grid. InMonth is false for the padding days
// pulled from the adjacent months; those render de-emphasized but stay
// valid drop targets.
type Cell struct {
	Date    time.Time
	InMonth bool
}

// Key returns the cell's date string, which is also the due date a task
// dropped on this cell receives.
func (c Cell) Key() string {
	return c.Date.Format(api.DateLayout)
}

// MonthGrid returns the cells for the month containing anchor. The
// leading edge is padded back to Sunday and the trailing edge forward to
// Saturday, so the total is always a multiple of seven.
func MonthGrid(anchor time.Time) []Cell {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, 6-int(last.Weekday()))

	var cells []Cell
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		cells = append(cells, Cell{Date: d, InMonth: d.Month() == anchor.Month()})
	}
	return cells
}

// WeekDays returns the seven cells of the week containing anchor,
// Sunday through Saturday.
func WeekDays(anchor time.Time) []Cell {
	start := StartOfWeek(anchor)
	cells := make([]Cell, 0, 7)
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		cells = append(cells, Cell{Date: d, InMonth: true})
	}
	return cells
}

// StartOfWeek returns the Sunday on or before t.
func StartOfWeek(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// Prev shifts the anchor back by one unit of the view mode.
func Prev(anchor time.Time, view ViewMode) time.Time {
	switch view {
	case ViewWeek:
		return anchor.AddDate(0, 0, -7)
	case ViewDay:
		return anchor.AddDate(0, 0, -1)
	default:
		return anchor.AddDate(0, -1, 0)
	}
}

// Next shifts the anchor forward by one unit of the view mode.
func Next(anchor time.Time, view ViewMode) time.Time {
	switch view {
	case ViewWeek:
		return anchor.AddDate(0, 0, 7)
	case ViewDay:
		return anchor.AddDate(0, 0, 1)
	default:
		return anchor.AddDate(0, 1, 0)
	}
}

// TasksOn returns the tasks due on the day identified by key, in their
// existing list order. Tasks without a due date never appear on the
// grid.
func TasksOn(tasks []api.Task, key string) []api.Task {
	var out []api.Task
	for _, t := range tasks {
		if t.DueDate != "" && t.DueDate == key {
			out = append(out, t)
		}
	}
	return out
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
