package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/charmbracelet/lipgloss"
)

func (a App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m, cmd, handled := a.updateGlobal(msg.String()); handled {
		return m, cmd
	}
	if msg.String() == a.cfg.Keys.Confirm {
		a.screen = screenTasks
		return a, nil
	}
	return a, nil
}

func (a App) viewDashboard() string {
	var b strings.Builder
	b.WriteString(a.navBar())
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render(a.greeting() + "!"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Here's what's happening with your tasks today."))
	b.WriteString("\n\n")

	total := len(a.tasks)
	completed := 0
	dueToday := 0
	today := dayKeyAt(a.now())
	for _, t := range a.tasks {
		if t.Completed {
			completed++
		}
		if t.DueDate == today {
			dueToday++
		}
	}
	rate := 0
	if total > 0 {
		rate = completed * 100 / total
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		cardStyle.Render(fmt.Sprintf("Total Tasks\n%d", total)),
		" ",
		cardStyle.Render(fmt.Sprintf("Due Today\n%d", dueToday)),
		" ",
		cardStyle.Render(fmt.Sprintf("Completed\n%d%%", rate)),
	)
	b.WriteString(cards)
	b.WriteString("\n\n")

	b.WriteString("Recent tasks\n")
	if len(a.tasks) == 0 {
		b.WriteString(dimStyle.Render("No tasks yet. Press 2 and 'a' to add one."))
		b.WriteString("\n")
	} else {
		n := len(a.tasks)
		if n > 5 {
			n = 5
		}
		for _, t := range a.tasks[:n] {
			checkbox := "[ ]"
			title := t.Title
			if t.Completed {
				checkbox = "[x]"
				title = doneStyle.Render(title)
			}
			line := fmt.Sprintf("%s %s %s", checkbox, priorityGlyph(t.Priority), title)
			if t.DueDate != "" {
				line += dimStyle.Render(" due " + t.DueDate)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(a.toastLine())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("1-5 screens • r refresh • L logout • q quit"))
	return b.String()
}

func (a App) greeting() string {
	hour := a.now().Hour()
	switch {
	case hour < 12:
		return "Good morning"
	case hour < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}
