package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskflow/internal/analytics"
	"taskflow/internal/config"
)

type statsState struct {
	window analytics.Window
}

func newStatsState(cfg config.Config) statsState {
	w := analytics.Window(cfg.DefaultWindow)
	switch w {
	case analytics.Window7d, analytics.Window30d, analytics.Window90d, analytics.WindowAll:
	default:
		w = analytics.Window30d
	}
	return statsState{window: w}
}

func (a App) updateAnalytics(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m, cmd, handled := a.updateGlobal(key); handled {
		return m, cmd
	}
	if key == a.cfg.Keys.Window {
		a.stats.window = nextWindow(a.stats.window)
	}
	return a, nil
}

func nextWindow(w analytics.Window) analytics.Window {
	all := analytics.Windows()
	for i, cur := range all {
		if cur == w {
			return all[(i+1)%len(all)]
		}
	}
	return analytics.Window30d
}

func (a App) viewAnalytics() string {
	snap := analytics.Compute(a.tasks, a.stats.window, a.now())

	var b strings.Builder
	b.WriteString(a.navBar())
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("Analytics"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("window: " + a.stats.window.String()))
	b.WriteString("\n\n")

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		cardStyle.Render(fmt.Sprintf("Total\n%d", snap.Total)),
		" ",
		cardStyle.Render(fmt.Sprintf("Completed\n%d (%d%%)", snap.Completed, snap.CompletionRate)),
		" ",
		cardStyle.Render(fmt.Sprintf("Pending\n%d", snap.Pending)),
		" ",
		cardStyle.Render(fmt.Sprintf("Avg/Day\n%.1f", snap.AvgPerDay)),
	)
	b.WriteString(cards)
	b.WriteString("\n\n")

	b.WriteString(warnStyle.Render(fmt.Sprintf("Overdue: %d", snap.Overdue)))
	b.WriteString(dimStyle.Render("   "))
	b.WriteString(fmt.Sprintf("Due within 7 days: %d", snap.DueSoon))
	b.WriteString(dimStyle.Render("   "))
	b.WriteString(okStyle.Render(fmt.Sprintf("Streak: %d day(s)", snap.Streak)))
	b.WriteString("\n\n")

	b.WriteString("By priority\n")
	b.WriteString(a.priorityRow("high", snap.ByPriority.High, snap.CompletedByPriority.High, snap.Total))
	b.WriteString(a.priorityRow("medium", snap.ByPriority.Medium, snap.CompletedByPriority.Medium, snap.Total))
	b.WriteString(a.priorityRow("low", snap.ByPriority.Low, snap.CompletedByPriority.Low, snap.Total))
	b.WriteString(a.priorityRow("none", snap.ByPriority.None, snap.CompletedByPriority.None, snap.Total))
	b.WriteString("\n")

	b.WriteString("Last 7 days (completed / created)\n")
	maxDay := 1
	for _, d := range snap.Daily {
		if d.Completed > maxDay {
			maxDay = d.Completed
		}
		if d.Created > maxDay {
			maxDay = d.Created
		}
	}
	for _, d := range snap.Daily {
		b.WriteString(fmt.Sprintf("%-4s %s %2d  %s %2d\n",
			d.Label,
			okStyle.Render(bar(d.Completed, maxDay, 10)), d.Completed,
			dimStyle.Render(bar(d.Created, maxDay, 10)), d.Created))
	}
	b.WriteString("\n")

	b.WriteString("Top tags\n")
	if len(snap.TopTags) == 0 {
		b.WriteString(dimStyle.Render("No tags yet."))
		b.WriteString("\n")
	} else {
		maxTag := snap.TopTags[0].Count
		for _, tc := range snap.TopTags {
			b.WriteString(fmt.Sprintf("%-16s %s %d\n", "#"+tc.Tag, bar(tc.Count, maxTag, 12), tc.Count))
		}
	}

	b.WriteString("\n")
	b.WriteString(a.toastLine())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s cycle window • %s refresh • %s quit",
		a.cfg.Keys.Window, a.cfg.Keys.Refresh, a.cfg.Keys.Quit)))
	return b.String()
}

func (a App) priorityRow(label string, total, done, grandTotal int) string {
	return fmt.Sprintf("%-8s %s %d (%d done)\n",
		label, bar(total, max(grandTotal, 1), 14), total, done)
}
