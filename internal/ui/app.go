// Package ui implements the terminal front-end: one Bubble Tea program
// whose screens mirror the TaskFlow web views (login, dashboard, tasks,
// calendar, analytics, assistant).
package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"taskflow/internal/api"
	"taskflow/internal/calendar"
	"taskflow/internal/config"
	"taskflow/internal/session"
)

type screen int

const (
	screenLogin screen = iota
	screenDashboard
	screenTasks
	screenCalendar
	screenAnalytics
	screenAgent
)

// toastDuration is how long a transient confirmation or error stays on
// screen before auto-dismissing.
const toastDuration = 4 * time.Second

// Messages produced by async commands.
type (
	tasksLoadedMsg struct {
		seq   int
		tasks []api.Task
		err   error
	}
	taskMutatedMsg struct {
		verb string
		err  error
	}
	rescheduledMsg struct {
		date string
		err  error
	}
	authResultMsg struct {
		token string
		err   error
	}
	agentReplyMsg struct {
		text string
		err  error
	}
	toastClearMsg struct{ id int }
)

// App is the root model. Each screen keeps its state in a sub-struct
// but shares the page-scoped task list; there is no cross-page cache.
type App struct {
	svc  api.Service
	sess *session.Store
	cfg  config.Config
	now  func() time.Time

	screen screen
	width  int
	height int

	tasks   []api.Task
	loading bool
	spin    spinner.Model

	// refreshSeq tags every task-list fetch; a response carrying a
	// stale sequence is dropped so the latest refetch always wins.
	refreshSeq int

	toastText string
	toastErr  bool
	toastID   int

	login loginState
	list  tasksState
	cal   calState
	stats statsState
	agent agentState
}

// Run starts the program and blocks until it exits.
func Run(svc api.Service, sess *session.Store, cfg config.Config) error {
	program := tea.NewProgram(New(svc, sess, cfg), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// New builds the root model. The session decides the initial screen:
// protected views are only reachable with a stored credential.
func New(svc api.Service, sess *session.Store, cfg config.Config) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	a := App{
		svc:    svc,
		sess:   sess,
		cfg:    cfg,
		now:    time.Now,
		screen: screenLogin,
		spin:   sp,
		login:  newLoginState(),
		list:   newTasksState(cfg),
		agent:  newAgentState(),
	}
	a.cal = newCalState(cfg, a.now())
	a.stats = newStatsState(cfg)
	if sess.Active() {
		a.screen = screenDashboard
	}
	return a
}

func (a App) Init() tea.Cmd {
	if a.screen == screenLogin {
		return a.login.email.Focus()
	}
	_, cmd := a.refreshTasks()
	return tea.Batch(a.spin.Tick, cmd)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		if a.loading {
			return a, cmd
		}
		return a, nil

	case tasksLoadedMsg:
		if msg.seq < a.refreshSeq {
			// A newer refetch is in flight; this result is stale.
			return a, nil
		}
		a.refreshSeq = msg.seq
		a.loading = false
		if msg.err != nil {
			return a.handleAPIError(msg.err)
		}
		a.tasks = msg.tasks
		a.list.cursor = clampCursor(a.list.cursor, len(a.tasks))
		return a, nil

	case taskMutatedMsg:
		if msg.err != nil {
			return a.handleAPIError(msg.err)
		}
		a2, toastCmd := a.showToast("Task "+msg.verb, false)
		a3, fetchCmd := a2.refreshTasks()
		return a3, tea.Batch(toastCmd, fetchCmd)

	case rescheduledMsg:
		if msg.err != nil {
			return a.handleAPIError(msg.err)
		}
		a2, toastCmd := a.showToast("Rescheduled to "+msg.date, false)
		a3, fetchCmd := a2.refreshTasks()
		return a3, tea.Batch(toastCmd, fetchCmd)

	case authResultMsg:
		return a.handleAuthResult(msg)

	case agentReplyMsg:
		return a.handleAgentReply(msg)

	case toastClearMsg:
		if msg.id == a.toastID {
			a.toastText = ""
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	switch a.screen {
	case screenLogin:
		return a.updateLogin(msg)
	case screenDashboard:
		return a.updateDashboard(msg)
	case screenTasks:
		return a.updateTasks(msg)
	case screenCalendar:
		return a.updateCalendar(msg)
	case screenAnalytics:
		return a.updateAnalytics(msg)
	case screenAgent:
		return a.updateAgent(msg)
	}
	return a, nil
}

// updateGlobal handles the keys shared by every protected screen. It
// only runs when no text input has focus.
func (a App) updateGlobal(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case a.cfg.Keys.Quit:
		return a, tea.Quit, true
	case "1":
		a.screen = screenDashboard
		return a, nil, true
	case "2":
		a.screen = screenTasks
		return a, nil, true
	case "3":
		a.screen = screenCalendar
		return a, nil, true
	case "4":
		a.screen = screenAnalytics
		return a, nil, true
	case "5":
		a.screen = screenAgent
		a.agent.input.Focus()
		return a, nil, true
	case a.cfg.Keys.Refresh:
		a2, cmd := a.refreshTasks()
		return a2, cmd, true
	case a.cfg.Keys.Logout:
		return a.logout("Signed out")
	}
	return a, nil, false
}

// logout tears the session down and returns to the login screen. This
// is the single teardown point; 401 handling funnels through it too.
func (a App) logout(notice string) (tea.Model, tea.Cmd, bool) {
	_ = a.sess.Clear()
	a.screen = screenLogin
	a.tasks = nil
	a.login = newLoginState()
	a.login.notice = notice
	return a, a.login.email.Focus(), true
}

// refreshTasks bumps the refresh sequence and refetches the list with
// the current filter. Callers batch the returned command.
func (a App) refreshTasks() (App, tea.Cmd) {
	a.refreshSeq++
	a.loading = true
	seq := a.refreshSeq
	filter := a.list.filter
	svc := a.svc
	return a, func() tea.Msg {
		tasks, err := svc.ListTasks(context.Background(), filter)
		return tasksLoadedMsg{seq: seq, tasks: tasks, err: err}
	}
}

// handleAPIError routes request failures: a 401 from any operation
// discards the credential and redirects to login; everything else shows
// a transient error and leaves the displayed state intact.
func (a App) handleAPIError(err error) (tea.Model, tea.Cmd) {
	a.loading = false
	if errors.Is(err, api.ErrUnauthorized) {
		m, cmd, _ := a.logout("Session expired. Please sign in again.")
		return m, cmd
	}
	a2, cmd := a.showToast(err.Error(), true)
	return a2, cmd
}

// showToast displays a transient message that auto-dismisses.
func (a App) showToast(text string, isErr bool) (App, tea.Cmd) {
	a.toastID++
	a.toastText = text
	a.toastErr = isErr
	id := a.toastID
	return a, tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastClearMsg{id: id}
	})
}

func (a App) View() string {
	switch a.screen {
	case screenLogin:
		return a.viewLogin()
	case screenDashboard:
		return a.viewDashboard()
	case screenTasks:
		return a.viewTasks()
	case screenCalendar:
		return a.viewCalendar()
	case screenAnalytics:
		return a.viewAnalytics()
	case screenAgent:
		return a.viewAgent()
	}
	return ""
}

// navBar renders the screen tabs shown on every protected view.
func (a App) navBar() string {
	labels := []string{"1 Dashboard", "2 Tasks", "3 Calendar", "4 Analytics", "5 Assistant"}
	active := int(a.screen) - int(screenDashboard)
	out := ""
	for i, l := range labels {
		if i == active {
			out += tabActiveStyle.Render(l)
		} else {
			out += tabStyle.Render(l)
		}
		if i < len(labels)-1 {
			out += " "
		}
	}
	if a.loading {
		out += "  " + a.spin.View()
	}
	return out
}

// toastLine renders the transient notification, or an empty line to
// keep the layout stable.
func (a App) toastLine() string {
	if a.toastText == "" {
		return ""
	}
	if a.toastErr {
		return errStyle.Render("✗ " + a.toastText)
	}
	return okStyle.Render("✓ " + a.toastText)
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

// dayKeyAt formats an instant as the wire-level date string.
func dayKeyAt(t time.Time) string {
	return t.Format(api.DateLayout)
}

// calViewFromConfig maps the configured default view name.
func calViewFromConfig(name string) calendar.ViewMode {
	switch name {
	case "week":
		return calendar.ViewWeek
	case "day":
		return calendar.ViewDay
	default:
		return calendar.ViewMonth
	}
}
