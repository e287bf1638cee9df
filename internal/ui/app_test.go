package ui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskflow/internal/api"
	"taskflow/internal/calendar"
	"taskflow/internal/config"
	"taskflow/internal/session"
	"taskflow/internal/testutil"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, fake *testutil.FakeService) App {
	t.Helper()
	cfg, err := config.LoadOrCreate(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	a := New(fake, session.New(t.TempDir()), cfg)
	a.now = func() time.Time { return testNow }
	return a
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func press(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	next, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return next, cmd
}

func TestDragDropIssuesSingleUpdate(t *testing.T) {
	fake := testutil.NewFakeService()
	seeded := fake.AddTask(api.Task{Title: "ship release", DueDate: "2026-03-10"})

	a := newTestApp(t, fake)
	a.screen = screenCalendar
	a.cal.view = calendar.ViewDay
	a.cal.anchor = testNow
	a.tasks = fake.Tasks()

	a, _ = press(t, a, keyRune('g'))
	if a.cal.drag == nil {
		t.Fatal("grab did not start a drag")
	}

	a, _ = press(t, a, keyRune(']'))
	a, cmd := press(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if a.cal.drag != nil {
		t.Fatal("drag not cleared by drop")
	}
	if cmd == nil {
		t.Fatal("drop produced no command")
	}

	msg, ok := cmd().(rescheduledMsg)
	if !ok {
		t.Fatalf("drop command returned %T", cmd())
	}
	if msg.err != nil {
		t.Fatalf("reschedule failed: %v", msg.err)
	}
	if msg.date != "2026-03-11" {
		t.Fatalf("rescheduled to %q, want 2026-03-11", msg.date)
	}

	if len(fake.UpdateCalls) != 1 {
		t.Fatalf("UpdateTask called %d times, want 1", len(fake.UpdateCalls))
	}
	call := fake.UpdateCalls[0]
	if call.ID != seeded.ID {
		t.Fatalf("updated task %q, want %q", call.ID, seeded.ID)
	}
	if call.Update.DueDate == nil || *call.Update.DueDate != "2026-03-11" {
		t.Fatalf("update = %+v, want due_date only", call.Update)
	}
	if call.Update.Title != nil || call.Update.Priority != nil || call.Update.Tags != nil {
		t.Fatalf("update touched unrelated fields: %+v", call.Update)
	}
}

func TestDragCancelSendsNothing(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(api.Task{Title: "ship release", DueDate: "2026-03-10"})

	a := newTestApp(t, fake)
	a.screen = screenCalendar
	a.cal.view = calendar.ViewDay
	a.cal.anchor = testNow
	a.tasks = fake.Tasks()

	a, _ = press(t, a, keyRune('g'))
	a, _ = press(t, a, keyRune(']'))
	a, cmd := press(t, a, tea.KeyMsg{Type: tea.KeyEscape})
	if a.cal.drag != nil {
		t.Fatal("escape did not clear the drag")
	}
	if cmd != nil {
		t.Fatal("cancel produced a command")
	}
	if len(fake.UpdateCalls) != 0 {
		t.Fatalf("UpdateTask called %d times, want 0", len(fake.UpdateCalls))
	}
}

func TestDropOnOriginalDayIsNoop(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(api.Task{Title: "ship release", DueDate: "2026-03-10"})

	a := newTestApp(t, fake)
	a.screen = screenCalendar
	a.cal.view = calendar.ViewDay
	a.cal.anchor = testNow
	a.tasks = fake.Tasks()

	a, _ = press(t, a, keyRune('g'))
	a, cmd := press(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if a.cal.drag != nil {
		t.Fatal("drag not cleared")
	}
	if cmd != nil {
		t.Fatal("same-day drop produced a command")
	}
	if len(fake.UpdateCalls) != 0 {
		t.Fatalf("UpdateTask called %d times, want 0", len(fake.UpdateCalls))
	}
}

func TestUnauthorizedRedirectsToLogin(t *testing.T) {
	fake := testutil.NewFakeService()
	a := newTestApp(t, fake)
	if err := a.sess.Save("stale-token"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	a.screen = screenDashboard

	a, _ = press(t, a, tasksLoadedMsg{seq: 1, err: api.ErrUnauthorized})
	if a.screen != screenLogin {
		t.Fatalf("screen = %v, want login", a.screen)
	}
	if a.sess.Active() {
		t.Fatal("session still active after 401")
	}
	if a.login.notice == "" {
		t.Fatal("no notice shown after session expiry")
	}
}

func TestStaleListResponseDropped(t *testing.T) {
	fake := testutil.NewFakeService()
	a := newTestApp(t, fake)
	a.screen = screenTasks
	a.tasks = []api.Task{{ID: "current", Title: "current"}}
	a.refreshSeq = 2

	a, _ = press(t, a, tasksLoadedMsg{seq: 1, tasks: []api.Task{{ID: "old", Title: "old"}}})
	if len(a.tasks) != 1 || a.tasks[0].ID != "current" {
		t.Fatalf("stale response replaced the list: %+v", a.tasks)
	}

	a, _ = press(t, a, tasksLoadedMsg{seq: 2, tasks: []api.Task{{ID: "new", Title: "new"}}})
	if len(a.tasks) != 1 || a.tasks[0].ID != "new" {
		t.Fatalf("current response not applied: %+v", a.tasks)
	}
}

func TestToggleFromTaskList(t *testing.T) {
	fake := testutil.NewFakeService()
	seeded := fake.AddTask(api.Task{Title: "water plants"})

	a := newTestApp(t, fake)
	a.screen = screenTasks
	a.tasks = fake.Tasks()

	a, cmd := press(t, a, tea.KeyMsg{Type: tea.KeySpace})
	if cmd == nil {
		t.Fatal("toggle produced no command")
	}
	msg, ok := cmd().(taskMutatedMsg)
	if !ok || msg.err != nil {
		t.Fatalf("toggle result = %T %v", cmd(), msg.err)
	}
	if got := fake.Tasks()[0]; got.ID != seeded.ID || !got.Completed {
		t.Fatalf("task not completed: %+v", got)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(api.Task{Title: "old chore"})

	a := newTestApp(t, fake)
	a.screen = screenTasks
	a.tasks = fake.Tasks()

	a, _ = press(t, a, keyRune('d'))
	if !a.list.confirmDel {
		t.Fatal("delete did not ask for confirmation")
	}

	// Declining leaves the task alone.
	a, _ = press(t, a, keyRune('n'))
	if len(fake.Tasks()) != 1 {
		t.Fatal("task deleted without confirmation")
	}

	a, _ = press(t, a, keyRune('d'))
	a, cmd := press(t, a, keyRune('y'))
	if cmd == nil {
		t.Fatal("confirmed delete produced no command")
	}
	if msg := cmd().(taskMutatedMsg); msg.err != nil {
		t.Fatalf("delete failed: %v", msg.err)
	}
	if len(fake.Tasks()) != 0 {
		t.Fatal("task still present after delete")
	}
}

func TestLoginValidationBlocksRequest(t *testing.T) {
	fake := testutil.NewFakeService()
	a := newTestApp(t, fake)

	a.login.email.SetValue("not-an-email")
	a.login.password.SetValue("pw")
	a.login.focus = 1

	a, cmd := press(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("invalid form produced a command")
	}
	if a.login.errMsg == "" {
		t.Fatal("no inline validation message")
	}
}

func TestRegisterRequiresLongPassword(t *testing.T) {
	fake := testutil.NewFakeService()
	a := newTestApp(t, fake)

	a.login.register = true
	a.login.email.SetValue("user@example.com")
	a.login.password.SetValue("short")
	a.login.focus = 1

	a, cmd := press(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("short password produced a command")
	}
	if a.login.errMsg == "" {
		t.Fatal("no inline validation message")
	}
}

func TestAuthSuccessStoresTokenAndLands(t *testing.T) {
	fake := testutil.NewFakeService()
	a := newTestApp(t, fake)

	a.login.email.SetValue("user@example.com")
	a.login.password.SetValue("hunter22!")
	a.login.focus = 1

	a, cmd := press(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("submit produced no command")
	}
	msg, ok := cmd().(authResultMsg)
	if !ok {
		t.Fatalf("submit returned %T", cmd())
	}

	a, _ = press(t, a, msg)
	if a.screen != screenDashboard {
		t.Fatalf("screen = %v, want dashboard", a.screen)
	}
	if got := a.sess.Token(); got != "test-token" {
		t.Fatalf("stored token = %q", got)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	fake := testutil.NewFakeService()
	a := newTestApp(t, fake)
	if err := a.sess.Save("tok"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	a.screen = screenDashboard

	a, _ = press(t, a, keyRune('L'))
	if a.screen != screenLogin {
		t.Fatalf("screen = %v, want login", a.screen)
	}
	if a.sess.Active() {
		t.Fatal("session still active after logout")
	}
}

func TestToastAutoDismiss(t *testing.T) {
	fake := testutil.NewFakeService()
	a := newTestApp(t, fake)

	a2, cmd := a.showToast("Task created", false)
	if a2.toastText != "Task created" || cmd == nil {
		t.Fatalf("toast not shown: %+v", a2.toastText)
	}
	firstID := a2.toastID

	// A newer toast invalidates the older dismiss timer.
	a3, _ := a2.showToast("Task deleted", false)
	a3, _ = press(t, a3, toastClearMsg{id: firstID})
	if a3.toastText != "Task deleted" {
		t.Fatalf("stale dismiss cleared the active toast: %q", a3.toastText)
	}

	a3, _ = press(t, a3, toastClearMsg{id: a3.toastID})
	if a3.toastText != "" {
		t.Fatalf("toast not dismissed: %q", a3.toastText)
	}
}

func TestRefreshTasksBumpsSequence(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(api.Task{Title: "one"})

	a := newTestApp(t, fake)
	a.screen = screenDashboard

	a2, cmd := a.refreshTasks()
	if a2.refreshSeq != a.refreshSeq+1 {
		t.Fatalf("refreshSeq = %d, want %d", a2.refreshSeq, a.refreshSeq+1)
	}
	if !a2.loading {
		t.Fatal("loading flag not set")
	}
	msg, ok := cmd().(tasksLoadedMsg)
	if !ok || msg.err != nil {
		t.Fatalf("fetch result = %T %v", cmd(), msg.err)
	}
	if msg.seq != a2.refreshSeq || len(msg.tasks) != 1 {
		t.Fatalf("fetch msg = %+v", msg)
	}
}
