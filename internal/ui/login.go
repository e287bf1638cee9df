package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskflow/internal/api"
)

// minPasswordLen matches the backend's registration rule; checking it
// here avoids a doomed request.
const minPasswordLen = 8

type loginState struct {
	email    textinput.Model
	password textinput.Model
	focus    int // 0 = email, 1 = password
	register bool
	errMsg   string
	notice   string
	busy     bool
}

func newLoginState() loginState {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254
	email.Width = 40

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 40
	password.EchoMode = textinput.EchoPassword

	return loginState{email: email, password: password}
}

func (a App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.login.busy {
		return a, nil
	}
	switch msg.String() {
	case "tab", "down":
		return a.loginFocus((a.login.focus + 1) % 2)
	case "shift+tab", "up":
		return a.loginFocus((a.login.focus + 1) % 2)
	case "ctrl+t":
		a.login.register = !a.login.register
		a.login.errMsg = ""
		return a, nil
	case "enter":
		if a.login.focus == 0 {
			return a.loginFocus(1)
		}
		return a.submitAuth()
	default:
		var cmd tea.Cmd
		if a.login.focus == 0 {
			a.login.email, cmd = a.login.email.Update(msg)
		} else {
			a.login.password, cmd = a.login.password.Update(msg)
		}
		return a, cmd
	}
}

func (a App) loginFocus(idx int) (tea.Model, tea.Cmd) {
	a.login.focus = idx
	if idx == 0 {
		a.login.password.Blur()
		return a, a.login.email.Focus()
	}
	a.login.email.Blur()
	return a, a.login.password.Focus()
}

// submitAuth validates locally before sending anything; validation
// failures re-render the form with an inline message and no request.
func (a App) submitAuth() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(a.login.email.Value())
	password := a.login.password.Value()

	if email == "" || !strings.Contains(email, "@") {
		a.login.errMsg = "Enter a valid email address"
		return a, nil
	}
	if a.login.register && len(password) < minPasswordLen {
		a.login.errMsg = "Password must be at least 8 characters"
		return a, nil
	}
	if password == "" {
		a.login.errMsg = "Password is required"
		return a, nil
	}

	a.login.errMsg = ""
	a.login.busy = true
	svc := a.svc
	register := a.login.register
	creds := api.Credentials{Email: email, Password: password}
	return a, func() tea.Msg {
		var (
			token string
			err   error
		)
		if register {
			token, err = svc.Register(context.Background(), creds)
		} else {
			token, err = svc.Login(context.Background(), creds)
		}
		return authResultMsg{token: token, err: err}
	}
}

func (a App) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	a.login.busy = false
	if msg.err != nil {
		// Invalid credentials come back as a plain API error; show it
		// inline on the form rather than as a toast.
		var apiErr *api.Error
		switch {
		case errors.Is(msg.err, api.ErrUnauthorized):
			a.login.errMsg = "Invalid email or password"
		case errors.As(msg.err, &apiErr):
			a.login.errMsg = apiErr.Detail
			if a.login.errMsg == "" {
				a.login.errMsg = "Request failed, try again"
			}
		default:
			a.login.errMsg = msg.err.Error()
		}
		return a, nil
	}
	if err := a.sess.Save(msg.token); err != nil {
		a.login.errMsg = "Could not store credential: " + err.Error()
		return a, nil
	}
	a.screen = screenDashboard
	a.login = newLoginState()
	a2, cmd := a.refreshTasks()
	return a2, tea.Batch(a2.spin.Tick, cmd)
}

func (a App) viewLogin() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("TaskFlow"))
	b.WriteString("\n\n")
	if a.login.register {
		b.WriteString("Create an account\n\n")
	} else {
		b.WriteString("Sign in\n\n")
	}

	b.WriteString("Email:    " + a.login.email.View() + "\n")
	b.WriteString("Password: " + a.login.password.View() + "\n\n")

	if a.login.errMsg != "" {
		b.WriteString(errStyle.Render(a.login.errMsg))
		b.WriteString("\n")
	}
	if a.login.notice != "" {
		b.WriteString(dimStyle.Render(a.login.notice))
		b.WriteString("\n")
	}
	if a.login.busy {
		b.WriteString(dimStyle.Render("Signing in..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	mode := "create an account"
	if a.login.register {
		mode = "sign in instead"
	}
	b.WriteString(dimStyle.Render("enter submit • tab switch field • ctrl+t " + mode + " • ctrl+c quit"))
	return b.String()
}
