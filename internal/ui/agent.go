package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskflow/internal/api"
)

type chatLine struct {
	role string // "user" or "assistant"
	text string
}

// agentState holds the assistant transcript. The transcript lives in
// memory only and resets with the program.
type agentState struct {
	input      textinput.Model
	transcript []chatLine
	agent      api.AgentType
	busy       bool
}

func newAgentState() agentState {
	ti := textinput.New()
	ti.Placeholder = "Ask the assistant, or /prioritize, /decompose <n>, /health"
	ti.CharLimit = 1000
	ti.Width = 60
	return agentState{input: ti, agent: api.AgentChat}
}

func (a App) updateAgent(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.screen = screenDashboard
		return a, nil
	case "ctrl+g":
		a.agent.agent = nextAgent(a.agent.agent)
		return a, nil
	case "enter":
		if a.agent.busy {
			return a, nil
		}
		return a.submitAgentInput()
	default:
		// Digits still switch screens while the input is empty.
		if a.agent.input.Value() == "" {
			if m, cmd, handled := a.updateGlobal(msg.String()); handled {
				return m, cmd
			}
		}
		var cmd tea.Cmd
		a.agent.input, cmd = a.agent.input.Update(msg)
		return a, cmd
	}
}

func (a App) submitAgentInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(a.agent.input.Value())
	if text == "" {
		return a, nil
	}
	a.agent.input.SetValue("")
	a.agent.transcript = append(a.agent.transcript, chatLine{role: "user", text: text})
	a.agent.busy = true

	svc := a.svc
	switch {
	case strings.HasPrefix(text, "/health"):
		return a, func() tea.Msg {
			hc, err := svc.AgentHealth(context.Background())
			if err != nil {
				return agentReplyMsg{err: err}
			}
			return agentReplyMsg{text: formatHealth(hc)}
		}

	case strings.HasPrefix(text, "/prioritize"):
		hint := strings.TrimSpace(strings.TrimPrefix(text, "/prioritize"))
		ids := make([]string, 0, len(a.tasks))
		for _, t := range a.tasks {
			if !t.Completed {
				ids = append(ids, t.ID)
			}
		}
		if len(ids) == 0 {
			a.agent.busy = false
			a.agent.transcript = append(a.agent.transcript,
				chatLine{role: "assistant", text: "No pending tasks to prioritize."})
			return a, nil
		}
		titles := taskTitleIndex(a.tasks)
		return a, func() tea.Msg {
			resp, err := svc.Prioritize(context.Background(), ids, hint)
			if err != nil {
				return agentReplyMsg{err: err}
			}
			return agentReplyMsg{text: formatPrioritization(resp, titles)}
		}

	case strings.HasPrefix(text, "/decompose"):
		arg := strings.TrimSpace(strings.TrimPrefix(text, "/decompose"))
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(a.tasks) {
			a.agent.busy = false
			a.agent.transcript = append(a.agent.transcript, chatLine{
				role: "assistant",
				text: fmt.Sprintf("Usage: /decompose <n> where n is a task number from 1 to %d.", len(a.tasks)),
			})
			return a, nil
		}
		id := a.tasks[n-1].ID
		return a, func() tea.Msg {
			resp, err := svc.Decompose(context.Background(), id, 0)
			if err != nil {
				return agentReplyMsg{err: err}
			}
			return agentReplyMsg{text: formatDecomposition(resp)}
		}

	default:
		agent := a.agent.agent
		return a, func() tea.Msg {
			resp, err := svc.Chat(context.Background(), text, agent)
			if err != nil {
				return agentReplyMsg{err: err}
			}
			return agentReplyMsg{text: resp.Message}
		}
	}
}

func (a App) handleAgentReply(msg agentReplyMsg) (tea.Model, tea.Cmd) {
	a.agent.busy = false
	if msg.err != nil {
		return a.handleAPIError(msg.err)
	}
	a.agent.transcript = append(a.agent.transcript, chatLine{role: "assistant", text: msg.text})
	return a, nil
}

func nextAgent(t api.AgentType) api.AgentType {
	switch t {
	case api.AgentChat:
		return api.AgentPrioritizer
	case api.AgentPrioritizer:
		return api.AgentDecomposer
	default:
		return api.AgentChat
	}
}

func formatHealth(hc api.HealthCheck) string {
	var b strings.Builder
	b.WriteString("Agent backends:\n")
	writeBackend := func(name string, m map[string]any) {
		status := "unknown"
		if s, ok := m["status"].(string); ok {
			status = s
		}
		b.WriteString(fmt.Sprintf("  %s: %s\n", name, status))
	}
	writeBackend("primary", hc.Primary)
	writeBackend("fallback", hc.Fallback)
	return strings.TrimRight(b.String(), "\n")
}

func formatPrioritization(resp api.PrioritizeResponse, titles map[string]string) string {
	if len(resp.Priorities) == 0 {
		if resp.Message != "" {
			return resp.Message
		}
		return "No prioritization suggestions."
	}
	var b strings.Builder
	b.WriteString("Suggested priorities:\n")
	for _, r := range resp.Priorities {
		title := titles[r.TaskID]
		if title == "" {
			title = r.TaskID
		}
		b.WriteString(fmt.Sprintf("  %s -> %s", title, r.Priority))
		if r.Reason != "" {
			b.WriteString(" (" + r.Reason + ")")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatDecomposition(resp api.DecomposeResponse) string {
	if len(resp.Subtasks) == 0 {
		if resp.Message != "" {
			return resp.Message
		}
		return "No subtasks suggested."
	}
	var b strings.Builder
	b.WriteString("Suggested subtasks:\n")
	for i, s := range resp.Subtasks {
		b.WriteString(fmt.Sprintf("  %d. %s", i+1, s.Title))
		if s.Description != "" {
			b.WriteString(": " + s.Description)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func taskTitleIndex(tasks []api.Task) map[string]string {
	m := make(map[string]string, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t.Title
	}
	return m
}

func (a App) viewAgent() string {
	var b strings.Builder
	b.WriteString(a.navBar())
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("Assistant"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("mode: " + string(a.agent.agent)))
	b.WriteString("\n\n")

	if len(a.agent.transcript) == 0 {
		b.WriteString(dimStyle.Render("Ask anything about your tasks. Try /prioritize, /decompose <n>, or /health."))
		b.WriteString("\n")
	}
	for _, line := range a.agent.transcript {
		if line.role == "user" {
			b.WriteString(userStyle.Render("You: "))
		} else {
			b.WriteString(assistantStyle.Render("Assistant: "))
		}
		b.WriteString(line.text)
		b.WriteString("\n")
	}
	if a.agent.busy {
		b.WriteString(a.spin.View())
		b.WriteString(dimStyle.Render(" thinking..."))
		b.WriteString("\n")
	}

	b.WriteString("\n> ")
	b.WriteString(a.agent.input.View())
	b.WriteString("\n")
	b.WriteString(a.toastLine())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter send • ctrl+g agent mode • esc back • ctrl+c quit"))
	return b.String()
}
