// Package api talks to the TaskFlow REST backend. All task, auth, and
// assistant operations go through the Service interface so the UI never
// depends on the HTTP transport directly.
package api

import "context"

// Service defines the backend operations the client consumes.
type Service interface {
	// ListTasks returns the user's tasks, filtered and sorted
	// server-side according to the filter.
	ListTasks(ctx context.Context, filter ListFilter) ([]Task, error)

	// CreateTask creates a task; the server assigns id and timestamps.
	CreateTask(ctx context.Context, req TaskCreate) (Task, error)

	// UpdateTask applies a partial update and returns the new
	// representation.
	UpdateTask(ctx context.Context, id string, req TaskUpdate) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error

	// ToggleTask flips a task's completion state.
	ToggleTask(ctx context.Context, id string) (Task, error)

	// Login authenticates and returns a bearer token.
	Login(ctx context.Context, creds Credentials) (string, error)

	// Register creates an account and returns a bearer token.
	Register(ctx context.Context, creds Credentials) (string, error)

	// Chat sends a message to an assistant agent.
	Chat(ctx context.Context, message string, agent AgentType) (ChatResponse, error)

	// Prioritize asks the assistant to rank the given tasks. The hint
	// is free-form context passed through to the agent.
	Prioritize(ctx context.Context, taskIDs []string, hint string) (PrioritizeResponse, error)

	// Decompose asks the assistant to split a task into subtasks.
	Decompose(ctx context.Context, taskID string, maxSubtasks int) (DecomposeResponse, error)

	// AgentHealth checks the assistant backend.
	AgentHealth(ctx context.Context) (HealthCheck, error)
}
