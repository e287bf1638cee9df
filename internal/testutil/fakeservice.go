// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"taskflow/internal/api"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = errors.New("not found")

// UpdateCall records one UpdateTask invocation.
type UpdateCall struct {
	ID     string
	Update api.TaskUpdate
}

// FakeService is an in-memory implementation of api.Service for
// testing.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []api.Task
	nextID int

	// Records of mutating calls.
	UpdateCalls []UpdateCall

	// Error injection for testing.
	ListTasksErr  error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error
	ToggleTaskErr error
	LoginErr      error
	RegisterErr   error
	ChatErr       error

	// LoginToken is returned by Login and Register.
	LoginToken string

	// ChatReply is returned by Chat.
	ChatReply string
}

// NewFakeService creates an empty fake backend.
func NewFakeService() *FakeService {
	return &FakeService{nextID: 1, LoginToken: "test-token", ChatReply: "ok"}
}

// AddTask seeds a task and returns it.
func (f *FakeService) AddTask(t api.Task) api.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == "" {
		t.ID = fmt.Sprintf("task-%d", f.nextID)
		f.nextID++
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	f.tasks = append(f.tasks, t)
	return t
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []api.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]api.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// ListTasks implements api.Service. Filtering honors status and
// priority; sorting is ignored, tasks come back in insertion order.
func (f *FakeService) ListTasks(ctx context.Context, filter api.ListFilter) ([]api.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []api.Task
	for _, t := range f.tasks {
		if filter.Status == api.StatusPending && t.Completed {
			continue
		}
		if filter.Status == api.StatusCompleted && !t.Completed {
			continue
		}
		if filter.Priority != api.PriorityNone && t.Priority != filter.Priority {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// CreateTask implements api.Service.
func (f *FakeService) CreateTask(ctx context.Context, req api.TaskCreate) (api.Task, error) {
	if f.CreateTaskErr != nil {
		return api.Task{}, f.CreateTaskErr
	}
	now := time.Now()
	return f.AddTask(api.Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Tags:        req.Tags,
		DueDate:     req.DueDate,
		Recurrence:  req.Recurrence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}), nil
}

// UpdateTask implements api.Service and records the call.
func (f *FakeService) UpdateTask(ctx context.Context, id string, req api.TaskUpdate) (api.Task, error) {
	if f.UpdateTaskErr != nil {
		return api.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls = append(f.UpdateCalls, UpdateCall{ID: id, Update: req})
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		t := &f.tasks[i]
		if req.Title != nil {
			t.Title = *req.Title
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Priority != nil {
			t.Priority = *req.Priority
		}
		if req.Tags != nil {
			t.Tags = *req.Tags
		}
		if req.DueDate != nil {
			t.DueDate = *req.DueDate
		}
		if req.Recurrence != nil {
			t.Recurrence = *req.Recurrence
		}
		t.UpdatedAt = time.Now()
		return *t, nil
	}
	return api.Task{}, ErrNotFound
}

// DeleteTask implements api.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ToggleTask implements api.Service.
func (f *FakeService) ToggleTask(ctx context.Context, id string) (api.Task, error) {
	if f.ToggleTaskErr != nil {
		return api.Task{}, f.ToggleTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Completed = !f.tasks[i].Completed
			f.tasks[i].UpdatedAt = time.Now()
			return f.tasks[i], nil
		}
	}
	return api.Task{}, ErrNotFound
}

// Login implements api.Service.
func (f *FakeService) Login(ctx context.Context, creds api.Credentials) (string, error) {
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	return f.LoginToken, nil
}

// Register implements api.Service.
func (f *FakeService) Register(ctx context.Context, creds api.Credentials) (string, error) {
	if f.RegisterErr != nil {
		return "", f.RegisterErr
	}
	return f.LoginToken, nil
}

// Chat implements api.Service.
func (f *FakeService) Chat(ctx context.Context, message string, agent api.AgentType) (api.ChatResponse, error) {
	if f.ChatErr != nil {
		return api.ChatResponse{}, f.ChatErr
	}
	if agent == "" {
		agent = api.AgentChat
	}
	return api.ChatResponse{Success: true, Message: f.ChatReply, AgentType: agent}, nil
}

// Prioritize implements api.Service.
func (f *FakeService) Prioritize(ctx context.Context, taskIDs []string, hint string) (api.PrioritizeResponse, error) {
	if f.ChatErr != nil {
		return api.PrioritizeResponse{}, f.ChatErr
	}
	resp := api.PrioritizeResponse{Success: true, Message: f.ChatReply}
	for _, id := range taskIDs {
		resp.Priorities = append(resp.Priorities, api.PriorityRecommendation{
			TaskID: id, Priority: "medium", Reason: "test",
		})
	}
	return resp, nil
}

// Decompose implements api.Service.
func (f *FakeService) Decompose(ctx context.Context, taskID string, maxSubtasks int) (api.DecomposeResponse, error) {
	if f.ChatErr != nil {
		return api.DecomposeResponse{}, f.ChatErr
	}
	return api.DecomposeResponse{
		Success:      true,
		ParentTaskID: taskID,
		Subtasks:     []api.SubtaskRecommendation{{Title: "step one", Priority: "medium", Effort: "low"}},
		Message:      f.ChatReply,
	}, nil
}

// AgentHealth implements api.Service.
func (f *FakeService) AgentHealth(ctx context.Context) (api.HealthCheck, error) {
	if f.ChatErr != nil {
		return api.HealthCheck{}, f.ChatErr
	}
	return api.HealthCheck{
		Primary:  map[string]any{"status": "ok"},
		Fallback: map[string]any{"status": "ok"},
	}, nil
}
