package api

import (
	"net/url"
	"time"
)

// Priority levels recognized by the backend. The empty string means the
// task has no priority.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityNone   Priority = ""
)

// Recurrence is display-only metadata; the client never expands it.
type Recurrence string

const (
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceNone    Recurrence = ""
)

// DateLayout is the wire format for due dates. Due dates carry no time
// component and are compared at day granularity throughout.
const DateLayout = "2006-01-02"

// Task is the backend's task representation. The server owns id and the
// timestamps; the client only reads and writes tasks through the API.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	Tags        []string   `json:"tags"`
	DueDate     string     `json:"due_date"` // YYYY-MM-DD, empty when unset
	Recurrence  Recurrence `json:"recurrence"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskCreate is the payload for creating a task.
type TaskCreate struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	DueDate     string     `json:"due_date,omitempty"`
	Recurrence  Recurrence `json:"recurrence,omitempty"`
}

// TaskUpdate is a partial update; nil fields are left untouched by the
// server.
type TaskUpdate struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Priority    *Priority   `json:"priority,omitempty"`
	Tags        *[]string   `json:"tags,omitempty"`
	DueDate     *string     `json:"due_date,omitempty"`
	Recurrence  *Recurrence `json:"recurrence,omitempty"`
}

// Status filters a task listing by completion state.
type Status string

const (
	StatusAny       Status = ""
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// SortField selects the server-side sort column.
type SortField string

const (
	SortCreated  SortField = "created_at"
	SortDueDate  SortField = "due_date"
	SortPriority SortField = "priority"
	SortTitle    SortField = "title"
)

// SortOrder selects the sort direction.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ListFilter enumerates the recognized listing options. Zero values are
// omitted from the query string.
type ListFilter struct {
	Status   Status
	Priority Priority
	Tag      string
	Sort     SortField
	Order    SortOrder
}

// Query encodes the filter as URL query parameters.
func (f ListFilter) Query() url.Values {
	q := url.Values{}
	if f.Status != StatusAny {
		q.Set("status", string(f.Status))
	}
	if f.Priority != PriorityNone {
		q.Set("priority", string(f.Priority))
	}
	if f.Tag != "" {
		q.Set("tags", f.Tag)
	}
	if f.Sort != "" {
		q.Set("sort", string(f.Sort))
	}
	if f.Order != "" {
		q.Set("order", string(f.Order))
	}
	return q
}

// Credentials is the login/register payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries the bearer credential returned by auth calls.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// AgentType identifies which assistant handles a chat message.
type AgentType string

const (
	AgentChat        AgentType = "chat"
	AgentPrioritizer AgentType = "prioritizer"
	AgentDecomposer  AgentType = "decomposer"
)

// ChatResponse is the assistant's reply; the client displays the
// message text opaquely.
type ChatResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	AgentType AgentType `json:"agent_type"`
}

// PriorityRecommendation is one entry of a prioritize response.
type PriorityRecommendation struct {
	TaskID   string `json:"task_id"`
	Priority string `json:"priority"`
	Reason   string `json:"reason"`
}

// PrioritizeResponse is the prioritizer agent's reply.
type PrioritizeResponse struct {
	Success    bool                     `json:"success"`
	Priorities []PriorityRecommendation `json:"priorities"`
	Message    string                   `json:"message"`
}

// SubtaskRecommendation is one suggested subtask of a decompose
// response.
type SubtaskRecommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Effort      string `json:"effort"`
}

// DecomposeResponse is the decomposer agent's reply.
type DecomposeResponse struct {
	Success      bool                    `json:"success"`
	ParentTaskID string                  `json:"parent_task_id"`
	Subtasks     []SubtaskRecommendation `json:"subtasks"`
	Message      string                  `json:"message"`
}

// HealthCheck reports the status of the assistant's language models.
type HealthCheck struct {
	Primary  map[string]any `json:"primary"`
	Fallback map[string]any `json:"fallback"`
}
