package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestListTasksSendsAuthAndQuery(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		if r.Method != http.MethodGet || r.URL.Path != "/tasks" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode([]Task{{ID: "t1", Title: "one"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok-123"))
	filter := ListFilter{
		Status:   StatusPending,
		Priority: PriorityHigh,
		Sort:     SortDueDate,
		Order:    OrderAsc,
	}
	tasks, err := c.ListTasks(context.Background(), filter)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "t1" {
		t.Fatalf("tasks = %+v", tasks)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	want := "order=asc&priority=high&sort=due_date&status=pending"
	if gotQuery != want {
		t.Fatalf("query = %q, want %q", gotQuery, want)
	}
}

func TestNoAuthHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(TokenResponse{AccessToken: "fresh"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken(""))
	tok, err := c.Login(context.Background(), Credentials{Email: "a@b.c", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok != "fresh" {
		t.Fatalf("token = %q", tok)
	}
	if gotAuth != "" {
		t.Fatalf("Authorization = %q, want empty", gotAuth)
	}
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.ListTasks(context.Background(), ListFilter{})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestErrorDetailExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "title is required"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.CreateTask(context.Background(), TaskCreate{})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T %v, want *Error", err, err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Detail != "title is required" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
	if apiErr.Error() != "title is required" {
		t.Fatalf("Error() = %q", apiErr.Error())
	}
}

func TestErrorWithoutDetailBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	err := c.DeleteTask(context.Background(), "t1")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *Error", err)
	}
	if apiErr.Error() != "request failed with status 500" {
		t.Fatalf("Error() = %q", apiErr.Error())
	}
}

func TestDeleteTaskNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/tasks/t1" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if err := c.DeleteTask(context.Background(), "t1"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
}

func TestToggleTaskPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/tasks/t7/complete" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(Task{ID: "t7", Completed: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	task, err := c.ToggleTask(context.Background(), "t7")
	if err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if !task.Completed {
		t.Fatal("task not toggled")
	}
}

func TestUpdateTaskSendsOnlySetFields(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/tasks/t1" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(Task{ID: "t1", DueDate: "2026-04-01"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	due := "2026-04-01"
	if _, err := c.UpdateTask(context.Background(), "t1", TaskUpdate{DueDate: &due}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if len(body) != 1 || body["due_date"] != "2026-04-01" {
		t.Fatalf("body = %+v, want only due_date", body)
	}
}

func TestChatSendsAgentType(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/agents/chat" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(ChatResponse{Success: true, Message: "hi"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	resp, err := c.Chat(context.Background(), "hello", AgentPrioritizer)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Message != "hi" {
		t.Fatalf("resp = %+v", resp)
	}
	if body["message"] != "hello" || body["agent_type"] != "prioritizer" {
		t.Fatalf("body = %+v", body)
	}
}

func TestDecomposeDefaultsMaxSubtasks(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(DecomposeResponse{Success: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if _, err := c.Decompose(context.Background(), "t1", 0); err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if body["max_subtasks"] != float64(10) {
		t.Fatalf("max_subtasks = %v, want 10", body["max_subtasks"])
	}
}
