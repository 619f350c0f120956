package tasks

import (
	"context"
	"fmt"
	"testing"

	"gymdesk/backend/internal/domain/clients"
)

type mockStore struct {
	createFn func(ctx context.Context, t Task) (*Task, error)
	getFn    func(ctx context.Context, taskID string) (*Task, error)
	updateFn func(ctx context.Context, taskID string, updates map[string]interface{}) (*Task, error)
	deleteFn func(ctx context.Context, taskID string) error
	listFn   func(ctx context.Context, userUID string, done *bool, limit int) ([]Task, error)
}

func (m *mockStore) Create(ctx context.Context, t Task) (*Task, error) { return m.createFn(ctx, t) }
func (m *mockStore) Get(ctx context.Context, id string) (*Task, error) { return m.getFn(ctx, id) }
func (m *mockStore) Update(ctx context.Context, id string, u map[string]interface{}) (*Task, error) {
	return m.updateFn(ctx, id, u)
}
func (m *mockStore) Delete(ctx context.Context, id string) error { return m.deleteFn(ctx, id) }
func (m *mockStore) List(ctx context.Context, u string, done *bool, limit int) ([]Task, error) {
	return m.listFn(ctx, u, done, limit)
}

type mockClients struct {
	getFn func(ctx context.Context, uid, clientID string) (*clients.Client, error)
}

func (m *mockClients) Get(ctx context.Context, uid, clientID string) (*clients.Client, error) {
	return m.getFn(ctx, uid, clientID)
}

func TestCreateTaskValidation(t *testing.T) {
	svc := NewService(&mockStore{}, &mockClients{
		getFn: func(ctx context.Context, uid, clientID string) (*clients.Client, error) {
			return nil, fmt.Errorf("%w: client not found", clients.ErrNotFound)
		},
	})
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateTaskInput
	}{
		{"missing title", CreateTaskInput{Notes: "call back"}},
		{"blank title", CreateTaskInput{Title: "   "}},
		{"bad due date", CreateTaskInput{Title: "Call Acme", DueDate: "next tuesday"}},
		{"unknown client", CreateTaskInput{Title: "Call Acme", ClientID: "missing"}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, "u1", tc.in); !IsErrBadRequest(err) {
			t.Errorf("%s: want bad request, got %v", tc.name, err)
		}
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	store := &mockStore{
		createFn: func(ctx context.Context, task Task) (*Task, error) {
			task.ID = "t1"
			return &task, nil
		},
	}
	svc := NewService(store, &mockClients{
		getFn: func(ctx context.Context, uid, clientID string) (*clients.Client, error) {
			return &clients.Client{ID: clientID, UserUID: uid}, nil
		},
	})

	task, err := svc.Create(context.Background(), "u1", CreateTaskInput{
		Title:    "  Send contract  ",
		ClientID: "c1",
		DueDate:  "2026-09-15",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Title != "Send contract" {
		t.Errorf("title not trimmed: %q", task.Title)
	}
	if task.UserUID != "u1" || task.Done {
		t.Errorf("unexpected task: %+v", task)
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestTaskOwnership(t *testing.T) {
	store := &mockStore{
		getFn: func(ctx context.Context, id string) (*Task, error) {
			return &Task{ID: id, UserUID: "owner"}, nil
		},
	}
	svc := NewService(store, &mockClients{})
	ctx := context.Background()

	if _, err := svc.Get(ctx, "intruder", "t1"); !IsErrNotFound(err) {
		t.Errorf("get: want not found for foreign task, got %v", err)
	}
	if err := svc.Delete(ctx, "intruder", "t1"); !IsErrNotFound(err) {
		t.Errorf("delete: want not found for foreign task, got %v", err)
	}
	done := true
	if _, err := svc.Update(ctx, "intruder", "t1", UpdateTaskInput{Done: &done}); !IsErrNotFound(err) {
		t.Errorf("update: want not found for foreign task, got %v", err)
	}
}

func TestUpdateTaskDone(t *testing.T) {
	var got map[string]interface{}
	store := &mockStore{
		getFn: func(ctx context.Context, id string) (*Task, error) {
			return &Task{ID: id, UserUID: "u1"}, nil
		},
		updateFn: func(ctx context.Context, id string, updates map[string]interface{}) (*Task, error) {
			got = updates
			return &Task{ID: id, UserUID: "u1", Done: true}, nil
		},
	}
	svc := NewService(store, &mockClients{})

	done := true
	if _, err := svc.Update(context.Background(), "u1", "t1", UpdateTaskInput{Done: &done}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got["done"] != true {
		t.Errorf("done not set: %v", got)
	}
	if got["completedAt"] == nil {
		t.Error("completedAt not set on completion")
	}

	done = false
	if _, err := svc.Update(context.Background(), "u1", "t1", UpdateTaskInput{Done: &done}); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got["completedAt"] != nil {
		t.Error("completedAt not cleared on reopen")
	}
}

func TestUpdateTaskNoFields(t *testing.T) {
	store := &mockStore{
		getFn: func(ctx context.Context, id string) (*Task, error) {
			return &Task{ID: id, UserUID: "u1"}, nil
		},
	}
	svc := NewService(store, &mockClients{})
	if _, err := svc.Update(context.Background(), "u1", "t1", UpdateTaskInput{}); !IsErrBadRequest(err) {
		t.Errorf("want bad request for empty update, got %v", err)
	}
}
