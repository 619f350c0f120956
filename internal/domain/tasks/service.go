package tasks

import (
	"context"
	"fmt"
	"time"

	"gymdesk/backend/internal/domain/clients"
	"gymdesk/backend/internal/utils"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, t Task) (*Task, error)
	Get(ctx context.Context, taskID string) (*Task, error)
	Update(ctx context.Context, taskID string, updates map[string]interface{}) (*Task, error)
	Delete(ctx context.Context, taskID string) error
	List(ctx context.Context, userUID string, done *bool, limit int) ([]Task, error)
}

// ClientSource resolves a CRM client a task is pinned to.
type ClientSource interface {
	Get(ctx context.Context, uid, clientID string) (*clients.Client, error)
}

type Service struct {
	store   Store
	clients ClientSource
}

func NewService(store Store, clientSource ClientSource) *Service {
	return &Service{store: store, clients: clientSource}
}

func (s *Service) Create(ctx context.Context, uid string, in CreateTaskInput) (*Task, error) {
	in.Trim()
	if err := checkInput(&in); err != nil {
		return nil, err
	}
	if in.DueDate != "" && !utils.IsValidDate(in.DueDate) {
		return nil, fmt.Errorf("%w: dueDate must be YYYY-MM-DD", ErrBadRequest)
	}
	if in.ClientID != "" {
		if _, err := s.clients.Get(ctx, uid, in.ClientID); err != nil {
			return nil, fmt.Errorf("%w: client %s not found", ErrBadRequest, in.ClientID)
		}
	}

	now := time.Now().UTC()
	return s.store.Create(ctx, Task{
		UserUID:   uid,
		Title:     in.Title,
		Notes:     in.Notes,
		ClientID:  in.ClientID,
		DueDate:   in.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Get returns a task the caller owns.
func (s *Service) Get(ctx context.Context, uid, taskID string) (*Task, error) {
	t, err := s.store.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.UserUID != uid {
		return nil, fmt.Errorf("%w: task not found", ErrNotFound)
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, uid string, done *bool, limit int) ([]Task, error) {
	return s.store.List(ctx, uid, done, limit)
}

func (s *Service) Update(ctx context.Context, uid, taskID string, in UpdateTaskInput) (*Task, error) {
	if _, err := s.Get(ctx, uid, taskID); err != nil {
		return nil, err
	}
	in.Trim()
	if err := checkInput(&in); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		if *in.Title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrBadRequest)
		}
		updates["title"] = *in.Title
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if in.DueDate != nil {
		if *in.DueDate != "" && !utils.IsValidDate(*in.DueDate) {
			return nil, fmt.Errorf("%w: dueDate must be YYYY-MM-DD", ErrBadRequest)
		}
		updates["dueDate"] = *in.DueDate
	}
	if in.Done != nil {
		updates["done"] = *in.Done
		if *in.Done {
			updates["completedAt"] = time.Now().UTC()
		} else {
			updates["completedAt"] = nil
		}
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrBadRequest)
	}
	updates["updatedAt"] = time.Now().UTC()

	return s.store.Update(ctx, taskID, updates)
}

func (s *Service) Delete(ctx context.Context, uid, taskID string) error {
	if _, err := s.Get(ctx, uid, taskID); err != nil {
		return err
	}
	return s.store.Delete(ctx, taskID)
}
