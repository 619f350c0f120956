package tasks

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) col() *firestore.CollectionRef {
	return r.fs.Collection("userTasks")
}

func (r *Repo) Create(ctx context.Context, t Task) (*Task, error) {
	ref := r.col().NewDoc()
	t.ID = ref.ID
	if _, err := ref.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &t, nil
}

func (r *Repo) Get(ctx context.Context, taskID string) (*Task, error) {
	doc, err := r.col().Doc(taskID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: task not found", ErrNotFound)
	}
	var t Task
	if err := doc.DataTo(&t); err != nil {
		return nil, fmt.Errorf("failed to parse task: %w", err)
	}
	if t.ID == "" {
		t.ID = doc.Ref.ID
	}
	return &t, nil
}

func (r *Repo) Update(ctx context.Context, taskID string, updates map[string]interface{}) (*Task, error) {
	ref := r.col().Doc(taskID)
	if _, err := ref.Set(ctx, updates, firestore.MergeAll); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return r.Get(ctx, taskID)
}

func (r *Repo) Delete(ctx context.Context, taskID string) error {
	if _, err := r.col().Doc(taskID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// List returns a user's tasks, newest first. A non-nil done filters to one
// side of the board.
func (r *Repo) List(ctx context.Context, userUID string, done *bool, limit int) ([]Task, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	q := r.col().Where("userUid", "==", userUID)
	if done != nil {
		q = q.Where("done", "==", *done)
	}
	it := q.OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx)
	defer it.Stop()

	out := []Task{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var t Task
		if err := doc.DataTo(&t); err != nil {
			continue
		}
		if t.ID == "" {
			t.ID = doc.Ref.ID
		}
		out = append(out, t)
	}
	return out, nil
}
