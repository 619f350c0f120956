package members

import (
	"context"
	"fmt"
	"time"

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
	return r.fs.Collection("gymMembers")
}

func (r *Repo) Create(ctx context.Context, m Member) (*Member, error) {
	ref := r.col().NewDoc()
	m.ID = ref.ID
	if _, err := ref.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	return &m, nil
}

func (r *Repo) Get(ctx context.Context, memberID string) (*Member, error) {
	doc, err := r.col().Doc(memberID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: member not found", ErrNotFound)
	}
	var m Member
	if err := doc.DataTo(&m); err != nil {
		return nil, fmt.Errorf("failed to parse member: %w", err)
	}
	if m.ID == "" {
		m.ID = doc.Ref.ID
	}
	return &m, nil
}

func (r *Repo) Update(ctx context.Context, memberID string, updates map[string]interface{}) (*Member, error) {
	ref := r.col().Doc(memberID)
	if _, err := ref.Set(ctx, updates, firestore.MergeAll); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return r.Get(ctx, memberID)
}

// List returns members of a business, optionally filtered by status.
func (r *Repo) List(ctx context.Context, businessID, status string, limit int) ([]Member, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	q := r.col().Where("businessId", "==", businessID)
	if status != "" {
		q = q.Where("status", "==", status)
	}
	it := q.Limit(limit).Documents(ctx)
	defer it.Stop()

	out := []Member{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var m Member
		if err := doc.DataTo(&m); err != nil {
			continue
		}
		if m.ID == "" {
			m.ID = doc.Ref.ID
		}
		out = append(out, m)
	}
	return out, nil
}

// FindByEmail returns the member with the given email in a business, or
// ErrNotFound.
func (r *Repo) FindByEmail(ctx context.Context, businessID, email string) (*Member, error) {
	it := r.col().
		Where("businessId", "==", businessID).
		Where("email", "==", email).
		Limit(1).
		Documents(ctx)
	defer it.Stop()

	doc, err := it.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("%w: member not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var m Member
	if err := doc.DataTo(&m); err != nil {
		return nil, err
	}
	if m.ID == "" {
		m.ID = doc.Ref.ID
	}
	return &m, nil
}

// ChangeStatus writes the status change and its history entry atomically.
func (r *Repo) ChangeStatus(ctx context.Context, memberID string, change StatusChange) error {
	ref := r.col().Doc(memberID)
	batch := r.fs.Batch()
	batch.Set(ref, map[string]interface{}{
		"status":    change.To,
		"updatedAt": time.Now().UTC(),
	}, firestore.MergeAll)
	batch.Create(ref.Collection("history").NewDoc(), change)
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to change member status: %w", err)
	}
	return nil
}

// StatusHistory lists a member's status changes, newest first.
func (r *Repo) StatusHistory(ctx context.Context, memberID string) ([]StatusChange, error) {
	it := r.col().Doc(memberID).Collection("history").
		OrderBy("changedAt", firestore.Desc).
		Limit(100).
		Documents(ctx)
	defer it.Stop()

	out := []StatusChange{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var c StatusChange
		if err := doc.DataTo(&c); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// CountByStatus counts all members of a business grouped by status.
func (r *Repo) CountByStatus(ctx context.Context, businessID string) (map[string]int, error) {
	it := r.col().Where("businessId", "==", businessID).Documents(ctx)
	defer it.Stop()

	counts := map[string]int{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var m Member
		if err := doc.DataTo(&m); err != nil {
			continue
		}
		counts[m.Status]++
	}
	return counts, nil
}
