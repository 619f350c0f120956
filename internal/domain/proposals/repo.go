package proposals

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
	return r.fs.Collection("proposals")
}

func (r *Repo) Create(ctx context.Context, p Proposal) (*Proposal, error) {
	ref := r.col().NewDoc()
	p.ID = ref.ID
	if _, err := ref.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}
	return &p, nil
}

func (r *Repo) Get(ctx context.Context, proposalID string) (*Proposal, error) {
	doc, err := r.col().Doc(proposalID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: proposal not found", ErrNotFound)
	}
	var p Proposal
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to parse proposal: %w", err)
	}
	if p.ID == "" {
		p.ID = doc.Ref.ID
	}
	return &p, nil
}

func (r *Repo) Update(ctx context.Context, proposalID string, updates map[string]interface{}) (*Proposal, error) {
	ref := r.col().Doc(proposalID)
	if _, err := ref.Set(ctx, updates, firestore.MergeAll); err != nil {
		return nil, fmt.Errorf("failed to update proposal: %w", err)
	}
	return r.Get(ctx, proposalID)
}

func (r *Repo) Delete(ctx context.Context, proposalID string) error {
	if _, err := r.col().Doc(proposalID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete proposal: %w", err)
	}
	return nil
}

// List returns a user's proposals, newest first, optionally by status.
func (r *Repo) List(ctx context.Context, userUID, status string, limit int) ([]Proposal, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := r.col().Where("userUid", "==", userUID)
	if status != "" {
		q = q.Where("status", "==", status)
	}
	it := q.OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx)
	defer it.Stop()

	out := []Proposal{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var p Proposal
		if err := doc.DataTo(&p); err != nil {
			continue
		}
		if p.ID == "" {
			p.ID = doc.Ref.ID
		}
		out = append(out, p)
	}
	return out, nil
}
