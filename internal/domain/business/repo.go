package business

import (
	"context"
	"fmt"
	"strings"
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
	return r.fs.Collection("businesses")
}

func (r *Repo) Create(ctx context.Context, b Business) (*Business, error) {
	ref := r.col().NewDoc()
	b.ID = ref.ID
	if _, err := ref.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create business: %w", err)
	}
	return &b, nil
}

func (r *Repo) Get(ctx context.Context, businessID string) (*Business, error) {
	doc, err := r.col().Doc(businessID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: business not found", ErrNotFound)
	}
	var b Business
	if err := doc.DataTo(&b); err != nil {
		return nil, fmt.Errorf("failed to parse business: %w", err)
	}
	if b.ID == "" {
		b.ID = doc.Ref.ID
	}
	return &b, nil
}

func (r *Repo) Update(ctx context.Context, businessID string, updates map[string]interface{}) (*Business, error) {
	ref := r.col().Doc(businessID)
	if _, err := ref.Set(ctx, updates, firestore.MergeAll); err != nil {
		return nil, fmt.Errorf("failed to update business: %w", err)
	}
	return r.Get(ctx, businessID)
}

// SearchByNamePrefix finds businesses by lowercase name prefix. Empty query
// returns the most recently created ones.
func (r *Repo) SearchByNamePrefix(ctx context.Context, q string, limit int64) ([]Business, error) {
	q = strings.TrimSpace(strings.ToLower(q))
	col := r.col()

	var it *firestore.DocumentIterator
	if q == "" {
		it = col.OrderBy("createdAt", firestore.Desc).Limit(int(limit)).Documents(ctx)
	} else {
		hi := q + "\uf8ff"
		it = col.Where("nameLower", ">=", q).
			Where("nameLower", "<", hi).
			OrderBy("nameLower", firestore.Asc).
			Limit(int(limit)).
			Documents(ctx)
	}

	out := []Business{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var b Business
		if err := doc.DataTo(&b); err != nil {
			return nil, err
		}
		if b.ID == "" {
			b.ID = doc.Ref.ID
		}
		out = append(out, b)
	}
	return out, nil
}

// ListForUser returns all businesses where uid is an owner.
func (r *Repo) ListForUser(ctx context.Context, uid string) ([]Business, error) {
	it := r.col().Where("ownerUids", "array-contains", uid).Documents(ctx)
	defer it.Stop()

	out := []Business{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var b Business
		if err := doc.DataTo(&b); err != nil {
			continue
		}
		if b.ID == "" {
			b.ID = doc.Ref.ID
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *Repo) IsOwner(ctx context.Context, businessID, uid string) (bool, error) {
	b, err := r.Get(ctx, businessID)
	if err != nil {
		return false, err
	}
	return b.IsOwner(uid), nil
}

func (r *Repo) IsStaff(ctx context.Context, businessID, uid string) (bool, error) {
	b, err := r.Get(ctx, businessID)
	if err != nil {
		return false, err
	}
	return b.IsStaff(uid), nil
}

// PutStaff adds or replaces a staff member inside a transaction so two
// concurrent edits don't clobber each other's array rewrite.
func (r *Repo) PutStaff(ctx context.Context, businessID string, sm StaffMember) error {
	ref := r.col().Doc(businessID)
	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return fmt.Errorf("%w: business not found", ErrNotFound)
		}
		var b Business
		if err := doc.DataTo(&b); err != nil {
			return err
		}

		replaced := false
		for i, s := range b.StaffMembers {
			if s.UID == sm.UID {
				b.StaffMembers[i] = sm
				replaced = true
				break
			}
		}
		if !replaced {
			b.StaffMembers = append(b.StaffMembers, sm)
		}

		return tx.Set(ref, map[string]interface{}{
			"staffMembers": b.StaffMembers,
			"updatedAt":    time.Now().UTC(),
		}, firestore.MergeAll)
	})
}

// RemoveStaff removes a staff member by uid.
func (r *Repo) RemoveStaff(ctx context.Context, businessID, uid string) error {
	ref := r.col().Doc(businessID)
	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return fmt.Errorf("%w: business not found", ErrNotFound)
		}
		var b Business
		if err := doc.DataTo(&b); err != nil {
			return err
		}

		kept := make([]StaffMember, 0, len(b.StaffMembers))
		for _, s := range b.StaffMembers {
			if s.UID != uid {
				kept = append(kept, s)
			}
		}
		if len(kept) == len(b.StaffMembers) {
			return fmt.Errorf("%w: staff member not found", ErrNotFound)
		}

		return tx.Set(ref, map[string]interface{}{
			"staffMembers": kept,
			"updatedAt":    time.Now().UTC(),
		}, firestore.MergeAll)
	})
}
