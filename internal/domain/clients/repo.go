package clients

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// listAllCap bounds unpaginated reads used by search and stats.
const listAllCap = 200

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) col() *firestore.CollectionRef {
	return r.fs.Collection("clients")
}

func (r *Repo) Create(ctx context.Context, c Client) (*Client, error) {
	ref := r.col().NewDoc()
	c.ID = ref.ID
	if _, err := ref.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &c, nil
}

func (r *Repo) Get(ctx context.Context, clientID string) (*Client, error) {
	doc, err := r.col().Doc(clientID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: client not found", ErrNotFound)
	}
	var c Client
	if err := doc.DataTo(&c); err != nil {
		return nil, fmt.Errorf("failed to parse client: %w", err)
	}
	if c.ID == "" {
		c.ID = doc.Ref.ID
	}
	return &c, nil
}

func (r *Repo) Update(ctx context.Context, clientID string, updates map[string]interface{}) (*Client, error) {
	ref := r.col().Doc(clientID)
	if _, err := ref.Set(ctx, updates, firestore.MergeAll); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return r.Get(ctx, clientID)
}

// Delete removes exactly one client document.
func (r *Repo) Delete(ctx context.Context, clientID string) error {
	if _, err := r.col().Doc(clientID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

// FindByEmail returns the caller's client with the given email, or
// ErrNotFound.
func (r *Repo) FindByEmail(ctx context.Context, userUID, email string) (*Client, error) {
	it := r.col().
		Where("userUid", "==", userUID).
		Where("email", "==", email).
		Limit(1).
		Documents(ctx)
	defer it.Stop()

	doc, err := it.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("%w: client not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var c Client
	if err := doc.DataTo(&c); err != nil {
		return nil, err
	}
	if c.ID == "" {
		c.ID = doc.Ref.ID
	}
	return &c, nil
}

// ListPage returns one page of a user's clients ordered by creation time,
// newest first, resuming after the cursor client if given.
func (r *Repo) ListPage(ctx context.Context, userUID string, q ListQuery) (*ClientPage, error) {
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	fq := r.col().
		Where("userUid", "==", userUID).
		OrderBy("createdAt", firestore.Desc)
	if q.Status != "" {
		fq = r.col().
			Where("userUid", "==", userUID).
			Where("status", "==", q.Status).
			OrderBy("createdAt", firestore.Desc)
	}
	if q.Cursor != "" {
		cursorDoc, err := r.col().Doc(q.Cursor).Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: cursor not found", ErrBadRequest)
		}
		fq = fq.StartAfter(cursorDoc.Data()["createdAt"])
	}

	it := fq.Limit(limit + 1).Documents(ctx)
	defer it.Stop()

	out := []Client{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var c Client
		if err := doc.DataTo(&c); err != nil {
			continue
		}
		if c.ID == "" {
			c.ID = doc.Ref.ID
		}
		out = append(out, c)
	}

	page := &ClientPage{Clients: out}
	if len(out) > limit {
		page.Clients = out[:limit]
		page.NextCursor = out[limit-1].ID
	}
	return page, nil
}

// ListAll returns up to listAllCap of a user's clients for in-memory
// filtering.
func (r *Repo) ListAll(ctx context.Context, userUID string) ([]Client, error) {
	it := r.col().
		Where("userUid", "==", userUID).
		OrderBy("createdAt", firestore.Desc).
		Limit(listAllCap).
		Documents(ctx)
	defer it.Stop()

	out := []Client{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var c Client
		if err := doc.DataTo(&c); err != nil {
			continue
		}
		if c.ID == "" {
			c.ID = doc.Ref.ID
		}
		out = append(out, c)
	}
	return out, nil
}

// TouchLastContact stamps the moment the user last reached out to a client.
func (r *Repo) TouchLastContact(ctx context.Context, clientID string, at time.Time) error {
	_, err := r.col().Doc(clientID).Set(ctx, map[string]interface{}{
		"lastContactDate": at,
		"updatedAt":       at,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to touch lastContactDate: %w", err)
	}
	return nil
}
