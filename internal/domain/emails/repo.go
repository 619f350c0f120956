package emails

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
	return r.fs.Collection("sentEmails")
}

func (r *Repo) Create(ctx context.Context, e SentEmail) (*SentEmail, error) {
	ref := r.col().NewDoc()
	e.ID = ref.ID
	if _, err := ref.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to record sent email: %w", err)
	}
	return &e, nil
}

func (r *Repo) Get(ctx context.Context, emailID string) (*SentEmail, error) {
	doc, err := r.col().Doc(emailID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: email not found", ErrNotFound)
	}
	return docToEmail(doc)
}

// FindByIdempotencyKey returns the caller's prior send with this key, or
// ErrNotFound.
func (r *Repo) FindByIdempotencyKey(ctx context.Context, userUID, key string) (*SentEmail, error) {
	it := r.col().
		Where("userUid", "==", userUID).
		Where("idempotencyKey", "==", key).
		Limit(1).
		Documents(ctx)
	defer it.Stop()

	doc, err := it.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("%w: email not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return docToEmail(doc)
}

func (r *Repo) FindByOpenToken(ctx context.Context, token string) (*SentEmail, error) {
	it := r.col().Where("openToken", "==", token).Limit(1).Documents(ctx)
	defer it.Stop()

	doc, err := it.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("%w: email not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return docToEmail(doc)
}

// IncrementOpen bumps openCount and stamps openedAt on the first open.
func (r *Repo) IncrementOpen(ctx context.Context, emailID string, firstOpen bool) error {
	updates := []firestore.Update{
		{Path: "openCount", Value: firestore.Increment(1)},
	}
	if firstOpen {
		updates = append(updates, firestore.Update{Path: "openedAt", Value: time.Now().UTC()})
	}
	if _, err := r.col().Doc(emailID).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to record email open: %w", err)
	}
	return nil
}

// List returns a user's sent emails, newest first.
func (r *Repo) List(ctx context.Context, userUID string, limit int) ([]SentEmail, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	it := r.col().
		Where("userUid", "==", userUID).
		OrderBy("sentAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer it.Stop()

	out := []SentEmail{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var e SentEmail
		if err := doc.DataTo(&e); err != nil {
			continue
		}
		if e.ID == "" {
			e.ID = doc.Ref.ID
		}
		out = append(out, e)
	}
	return out, nil
}

// CountSentSince counts successful sends after a moment, used for plan
// limit checks.
func (r *Repo) CountSentSince(ctx context.Context, userUID string, since time.Time) (int, error) {
	it := r.col().
		Where("userUid", "==", userUID).
		Where("deliveryStatus", "==", DeliverySent).
		Where("sentAt", ">=", since).
		Documents(ctx)
	defer it.Stop()

	n := 0
	for {
		_, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

func docToEmail(doc *firestore.DocumentSnapshot) (*SentEmail, error) {
	var e SentEmail
	if err := doc.DataTo(&e); err != nil {
		return nil, fmt.Errorf("failed to parse email: %w", err)
	}
	if e.ID == "" {
		e.ID = doc.Ref.ID
	}
	return &e, nil
}
