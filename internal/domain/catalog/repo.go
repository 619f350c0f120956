package catalog

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

func (r *Repo) classes() *firestore.CollectionRef {
	return r.fs.Collection("classes")
}

func (r *Repo) categories() *firestore.CollectionRef {
	return r.fs.Collection("categories")
}

func (r *Repo) CreateClass(ctx context.Context, c GymClass) (*GymClass, error) {
	ref := r.classes().NewDoc()
	c.ID = ref.ID
	if _, err := ref.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}
	return &c, nil
}

func (r *Repo) GetClass(ctx context.Context, classID string) (*GymClass, error) {
	doc, err := r.classes().Doc(classID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: class not found", ErrNotFound)
	}
	var c GymClass
	if err := doc.DataTo(&c); err != nil {
		return nil, fmt.Errorf("failed to parse class: %w", err)
	}
	if c.ID == "" {
		c.ID = doc.Ref.ID
	}
	return &c, nil
}

func (r *Repo) UpdateClass(ctx context.Context, classID string, updates map[string]interface{}) (*GymClass, error) {
	ref := r.classes().Doc(classID)
	if _, err := ref.Set(ctx, updates, firestore.MergeAll); err != nil {
		return nil, fmt.Errorf("failed to update class: %w", err)
	}
	return r.GetClass(ctx, classID)
}

func (r *Repo) DeleteClass(ctx context.Context, classID string) error {
	if _, err := r.classes().Doc(classID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete class: %w", err)
	}
	return nil
}

// ListClasses returns class templates for a business. When category is
// non-empty only that category is returned.
func (r *Repo) ListClasses(ctx context.Context, businessID, category string) ([]GymClass, error) {
	q := r.classes().Where("businessId", "==", businessID)
	if category != "" {
		q = q.Where("category", "==", category)
	}
	it := q.Documents(ctx)
	defer it.Stop()

	out := []GymClass{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var c GymClass
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

func (r *Repo) CreateCategory(ctx context.Context, c Category) (*Category, error) {
	ref := r.categories().NewDoc()
	c.ID = ref.ID
	if _, err := ref.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &c, nil
}

func (r *Repo) ListCategories(ctx context.Context, businessID string) ([]Category, error) {
	it := r.categories().Where("businessId", "==", businessID).Documents(ctx)
	defer it.Stop()

	out := []Category{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var c Category
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

func (r *Repo) DeleteCategory(ctx context.Context, categoryID string) error {
	if _, err := r.categories().Doc(categoryID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
