package clients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gymdesk/backend/internal/utils"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, c Client) (*Client, error)
	Get(ctx context.Context, clientID string) (*Client, error)
	Update(ctx context.Context, clientID string, updates map[string]interface{}) (*Client, error)
	Delete(ctx context.Context, clientID string) error
	FindByEmail(ctx context.Context, userUID, email string) (*Client, error)
	ListPage(ctx context.Context, userUID string, q ListQuery) (*ClientPage, error)
	ListAll(ctx context.Context, userUID string) ([]Client, error)
	TouchLastContact(ctx context.Context, clientID string, at time.Time) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, uid string, in CreateClientInput) (*Client, error) {
	in.Trim()
	if err := checkInput(&in); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = StatusLead
	}
	if in.Email != "" {
		if _, err := s.store.FindByEmail(ctx, uid, in.Email); err == nil {
			return nil, fmt.Errorf("%w: a client with this email already exists", ErrDuplicate)
		}
	}

	now := time.Now().UTC()
	return s.store.Create(ctx, Client{
		UserUID:       uid,
		Name:          in.Name,
		Email:         in.Email,
		Phone:         in.Phone,
		Company:       in.Company,
		CompanyNumber: in.CompanyNumber,
		Website:       in.Website,
		Status:        in.Status,
		Source:        in.Source,
		Notes:         in.Notes,
		SearchTokens:  utils.SearchTokens(in.Name, in.Email, in.Company),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

// Get returns a client the caller owns.
func (s *Service) Get(ctx context.Context, uid, clientID string) (*Client, error) {
	c, err := s.store.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if c.UserUID != uid {
		return nil, fmt.Errorf("%w: client not found", ErrNotFound)
	}
	return c, nil
}

// List pages through the caller's clients. A search term switches to an
// in-memory scan: the dataset per user is small and Firestore has no
// substring queries.
func (s *Service) List(ctx context.Context, uid string, q ListQuery) (*ClientPage, error) {
	q.Status = strings.ToLower(strings.TrimSpace(q.Status))
	q.Search = strings.TrimSpace(q.Search)
	if q.Status != "" && !IsValidStatus(q.Status) {
		return nil, fmt.Errorf("%w: invalid status %q", ErrBadRequest, q.Status)
	}

	if q.Search == "" {
		return s.store.ListPage(ctx, uid, q)
	}

	all, err := s.store.ListAll(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &ClientPage{Clients: filterClients(all, q.Status, q.Search)}, nil
}

// filterClients narrows a client slice by status and case-insensitive
// substring match on name, email and company.
func filterClients(cs []Client, status, search string) []Client {
	needle := strings.ToLower(search)
	out := []Client{}
	for _, c := range cs {
		if status != "" && c.Status != status {
			continue
		}
		if needle != "" {
			hay := strings.ToLower(c.Name + " " + c.Email + " " + c.Company)
			if !strings.Contains(hay, needle) {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func (s *Service) Update(ctx context.Context, uid, clientID string, in UpdateClientInput) (*Client, error) {
	in.Trim()
	if err := checkInput(&in); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, uid, clientID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && *in.Name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrBadRequest)
	}

	updates := map[string]interface{}{
		"updatedAt": time.Now().UTC(),
	}
	name, email, company := existing.Name, existing.Email, existing.Company
	if in.Name != nil {
		updates["name"] = *in.Name
		name = *in.Name
	}
	if in.Email != nil {
		updates["email"] = *in.Email
		email = *in.Email
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.Company != nil {
		updates["company"] = *in.Company
		company = *in.Company
	}
	if in.CompanyNumber != nil {
		updates["companyNumber"] = *in.CompanyNumber
	}
	if in.Website != nil {
		updates["website"] = *in.Website
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.Source != nil {
		updates["source"] = *in.Source
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if in.Name != nil || in.Email != nil || in.Company != nil {
		updates["searchTokens"] = utils.SearchTokens(name, email, company)
	}

	return s.store.Update(ctx, clientID, updates)
}

func (s *Service) Delete(ctx context.Context, uid, clientID string) error {
	if _, err := s.Get(ctx, uid, clientID); err != nil {
		return err
	}
	return s.store.Delete(ctx, clientID)
}

// TouchLastContact records an outreach to a client owned by uid.
func (s *Service) TouchLastContact(ctx context.Context, uid, clientID string) error {
	if _, err := s.Get(ctx, uid, clientID); err != nil {
		return err
	}
	return s.store.TouchLastContact(ctx, clientID, time.Now().UTC())
}
