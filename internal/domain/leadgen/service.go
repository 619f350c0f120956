package leadgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"gymdesk/backend/internal/companieshouse"
	"gymdesk/backend/internal/domain/clients"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
)

func IsErrBadRequest(err error) bool   { return errors.Is(err, ErrBadRequest) }
func IsErrUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

const maxLeadsPerRun = 10

// Generator produces lead candidates from a prompt pair.
type Generator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ClientWriter lets generated leads land in the CRM.
type ClientWriter interface {
	Create(ctx context.Context, uid string, in clients.CreateClientInput) (*clients.Client, error)
}

// CompanyLookup enriches leads with registry data. Optional.
type CompanyLookup interface {
	SearchCompanies(ctx context.Context, q string, limit int) ([]companieshouse.SearchResult, error)
}

type Service struct {
	gen       Generator
	writer    ClientWriter
	companies CompanyLookup // nil when no registry key configured
}

func NewService(gen Generator, writer ClientWriter, companies CompanyLookup) *Service {
	return &Service{gen: gen, writer: writer, companies: companies}
}

// GenerateInput represents input for a lead generation run
type GenerateInput struct {
	Industry string `json:"industry"`
	Location string `json:"location"`
	Count    int    `json:"count,omitempty"`
}

func (in *GenerateInput) Trim() {
	in.Industry = strings.TrimSpace(in.Industry)
	in.Location = strings.TrimSpace(in.Location)
}

// Lead is one generated candidate before it becomes a CRM client.
type Lead struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Website string `json:"website"`
	Notes   string `json:"notes"`
}

// Result reports what one run produced.
type Result struct {
	Created []clients.Client `json:"created"`
	Skipped []string         `json:"skipped,omitempty"` // names of leads that were dropped and why
}

const leadSystemPrompt = `You research prospective business customers for gym management software. Respond with a JSON array only. Each element must have the string fields "name", "company", "email", "website" and "notes". Use plausible business contact emails. No markdown, no commentary.`

// Generate asks the model for lead candidates and files the usable ones as
// CRM leads. Duplicates and contacts without email are skipped, not errors.
func (s *Service) Generate(ctx context.Context, uid string, in GenerateInput) (*Result, error) {
	in.Trim()
	if in.Industry == "" {
		return nil, fmt.Errorf("%w: industry is required", ErrBadRequest)
	}
	if in.Location == "" {
		return nil, fmt.Errorf("%w: location is required", ErrBadRequest)
	}
	count := in.Count
	if count <= 0 {
		count = 5
	}
	if count > maxLeadsPerRun {
		count = maxLeadsPerRun
	}

	prompt := fmt.Sprintf("Find %d prospective customers in the %s industry around %s.", count, in.Industry, in.Location)
	raw, err := s.gen.Complete(ctx, leadSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	leads, err := parseLeads(raw)
	if err != nil {
		return nil, err
	}

	result := &Result{Created: []clients.Client{}}
	for _, l := range leads {
		if len(result.Created) >= count {
			break
		}
		if l.Name == "" || l.Email == "" {
			result.Skipped = append(result.Skipped, l.Name+": missing name or email")
			continue
		}

		companyNumber := ""
		if s.companies != nil && l.Company != "" {
			if hits, err := s.companies.SearchCompanies(ctx, l.Company, 1); err == nil && len(hits) > 0 {
				companyNumber = hits[0].CompanyNumber
			}
		}

		c, err := s.writer.Create(ctx, uid, clients.CreateClientInput{
			Name:          l.Name,
			Email:         l.Email,
			Company:       l.Company,
			CompanyNumber: companyNumber,
			Website:       l.Website,
			Status:        clients.StatusLead,
			Source:        "ai-leadgen",
			Notes:         l.Notes,
		})
		if err != nil {
			if clients.IsErrDuplicate(err) {
				result.Skipped = append(result.Skipped, l.Name+": already in CRM")
				continue
			}
			if clients.IsErrBadRequest(err) {
				result.Skipped = append(result.Skipped, l.Name+": invalid contact data")
				continue
			}
			log.Printf("leadgen: failed to create client for %q: %v", l.Name, err)
			result.Skipped = append(result.Skipped, l.Name+": save failed")
			continue
		}
		result.Created = append(result.Created, *c)
	}

	return result, nil
}

// parseLeads accepts a bare JSON array, optionally wrapped in a code fence.
func parseLeads(raw string) ([]Lead, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	// Some models wrap the array in an envelope object.
	if strings.HasPrefix(raw, "{") {
		var env struct {
			Leads []Lead `json:"leads"`
		}
		if err := json.Unmarshal([]byte(raw), &env); err == nil && len(env.Leads) > 0 {
			return env.Leads, nil
		}
	}

	var leads []Lead
	if err := json.Unmarshal([]byte(raw), &leads); err != nil {
		return nil, fmt.Errorf("%w: generator returned unparseable leads", ErrBadRequest)
	}
	return leads, nil
}
