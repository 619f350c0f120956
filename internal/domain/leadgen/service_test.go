package leadgen

import (
	"context"
	"fmt"
	"testing"

	"gymdesk/backend/internal/companieshouse"
	"gymdesk/backend/internal/domain/clients"
)

type mockGen struct {
	raw string
	err error
}

func (m *mockGen) Complete(ctx context.Context, system, user string) (string, error) {
	return m.raw, m.err
}

type mockWriter struct {
	created []clients.CreateClientInput
	failOn  map[string]error
}

func (m *mockWriter) Create(ctx context.Context, uid string, in clients.CreateClientInput) (*clients.Client, error) {
	if err, ok := m.failOn[in.Email]; ok {
		return nil, err
	}
	m.created = append(m.created, in)
	return &clients.Client{ID: fmt.Sprintf("cl%d", len(m.created)), Name: in.Name, Email: in.Email}, nil
}

type mockLookup struct {
	hits map[string]string // company name -> number
}

func (m *mockLookup) SearchCompanies(ctx context.Context, q string, limit int) ([]companieshouse.SearchResult, error) {
	if num, ok := m.hits[q]; ok {
		return []companieshouse.SearchResult{{Title: q, CompanyNumber: num}}, nil
	}
	return nil, nil
}

func TestParseLeads(t *testing.T) {
	leads, err := parseLeads(`[{"name":"A","company":"ACo","email":"a@a.com","website":"https://a.com","notes":"n"}]`)
	if err != nil || len(leads) != 1 || leads[0].Name != "A" {
		t.Errorf("bare array: %v %v", leads, err)
	}

	leads, err = parseLeads("```json\n[{\"name\":\"B\",\"email\":\"b@b.com\"}]\n```")
	if err != nil || len(leads) != 1 || leads[0].Name != "B" {
		t.Errorf("fenced array: %v %v", leads, err)
	}

	leads, err = parseLeads(`{"leads":[{"name":"C","email":"c@c.com"}]}`)
	if err != nil || len(leads) != 1 || leads[0].Name != "C" {
		t.Errorf("envelope object: %v %v", leads, err)
	}

	if _, err = parseLeads("I could not find any leads."); !IsErrBadRequest(err) {
		t.Errorf("prose should fail: %v", err)
	}
}

func TestGenerateValidation(t *testing.T) {
	svc := NewService(&mockGen{}, &mockWriter{}, nil)
	ctx := context.Background()

	if _, err := svc.Generate(ctx, "u1", GenerateInput{Location: "London"}); !IsErrBadRequest(err) {
		t.Errorf("missing industry: %v", err)
	}
	if _, err := svc.Generate(ctx, "u1", GenerateInput{Industry: "fitness"}); !IsErrBadRequest(err) {
		t.Errorf("missing location: %v", err)
	}
}

func TestGenerateFilesLeadsAndSkipsDuplicates(t *testing.T) {
	gen := &mockGen{raw: `[
		{"name":"Alice","company":"Acme Fitness","email":"alice@acme.com"},
		{"name":"Bob","company":"Beta Gym","email":"bob@beta.com"},
		{"name":"NoMail","company":"Gamma"},
		{"name":"Dora","company":"Delta","email":"dora@delta.com"}
	]`}
	writer := &mockWriter{failOn: map[string]error{
		"bob@beta.com": fmt.Errorf("%w: exists", clients.ErrDuplicate),
	}}
	lookup := &mockLookup{hits: map[string]string{"Acme Fitness": "01234567"}}
	svc := NewService(gen, writer, lookup)

	res, err := svc.Generate(context.Background(), "u1", GenerateInput{Industry: "fitness", Location: "London"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Created) != 2 {
		t.Errorf("created %d leads: %+v", len(res.Created), res.Created)
	}
	if len(res.Skipped) != 2 {
		t.Errorf("skipped = %v", res.Skipped)
	}
	if writer.created[0].CompanyNumber != "01234567" {
		t.Errorf("registry enrichment missing: %+v", writer.created[0])
	}
	if writer.created[0].Source != "ai-leadgen" {
		t.Errorf("source = %q", writer.created[0].Source)
	}
}

func TestGenerateCapsCount(t *testing.T) {
	big := "["
	for i := 0; i < 20; i++ {
		if i > 0 {
			big += ","
		}
		big += fmt.Sprintf(`{"name":"P%d","email":"p%d@x.com"}`, i, i)
	}
	big += "]"

	writer := &mockWriter{}
	svc := NewService(&mockGen{raw: big}, writer, nil)

	res, err := svc.Generate(context.Background(), "u1", GenerateInput{Industry: "fitness", Location: "Leeds", Count: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Created) != maxLeadsPerRun {
		t.Errorf("created %d, want cap %d", len(res.Created), maxLeadsPerRun)
	}
}
