package proposals

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gymdesk/backend/internal/domain/clients"
	"gymdesk/backend/internal/domain/emails"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, p Proposal) (*Proposal, error)
	Get(ctx context.Context, proposalID string) (*Proposal, error)
	Update(ctx context.Context, proposalID string, updates map[string]interface{}) (*Proposal, error)
	Delete(ctx context.Context, proposalID string) error
	List(ctx context.Context, userUID, status string, limit int) ([]Proposal, error)
}

// Generator drafts proposal copy from a prompt pair.
type Generator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ClientSource resolves the CRM client a proposal targets.
type ClientSource interface {
	Get(ctx context.Context, uid, clientID string) (*clients.Client, error)
}

// Sender delivers the proposal through the outbound mail ledger.
type Sender interface {
	Send(ctx context.Context, uid string, in emails.SendInput) (*emails.SentEmail, error)
}

type Service struct {
	store   Store
	gen     Generator
	clients ClientSource
	sender  Sender
}

func NewService(store Store, gen Generator, clientSource ClientSource, sender Sender) *Service {
	return &Service{store: store, gen: gen, clients: clientSource, sender: sender}
}

const generateSystemPrompt = `You write short, persuasive business proposals for gym and fitness studio software. Respond with a JSON object holding exactly two string fields: "subject" and "body". The body is plain text, no markdown.`

// draftContent is the shape the generator is asked to produce.
type draftContent struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Generate drafts a proposal for a client and stores it as a draft.
func (s *Service) Generate(ctx context.Context, uid string, in GenerateInput) (*Proposal, error) {
	in.Trim()
	if in.ClientID == "" {
		return nil, fmt.Errorf("%w: clientId is required", ErrBadRequest)
	}

	c, err := s.clients.Get(ctx, uid, in.ClientID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Draft a proposal for %s", c.Name)
	if c.Company != "" {
		fmt.Fprintf(&b, " at %s", c.Company)
	}
	fmt.Fprintf(&b, " (pipeline status: %s).", c.Status)
	if in.Goals != "" {
		fmt.Fprintf(&b, " The pitch should focus on: %s.", in.Goals)
	}
	if in.Tone != "" {
		fmt.Fprintf(&b, " Use a %s tone.", in.Tone)
	}
	if c.Notes != "" {
		fmt.Fprintf(&b, " Background notes: %s", c.Notes)
	}

	raw, err := s.gen.Complete(ctx, generateSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}
	subject, body := parseDraft(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: generator returned no usable content", ErrBadRequest)
	}
	if subject == "" {
		subject = "Proposal for " + c.Name
	}

	now := time.Now().UTC()
	return s.store.Create(ctx, Proposal{
		UserUID:    uid,
		ClientID:   c.ID,
		ClientName: c.Name,
		Subject:    subject,
		Body:       body,
		Status:     StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

// parseDraft accepts either the requested JSON shape or free text, where
// the first line becomes the subject.
func parseDraft(raw string) (subject, body string) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var d draftContent
	if err := json.Unmarshal([]byte(raw), &d); err == nil && d.Body != "" {
		return strings.TrimSpace(d.Subject), strings.TrimSpace(d.Body)
	}

	lines := strings.SplitN(raw, "\n", 2)
	if len(lines) == 2 {
		return strings.TrimSpace(lines[0]), strings.TrimSpace(lines[1])
	}
	return "", raw
}

func (s *Service) Get(ctx context.Context, uid, proposalID string) (*Proposal, error) {
	p, err := s.store.Get(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p.UserUID != uid {
		return nil, fmt.Errorf("%w: proposal not found", ErrNotFound)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, uid, status string, limit int) ([]Proposal, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && status != StatusDraft && status != StatusSent {
		return nil, fmt.Errorf("%w: invalid status %q", ErrBadRequest, status)
	}
	return s.store.List(ctx, uid, status, limit)
}

// Update edits a draft. Sent proposals are immutable.
func (s *Service) Update(ctx context.Context, uid, proposalID string, in UpdateInput) (*Proposal, error) {
	in.Trim()
	p, err := s.Get(ctx, uid, proposalID)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusSent {
		return nil, fmt.Errorf("%w: sent proposals cannot be edited", ErrAlreadySent)
	}

	updates := map[string]interface{}{
		"updatedAt": time.Now().UTC(),
	}
	if in.Subject != nil {
		if *in.Subject == "" {
			return nil, fmt.Errorf("%w: subject cannot be empty", ErrBadRequest)
		}
		updates["subject"] = *in.Subject
	}
	if in.Body != nil {
		if *in.Body == "" {
			return nil, fmt.Errorf("%w: body cannot be empty", ErrBadRequest)
		}
		updates["body"] = *in.Body
	}
	return s.store.Update(ctx, proposalID, updates)
}

func (s *Service) Delete(ctx context.Context, uid, proposalID string) error {
	if _, err := s.Get(ctx, uid, proposalID); err != nil {
		return err
	}
	return s.store.Delete(ctx, proposalID)
}

// Send emails a draft to its client and marks it sent. The proposal ID is
// the idempotency key, so retrying a timed-out send cannot double-deliver.
func (s *Service) Send(ctx context.Context, uid, proposalID string) (*Proposal, error) {
	p, err := s.Get(ctx, uid, proposalID)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusSent {
		return nil, fmt.Errorf("%w: proposal was already sent", ErrAlreadySent)
	}

	c, err := s.clients.Get(ctx, uid, p.ClientID)
	if err != nil {
		return nil, err
	}
	if c.Email == "" {
		return nil, fmt.Errorf("%w: client has no email address", ErrBadRequest)
	}

	sent, err := s.sender.Send(ctx, uid, emails.SendInput{
		To:             c.Email,
		ToName:         c.Name,
		Subject:        p.Subject,
		Body:           p.Body,
		ClientID:       c.ID,
		ProposalID:     p.ID,
		IdempotencyKey: "proposal:" + p.ID,
	})
	if err != nil {
		return nil, err
	}

	return s.store.Update(ctx, proposalID, map[string]interface{}{
		"status":      StatusSent,
		"sentEmailId": sent.ID,
		"sentAt":      time.Now().UTC(),
		"updatedAt":   time.Now().UTC(),
	})
}
