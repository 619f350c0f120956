package mailer

import (
	"context"
	"log"
	"sync"
)

// ConsoleService logs messages instead of delivering them, and records them
// so tests can inspect what would have been sent.
type ConsoleService struct {
	mu      sync.Mutex
	sent    []Message
	Silent  bool
	FailAll bool // tests: force delivery failures
}

var _ Service = (*ConsoleService)(nil)

func NewConsoleService() *ConsoleService {
	return &ConsoleService{}
}

func (svc *ConsoleService) Send(_ context.Context, msg *Message) error {
	if err := msg.prepare(); err != nil {
		return err
	}
	if svc.FailAll {
		return context.DeadlineExceeded
	}

	svc.mu.Lock()
	svc.sent = append(svc.sent, *msg)
	svc.mu.Unlock()

	if !svc.Silent {
		log.Printf("[mail] to=%v subject=%q\n%s", msg.To, msg.Subject, msg.TextContent)
	}
	return nil
}

// Sent returns a copy of everything recorded so far.
func (svc *ConsoleService) Sent() []Message {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]Message, len(svc.sent))
	copy(out, svc.sent)
	return out
}
