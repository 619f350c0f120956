package mailer

import (
	"context"
	"net/mail"
	"strings"
	"testing"
)

func TestRenderClassCancelled(t *testing.T) {
	msg := &Message{
		To:           []mail.Address{{Address: "member@example.com"}},
		Subject:      "Class cancelled",
		TemplateName: TemplateClassCancelled,
		TemplateData: ClassCancelledData{
			ClassName:  "Morning Yoga",
			Date:       "2025-06-02",
			StartTime:  "07:00",
			EndTime:    "08:00",
			Instructor: "Sam",
			Reason:     "instructor illness",
		},
	}

	if err := msg.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Morning Yoga", "2025-06-02", "07:00 - 08:00", "instructor illness"} {
		if !strings.Contains(msg.TextContent, want) {
			t.Errorf("text content missing %q:\n%s", want, msg.TextContent)
		}
		if !strings.Contains(msg.HTMLContent, want) {
			t.Errorf("html content missing %q", want)
		}
	}
}

func TestRenderOmitsEmptyReason(t *testing.T) {
	msg := &Message{
		TemplateName: TemplateClassCancelled,
		TemplateData: ClassCancelledData{ClassName: "Spin", Date: "2025-06-02"},
	}
	if err := msg.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(msg.TextContent, "Reason") {
		t.Errorf("empty reason should be omitted:\n%s", msg.TextContent)
	}
}

func TestConsoleSendRecords(t *testing.T) {
	svc := NewConsoleService()
	svc.Silent = true

	msg := &Message{
		To:          []mail.Address{{Address: "a@example.com"}},
		Subject:     "hey",
		TextContent: "body",
	}
	if err := svc.Send(context.Background(), msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := svc.Sent(); len(got) != 1 || got[0].Subject != "hey" {
		t.Fatalf("unexpected recorded messages: %+v", got)
	}
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	svc := NewConsoleService()
	svc.Silent = true

	if err := svc.Send(context.Background(), &Message{TextContent: "x"}); err != ErrNoRecipients {
		t.Errorf("expected ErrNoRecipients, got %v", err)
	}
	msg := &Message{To: []mail.Address{{Address: "a@example.com"}}}
	if err := svc.Send(context.Background(), msg); err != ErrNoContent {
		t.Errorf("expected ErrNoContent, got %v", err)
	}
}
