package mailer

import (
	"bytes"
	"context"
	"errors"
	htmltmpl "html/template"
	"net/mail"
	texttmpl "text/template"
)

var ErrNoRecipients = errors.New("email has no recipients")
var ErrNoContent = errors.New("email has no content")

// Message is an outbound email. Content is either set directly
// (TextContent/HTMLContent) or rendered from a registered template.
type Message struct {
	To      []mail.Address
	Cc      []mail.Address
	Bcc     []mail.Address
	Subject string

	TextContent string
	HTMLContent string

	// templated content
	TemplateName string
	TemplateData interface{}
}

// Service is any backend that can deliver a single message. Delivery is
// synchronous: callers log the outcome per message.
type Service interface {
	Send(ctx context.Context, msg *Message) error
}

func (m *Message) HasRecipients() bool { return len(m.To) > 0 }
func (m *Message) HasContent() bool    { return m.TextContent != "" || m.HTMLContent != "" }

// Render fills TextContent/HTMLContent from the named template, if any.
func (m *Message) Render() error {
	if m.TemplateName == "" {
		return nil
	}
	tmpl, ok := textTemplates[m.TemplateName]
	if ok {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, m.TemplateData); err != nil {
			return err
		}
		m.TextContent = buf.String()
	}
	htmpl, ok := htmlTemplates[m.TemplateName]
	if ok {
		var buf bytes.Buffer
		if err := htmpl.Execute(&buf, m.TemplateData); err != nil {
			return err
		}
		m.HTMLContent = buf.String()
	}
	return nil
}

func (m *Message) prepare() error {
	if !m.HasRecipients() {
		return ErrNoRecipients
	}
	if err := m.Render(); err != nil {
		return err
	}
	if !m.HasContent() {
		return ErrNoContent
	}
	return nil
}

var textTemplates = map[string]*texttmpl.Template{
	TemplateClassCancelled: texttmpl.Must(texttmpl.New(TemplateClassCancelled).Parse(classCancelledText)),
	TemplateInvite:         texttmpl.Must(texttmpl.New(TemplateInvite).Parse(inviteText)),
	TemplatePasswordReset:  texttmpl.Must(texttmpl.New(TemplatePasswordReset).Parse(passwordResetText)),
}

var htmlTemplates = map[string]*htmltmpl.Template{
	TemplateClassCancelled: htmltmpl.Must(htmltmpl.New(TemplateClassCancelled).Parse(classCancelledHTML)),
}
