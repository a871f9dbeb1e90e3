package mailer

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/emersion/go-message"
	gomail "github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/support-desk/internal/config"
)

func TestRendererEscapesValues(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(TemplateWelcome, map[string]interface{}{
		"name":  "<b>Ana</b>",
		"email": "ana@x.com",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, &lt;b&gt;Ana&lt;/b&gt;!")
	assert.Contains(t, out, "ana@x.com")
	assert.NotContains(t, out, "Sign in to the support desk")

	_, err = r.Render(Template("missing"), nil)
	assert.Error(t, err)
}

func TestRendererTicketTemplates(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(TemplateTicketStatus, map[string]interface{}{
		"title":      "Printer jam",
		"old_status": "open",
		"new_status": "resolved",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Hello there,")
	assert.Contains(t, out, "<em>open</em>")
	assert.Contains(t, out, "<strong>resolved</strong>")
}

func TestCustomTemplateKeepsSanitizedMarkup(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	body := SanitizeHTML(`<p onclick="steal()">Hi <strong>there</strong></p><script>alert(1)</script>`)
	assert.Equal(t, `<p>Hi <strong>there</strong></p>`, body)

	out, err := r.Render(TemplateCustom, map[string]interface{}{"body": body, "from_name": "Support Desk"})
	require.NoError(t, err)
	assert.Contains(t, out, "<p>Hi <strong>there</strong></p>")
	assert.NotContains(t, out, "script")
}

func TestComposeBuildsHTMLMessage(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{Host: "smtp.example.com", Port: 587, From: "desk@example.com", FromName: "Support Desk"})
	s.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	raw, err := s.Compose(Message{To: []string{"ana@x.com"}, Subject: "Your ticket", HTML: "<p>héllo</p>"})
	require.NoError(t, err)

	entity, err := message.Read(bytes.NewReader(raw))
	require.NoError(t, err)
	header := gomail.Header{Header: entity.Header}

	subject, err := header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Your ticket", subject)

	from, err := header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "desk@example.com", from[0].Address)
	assert.Equal(t, "Support Desk", from[0].Name)

	mediaType, params, err := header.ContentType()
	require.NoError(t, err)
	assert.Equal(t, "text/html", mediaType)
	assert.Equal(t, "utf-8", params["charset"])

	id, err := header.MessageID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	body, err := io.ReadAll(entity.Body)
	require.NoError(t, err)
	assert.Equal(t, "<p>héllo</p>", string(body))
}

func TestComposeRequiresRecipient(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{Host: "smtp.example.com"})
	_, err := s.Compose(Message{Subject: "x"})
	assert.ErrorIs(t, err, ErrNoRecipients)
	assert.ErrorIs(t, s.Send(context.Background(), Message{}), ErrNoRecipients)
}

func TestNewSenderFallsBackToLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewSender(config.MailConfig{}, zap.New(core))
	require.IsType(t, &LogSender{}, sender)

	require.NoError(t, sender.Send(context.Background(), Message{To: []string{"a@x.com"}, Subject: "hi"}))
	assert.Equal(t, 1, logs.Len())
	assert.ErrorIs(t, sender.Send(context.Background(), Message{}), ErrNoRecipients)

	assert.IsType(t, &SMTPSender{}, NewSender(config.MailConfig{Host: "smtp.example.com"}, nil))
}
