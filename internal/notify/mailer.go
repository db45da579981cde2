package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Mailer delivers one email-like message. Implementations report failure via
// the error return and never panic into caller logic.
type Mailer interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}

// GatewayMailer posts messages to an HTTP mail gateway. Best-effort with a
// hard 5s timeout, mirroring how the service talks to its other sidecars.
type GatewayMailer struct {
	client *resty.Client
	from   string
}

func NewGatewayMailer(baseURL, from string) *GatewayMailer {
	return &GatewayMailer{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(5 * time.Second),
		from: from,
	}
}

type emailPayload struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
	HTMLBody string `json:"html_body"`
}

func (m *GatewayMailer) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(emailPayload{
			From:     m.from,
			To:       to,
			Subject:  subject,
			TextBody: textBody,
			HTMLBody: htmlBody,
		}).
		Post("/messages/email")
	if err != nil {
		return fmt.Errorf("mail gateway: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mail gateway: status %s", resp.Status())
	}
	return nil
}

// LogMailer is the delivery path when no gateway is configured: it logs the
// message and reports success.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, to, subject, textBody, _ string) error {
	m.log.Info("email transport disabled, logging only",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", textBody))
	return nil
}
