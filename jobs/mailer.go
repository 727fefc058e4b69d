package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/inkwell-cms/inkwell/internal/jobs"
)

// Mailer delivers transactional email over SMTP.
type Mailer struct {
	addr    string
	from    string
	auth    smtp.Auth
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// MailerConfig collects SMTP connection settings.
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewMailer constructs a Mailer. Auth is skipped when no username is set,
// which matches local relays such as Mailpit.
func NewMailer(cfg MailerConfig) *Mailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &Mailer{
		addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from:    cfg.From,
		auth:    auth,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
}

// Send delivers a single message.
func (m *Mailer) Send(payload SendEmailPayload) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", payload.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", payload.Subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(payload.Body)
	return smtp.SendMail(m.addr, m.auth, m.from, []string{payload.To}, []byte(msg.String()))
}

// HandleSendEmail processes TaskTypeSendEmail tasks.
func (m *Mailer) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	tracker := m.metrics.Track("mail:send")
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	if err := m.Send(payload); err != nil {
		m.logger.Warn("send email failed", "to", payload.To, "error", err)
		return tracker.End(err)
	}
	m.logger.Info("email sent", "to", payload.To, "subject", payload.Subject)
	return tracker.End(nil)
}
