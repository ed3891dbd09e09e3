package notify

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"os"
	"strings"

	"github.com/ohack/grantfinder/internal/config"
	"github.com/ohack/grantfinder/internal/model"
)

// smtpPasswordEnv overrides the config file password when set, so the
// secret can stay out of the YAML file.
const smtpPasswordEnv = "GRANTFINDER_SMTP_PASSWORD"

// sendMailFunc matches smtp.SendMail, replaceable in tests.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends run summary emails over SMTP.
type Mailer struct {
	settings config.Notify
	send     sendMailFunc
	logger   *slog.Logger
}

// NewMailer builds a mailer from the config file's notify section.
// Configuration may be incomplete; Configured reports whether sending
// is possible.
func NewMailer(cfg *config.Config, logger *slog.Logger) *Mailer {
	var settings config.Notify
	if cfg.File != nil {
		settings = cfg.File.Notify
	}
	if env := os.Getenv(smtpPasswordEnv); env != "" {
		settings.SMTPPassword = env
	}
	if settings.HighRelevanceThreshold == 0 {
		settings.HighRelevanceThreshold = config.DefaultHighRelevanceThreshold
	}
	if settings.MaxGrants == 0 {
		settings.MaxGrants = config.DefaultMaxGrantsInEmail
	}
	return &Mailer{settings: settings, send: smtp.SendMail, logger: logger}
}

// Configured reports whether the mailer has enough settings to send.
func (m *Mailer) Configured() bool {
	return m.settings.To != "" && m.settings.SMTPServer != "" && m.settings.SMTPPort != 0
}

// Send emails the run summary. It is a no-op returning false when the
// mailer is not configured or no grant clears the relevance threshold.
func (m *Mailer) Send(report *model.RunReport) (bool, error) {
	if !m.Configured() {
		m.logger.Debug("email notification skipped, not configured")
		return false, nil
	}
	highs := report.HighRelevance(m.settings.HighRelevanceThreshold)
	if len(highs) == 0 {
		m.logger.Info("no high-relevance grants, skipping notification")
		return false, nil
	}
	if len(highs) > m.settings.MaxGrants {
		highs = highs[:m.settings.MaxGrants]
	}

	from := m.settings.SMTPUser
	if from == "" {
		from = "grantfinder@localhost"
	}
	msg := m.compose(from, highs, report)

	var auth smtp.Auth
	if m.settings.SMTPUser != "" && m.settings.SMTPPassword != "" {
		auth = smtp.PlainAuth("", m.settings.SMTPUser, m.settings.SMTPPassword, m.settings.SMTPServer)
	}
	addr := fmt.Sprintf("%s:%d", m.settings.SMTPServer, m.settings.SMTPPort)
	if err := m.send(addr, auth, from, []string{m.settings.To}, msg); err != nil {
		return false, fmt.Errorf("failed to send notification: %w", err)
	}

	m.logger.Info("notification sent", "to", m.settings.To, "grants", len(highs))
	return true, nil
}

// compose builds the RFC 5322 message body.
func (m *Mailer) compose(from string, grants []*model.Grant, report *model.RunReport) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", from)
	fmt.Fprintf(&sb, "To: %s\r\n", m.settings.To)
	fmt.Fprintf(&sb, "Subject: Grant Finder: %d high-relevance opportunities\r\n", len(grants))
	sb.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")

	fmt.Fprintf(&sb, "Run of %s found %d grants; the %d best:\r\n\r\n",
		report.StartedAt.Format("2006-01-02"), len(report.Grants), len(grants))
	for i, grant := range grants {
		fmt.Fprintf(&sb, "%d. %s (score %.2f)\r\n", i+1, grant.Title, grant.RelevanceScore)
		fmt.Fprintf(&sb, "   %s\r\n", grant.SourceURL)
		if grant.FundingAmount != nil {
			fmt.Fprintf(&sb, "   Funding: %s\r\n", grant.FundingAmount.String())
		}
		if grant.Deadline != "" {
			fmt.Fprintf(&sb, "   Deadline: %s\r\n", grant.Deadline)
		}
		sb.WriteString("\r\n")
	}
	return []byte(sb.String())
}
