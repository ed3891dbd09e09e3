package notify

import (
	"io"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"

	"github.com/ohack/grantfinder/internal/config"
	"github.com/ohack/grantfinder/internal/model"
)

func testSlogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func reportWithScores(scores ...float64) *model.RunReport {
	report := model.NewRunReport()
	for _, score := range scores {
		g := model.NewGrant("https://example.org/grant")
		g.Title = "Grant"
		g.RelevanceScore = score
		report.Grants = append(report.Grants, g)
	}
	return report
}

func TestMailer(t *testing.T) {
	t.Parallel()

	t.Run("unconfigured mailer is a no-op", func(t *testing.T) {
		t.Parallel()
		m := NewMailer(config.NewConfig(), testSlogger())
		sent, err := m.Send(reportWithScores(0.9))
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if sent {
			t.Error("Send() = true without SMTP settings, want false")
		}
	})

	t.Run("sends only high-relevance grants", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.File = &config.File{Notify: config.Notify{
			To:         "team@example.org",
			SMTPServer: "smtp.example.org",
			SMTPPort:   587,
		}}

		var gotMsg []byte
		m := NewMailer(cfg, testSlogger())
		m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotMsg = msg
			if addr != "smtp.example.org:587" {
				t.Errorf("addr = %q", addr)
			}
			if len(to) != 1 || to[0] != "team@example.org" {
				t.Errorf("to = %v", to)
			}
			return nil
		}

		report := reportWithScores(0.9, 0.3)
		report.Grants[0].Title = "High Grant"
		report.Grants[1].Title = "Low Grant"

		sent, err := m.Send(report)
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if !sent {
			t.Fatal("Send() = false, want true")
		}
		body := string(gotMsg)
		if !strings.Contains(body, "High Grant") {
			t.Error("message missing the high-relevance grant")
		}
		if strings.Contains(body, "Low Grant") {
			t.Error("message contains a below-threshold grant")
		}
	})

	t.Run("no high-relevance grants skips sending", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.File = &config.File{Notify: config.Notify{
			To:         "team@example.org",
			SMTPServer: "smtp.example.org",
			SMTPPort:   587,
		}}

		m := NewMailer(cfg, testSlogger())
		m.send = func(string, smtp.Auth, string, []string, []byte) error {
			t.Error("send called despite no qualifying grants")
			return nil
		}
		sent, err := m.Send(reportWithScores(0.2, 0.4))
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if sent {
			t.Error("Send() = true, want false")
		}
	})
}
