package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
)

// SMTP delivers failure alerts as plain-text mail. SendMail upgrades
// the connection with STARTTLS whenever the server offers it.
type SMTP struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Recipients []string
}

var _ Notifier = (*SMTP)(nil)

// NotifyFailure sends one alert mail describing the failed stage.
func (s *SMTP) NotifyFailure(ctx context.Context, stage string, period domain.Period, failure error) error {
	msg := buildMessage(s.From, s.Recipients, subjectLine(stage, period), bodyText(stage, period, failure))

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	if err := smtp.SendMail(addr, auth, s.From, s.Recipients, msg); err != nil {
		return fmt.Errorf("NotifyFailure: sending mail via %s: %w", addr, err)
	}
	return nil
}

func subjectLine(stage string, period domain.Period) string {
	return fmt.Sprintf("Automation failure: %s stage, period %s", stage, period)
}

func bodyText(stage string, period domain.Period, failure error) string {
	return fmt.Sprintf(
		"The scheduled %s stage failed for period %s.\r\n\r\n%v\r\n\r\nRemaining stages were skipped; re-run them with the backfill command once the cause is fixed.\r\n",
		stage, period, failure,
	)
}

// buildMessage assembles an RFC 5322 message. Header lines and the
// blank separator use CRLF because the bytes go straight into the SMTP
// DATA stream.
func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
