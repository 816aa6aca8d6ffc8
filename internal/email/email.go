package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"grnews/internal/logger"
	"grnews/internal/metrics"
	"grnews/internal/retry"
	"grnews/internal/summary"
)

// Sender delivers a digest over SMTP.
type Sender struct {
	sender   string
	password string
	server   string
	port     int
}

func NewSender(sender, password, server string, port int) *Sender {
	return &Sender{sender: sender, password: password, server: server, port: port}
}

// Send mails the digest, retrying transient failures with backoff. A
// missing sender configuration is reported to the caller; it never blocks
// the digest itself.
func (s *Sender) Send(ctx context.Context, recipient string, result *summary.Result) error {
	if s.sender == "" || s.password == "" {
		return fmt.Errorf("email is not configured: EMAIL_SENDER and EMAIL_PASSWORD are required")
	}
	if recipient == "" || !strings.Contains(recipient, "@") {
		return fmt.Errorf("invalid recipient address %q", recipient)
	}

	msg := s.buildMessage(recipient, result)

	err := retry.WithRetry(ctx, retry.Config{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true}, func() error {
		addr := fmt.Sprintf("%s:%d", s.server, s.port)
		auth := smtp.PlainAuth("", s.sender, s.password, s.server)
		if sendErr := smtp.SendMail(addr, auth, s.sender, []string{recipient}, msg); sendErr != nil {
			logger.Warn("email: send attempt failed", "error", sendErr)
			return sendErr
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sending digest email: %w", err)
	}

	metrics.Global.IncrementEmailsSent()
	logger.Info("email: digest sent", "recipient", recipient)
	return nil
}

func (s *Sender) buildMessage(recipient string, result *summary.Result) []byte {
	subject := fmt.Sprintf("Greek News Summary - %s", time.Now().Format("January 2, 2006"))

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.sender)
	fmt.Fprintf(&b, "To: %s\r\n", recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(WrapHTML(result))
	return []byte(b.String())
}

// WrapHTML embeds digest content in a full standalone page with inline
// styling, unless the content is already a complete document.
func WrapHTML(result *summary.Result) string {
	content := strings.TrimSpace(result.HTMLContent)
	if strings.HasPrefix(content, "<!DOCTYPE html>") || strings.HasPrefix(content, "<html") {
		return content
	}

	sourcesText := "Greek news sources"
	if len(result.Sources) > 0 {
		sourcesText = strings.Join(result.Sources, ", ")
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Greek News Summary</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; }
h1 { color: #1a5276; border-bottom: 2px solid #1a5276; padding-bottom: 10px; }
h2 { color: #2874a6; margin-top: 20px; }
.date { color: #666; font-style: italic; margin-bottom: 20px; }
.source { color: #666; font-style: italic; font-size: 0.9em; }
.warning { background: #fdf2e9; border-left: 4px solid #e67e22; padding: 10px; margin: 15px 0; }
.footer { margin-top: 30px; padding-top: 15px; border-top: 1px solid #ddd; font-size: 0.9em; color: #666; }
</style>
</head>
<body>
<div class="date">%s</div>
%s
<div class="footer">
<p>This summary was generated from %s.</p>
</div>
</body>
</html>
`, time.Now().Format("Monday, January 2, 2006"), content, sourcesText)
}
