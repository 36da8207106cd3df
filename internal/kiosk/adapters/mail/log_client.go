// Package mail provides the mail transports the kiosk can send through.
package mail

import (
	"context"
	"log/slog"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/core/ports"
)

var _ ports.MailSendClient = (*LogClient)(nil)

// LogClient writes mails to the structured log instead of delivering them.
// With reject set every mail is refused, which exercises the failure path of
// the statistics report.
type LogClient struct {
	logger *slog.Logger
	reject bool
}

func NewLogClient(logger *slog.Logger, reject bool) *LogClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogClient{logger: logger.With("component", "mail"), reject: reject}
}

func (c *LogClient) SendMail(ctx context.Context, fromEmail, toEmail, subject, content string) bool {
	if c.reject {
		c.logger.WarnContext(ctx, "mail refused", "from", fromEmail, "to", toEmail, "subject", subject)
		return false
	}
	c.logger.InfoContext(ctx, "mail sent",
		"from", fromEmail,
		"to", toEmail,
		"subject", subject,
		"content", content,
	)
	return true
}

func (c *LogClient) A(ctx context.Context) {
	c.logger.DebugContext(ctx, "a")
}

func (c *LogClient) B(ctx context.Context) {
	c.logger.DebugContext(ctx, "b")
}
