package domain

import "time"

// MailSendHistory is an append-only record of a mail the transport accepted.
type MailSendHistory struct {
	ID        int64
	FromEmail string
	ToEmail   string
	Subject   string
	Content   string

	// TraceID and SpanID identify the span that was active when the mail
	// was sent. Empty when tracing is disabled.
	TraceID string
	SpanID  string

	CreatedAt time.Time
}
