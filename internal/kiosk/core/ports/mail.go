package ports

import "context"

// MailSendClient is the mail transport.
type MailSendClient interface {
	// SendMail reports whether the transport accepted the mail.
	SendMail(ctx context.Context, fromEmail, toEmail, subject, content string) bool

	// A and B are auxiliary transport operations invoked, in that order,
	// after every accepted mail. Their effect is owned by the transport.
	A(ctx context.Context)
	B(ctx context.Context)
}
