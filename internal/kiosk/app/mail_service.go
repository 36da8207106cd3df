package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/core/ports"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
	"github.com/jcmexdev/cafekiosk/internal/pkg/telemetry"
)

type MailService struct {
	client ports.MailSendClient
	store  ports.Store
}

func NewMailService(client ports.MailSendClient, store ports.Store) *MailService {
	return &MailService{client: client, store: store}
}

// SendMail hands the mail to the transport. When the transport accepts it,
// one history row is recorded and the transport's A and B operations run, in
// that order. A rejected mail returns false with no error and no history.
//
// The error is non-nil only when the history row could not be written; the
// mail itself may already have been delivered.
func (s *MailService) SendMail(ctx context.Context, fromEmail, toEmail, subject, content string) (bool, error) {
	ctx, span := tracer.Start(ctx, "MailService.SendMail")
	defer span.End()

	if !s.client.SendMail(ctx, fromEmail, toEmail, subject, content) {
		slog.WarnContext(ctx, "mail rejected by transport", "to", toEmail, "subject", subject)
		return false, nil
	}

	info := telemetry.ExtractTraceInfo(ctx)
	history := &domain.MailSendHistory{
		FromEmail: fromEmail,
		ToEmail:   toEmail,
		Subject:   subject,
		Content:   content,
		TraceID:   info.TraceID,
		SpanID:    info.SpanID,
	}
	err := s.store.WithinTx(ctx, func(repos ports.Repositories) error {
		return repos.MailSendHistories().Save(ctx, history)
	})
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("record mail history: %w", err)
	}

	s.client.A(ctx)
	s.client.B(ctx)

	slog.InfoContext(ctx, "mail sent", "to", toEmail, "subject", subject, "history_id", history.ID)
	return true, nil
}
