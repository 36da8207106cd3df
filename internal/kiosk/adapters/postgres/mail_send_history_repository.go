package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
)

type mailSendHistoryRepository struct {
	q querier
}

func (r *mailSendHistoryRepository) Save(ctx context.Context, h *domain.MailSendHistory) error {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO mail_send_histories
			(from_email, to_email, subject, content, trace_id, span_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		h.FromEmail, h.ToEmail, h.Subject, h.Content, h.TraceID, h.SpanID, h.CreatedAt,
	).Scan(&h.ID)
	if err != nil {
		return fmt.Errorf("postgres: save mail history to %q: %w", h.ToEmail, err)
	}
	return nil
}

func (r *mailSendHistoryRepository) FindAll(ctx context.Context) ([]domain.MailSendHistory, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, from_email, to_email, subject, content, trace_id, span_id, created_at
		FROM   mail_send_histories
		ORDER  BY id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: query mail histories: %w", err)
	}
	defer rows.Close()

	histories := []domain.MailSendHistory{}
	for rows.Next() {
		var h domain.MailSendHistory
		if err := rows.Scan(&h.ID, &h.FromEmail, &h.ToEmail, &h.Subject, &h.Content, &h.TraceID, &h.SpanID, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan mail history: %w", err)
		}
		histories = append(histories, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate mail histories: %w", err)
	}
	return histories, nil
}
