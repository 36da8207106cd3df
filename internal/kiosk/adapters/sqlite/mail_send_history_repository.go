package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
)

type mailSendHistoryRepository struct {
	q querier
}

// Save appends a history row. The table is an append-only audit log.
func (r *mailSendHistoryRepository) Save(ctx context.Context, h *domain.MailSendHistory) error {
	const q = `
		INSERT INTO mail_send_histories
			(from_email, to_email, subject, content, trace_id, span_id, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?)`

	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}

	res, err := r.q.ExecContext(ctx, q,
		h.FromEmail,
		h.ToEmail,
		h.Subject,
		h.Content,
		h.TraceID,
		h.SpanID,
		formatTime(h.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save mail history to %q: %w", h.ToEmail, err)
	}
	if h.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("sqlite: mail history id: %w", err)
	}
	return nil
}

func (r *mailSendHistoryRepository) FindAll(ctx context.Context) ([]domain.MailSendHistory, error) {
	const q = `
		SELECT id, from_email, to_email, subject, content, trace_id, span_id, created_at
		FROM   mail_send_histories
		ORDER  BY id`

	rows, err := r.q.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query mail histories: %w", err)
	}
	defer rows.Close()

	histories := []domain.MailSendHistory{}
	for rows.Next() {
		var (
			h         domain.MailSendHistory
			createdAt string
		)
		if err := rows.Scan(&h.ID, &h.FromEmail, &h.ToEmail, &h.Subject, &h.Content, &h.TraceID, &h.SpanID, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan mail history: %w", err)
		}
		if h.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		histories = append(histories, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate mail histories: %w", err)
	}
	return histories, nil
}
