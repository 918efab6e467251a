package mail

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/podium-events/podium/internal/pubsub"
)

var ErrMailNotFound = errors.New("mail not found")

const mailColumns = `id, event_id, subject, text, reply_to, bcc, sent_at, created_at`

type MailRepository struct {
	db *sqlx.DB
}

func NewMailRepository(db *sqlx.DB) *MailRepository {
	return &MailRepository{db: db}
}

// Enqueue stores a mail with its recipients and notifies the mailer worker
// over the queued_mail channel, all in one transaction.
func (r *MailRepository) Enqueue(ctx context.Context, eventID *uuid.UUID, subject, text string, recipients []uuid.UUID) (uuid.UUID, error) {
	if len(recipients) == 0 {
		return uuid.Nil, fmt.Errorf("mail has no recipients")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	mailID := uuid.New()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO queued_mail (id, event_id, subject, text) VALUES ($1, $2, $3, $4)`,
		mailID, eventID, subject, text)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to enqueue mail: %w", err)
	}

	for _, userID := range recipients {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO queued_mail_recipients (mail_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			mailID, userID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to add mail recipient: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, pubsub.MailChannel, mailID.String())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to notify mailer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit tx: %w", err)
	}
	return mailID, nil
}

func (r *MailRepository) GetByID(ctx context.Context, id uuid.UUID) (*QueuedMail, error) {
	query := fmt.Sprintf(`SELECT %s FROM queued_mail WHERE id = $1`, mailColumns)

	var m QueuedMail
	err := r.db.GetContext(ctx, &m, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMailNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mail: %w", err)
	}
	return &m, nil
}

// Unsent returns pending mails oldest first.
func (r *MailRepository) Unsent(ctx context.Context, limit int) ([]*QueuedMail, error) {
	query := fmt.Sprintf(`SELECT %s FROM queued_mail WHERE sent_at IS NULL ORDER BY created_at LIMIT $1`, mailColumns)

	mails := []*QueuedMail{}
	if err := r.db.SelectContext(ctx, &mails, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list unsent mail: %w", err)
	}
	return mails, nil
}

func (r *MailRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*QueuedMail, error) {
	query := fmt.Sprintf(`SELECT %s FROM queued_mail WHERE event_id = $1 ORDER BY created_at DESC`, mailColumns)

	mails := []*QueuedMail{}
	if err := r.db.SelectContext(ctx, &mails, query, eventID); err != nil {
		return nil, fmt.Errorf("failed to list mail: %w", err)
	}
	return mails, nil
}

// Recipients resolves the current address of each recipient. Deactivated
// accounts are skipped, their placeholder address is not deliverable.
func (r *MailRepository) Recipients(ctx context.Context, mailID uuid.UUID) ([]*Recipient, error) {
	query := `
		SELECT u.id AS user_id, u.email, u.name
		FROM queued_mail_recipients qmr
		JOIN users u ON u.id = qmr.user_id
		WHERE qmr.mail_id = $1 AND u.is_active = TRUE
	`

	recipients := []*Recipient{}
	if err := r.db.SelectContext(ctx, &recipients, query, mailID); err != nil {
		return nil, fmt.Errorf("failed to list mail recipients: %w", err)
	}
	return recipients, nil
}

func (r *MailRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE queued_mail SET sent_at = NOW() WHERE id = $1 AND sent_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to mark mail sent: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrMailNotFound
	}
	return nil
}

func (r *MailRepository) Discard(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM queued_mail WHERE id = $1 AND sent_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to discard mail: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrMailNotFound
	}
	return nil
}
