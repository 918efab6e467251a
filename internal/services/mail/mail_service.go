package mail

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/podium-events/podium/internal/pubsub"
)

const drainBatchSize = 50

type mailStore interface {
	Enqueue(ctx context.Context, eventID *uuid.UUID, subject, text string, recipients []uuid.UUID) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*QueuedMail, error)
	Unsent(ctx context.Context, limit int) ([]*QueuedMail, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*QueuedMail, error)
	Recipients(ctx context.Context, mailID uuid.UUID) ([]*Recipient, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	Discard(ctx context.Context, id uuid.UUID) error
}

type MailService struct {
	store  mailStore
	sender Sender
	from   string
}

func NewMailService(store mailStore, sender Sender, from string) *MailService {
	return &MailService{store: store, sender: sender, from: from}
}

// Enqueue queues a mail for delivery. Recipients are user ids; addresses are
// resolved when the mailer picks the mail up.
func (s *MailService) Enqueue(ctx context.Context, eventID *uuid.UUID, subject, text string, recipients []uuid.UUID) (uuid.UUID, error) {
	return s.store.Enqueue(ctx, eventID, subject, text, recipients)
}

func (s *MailService) GetByID(ctx context.Context, id uuid.UUID) (*QueuedMail, error) {
	return s.store.GetByID(ctx, id)
}

func (s *MailService) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*QueuedMail, error) {
	return s.store.ListByEvent(ctx, eventID)
}

func (s *MailService) Discard(ctx context.Context, id uuid.UUID) error {
	return s.store.Discard(ctx, id)
}

// Send delivers one queued mail, substituting per-recipient placeholders.
// Mails whose recipients are all gone are marked sent without delivery.
// Delivery is at-least-once: the mail is only marked sent once every
// recipient succeeded, so a failure partway leaves the whole mail queued
// and earlier recipients may see it again on the next drain.
func (s *MailService) Send(ctx context.Context, id uuid.UUID) error {
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.Sent() {
		return nil
	}

	recipients, err := s.store.Recipients(ctx, id)
	if err != nil {
		return err
	}

	for _, rcpt := range recipients {
		body := FormatPlaceholders(m.Text, map[string]string{"name": rcpt.Name})
		if err := s.sender.Send(s.from, []string{rcpt.Email}, m.Subject, body); err != nil {
			return err
		}
	}

	return s.store.MarkSent(ctx, id)
}

// Drain sends every pending mail, oldest first. Failures skip to the next
// mail so one bad address cannot wedge the queue.
func (s *MailService) Drain(ctx context.Context) {
	for {
		mails, err := s.store.Unsent(ctx, drainBatchSize)
		if err != nil {
			slog.Error("Failed to list unsent mail", slog.Any("error", err))
			return
		}
		if len(mails) == 0 {
			return
		}

		var failed int
		for _, m := range mails {
			if err := s.Send(ctx, m.ID); err != nil {
				slog.Error("Failed to send mail", slog.String("mail_id", m.ID.String()), slog.Any("error", err))
				failed++
			}
		}
		if failed == len(mails) {
			return
		}
	}
}

// HandleEvent is the pubsub callback wiring queued-mail wakeups to delivery.
func (s *MailService) HandleEvent(event pubsub.MailEvent) {
	ctx := context.Background()

	if event.Reload {
		s.Drain(ctx)
		return
	}

	id, err := uuid.Parse(event.MailID)
	if err != nil {
		slog.Warn("Ignoring malformed mail notification", slog.String("payload", event.MailID))
		return
	}
	if err := s.Send(ctx, id); err != nil {
		slog.Error("Failed to send mail", slog.String("mail_id", event.MailID), slog.Any("error", err))
	}
}
