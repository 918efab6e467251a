package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/podium-events/podium/internal/pubsub"
)

func TestFormatPlaceholders(t *testing.T) {
	out := FormatPlaceholders("Hi {name}, see {url}", map[string]string{
		"name": "Jane",
		"url":  "https://example.org",
	})
	require.Equal(t, "Hi Jane, see https://example.org", out)
}

func TestFormatPlaceholdersLeavesUnknownMarkers(t *testing.T) {
	out := FormatPlaceholders("Hi {name}, your code is {code}", map[string]string{"name": "Jane"})
	require.Equal(t, "Hi Jane, your code is {code}", out)
}

func TestFormatPlaceholdersNoVars(t *testing.T) {
	require.Equal(t, "plain text", FormatPlaceholders("plain text", nil))
}

type fakeMailStore struct {
	mails      map[uuid.UUID]*QueuedMail
	recipients map[uuid.UUID][]*Recipient
	order      []uuid.UUID
}

func newFakeMailStore() *fakeMailStore {
	return &fakeMailStore{
		mails:      map[uuid.UUID]*QueuedMail{},
		recipients: map[uuid.UUID][]*Recipient{},
	}
}

func (f *fakeMailStore) queue(subject, text string, recipients ...*Recipient) *QueuedMail {
	m := &QueuedMail{ID: uuid.New(), Subject: subject, Text: text}
	f.mails[m.ID] = m
	f.recipients[m.ID] = recipients
	f.order = append(f.order, m.ID)
	return m
}

func (f *fakeMailStore) Enqueue(ctx context.Context, eventID *uuid.UUID, subject, text string, recipients []uuid.UUID) (uuid.UUID, error) {
	m := f.queue(subject, text)
	return m.ID, nil
}

func (f *fakeMailStore) GetByID(ctx context.Context, id uuid.UUID) (*QueuedMail, error) {
	if m, ok := f.mails[id]; ok {
		return m, nil
	}
	return nil, ErrMailNotFound
}

func (f *fakeMailStore) Unsent(ctx context.Context, limit int) ([]*QueuedMail, error) {
	var out []*QueuedMail
	for _, id := range f.order {
		if m := f.mails[id]; !m.Sent() {
			out = append(out, m)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeMailStore) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*QueuedMail, error) {
	return nil, nil
}

func (f *fakeMailStore) Recipients(ctx context.Context, mailID uuid.UUID) ([]*Recipient, error) {
	return f.recipients[mailID], nil
}

func (f *fakeMailStore) MarkSent(ctx context.Context, id uuid.UUID) error {
	m, ok := f.mails[id]
	if !ok || m.Sent() {
		return ErrMailNotFound
	}
	now := time.Now()
	m.SentAt = &now
	return nil
}

func (f *fakeMailStore) Discard(ctx context.Context, id uuid.UUID) error {
	m, ok := f.mails[id]
	if !ok || m.Sent() {
		return ErrMailNotFound
	}
	delete(f.mails, id)
	return nil
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

type fakeSender struct {
	sent   []sentMail
	err    error
	failTo string
}

func (f *fakeSender) Send(from string, to []string, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	if f.failTo != "" && len(to) == 1 && to[0] == f.failTo {
		return errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func TestSendSubstitutesRecipientName(t *testing.T) {
	store := newFakeMailStore()
	sender := &fakeSender{}
	svc := NewMailService(store, sender, "robot@example.org")

	m := store.queue("Welcome", "Hi {name}!",
		&Recipient{Email: "jane@example.org", Name: "Jane"},
		&Recipient{Email: "john@example.org", Name: "John"},
	)

	require.NoError(t, svc.Send(context.Background(), m.ID))
	require.Len(t, sender.sent, 2)
	require.Equal(t, []string{"jane@example.org"}, sender.sent[0].to)
	require.Equal(t, "Hi Jane!", sender.sent[0].body)
	require.Equal(t, "Hi John!", sender.sent[1].body)
	require.True(t, m.Sent())
}

func TestSendIsIdempotent(t *testing.T) {
	store := newFakeMailStore()
	sender := &fakeSender{}
	svc := NewMailService(store, sender, "robot@example.org")

	m := store.queue("Welcome", "Hi {name}!", &Recipient{Email: "jane@example.org", Name: "Jane"})

	require.NoError(t, svc.Send(context.Background(), m.ID))
	require.NoError(t, svc.Send(context.Background(), m.ID))
	require.Len(t, sender.sent, 1, "an already sent mail must not go out again")
}

func TestSendPartialFailureKeepsMailQueued(t *testing.T) {
	store := newFakeMailStore()
	sender := &fakeSender{failTo: "john@example.org"}
	svc := NewMailService(store, sender, "robot@example.org")

	m := store.queue("Welcome", "Hi {name}!",
		&Recipient{Email: "jane@example.org", Name: "Jane"},
		&Recipient{Email: "john@example.org", Name: "John"},
	)

	require.Error(t, svc.Send(context.Background(), m.ID))
	require.False(t, m.Sent(), "a partially delivered mail stays queued")
	require.Len(t, sender.sent, 1)

	// At-least-once: the retry goes to every recipient again, so the one
	// that already got the mail sees a duplicate.
	sender.failTo = ""
	require.NoError(t, svc.Send(context.Background(), m.ID))
	require.True(t, m.Sent())
	require.Len(t, sender.sent, 3)
	require.Equal(t, []string{"jane@example.org"}, sender.sent[1].to)
	require.Equal(t, []string{"john@example.org"}, sender.sent[2].to)
}

func TestSendWithoutRecipients(t *testing.T) {
	store := newFakeMailStore()
	sender := &fakeSender{}
	svc := NewMailService(store, sender, "robot@example.org")

	m := store.queue("Orphaned", "nobody left")

	require.NoError(t, svc.Send(context.Background(), m.ID))
	require.Empty(t, sender.sent)
	require.True(t, m.Sent(), "mails without recipients are marked sent")
}

func TestDrainSendsAllPending(t *testing.T) {
	store := newFakeMailStore()
	sender := &fakeSender{}
	svc := NewMailService(store, sender, "robot@example.org")

	for i := 0; i < 3; i++ {
		store.queue("Ping", "hello", &Recipient{Email: "jane@example.org", Name: "Jane"})
	}

	svc.Drain(context.Background())
	require.Len(t, sender.sent, 3)

	pending, err := store.Unsent(context.Background(), drainBatchSize)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestDrainStopsWhenNothingSucceeds(t *testing.T) {
	store := newFakeMailStore()
	sender := &fakeSender{err: errors.New("smtp down")}
	svc := NewMailService(store, sender, "robot@example.org")

	store.queue("Ping", "hello", &Recipient{Email: "jane@example.org", Name: "Jane"})
	store.queue("Pong", "hello", &Recipient{Email: "john@example.org", Name: "John"})

	// Must terminate instead of retrying the same failing batch forever.
	svc.Drain(context.Background())
	require.Empty(t, sender.sent)
}

func TestHandleEventSendsNotifiedMail(t *testing.T) {
	store := newFakeMailStore()
	sender := &fakeSender{}
	svc := NewMailService(store, sender, "robot@example.org")

	m := store.queue("Ping", "hello", &Recipient{Email: "jane@example.org", Name: "Jane"})

	svc.HandleEvent(pubsub.MailEvent{MailID: m.ID.String()})
	require.Len(t, sender.sent, 1)
	require.True(t, m.Sent())
}

func TestHandleEventReloadDrains(t *testing.T) {
	store := newFakeMailStore()
	sender := &fakeSender{}
	svc := NewMailService(store, sender, "robot@example.org")

	store.queue("Ping", "hello", &Recipient{Email: "jane@example.org", Name: "Jane"})

	svc.HandleEvent(pubsub.MailEvent{Reload: true})
	require.Len(t, sender.sent, 1)
}

func TestHandleEventIgnoresMalformedPayload(t *testing.T) {
	store := newFakeMailStore()
	sender := &fakeSender{}
	svc := NewMailService(store, sender, "robot@example.org")

	svc.HandleEvent(pubsub.MailEvent{MailID: "not-a-uuid"})
	require.Empty(t, sender.sent)
}
