package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/podium-events/podium/internal/config"
	"github.com/podium-events/podium/internal/db"
)

// MailChannel is the Postgres NOTIFY channel the mail service emits on after
// inserting a queued mail row.
const MailChannel = "queued_mail"

// MailEvent is a wakeup for the mailer worker. MailID carries the id of the
// freshly queued row; a RELOAD event has no id and means the worker should
// drain everything unsent (sent after reconnects, when notifications may have
// been missed).
type MailEvent struct {
	MailID string
	Reload bool
}

// MailEventHandler is a callback invoked for each wakeup.
type MailEventHandler func(event MailEvent)

// PubSub wraps a Postgres LISTEN connection for queued-mail wakeups.
type PubSub struct {
	connStr  string
	listener *pq.Listener
	handlers []MailEventHandler
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewPubSub creates a new PubSub instance.
func NewPubSub(conf *config.Config) *PubSub {
	ctx, cancel := context.WithCancel(context.Background())

	return &PubSub{
		connStr:  db.ConnString(conf),
		handlers: make([]MailEventHandler, 0),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Subscribe adds a handler for mail wakeups.
func (ps *PubSub) Subscribe(handler MailEventHandler) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.handlers = append(ps.handlers, handler)
}

// Start begins listening for notifications.
func (ps *PubSub) Start() error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			slog.Error("PubSub listener error", slog.Any("error", err))
		}
		if ev == pq.ListenerEventConnectionAttemptFailed {
			slog.Warn("PubSub connection attempt failed, will retry")
		}
		if ev == pq.ListenerEventDisconnected {
			slog.Warn("PubSub disconnected, will attempt reconnect")
		}
		if ev == pq.ListenerEventReconnected {
			slog.Info("PubSub reconnected, triggering full drain")
			// Notifications may have been missed while disconnected.
			ps.notifyHandlers(MailEvent{Reload: true})
		}
	}

	ps.listener = pq.NewListener(ps.connStr, 10*time.Second, time.Minute, reportProblem)

	if err := ps.listener.Listen(MailChannel); err != nil {
		return fmt.Errorf("failed to listen on %s channel: %w", MailChannel, err)
	}

	slog.Info("PubSub started listening for queued mail")

	go ps.processNotifications()

	return nil
}

// Stop closes the listener.
func (ps *PubSub) Stop() {
	ps.cancel()
	if ps.listener != nil {
		ps.listener.Close()
	}
	slog.Info("PubSub stopped")
}

func (ps *PubSub) processNotifications() {
	for {
		select {
		case <-ps.ctx.Done():
			return
		case notification := <-ps.listener.Notify:
			if notification == nil {
				// Connection lost, handled by the reportProblem callback
				continue
			}

			slog.Debug("Received queued mail notification", slog.String("mail_id", notification.Extra))

			ps.notifyHandlers(MailEvent{MailID: notification.Extra})
		}
	}
}

func (ps *PubSub) notifyHandlers(event MailEvent) {
	ps.mu.RLock()
	handlers := make([]MailEventHandler, len(ps.handlers))
	copy(handlers, ps.handlers)
	ps.mu.RUnlock()

	for _, handler := range handlers {
		// Run handlers in goroutines to avoid blocking the notification loop
		go handler(event)
	}
}
