package mail

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type QueuedMail struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	EventID   *uuid.UUID `db:"event_id" json:"event_id"`
	Subject   string     `db:"subject" json:"subject"`
	Text      string     `db:"text" json:"text"`
	ReplyTo   *string    `db:"reply_to" json:"reply_to"`
	Bcc       *string    `db:"bcc" json:"bcc"`
	SentAt    *time.Time `db:"sent_at" json:"sent_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

func (m *QueuedMail) Sent() bool {
	return m.SentAt != nil
}

// Recipient carries the delivery address resolved at send time, so mails
// queued before an address change go to the current address.
type Recipient struct {
	UserID uuid.UUID `db:"user_id" json:"user_id"`
	Email  string    `db:"email" json:"email"`
	Name   string    `db:"name" json:"name"`
}

// FormatPlaceholders substitutes {key} markers in mail text. Unknown markers
// are left in place rather than failing the whole mail.
func FormatPlaceholders(text string, vars map[string]string) string {
	for key, value := range vars {
		text = strings.ReplaceAll(text, "{"+key+"}", value)
	}
	return text
}
