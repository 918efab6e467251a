package federation

import (
	"time"

	"github.com/google/uuid"
)

// Identity links a local account to a subject at an external OIDC provider.
type Identity struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Provider  string    `db:"provider" json:"provider"`
	Subject   string    `db:"subject" json:"subject"`
	Email     *string   `db:"email" json:"email"`
	Verified  bool      `db:"verified" json:"verified"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type LinkRequest struct {
	UserID   uuid.UUID `json:"user_id"`
	Provider string    `json:"provider"`
	Subject  string    `json:"subject"`
	Email    *string   `json:"email"`
	Verified bool      `json:"verified"`
}
