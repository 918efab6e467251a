package activity

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one append-only activity log record. Data carries action-specific
// detail as JSON; nil actor means the action was not attributable.
type Entry struct {
	ID           int64      `db:"id" json:"id"`
	ActorID      *uuid.UUID `db:"actor_id" json:"actor_id"`
	ObjectType   string     `db:"object_type" json:"object_type"`
	ObjectID     uuid.UUID  `db:"object_id" json:"object_id"`
	ActionType   string     `db:"action_type" json:"action_type"`
	Data         []byte     `db:"data" json:"data"`
	IsOrgaAction bool       `db:"is_orga_action" json:"is_orga_action"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}
