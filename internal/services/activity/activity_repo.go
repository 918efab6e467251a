package activity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const entryColumns = `id, actor_id, object_type, object_id, action_type, data, is_orga_action, created_at`

type ActivityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Insert(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO activity_log (actor_id, object_type, object_id, action_type, data, is_orga_action)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, entry.ActorID, entry.ObjectType, entry.ObjectID,
		entry.ActionType, entry.Data, entry.IsOrgaAction)
	if err != nil {
		return fmt.Errorf("failed to insert activity entry: %w", err)
	}
	return nil
}

// ByObject returns the log for one object, newest first.
func (r *ActivityRepository) ByObject(ctx context.Context, objectType string, objectID uuid.UUID, limit int) ([]*Entry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM activity_log
		WHERE object_type = $1 AND object_id = $2
		ORDER BY id DESC LIMIT $3
	`, entryColumns)

	entries := []*Entry{}
	if err := r.db.SelectContext(ctx, &entries, query, objectType, objectID, limit); err != nil {
		return nil, fmt.Errorf("failed to list activity entries: %w", err)
	}
	return entries, nil
}

// ByActor returns actions a user performed, newest first.
func (r *ActivityRepository) ByActor(ctx context.Context, actorID uuid.UUID, limit int) ([]*Entry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM activity_log
		WHERE actor_id = $1
		ORDER BY id DESC LIMIT $2
	`, entryColumns)

	entries := []*Entry{}
	if err := r.db.SelectContext(ctx, &entries, query, actorID, limit); err != nil {
		return nil, fmt.Errorf("failed to list activity entries: %w", err)
	}
	return entries, nil
}
