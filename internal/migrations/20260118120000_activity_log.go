package migrations

import (
	"github.com/jmoiron/sqlx"
)

func init() {
	m.addMigration(&migration{
		version: "20260118120000",
		up:      mig_20260118120000_activity_log_up,
		down:    mig_20260118120000_activity_log_down,
	})
}

func mig_20260118120000_activity_log_up(tx *sqlx.Tx) error {
	// Append-only. No foreign key on actor_id so log entries survive whatever
	// happens to the account that produced them.
	_, err := tx.Exec(`
        CREATE TABLE IF NOT EXISTS activity_log (
            id BIGSERIAL PRIMARY KEY,
            actor_id UUID,
            object_type VARCHAR(50) NOT NULL,
            object_id UUID NOT NULL,
            action_type VARCHAR(190) NOT NULL,
            data JSONB,
            is_orga_action BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE INDEX IF NOT EXISTS idx_activity_log_actor ON activity_log(actor_id);
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE INDEX IF NOT EXISTS idx_activity_log_object ON activity_log(object_type, object_id);
    `)
	return err
}

func mig_20260118120000_activity_log_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS activity_log;`)
	return err
}
