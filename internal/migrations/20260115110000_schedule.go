package migrations

import (
	"github.com/jmoiron/sqlx"
)

func init() {
	m.addMigration(&migration{
		version: "20260115110000",
		up:      mig_20260115110000_schedule_up,
		down:    mig_20260115110000_schedule_down,
	})
}

func mig_20260115110000_schedule_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
        CREATE TABLE IF NOT EXISTS rooms (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            event_id UUID NOT NULL REFERENCES events(id),
            name VARCHAR(190) NOT NULL,
            position INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            UNIQUE (event_id, name)
        );
    `)
	if err != nil {
		return err
	}

	// The row with a NULL version is the event's work-in-progress schedule.
	_, err = tx.Exec(`
        CREATE TABLE IF NOT EXISTS schedules (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            event_id UUID NOT NULL REFERENCES events(id),
            version VARCHAR(190),
            published_at TIMESTAMP WITH TIME ZONE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            UNIQUE (event_id, version)
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE TABLE IF NOT EXISTS talk_slots (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            schedule_id UUID NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
            submission_id UUID NOT NULL REFERENCES submissions(id),
            room_id UUID REFERENCES rooms(id),
            start_time TIMESTAMP WITH TIME ZONE,
            end_time TIMESTAMP WITH TIME ZONE,
            is_visible BOOLEAN NOT NULL DEFAULT FALSE,
            UNIQUE (schedule_id, submission_id)
        );
    `)
	return err
}

func mig_20260115110000_schedule_down(tx *sqlx.Tx) error {
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS talk_slots;`,
		`DROP TABLE IF EXISTS schedules;`,
		`DROP TABLE IF EXISTS rooms;`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
