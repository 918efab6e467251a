package migrations

import (
	"github.com/jmoiron/sqlx"
)

func init() {
	m.addMigration(&migration{
		version: "20260110092000",
		up:      mig_20260110092000_teams_up,
		down:    mig_20260110092000_teams_down,
	})
}

func mig_20260110092000_teams_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
        CREATE TABLE IF NOT EXISTS teams (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            organiser_id UUID NOT NULL REFERENCES organisers(id),
            name VARCHAR(190) NOT NULL,
            all_events BOOLEAN NOT NULL DEFAULT FALSE,
            can_create_events BOOLEAN NOT NULL DEFAULT FALSE,
            can_change_teams BOOLEAN NOT NULL DEFAULT FALSE,
            can_change_organiser_settings BOOLEAN NOT NULL DEFAULT FALSE,
            can_change_event_settings BOOLEAN NOT NULL DEFAULT FALSE,
            can_change_submissions BOOLEAN NOT NULL DEFAULT FALSE,
            is_reviewer BOOLEAN NOT NULL DEFAULT FALSE,
            review_override_votes INTEGER NOT NULL DEFAULT 0 CHECK (review_override_votes >= 0),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE TABLE IF NOT EXISTS team_members (
            team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
            user_id UUID NOT NULL REFERENCES users(id),
            PRIMARY KEY (team_id, user_id)
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE TABLE IF NOT EXISTS team_events (
            team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
            event_id UUID NOT NULL REFERENCES events(id),
            PRIMARY KEY (team_id, event_id)
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE INDEX IF NOT EXISTS idx_team_members_user ON team_members(user_id);
    `)
	return err
}

func mig_20260110092000_teams_down(tx *sqlx.Tx) error {
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS team_events;`,
		`DROP TABLE IF EXISTS team_members;`,
		`DROP TABLE IF EXISTS teams;`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
