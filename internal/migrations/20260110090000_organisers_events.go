package migrations

import (
	"github.com/jmoiron/sqlx"
)

func init() {
	m.addMigration(&migration{
		version: "20260110090000",
		up:      mig_20260110090000_organisers_events_up,
		down:    mig_20260110090000_organisers_events_down,
	})
}

func mig_20260110090000_organisers_events_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
        CREATE TABLE IF NOT EXISTS organisers (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            name VARCHAR(190) NOT NULL,
            slug VARCHAR(50) NOT NULL UNIQUE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE TABLE IF NOT EXISTS events (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            organiser_id UUID NOT NULL REFERENCES organisers(id),
            name VARCHAR(200) NOT NULL,
            slug VARCHAR(50) NOT NULL,
            locale VARCHAR(32) NOT NULL DEFAULT 'en',
            timezone VARCHAR(30) NOT NULL DEFAULT 'UTC',
            date_from DATE,
            date_to DATE,
            is_public BOOLEAN NOT NULL DEFAULT FALSE,
            landing_page_text TEXT,
            mail_from VARCHAR(255),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            UNIQUE (organiser_id, slug)
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE INDEX IF NOT EXISTS idx_events_organiser ON events(organiser_id);
    `)
	return err
}

func mig_20260110090000_organisers_events_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS events;`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`DROP TABLE IF EXISTS organisers;`)
	return err
}
