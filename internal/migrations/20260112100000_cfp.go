package migrations

import (
	"github.com/jmoiron/sqlx"
)

func init() {
	m.addMigration(&migration{
		version: "20260112100000",
		up:      mig_20260112100000_cfp_up,
		down:    mig_20260112100000_cfp_down,
	})
}

func mig_20260112100000_cfp_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
        CREATE TABLE IF NOT EXISTS submission_types (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            event_id UUID NOT NULL REFERENCES events(id),
            name VARCHAR(190) NOT NULL,
            default_duration INTEGER NOT NULL DEFAULT 30,
            max_duration INTEGER,
            deadline TIMESTAMP WITH TIME ZONE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE TABLE IF NOT EXISTS cfps (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            event_id UUID NOT NULL UNIQUE REFERENCES events(id),
            headline VARCHAR(300),
            text TEXT,
            deadline TIMESTAMP WITH TIME ZONE,
            default_type_id UUID REFERENCES submission_types(id),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE TABLE IF NOT EXISTS questions (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            event_id UUID NOT NULL REFERENCES events(id),
            target VARCHAR(10) NOT NULL DEFAULT 'submission' CHECK (target IN ('submission', 'speaker', 'reviewer')),
            question TEXT NOT NULL,
            help_text TEXT,
            variant VARCHAR(10) NOT NULL DEFAULT 'string' CHECK (variant IN ('boolean', 'number', 'string', 'text', 'choices', 'multiple', 'file')),
            required BOOLEAN NOT NULL DEFAULT FALSE,
            active BOOLEAN NOT NULL DEFAULT TRUE,
            contains_personal_data BOOLEAN NOT NULL DEFAULT FALSE,
            position INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE TABLE IF NOT EXISTS answer_options (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
            answer TEXT NOT NULL
        );
    `)
	return err
}

func mig_20260112100000_cfp_down(tx *sqlx.Tx) error {
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS answer_options;`,
		`DROP TABLE IF EXISTS questions;`,
		`DROP TABLE IF EXISTS cfps;`,
		`DROP TABLE IF EXISTS submission_types;`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
