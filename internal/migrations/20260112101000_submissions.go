package migrations

import (
	"github.com/jmoiron/sqlx"
)

func init() {
	m.addMigration(&migration{
		version: "20260112101000",
		up:      mig_20260112101000_submissions_up,
		down:    mig_20260112101000_submissions_down,
	})
}

func mig_20260112101000_submissions_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
        CREATE TABLE IF NOT EXISTS submissions (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            event_id UUID NOT NULL REFERENCES events(id),
            code VARCHAR(16) NOT NULL,
            title VARCHAR(200) NOT NULL DEFAULT '',
            abstract TEXT,
            description TEXT,
            content_locale VARCHAR(32) NOT NULL DEFAULT 'en',
            submission_type_id UUID NOT NULL REFERENCES submission_types(id),
            state VARCHAR(16) NOT NULL DEFAULT 'submitted' CHECK (state IN ('submitted', 'accepted', 'rejected', 'confirmed', 'canceled', 'withdrawn', 'deleted')),
            do_not_record BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_submissions_event_code ON submissions (event_id, LOWER(code));
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE TABLE IF NOT EXISTS submission_speakers (
            submission_id UUID NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
            user_id UUID NOT NULL REFERENCES users(id),
            PRIMARY KEY (submission_id, user_id)
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE TABLE IF NOT EXISTS reviews (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            submission_id UUID NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
            user_id UUID NOT NULL REFERENCES users(id),
            score INTEGER,
            text TEXT,
            override_vote BOOLEAN,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            UNIQUE (submission_id, user_id)
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE TABLE IF NOT EXISTS answers (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
            user_id UUID NOT NULL REFERENCES users(id),
            submission_id UUID REFERENCES submissions(id) ON DELETE CASCADE,
            review_id UUID REFERENCES reviews(id) ON DELETE CASCADE,
            answer TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE INDEX IF NOT EXISTS idx_answers_user ON answers(user_id);
    `)
	return err
}

func mig_20260112101000_submissions_down(tx *sqlx.Tx) error {
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS answers;`,
		`DROP TABLE IF EXISTS reviews;`,
		`DROP TABLE IF EXISTS submission_speakers;`,
		`DROP TABLE IF EXISTS submissions;`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
