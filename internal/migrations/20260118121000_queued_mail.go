package migrations

import (
	"github.com/jmoiron/sqlx"
)

func init() {
	m.addMigration(&migration{
		version: "20260118121000",
		up:      mig_20260118121000_queued_mail_up,
		down:    mig_20260118121000_queued_mail_down,
	})
}

func mig_20260118121000_queued_mail_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
        CREATE TABLE IF NOT EXISTS queued_mail (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            event_id UUID REFERENCES events(id),
            subject VARCHAR(200) NOT NULL,
            text TEXT NOT NULL,
            reply_to VARCHAR(255),
            bcc VARCHAR(255),
            sent_at TIMESTAMP WITH TIME ZONE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE TABLE IF NOT EXISTS queued_mail_recipients (
            mail_id UUID NOT NULL REFERENCES queued_mail(id) ON DELETE CASCADE,
            user_id UUID NOT NULL REFERENCES users(id),
            PRIMARY KEY (mail_id, user_id)
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE INDEX IF NOT EXISTS idx_queued_mail_unsent ON queued_mail(created_at) WHERE sent_at IS NULL;
    `)
	return err
}

func mig_20260118121000_queued_mail_down(tx *sqlx.Tx) error {
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS queued_mail_recipients;`,
		`DROP TABLE IF EXISTS queued_mail;`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
