package migrations

import (
	"github.com/jmoiron/sqlx"
)

func init() {
	m.addMigration(&migration{
		version: "20260120130000",
		up:      mig_20260120130000_federated_identities_up,
		down:    mig_20260120130000_federated_identities_down,
	})
}

func mig_20260120130000_federated_identities_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
        CREATE TABLE IF NOT EXISTS federated_identities (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_id UUID NOT NULL REFERENCES users(id),
            provider VARCHAR(100) NOT NULL,
            subject VARCHAR(255) NOT NULL,
            email VARCHAR(255),
            verified BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            UNIQUE (provider, subject)
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE INDEX IF NOT EXISTS idx_federated_identities_user ON federated_identities(user_id);
    `)
	return err
}

func mig_20260120130000_federated_identities_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS federated_identities;`)
	return err
}
