package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	m.addMigration(&migration{
		version: "20260110091000",
		up:      mig_20260110091000_users_up,
		down:    mig_20260110091000_users_down,
	})
}

func mig_20260110091000_users_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
        CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            code VARCHAR(16),
            name VARCHAR(120) NOT NULL DEFAULT '',
            email VARCHAR(255) NOT NULL,
            password_hash TEXT,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            is_staff BOOLEAN NOT NULL DEFAULT FALSE,
            is_administrator BOOLEAN NOT NULL DEFAULT FALSE,
            is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
            locale VARCHAR(32) NOT NULL DEFAULT 'en',
            timezone VARCHAR(30) NOT NULL DEFAULT 'UTC',
            avatar VARCHAR(255),
            get_gravatar BOOLEAN NOT NULL DEFAULT FALSE,
            pw_reset_token VARCHAR(160),
            pw_reset_time TIMESTAMP WITH TIME ZONE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	// Email and code must be unique case-insensitively; the retry-on-conflict
	// loops in the user service rely on these constraints.
	_, err = tx.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email));
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_users_code_lower ON users (LOWER(code));
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE TABLE IF NOT EXISTS speaker_profiles (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_id UUID NOT NULL REFERENCES users(id),
            event_id UUID NOT NULL REFERENCES events(id),
            biography TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            UNIQUE (user_id, event_id)
        );
    `)
	if err != nil {
		return err
	}

	// Seed with a default administrator
	password := "admin"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash default password: %w", err)
	}

	_, err = tx.Exec(`
        INSERT INTO users (code, name, email, password_hash, is_administrator, is_staff)
        VALUES ($1, $2, $3, $4, TRUE, TRUE)
        ON CONFLICT DO NOTHING;
    `, "ADMIN3", "Administrator", "admin@localhost", string(hashedPassword))

	return err
}

func mig_20260110091000_users_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS speaker_profiles;`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`DROP TABLE IF EXISTS users;`)
	return err
}
