package federation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrIdentityNotFound = errors.New("federated identity not found")

const identityColumns = `id, user_id, provider, subject, email, verified, created_at`

type FederationRepository struct {
	db *sqlx.DB
}

func NewFederationRepository(db *sqlx.DB) *FederationRepository {
	return &FederationRepository{db: db}
}

// Link attaches a provider subject to a user, refreshing the stored email on
// re-login.
func (r *FederationRepository) Link(ctx context.Context, req *LinkRequest) (*Identity, error) {
	query := fmt.Sprintf(`
		INSERT INTO federated_identities (id, user_id, provider, subject, email, verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (provider, subject) DO UPDATE SET
			email = EXCLUDED.email,
			verified = EXCLUDED.verified
		RETURNING %s
	`, identityColumns)

	var ident Identity
	err := r.db.GetContext(ctx, &ident, query, uuid.New(), req.UserID, req.Provider, req.Subject, req.Email, req.Verified)
	if err != nil {
		return nil, fmt.Errorf("failed to link identity: %w", err)
	}
	return &ident, nil
}

func (r *FederationRepository) GetBySubject(ctx context.Context, provider, subject string) (*Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM federated_identities WHERE provider = $1 AND subject = $2`, identityColumns)

	var ident Identity
	err := r.db.GetContext(ctx, &ident, query, provider, subject)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}
	return &ident, nil
}

func (r *FederationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM federated_identities WHERE user_id = $1 ORDER BY created_at`, identityColumns)

	identities := []*Identity{}
	if err := r.db.SelectContext(ctx, &identities, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	return identities, nil
}

func (r *FederationRepository) Unlink(ctx context.Context, userID uuid.UUID, provider string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM federated_identities WHERE user_id = $1 AND provider = $2`, userID, provider)
	if err != nil {
		return fmt.Errorf("failed to unlink identity: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

// DeleteByUser removes every identity of the user.
func (r *FederationRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM federated_identities WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete identities: %w", err)
	}
	return nil
}
