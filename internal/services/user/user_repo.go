package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/podium-events/podium/internal/services/team"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email address already in use")
	ErrCodeTaken     = errors.New("code already in use")
	ErrTokenNotFound = errors.New("password reset token not found")
)

const userColumns = `id, code, name, email, password_hash, is_active, is_staff, is_administrator,
	is_superuser, locale, timezone, avatar, get_gravatar, pw_reset_token, pw_reset_time,
	created_at, updated_at`

const pqUniqueViolation = "23505"

// uniqueViolation maps a pq unique-constraint error to the matching sentinel,
// so the service layer can regenerate and retry.
func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		switch pqErr.Constraint {
		case "idx_users_email_lower":
			return ErrEmailTaken
		case "idx_users_code_lower":
			return ErrCodeTaken
		}
	}
	return nil
}

type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

type InsertUserParams struct {
	Code         string
	Name         string
	Email        string
	PasswordHash *string
	Locale       string
	Timezone     string
}

func (r *UserRepo) Insert(ctx context.Context, params *InsertUserParams) (*User, error) {
	query := `
        INSERT INTO users (code, name, email, password_hash, locale, timezone)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + userColumns + `
    `

	var user User
	err := r.db.GetContext(ctx, &user, query,
		params.Code, params.Name, params.Email, params.PasswordHash, params.Locale, params.Timezone)
	if err != nil {
		if sentinel := uniqueViolation(err); sentinel != nil {
			return nil, sentinel
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *UserRepo) Update(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*User, error) {
	setParts := []string{}
	args := []interface{}{}

	addSet := func(column string, value interface{}) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if req.Name != nil {
		addSet("name", *req.Name)
	}
	if req.Locale != nil {
		addSet("locale", *req.Locale)
	}
	if req.Timezone != nil {
		addSet("timezone", *req.Timezone)
	}
	if req.Avatar != nil {
		addSet("avatar", *req.Avatar)
	}
	if req.GetGravatar != nil {
		addSet("get_gravatar", *req.GetGravatar)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
        UPDATE users
        SET %s
        WHERE id = $%d
        RETURNING `+userColumns+`
    `, strings.Join(setParts, ", "), len(args))

	var user User
	err := r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &user, nil
}

func (r *UserRepo) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result, err := r.db.ExecContext(ctx, `
        UPDATE users
        SET password_hash = $2, pw_reset_token = NULL, pw_reset_time = NULL, updated_at = NOW()
        WHERE id = $1
    `, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *UserRepo) SetResetToken(ctx context.Context, id uuid.UUID, token string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
        UPDATE users
        SET pw_reset_token = $2, pw_reset_time = $3, updated_at = NOW()
        WHERE id = $1
    `, id, token, at)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *UserRepo) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE users
        SET pw_reset_token = NULL, pw_reset_time = NULL, updated_at = NOW()
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByResetToken(ctx context.Context, token string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE pw_reset_token = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, token)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}

	return &user, nil
}

// QualifyingTeams returns the teams of the event's organiser that include the
// user as a member and cover the event, either via all_events or the explicit
// event scope.
func (r *UserRepo) QualifyingTeams(ctx context.Context, userID, eventID uuid.UUID) ([]*team.Team, error) {
	query := `
        SELECT t.id, t.organiser_id, t.name, t.all_events, t.can_create_events, t.can_change_teams,
            t.can_change_organiser_settings, t.can_change_event_settings, t.can_change_submissions,
            t.is_reviewer, t.review_override_votes, t.created_at, t.updated_at
        FROM teams t
        JOIN team_members tm ON tm.team_id = t.id
        JOIN events e ON e.organiser_id = t.organiser_id
        WHERE tm.user_id = $1
          AND e.id = $2
          AND (t.all_events OR EXISTS (
              SELECT 1 FROM team_events te WHERE te.team_id = t.id AND te.event_id = e.id
          ))
    `

	var teams []*team.Team
	err := r.db.SelectContext(ctx, &teams, query, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get qualifying teams: %w", err)
	}

	return teams, nil
}

// EventsWithAnyPermission returns the ids of every event the user can reach
// through some team: all events of organisers behind the user's all_events
// teams, plus explicitly scoped events. Deduplicated.
func (r *UserRepo) EventsWithAnyPermission(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
        SELECT DISTINCT e.id
        FROM events e
        WHERE e.organiser_id IN (
            SELECT t.organiser_id
            FROM teams t
            JOIN team_members tm ON tm.team_id = t.id
            WHERE tm.user_id = $1 AND t.all_events
        )
        OR e.id IN (
            SELECT te.event_id
            FROM team_events te
            JOIN team_members tm ON tm.team_id = te.team_id
            WHERE tm.user_id = $1
        )
    `

	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events with any permission: %w", err)
	}

	return ids, nil
}

var capabilityColumns = map[team.Capabilities]string{
	team.CanCreateEvents:            "can_create_events",
	team.CanChangeTeams:             "can_change_teams",
	team.CanChangeOrganiserSettings: "can_change_organiser_settings",
	team.CanChangeEventSettings:     "can_change_event_settings",
	team.CanChangeSubmissions:       "can_change_submissions",
	team.IsReviewer:                 "is_reviewer",
}

func capabilityFilter(cap team.Capabilities) string {
	parts := []string{}
	for flag, column := range capabilityColumns {
		if cap.Has(flag) {
			parts = append(parts, "t."+column)
		}
	}
	if len(parts) == 0 {
		return "TRUE"
	}
	return strings.Join(parts, " AND ")
}

// EventsForCapability returns the ids of events reachable through teams that
// grant every capability in cap.
func (r *UserRepo) EventsForCapability(ctx context.Context, userID uuid.UUID, cap team.Capabilities) ([]uuid.UUID, error) {
	filter := capabilityFilter(cap)

	query := fmt.Sprintf(`
        SELECT DISTINCT e.id
        FROM events e
        WHERE e.organiser_id IN (
            SELECT t.organiser_id
            FROM teams t
            JOIN team_members tm ON tm.team_id = t.id
            WHERE tm.user_id = $1 AND t.all_events AND %s
        )
        OR e.id IN (
            SELECT te.event_id
            FROM team_events te
            JOIN teams t ON t.id = te.team_id
            JOIN team_members tm ON tm.team_id = t.id
            WHERE tm.user_id = $1 AND NOT t.all_events AND %s
        )
    `, filter, filter)

	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events for capability: %w", err)
	}

	return ids, nil
}

func (r *UserRepo) AllEventIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM events ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return ids, nil
}

// MaxOverrideVotes is the largest override-vote allotment among the user's
// reviewer teams covering the event; 0 when there is none. The allotment is
// the maximum single grant, not a sum across teams.
func (r *UserRepo) MaxOverrideVotes(ctx context.Context, userID, eventID uuid.UUID) (int, error) {
	query := `
        SELECT COALESCE(MAX(t.review_override_votes), 0)
        FROM teams t
        JOIN team_members tm ON tm.team_id = t.id
        JOIN events e ON e.organiser_id = t.organiser_id
        WHERE tm.user_id = $1
          AND e.id = $2
          AND t.is_reviewer
          AND (t.all_events OR EXISTS (
              SELECT 1 FROM team_events te WHERE te.team_id = t.id AND te.event_id = e.id
          ))
    `

	var max int
	err := r.db.GetContext(ctx, &max, query, userID, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to get override vote allotment: %w", err)
	}

	return max, nil
}

// CountOverriddenReviews counts the user's reviews on the event's submissions
// that carry an override vote.
func (r *UserRepo) CountOverriddenReviews(ctx context.Context, userID, eventID uuid.UUID) (int, error) {
	query := `
        SELECT COUNT(*)
        FROM reviews r
        JOIN submissions s ON s.id = r.submission_id
        WHERE r.user_id = $1 AND s.event_id = $2 AND r.override_vote IS NOT NULL
    `

	var count int
	err := r.db.GetContext(ctx, &count, query, userID, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to count overridden reviews: %w", err)
	}

	return count, nil
}

type DeactivateParams struct {
	ID       uuid.UUID
	Email    string
	Name     string
	Locale   string
	Timezone string
}

// Deactivate scrubs the user record and its dependent data in one
// transaction. A partial scrub is a data-integrity violation, so any failure
// rolls everything back. Returns ErrEmailTaken when the placeholder address
// collides, so the caller can regenerate and retry.
func (r *UserRepo) Deactivate(ctx context.Context, params *DeactivateParams) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
        UPDATE users
        SET email = $2,
            name = $3,
            is_active = FALSE,
            is_administrator = FALSE,
            is_superuser = FALSE,
            locale = $4,
            timezone = $5,
            pw_reset_token = NULL,
            pw_reset_time = NULL,
            updated_at = NOW()
        WHERE id = $1
    `, params.ID, params.Email, params.Name, params.Locale, params.Timezone)
	if err != nil {
		if sentinel := uniqueViolation(err); sentinel != nil {
			return sentinel
		}
		return fmt.Errorf("failed to scrub user record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	if _, err := tx.ExecContext(ctx, `
        UPDATE speaker_profiles SET biography = '', updated_at = NOW() WHERE user_id = $1
    `, params.ID); err != nil {
		return fmt.Errorf("failed to scrub speaker profiles: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
        DELETE FROM answers
        USING questions
        WHERE answers.question_id = questions.id
          AND answers.user_id = $1
          AND questions.contains_personal_data
    `, params.ID); err != nil {
		return fmt.Errorf("failed to delete personal answers: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
        DELETE FROM team_members WHERE user_id = $1
    `, params.ID); err != nil {
		return fmt.Errorf("failed to remove team memberships: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// EventProfile returns the user's speaker profile for the event, creating an
// empty one on first access.
func (r *UserRepo) EventProfile(ctx context.Context, userID, eventID uuid.UUID) (*SpeakerProfile, error) {
	query := `
        INSERT INTO speaker_profiles (user_id, event_id)
        VALUES ($1, $2)
        ON CONFLICT (user_id, event_id) DO UPDATE SET updated_at = speaker_profiles.updated_at
        RETURNING id, user_id, event_id, biography, created_at, updated_at
    `

	var profile SpeakerProfile
	err := r.db.GetContext(ctx, &profile, query, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event profile: %w", err)
	}

	return &profile, nil
}

func (r *UserRepo) ProfilesByUser(ctx context.Context, userID uuid.UUID) ([]*SpeakerProfile, error) {
	query := `
        SELECT id, user_id, event_id, biography, created_at, updated_at
        FROM speaker_profiles
        WHERE user_id = $1
    `

	var profiles []*SpeakerProfile
	err := r.db.SelectContext(ctx, &profiles, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list speaker profiles: %w", err)
	}

	return profiles, nil
}
