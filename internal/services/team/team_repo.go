package team

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrTeamNotFound = errors.New("team not found")

const teamColumns = `id, organiser_id, name, all_events, can_create_events, can_change_teams,
	can_change_organiser_settings, can_change_event_settings, can_change_submissions,
	is_reviewer, review_override_votes, created_at, updated_at`

type TeamRepo struct {
	db *sqlx.DB
}

func NewTeamRepo(db *sqlx.DB) *TeamRepo {
	return &TeamRepo{db: db}
}

func (r *TeamRepo) Create(ctx context.Context, req *CreateTeamRequest) (*Team, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO teams (organiser_id, name, all_events, can_create_events, can_change_teams,
            can_change_organiser_settings, can_change_event_settings, can_change_submissions,
            is_reviewer, review_override_votes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING ` + teamColumns + `
    `

	var team Team
	err = tx.GetContext(ctx, &team, query,
		req.OrganiserID, req.Name, req.AllEvents, req.CanCreateEvents, req.CanChangeTeams,
		req.CanChangeOrganiserSettings, req.CanChangeEventSettings, req.CanChangeSubmissions,
		req.IsReviewer, req.ReviewOverrideVotes)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	for _, eventID := range req.LimitEvents {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO team_events (team_id, event_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			team.ID, eventID); err != nil {
			return nil, fmt.Errorf("failed to scope team to event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &team, nil
}

func (r *TeamRepo) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	var team Team
	err := r.db.GetContext(ctx, &team, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

func (r *TeamRepo) ListByOrganiser(ctx context.Context, organiserID uuid.UUID) ([]*Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE organiser_id = $1 ORDER BY name`

	var teams []*Team
	err := r.db.SelectContext(ctx, &teams, query, organiserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	return teams, nil
}

func (r *TeamRepo) Update(ctx context.Context, id uuid.UUID, req *UpdateTeamRequest) (*Team, error) {
	setParts := []string{}
	args := []interface{}{}

	addSet := func(column string, value interface{}) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if req.Name != nil {
		addSet("name", *req.Name)
	}
	if req.AllEvents != nil {
		addSet("all_events", *req.AllEvents)
	}
	if req.CanCreateEvents != nil {
		addSet("can_create_events", *req.CanCreateEvents)
	}
	if req.CanChangeTeams != nil {
		addSet("can_change_teams", *req.CanChangeTeams)
	}
	if req.CanChangeOrganiserSettings != nil {
		addSet("can_change_organiser_settings", *req.CanChangeOrganiserSettings)
	}
	if req.CanChangeEventSettings != nil {
		addSet("can_change_event_settings", *req.CanChangeEventSettings)
	}
	if req.CanChangeSubmissions != nil {
		addSet("can_change_submissions", *req.CanChangeSubmissions)
	}
	if req.IsReviewer != nil {
		addSet("is_reviewer", *req.IsReviewer)
	}
	if req.ReviewOverrideVotes != nil {
		addSet("review_override_votes", *req.ReviewOverrideVotes)
	}

	if len(setParts) == 0 && req.LimitEvents == nil {
		return r.GetByID(ctx, id)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var team Team
	if len(setParts) > 0 {
		setParts = append(setParts, "updated_at = NOW()")
		args = append(args, id)

		query := fmt.Sprintf(`
            UPDATE teams
            SET %s
            WHERE id = $%d
            RETURNING `+teamColumns+`
        `, strings.Join(setParts, ", "), len(args))

		err = tx.GetContext(ctx, &team, query, args...)
	} else {
		err = tx.GetContext(ctx, &team, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	if req.LimitEvents != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM team_events WHERE team_id = $1`, id); err != nil {
			return nil, fmt.Errorf("failed to clear team event scope: %w", err)
		}
		for _, eventID := range *req.LimitEvents {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO team_events (team_id, event_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				id, eventID); err != nil {
				return nil, fmt.Errorf("failed to scope team to event: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &team, nil
}

func (r *TeamRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTeamNotFound
	}

	return nil
}

func (r *TeamRepo) AddMember(ctx context.Context, teamID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO team_members (team_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to add team member: %w", err)
	}
	return nil
}

func (r *TeamRepo) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`,
		teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	return nil
}

func (r *TeamRepo) MemberIDs(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids,
		`SELECT user_id FROM team_members WHERE team_id = $1`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return ids, nil
}

func (r *TeamRepo) LimitEventIDs(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids,
		`SELECT event_id FROM team_events WHERE team_id = $1`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team events: %w", err)
	}
	return ids, nil
}
