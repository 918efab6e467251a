package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrOrganiserNotFound = errors.New("organiser not found")
)

const eventColumns = `id, organiser_id, name, slug, locale, timezone, date_from, date_to,
	is_public, landing_page_text, mail_from, created_at, updated_at`

type EventRepo struct {
	db *sqlx.DB
}

func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) CreateOrganiser(ctx context.Context, name, slug string) (*Organiser, error) {
	query := `
        INSERT INTO organisers (name, slug)
        VALUES ($1, $2)
        RETURNING id, name, slug, created_at
    `

	var organiser Organiser
	err := r.db.GetContext(ctx, &organiser, query, name, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to create organiser: %w", err)
	}

	return &organiser, nil
}

func (r *EventRepo) GetOrganiserBySlug(ctx context.Context, slug string) (*Organiser, error) {
	query := `SELECT id, name, slug, created_at FROM organisers WHERE slug = $1`

	var organiser Organiser
	err := r.db.GetContext(ctx, &organiser, query, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrganiserNotFound
		}
		return nil, fmt.Errorf("failed to get organiser: %w", err)
	}

	return &organiser, nil
}

func (r *EventRepo) Create(ctx context.Context, req *CreateEventRequest) (*Event, error) {
	query := `
        INSERT INTO events (organiser_id, name, slug, locale, timezone, date_from, date_to)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + eventColumns + `
    `

	var event Event
	err := r.db.GetContext(ctx, &event, query,
		req.OrganiserID, req.Name, req.Slug, req.Locale, req.Timezone, req.DateFrom, req.DateTo)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return &event, nil
}

func (r *EventRepo) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var event Event
	err := r.db.GetContext(ctx, &event, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &event, nil
}

func (r *EventRepo) GetBySlug(ctx context.Context, organiserID uuid.UUID, slug string) (*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE organiser_id = $1 AND slug = $2`

	var event Event
	err := r.db.GetContext(ctx, &event, query, organiserID, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &event, nil
}

func (r *EventRepo) GetByName(ctx context.Context, organiserID uuid.UUID, name string) (*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE organiser_id = $1 AND name = $2`

	var event Event
	err := r.db.GetContext(ctx, &event, query, organiserID, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &event, nil
}

func (r *EventRepo) List(ctx context.Context) ([]*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`

	var events []*Event
	err := r.db.SelectContext(ctx, &events, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events, nil
}

func (r *EventRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Event, error) {
	if len(ids) == 0 {
		return []*Event{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+eventColumns+` FROM events WHERE id IN (?) ORDER BY created_at DESC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var events []*Event
	err = r.db.SelectContext(ctx, &events, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events, nil
}

func (r *EventRepo) Update(ctx context.Context, id uuid.UUID, req *UpdateEventRequest) (*Event, error) {
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
	if req.DateFrom != nil {
		addSet("date_from", *req.DateFrom)
	}
	if req.DateTo != nil {
		addSet("date_to", *req.DateTo)
	}
	if req.IsPublic != nil {
		addSet("is_public", *req.IsPublic)
	}
	if req.LandingPageText != nil {
		addSet("landing_page_text", *req.LandingPageText)
	}
	if req.MailFrom != nil {
		addSet("mail_from", *req.MailFrom)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
        UPDATE events
        SET %s
        WHERE id = $%d
        RETURNING `+eventColumns+`
    `, strings.Join(setParts, ", "), len(args))

	var event Event
	err := r.db.GetContext(ctx, &event, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return &event, nil
}
