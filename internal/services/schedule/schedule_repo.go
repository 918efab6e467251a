package schedule

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

	"github.com/podium-events/podium/internal/services/user"
)

var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrRoomNotFound     = errors.New("room not found")
	ErrVersionExists    = errors.New("schedule version already exists")
)

const scheduleColumns = `id, event_id, version, published_at, created_at`

const slotColumns = `id, schedule_id, submission_id, room_id, start_time, end_time, is_visible`

type ScheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func versionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Table == "schedules"
}

func (r *ScheduleRepository) CreateRoom(ctx context.Context, eventID uuid.UUID, name string, position int) (*Room, error) {
	query := `
		INSERT INTO rooms (id, event_id, name, position)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, name) DO UPDATE SET position = EXCLUDED.position
		RETURNING id, event_id, name, position, created_at
	`

	var room Room
	err := r.db.GetContext(ctx, &room, query, uuid.New(), eventID, name, position)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return &room, nil
}

func (r *ScheduleRepository) Rooms(ctx context.Context, eventID uuid.UUID) ([]*Room, error) {
	rooms := []*Room{}
	err := r.db.SelectContext(ctx, &rooms,
		`SELECT id, event_id, name, position, created_at FROM rooms WHERE event_id = $1 ORDER BY position, name`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// WIP returns the event's editable schedule, creating it on first access.
func (r *ScheduleRepository) WIP(ctx context.Context, eventID uuid.UUID) (*Schedule, error) {
	var s Schedule
	query := fmt.Sprintf(`SELECT %s FROM schedules WHERE event_id = $1 AND version IS NULL`, scheduleColumns)
	err := r.db.GetContext(ctx, &s, query, eventID)
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get wip schedule: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO schedules (id, event_id) VALUES ($1, $2) RETURNING %s`, scheduleColumns)
	err = r.db.GetContext(ctx, &s, insert, uuid.New(), eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to create wip schedule: %w", err)
	}
	return &s, nil
}

func (r *ScheduleRepository) GetVersion(ctx context.Context, eventID uuid.UUID, version string) (*Schedule, error) {
	var s Schedule
	query := fmt.Sprintf(`SELECT %s FROM schedules WHERE event_id = $1 AND version = $2`, scheduleColumns)
	err := r.db.GetContext(ctx, &s, query, eventID, version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &s, nil
}

func (r *ScheduleRepository) Versions(ctx context.Context, eventID uuid.UUID) ([]*Schedule, error) {
	schedules := []*Schedule{}
	query := fmt.Sprintf(`SELECT %s FROM schedules WHERE event_id = $1 AND version IS NOT NULL ORDER BY published_at DESC`, scheduleColumns)
	if err := r.db.SelectContext(ctx, &schedules, query, eventID); err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

// Freeze stamps the WIP schedule with a version and opens a fresh WIP
// carrying the same slots.
func (r *ScheduleRepository) Freeze(ctx context.Context, eventID uuid.UUID, version string) (*Schedule, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var frozen Schedule
	stamp := fmt.Sprintf(`
		UPDATE schedules SET version = $2, published_at = NOW()
		WHERE event_id = $1 AND version IS NULL
		RETURNING %s
	`, scheduleColumns)
	err = tx.GetContext(ctx, &frozen, stamp, eventID, version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		if versionViolation(err) {
			return nil, ErrVersionExists
		}
		return nil, fmt.Errorf("failed to freeze schedule: %w", err)
	}

	// Frozen slots of accepted talks become publicly visible.
	_, err = tx.ExecContext(ctx, `
		UPDATE talk_slots ts SET is_visible = TRUE
		FROM submissions s
		WHERE ts.schedule_id = $1
		  AND s.id = ts.submission_id
		  AND s.state IN ('accepted', 'confirmed')
		  AND ts.start_time IS NOT NULL
	`, frozen.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark slots visible: %w", err)
	}

	wipID := uuid.New()
	_, err = tx.ExecContext(ctx, `INSERT INTO schedules (id, event_id) VALUES ($1, $2)`, wipID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to create wip schedule: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO talk_slots (id, schedule_id, submission_id, room_id, start_time, end_time, is_visible)
		SELECT gen_random_uuid(), $2, submission_id, room_id, start_time, end_time, FALSE
		FROM talk_slots WHERE schedule_id = $1
	`, frozen.ID, wipID)
	if err != nil {
		return nil, fmt.Errorf("failed to copy slots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tx: %w", err)
	}
	return &frozen, nil
}

// PlaceSlot positions a submission on a schedule, replacing its earlier
// placement if any.
func (r *ScheduleRepository) PlaceSlot(ctx context.Context, scheduleID, submissionID uuid.UUID, placement *SlotPlacement) (*TalkSlot, error) {
	query := fmt.Sprintf(`
		INSERT INTO talk_slots (id, schedule_id, submission_id, room_id, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (schedule_id, submission_id) DO UPDATE SET
			room_id = EXCLUDED.room_id,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time
		RETURNING %s
	`, slotColumns)

	var slot TalkSlot
	err := r.db.GetContext(ctx, &slot, query, uuid.New(), scheduleID, submissionID,
		placement.RoomID, placement.StartTime, placement.EndTime)
	if err != nil {
		return nil, fmt.Errorf("failed to place slot: %w", err)
	}
	return &slot, nil
}

func (r *ScheduleRepository) RemoveSlot(ctx context.Context, scheduleID, submissionID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM talk_slots WHERE schedule_id = $1 AND submission_id = $2`, scheduleID, submissionID)
	if err != nil {
		return fmt.Errorf("failed to remove slot: %w", err)
	}
	return nil
}

func (r *ScheduleRepository) Slots(ctx context.Context, scheduleID uuid.UUID) ([]*TalkSlot, error) {
	slots := []*TalkSlot{}
	query := fmt.Sprintf(`SELECT %s FROM talk_slots WHERE schedule_id = $1 ORDER BY start_time NULLS LAST`, slotColumns)
	if err := r.db.SelectContext(ctx, &slots, query, scheduleID); err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}

// ImportFrab materialises a frab schedule export into the event: rooms,
// submission types, speakers, submissions and a versioned schedule, all in
// one transaction so a bad file leaves nothing behind.
func (r *ScheduleRepository) ImportFrab(ctx context.Context, eventID uuid.UUID, frab *FrabSchedule) (*ImportResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	scheduleID := uuid.New()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO schedules (id, event_id, version, published_at) VALUES ($1, $2, $3, NOW())`,
		scheduleID, eventID, frab.Version)
	if err != nil {
		if versionViolation(err) {
			return nil, ErrVersionExists
		}
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	result := &ImportResult{ScheduleID: scheduleID, Version: frab.Version}
	var minStart, maxEnd time.Time
	roomIDs := map[string]uuid.UUID{}
	typeIDs := map[string]uuid.UUID{}
	speakerIDs := map[string]uuid.UUID{}

	for _, day := range frab.Days {
		for _, frabRoom := range day.Rooms {
			roomID, ok := roomIDs[frabRoom.Name]
			if !ok {
				roomID, err = r.importRoom(ctx, tx, eventID, frabRoom.Name, len(roomIDs))
				if err != nil {
					return nil, err
				}
				roomIDs[frabRoom.Name] = roomID
				result.Rooms++
			}

			for _, ev := range frabRoom.Events {
				duration, err := ParseDuration(ev.Duration)
				if err != nil {
					return nil, err
				}
				start, err := ev.Start()
				if err != nil {
					return nil, err
				}

				typeName := ev.Type
				if typeName == "" {
					typeName = "Talk"
				}
				minutes := int(duration.Minutes())
				typeKey := fmt.Sprintf("%s:%d", typeName, minutes)
				typeID, ok := typeIDs[typeKey]
				if !ok {
					typeID, err = r.importType(ctx, tx, eventID, typeName, minutes)
					if err != nil {
						return nil, err
					}
					typeIDs[typeKey] = typeID
				}

				submissionID, created, err := r.importSubmission(ctx, tx, eventID, typeID, &ev)
				if err != nil {
					return nil, err
				}
				if created {
					result.Submissions++
				}

				for _, person := range ev.Persons {
					speakerID, ok := speakerIDs[person.Name]
					if !ok {
						speakerID, created, err = r.importSpeaker(ctx, tx, eventID, person.Name)
						if err != nil {
							return nil, err
						}
						speakerIDs[person.Name] = speakerID
						if created {
							result.Speakers++
						}
					}
					_, err = tx.ExecContext(ctx,
						`INSERT INTO submission_speakers (submission_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
						submissionID, speakerID)
					if err != nil {
						return nil, fmt.Errorf("failed to link speaker: %w", err)
					}
				}

				end := ev.EndTime(start, duration)
				_, err = tx.ExecContext(ctx, `
					INSERT INTO talk_slots (id, schedule_id, submission_id, room_id, start_time, end_time, is_visible)
					VALUES ($1, $2, $3, $4, $5, $6, TRUE)
				`, uuid.New(), scheduleID, submissionID, roomID, start, end)
				if err != nil {
					return nil, fmt.Errorf("failed to create slot: %w", err)
				}
				result.Slots++

				if minStart.IsZero() || start.Before(minStart) {
					minStart = start
				}
				if end.After(maxEnd) {
					maxEnd = end
				}
			}
		}
	}

	if result.Slots > 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE events
			SET date_from = LEAST(COALESCE(date_from, $2::date), $2::date),
			    date_to = GREATEST(COALESCE(date_to, $3::date), $3::date),
			    updated_at = NOW()
			WHERE id = $1
		`, eventID, minStart, maxEnd)
		if err != nil {
			return nil, fmt.Errorf("failed to update event dates: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tx: %w", err)
	}
	return result, nil
}

func (r *ScheduleRepository) importRoom(ctx context.Context, tx *sqlx.Tx, eventID uuid.UUID, name string, position int) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.GetContext(ctx, &id, `
		INSERT INTO rooms (id, event_id, name, position)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, uuid.New(), eventID, name, position)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to import room: %w", err)
	}
	return id, nil
}

// importType matches existing types on name and duration: a "Talk" of 30
// minutes and a "Talk" of 45 minutes are distinct types.
func (r *ScheduleRepository) importType(ctx context.Context, tx *sqlx.Tx, eventID uuid.UUID, name string, minutes int) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.GetContext(ctx, &id,
		`SELECT id FROM submission_types WHERE event_id = $1 AND name = $2 AND default_duration = $3`,
		eventID, name, minutes)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("failed to look up submission type: %w", err)
	}

	err = tx.GetContext(ctx, &id, `
		INSERT INTO submission_types (id, event_id, name, default_duration)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, uuid.New(), eventID, name, minutes)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to import submission type: %w", err)
	}
	return id, nil
}

// importCode picks the submission code for a frab talk: the talk's id when it
// already names a submission in this event or is globally unused, otherwise
// the first 16 characters of its guid under the same test, otherwise a fresh
// generated code.
func (r *ScheduleRepository) importCode(ctx context.Context, tx *sqlx.Tx, eventID uuid.UUID, ev *FrabEvent) (string, error) {
	guid := ev.GUID
	if len(guid) > 16 {
		guid = guid[:16]
	}

	for _, cand := range []string{ev.ID, guid} {
		if cand == "" {
			continue
		}

		var inEvent bool
		err := tx.GetContext(ctx, &inEvent,
			`SELECT EXISTS (SELECT 1 FROM submissions WHERE event_id = $1 AND LOWER(code) = LOWER($2))`,
			eventID, cand)
		if err != nil {
			return "", fmt.Errorf("failed to probe submission code: %w", err)
		}
		if inEvent {
			return cand, nil
		}

		var anywhere bool
		err = tx.GetContext(ctx, &anywhere,
			`SELECT EXISTS (SELECT 1 FROM submissions WHERE LOWER(code) = LOWER($1))`, cand)
		if err != nil {
			return "", fmt.Errorf("failed to probe submission code: %w", err)
		}
		if !anywhere {
			return cand, nil
		}
	}

	// Both ids name talks in other events; fall back to a generated code.
	for attempt := 0; attempt < 20; attempt++ {
		code := user.GenerateCode(user.CodeLength)

		var taken bool
		err := tx.GetContext(ctx, &taken,
			`SELECT EXISTS (SELECT 1 FROM submissions WHERE LOWER(code) = LOWER($1))`, code)
		if err != nil {
			return "", fmt.Errorf("failed to probe submission code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not find a free submission code")
}

func (r *ScheduleRepository) importSubmission(ctx context.Context, tx *sqlx.Tx, eventID, typeID uuid.UUID, ev *FrabEvent) (uuid.UUID, bool, error) {
	code, err := r.importCode(ctx, tx, eventID, ev)
	if err != nil {
		return uuid.Nil, false, err
	}

	var id uuid.UUID
	err = tx.GetContext(ctx, &id,
		`SELECT id FROM submissions WHERE event_id = $1 AND LOWER(code) = LOWER($2)`, eventID, code)
	if err == nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE submissions SET title = $2, abstract = NULLIF($3, ''), description = NULLIF($4, ''),
				content_locale = $5, do_not_record = $6, submission_type_id = $7, updated_at = NOW()
			WHERE id = $1
		`, id, ev.Title, ev.Abstract, ev.Description, locale(ev.Language), ev.Recording.Optout, typeID)
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("failed to update submission: %w", err)
		}
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, false, fmt.Errorf("failed to look up submission: %w", err)
	}

	err = tx.GetContext(ctx, &id, `
		INSERT INTO submissions (id, event_id, code, title, abstract, description, content_locale, submission_type_id, state, do_not_record)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, 'confirmed', $9)
		RETURNING id
	`, uuid.New(), eventID, code, ev.Title, ev.Abstract, ev.Description, locale(ev.Language), typeID, ev.Recording.Optout)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to import submission: %w", err)
	}
	return id, true, nil
}

// importSpeaker matches speakers by display name within the import, creating
// placeholder accounts with an event speaker profile for unknown names.
func (r *ScheduleRepository) importSpeaker(ctx context.Context, tx *sqlx.Tx, eventID uuid.UUID, name string) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := tx.GetContext(ctx, &id, `SELECT id FROM users WHERE name = $1 LIMIT 1`, name)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, false, fmt.Errorf("failed to look up speaker: %w", err)
	}

	// A unique violation would abort the surrounding transaction, so probe
	// for collisions instead of relying on the constraint here.
	for attempt := 0; attempt < 20; attempt++ {
		code := user.GenerateCode(user.CodeLength)

		var taken bool
		err = tx.GetContext(ctx, &taken,
			`SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(code) = LOWER($1))`, code)
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("failed to probe speaker code: %w", err)
		}
		if taken {
			continue
		}

		email := fmt.Sprintf("%s@import.localhost", strings.ToLower(code))
		err = tx.GetContext(ctx, &id, `
			INSERT INTO users (id, email, name, code, locale, timezone)
			VALUES ($1, $2, $3, $4, 'en', 'UTC')
			RETURNING id
		`, uuid.New(), email, name, code)
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("failed to import speaker: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO speaker_profiles (user_id, event_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			id, eventID)
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("failed to create speaker profile: %w", err)
		}
		return id, true, nil
	}
	return uuid.Nil, false, fmt.Errorf("could not find a free speaker code")
}

func locale(lang string) string {
	if lang == "" {
		return "en"
	}
	return lang
}
