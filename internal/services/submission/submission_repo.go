package submission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrReviewNotFound     = errors.New("review not found")
	ErrCodeTaken          = errors.New("submission code already in use")
)

const submissionColumns = `id, event_id, code, title, abstract, description, content_locale, submission_type_id, state, do_not_record, created_at, updated_at`

const reviewColumns = `id, submission_id, user_id, score, text, override_vote, created_at, updated_at`

type SubmissionRepository struct {
	db *sqlx.DB
}

func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "idx_submissions_event_code" {
		return ErrCodeTaken
	}
	return nil
}

// Insert creates the submission and its initial speaker in one transaction.
// Returns ErrCodeTaken when the code collides within the event.
func (r *SubmissionRepository) Insert(ctx context.Context, sub *Submission, speakerID uuid.UUID) (*Submission, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO submissions (id, event_id, code, title, abstract, description, content_locale, submission_type_id, state, do_not_record)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s
	`, submissionColumns)

	var created Submission
	err = tx.GetContext(ctx, &created, query, sub.ID, sub.EventID, sub.Code, sub.Title, sub.Abstract,
		sub.Description, sub.ContentLocale, sub.SubmissionTypeID, sub.State, sub.DoNotRecord)
	if err != nil {
		if taken := uniqueViolation(err); taken != nil {
			return nil, taken
		}
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO submission_speakers (submission_id, user_id) VALUES ($1, $2)`, created.ID, speakerID)
	if err != nil {
		return nil, fmt.Errorf("failed to add speaker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tx: %w", err)
	}
	return &created, nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE id = $1`, submissionColumns)

	var sub Submission
	err := r.db.GetContext(ctx, &sub, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &sub, nil
}

func (r *SubmissionRepository) GetByCode(ctx context.Context, eventID uuid.UUID, code string) (*Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE event_id = $1 AND LOWER(code) = LOWER($2)`, submissionColumns)

	var sub Submission
	err := r.db.GetContext(ctx, &sub, query, eventID, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &sub, nil
}

func (r *SubmissionRepository) ListByEvent(ctx context.Context, eventID uuid.UUID, states []State) ([]*Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE event_id = $1`, submissionColumns)
	args := []interface{}{eventID}
	if len(states) > 0 {
		names := make([]string, len(states))
		for i, s := range states {
			names[i] = string(s)
		}
		query += ` AND state = ANY($2)`
		args = append(args, pq.Array(names))
	}
	query += ` ORDER BY created_at`

	subs := []*Submission{}
	if err := r.db.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

func (r *SubmissionRepository) ListBySpeaker(ctx context.Context, userID uuid.UUID) ([]*Submission, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM submissions s
		JOIN submission_speakers ss ON ss.submission_id = s.id
		WHERE ss.user_id = $1
		ORDER BY s.created_at
	`, prefixColumns("s"))

	subs := []*Submission{}
	if err := r.db.SelectContext(ctx, &subs, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list submissions by speaker: %w", err)
	}
	return subs, nil
}

func (r *SubmissionRepository) Update(ctx context.Context, id uuid.UUID, req *UpdateSubmissionRequest) (*Submission, error) {
	query := fmt.Sprintf(`
		UPDATE submissions SET
			title = COALESCE($2, title),
			abstract = COALESCE($3, abstract),
			description = COALESCE($4, description),
			content_locale = COALESCE($5, content_locale),
			submission_type_id = COALESCE($6, submission_type_id),
			do_not_record = COALESCE($7, do_not_record),
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, submissionColumns)

	var sub Submission
	err := r.db.GetContext(ctx, &sub, query, id, req.Title, req.Abstract, req.Description,
		req.ContentLocale, req.SubmissionTypeID, req.DoNotRecord)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}
	return &sub, nil
}

func (r *SubmissionRepository) SetState(ctx context.Context, id uuid.UUID, state State) error {
	result, err := r.db.ExecContext(ctx, `UPDATE submissions SET state = $2, updated_at = NOW() WHERE id = $1`, id, state)
	if err != nil {
		return fmt.Errorf("failed to set submission state: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

func (r *SubmissionRepository) AddSpeaker(ctx context.Context, submissionID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO submission_speakers (submission_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		submissionID, userID)
	if err != nil {
		return fmt.Errorf("failed to add speaker: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) RemoveSpeaker(ctx context.Context, submissionID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM submission_speakers WHERE submission_id = $1 AND user_id = $2`, submissionID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove speaker: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) SpeakerIDs(ctx context.Context, submissionID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.SelectContext(ctx, &ids,
		`SELECT user_id FROM submission_speakers WHERE submission_id = $1`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list speakers: %w", err)
	}
	return ids, nil
}

// SaveReview creates or replaces the reviewer's review of a submission.
func (r *SubmissionRepository) SaveReview(ctx context.Context, req *SaveReviewRequest) (*Review, error) {
	query := fmt.Sprintf(`
		INSERT INTO reviews (id, submission_id, user_id, score, text, override_vote)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (submission_id, user_id) DO UPDATE SET
			score = EXCLUDED.score,
			text = EXCLUDED.text,
			override_vote = EXCLUDED.override_vote,
			updated_at = NOW()
		RETURNING %s
	`, reviewColumns)

	var rev Review
	err := r.db.GetContext(ctx, &rev, query, uuid.New(), req.SubmissionID, req.UserID, req.Score, req.Text, req.OverrideVote)
	if err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}
	return &rev, nil
}

func (r *SubmissionRepository) ReviewsBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE submission_id = $1 ORDER BY created_at`, reviewColumns)

	reviews := []*Review{}
	if err := r.db.SelectContext(ctx, &reviews, query, submissionID); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *SubmissionRepository) ReviewByUser(ctx context.Context, submissionID, userID uuid.UUID) (*Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE submission_id = $1 AND user_id = $2`, reviewColumns)

	var rev Review
	err := r.db.GetContext(ctx, &rev, query, submissionID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &rev, nil
}

// Stats computes the organiser dashboard counts for one event.
func (r *SubmissionRepository) Stats(ctx context.Context, eventID uuid.UUID) (*EventStats, error) {
	stats := &EventStats{ByState: map[State]int{}}

	rows, err := r.db.QueryxContext(ctx,
		`SELECT state, COUNT(*) FROM submissions WHERE event_id = $1 GROUP BY state`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var state State
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("failed to scan submission count: %w", err)
		}
		stats.ByState[state] = count
		stats.TotalSubmissions += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}

	err = r.db.GetContext(ctx, &stats.SpeakerCount, `
		SELECT COUNT(DISTINCT ss.user_id)
		FROM submission_speakers ss
		JOIN submissions s ON s.id = ss.submission_id
		WHERE s.event_id = $1
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count speakers: %w", err)
	}

	err = r.db.GetContext(ctx, &stats.ReviewCount, `
		SELECT COUNT(*)
		FROM reviews rv
		JOIN submissions s ON s.id = rv.submission_id
		WHERE s.event_id = $1
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	return stats, nil
}

func prefixColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.event_id, %[1]s.code, %[1]s.title, %[1]s.abstract, %[1]s.description, %[1]s.content_locale, %[1]s.submission_type_id, %[1]s.state, %[1]s.do_not_record, %[1]s.created_at, %[1]s.updated_at`, alias)
}
