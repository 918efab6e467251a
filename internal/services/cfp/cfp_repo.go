package cfp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrCfPNotFound      = errors.New("cfp not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrTypeNotFound     = errors.New("submission type not found")
)

const cfpColumns = `id, event_id, headline, text, deadline, default_type_id, created_at, updated_at`

type CfPRepository struct {
	db *sqlx.DB
}

func NewCfPRepository(db *sqlx.DB) *CfPRepository {
	return &CfPRepository{db: db}
}

// Upsert creates the event's CfP or replaces its editable fields. Each event
// has at most one CfP row.
func (r *CfPRepository) Upsert(ctx context.Context, eventID uuid.UUID, req *UpsertCfPRequest) (*CfP, error) {
	query := fmt.Sprintf(`
		INSERT INTO cfps (id, event_id, headline, text, deadline, default_type_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO UPDATE SET
			headline = EXCLUDED.headline,
			text = EXCLUDED.text,
			deadline = EXCLUDED.deadline,
			default_type_id = EXCLUDED.default_type_id,
			updated_at = NOW()
		RETURNING %s
	`, cfpColumns)

	var c CfP
	err := r.db.GetContext(ctx, &c, query, uuid.New(), eventID, req.Headline, req.Text, req.Deadline, req.DefaultTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cfp: %w", err)
	}
	return &c, nil
}

func (r *CfPRepository) GetByEvent(ctx context.Context, eventID uuid.UUID) (*CfP, error) {
	query := fmt.Sprintf(`SELECT %s FROM cfps WHERE event_id = $1`, cfpColumns)

	var c CfP
	err := r.db.GetContext(ctx, &c, query, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCfPNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cfp: %w", err)
	}
	return &c, nil
}

func (r *CfPRepository) CreateSubmissionType(ctx context.Context, req *CreateSubmissionTypeRequest) (*SubmissionType, error) {
	query := `
		INSERT INTO submission_types (id, event_id, name, default_duration, max_duration, deadline)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, event_id, name, default_duration, max_duration, deadline, created_at
	`

	var st SubmissionType
	err := r.db.GetContext(ctx, &st, query, uuid.New(), req.EventID, req.Name, req.DefaultDuration, req.MaxDuration, req.Deadline)
	if err != nil {
		return nil, fmt.Errorf("failed to create submission type: %w", err)
	}
	return &st, nil
}

func (r *CfPRepository) GetSubmissionType(ctx context.Context, id uuid.UUID) (*SubmissionType, error) {
	query := `SELECT id, event_id, name, default_duration, max_duration, deadline, created_at FROM submission_types WHERE id = $1`

	var st SubmissionType
	err := r.db.GetContext(ctx, &st, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission type: %w", err)
	}
	return &st, nil
}

func (r *CfPRepository) SubmissionTypes(ctx context.Context, eventID uuid.UUID) ([]*SubmissionType, error) {
	query := `SELECT id, event_id, name, default_duration, max_duration, deadline, created_at FROM submission_types WHERE event_id = $1 ORDER BY name`

	types := []*SubmissionType{}
	if err := r.db.SelectContext(ctx, &types, query, eventID); err != nil {
		return nil, fmt.Errorf("failed to list submission types: %w", err)
	}
	return types, nil
}

// TypeDeadlines returns the non-null deadlines of the event's submission
// types, used for the effective CfP deadline.
func (r *CfPRepository) TypeDeadlines(ctx context.Context, eventID uuid.UUID) ([]time.Time, error) {
	query := `SELECT deadline FROM submission_types WHERE event_id = $1 AND deadline IS NOT NULL`

	deadlines := []time.Time{}
	if err := r.db.SelectContext(ctx, &deadlines, query, eventID); err != nil {
		return nil, fmt.Errorf("failed to list type deadlines: %w", err)
	}
	return deadlines, nil
}

func (r *CfPRepository) CreateQuestion(ctx context.Context, req *CreateQuestionRequest) (*Question, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO questions (id, event_id, target, question, help_text, variant, required, active, contains_personal_data, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM questions WHERE event_id = $2))
		RETURNING id, event_id, target, question, help_text, variant, required, active, contains_personal_data, position, created_at
	`

	var q Question
	err = tx.GetContext(ctx, &q, query, uuid.New(), req.EventID, req.Target, req.Question, req.HelpText,
		req.Variant, req.Required, req.Active, req.ContainsPersonalData)
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	for _, opt := range req.Options {
		_, err = tx.ExecContext(ctx, `INSERT INTO answer_options (id, question_id, answer) VALUES ($1, $2, $3)`, uuid.New(), q.ID, opt)
		if err != nil {
			return nil, fmt.Errorf("failed to create answer option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tx: %w", err)
	}
	return &q, nil
}

func (r *CfPRepository) GetQuestion(ctx context.Context, id uuid.UUID) (*Question, error) {
	query := `SELECT id, event_id, target, question, help_text, variant, required, active, contains_personal_data, position, created_at FROM questions WHERE id = $1`

	var q Question
	err := r.db.GetContext(ctx, &q, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}

func (r *CfPRepository) Questions(ctx context.Context, eventID uuid.UUID, target *QuestionTarget) ([]*Question, error) {
	query := `SELECT id, event_id, target, question, help_text, variant, required, active, contains_personal_data, position, created_at FROM questions WHERE event_id = $1`
	args := []interface{}{eventID}
	if target != nil {
		query += ` AND target = $2`
		args = append(args, *target)
	}
	query += ` ORDER BY position`

	questions := []*Question{}
	if err := r.db.SelectContext(ctx, &questions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (r *CfPRepository) Options(ctx context.Context, questionID uuid.UUID) ([]*AnswerOption, error) {
	query := `SELECT id, question_id, answer FROM answer_options WHERE question_id = $1 ORDER BY answer`

	options := []*AnswerOption{}
	if err := r.db.SelectContext(ctx, &options, query, questionID); err != nil {
		return nil, fmt.Errorf("failed to list answer options: %w", err)
	}
	return options, nil
}

// SaveAnswer writes a user's answer to a question, replacing an earlier one
// for the same question/user/submission combination.
func (r *CfPRepository) SaveAnswer(ctx context.Context, req *SaveAnswerRequest) (*Answer, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	update := `
		UPDATE answers SET answer = $1, updated_at = NOW()
		WHERE question_id = $2 AND user_id = $3 AND submission_id IS NOT DISTINCT FROM $4
		RETURNING id, question_id, user_id, submission_id, review_id, answer, created_at, updated_at
	`

	var a Answer
	err = tx.GetContext(ctx, &a, update, req.Answer, req.QuestionID, req.UserID, req.SubmissionID)
	if errors.Is(err, sql.ErrNoRows) {
		insert := `
			INSERT INTO answers (id, question_id, user_id, submission_id, review_id, answer)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, question_id, user_id, submission_id, review_id, answer, created_at, updated_at
		`
		err = tx.GetContext(ctx, &a, insert, uuid.New(), req.QuestionID, req.UserID, req.SubmissionID, req.ReviewID, req.Answer)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tx: %w", err)
	}
	return &a, nil
}

func (r *CfPRepository) AnswersByUser(ctx context.Context, userID uuid.UUID) ([]*Answer, error) {
	query := `SELECT id, question_id, user_id, submission_id, review_id, answer, created_at, updated_at FROM answers WHERE user_id = $1 ORDER BY created_at`

	answers := []*Answer{}
	if err := r.db.SelectContext(ctx, &answers, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return answers, nil
}
