package cfp

import (
	"time"

	"github.com/google/uuid"
)

type QuestionTarget string

const (
	TargetSubmission QuestionTarget = "submission"
	TargetSpeaker    QuestionTarget = "speaker"
	TargetReviewer   QuestionTarget = "reviewer"
)

type QuestionVariant string

const (
	VariantBoolean  QuestionVariant = "boolean"
	VariantNumber   QuestionVariant = "number"
	VariantString   QuestionVariant = "string"
	VariantText     QuestionVariant = "text"
	VariantChoices  QuestionVariant = "choices"
	VariantMultiple QuestionVariant = "multiple"
	VariantFile     QuestionVariant = "file"
)

type CfP struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	EventID       uuid.UUID  `db:"event_id" json:"event_id"`
	Headline      *string    `db:"headline" json:"headline"`
	Text          *string    `db:"text" json:"text"`
	Deadline      *time.Time `db:"deadline" json:"deadline"`
	DefaultTypeID *uuid.UUID `db:"default_type_id" json:"default_type_id"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// MaxDeadline is the latest of the CfP's own deadline and the per-type
// deadlines; nil when none is set.
func (c *CfP) MaxDeadline(typeDeadlines []time.Time) *time.Time {
	deadlines := append([]time.Time{}, typeDeadlines...)
	if c.Deadline != nil {
		deadlines = append(deadlines, *c.Deadline)
	}
	if len(deadlines) == 0 {
		return nil
	}

	max := deadlines[0]
	for _, d := range deadlines[1:] {
		if d.After(max) {
			max = d
		}
	}
	return &max
}

// IsOpen reports whether submissions are still accepted at the given time. A
// CfP without any deadline never closes.
func (c *CfP) IsOpen(typeDeadlines []time.Time, now time.Time) bool {
	if c.Deadline == nil {
		return true
	}
	max := c.MaxDeadline(typeDeadlines)
	if max == nil {
		return true
	}
	return !max.Before(now)
}

type SubmissionType struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	EventID         uuid.UUID  `db:"event_id" json:"event_id"`
	Name            string     `db:"name" json:"name"`
	DefaultDuration int        `db:"default_duration" json:"default_duration"`
	MaxDuration     *int       `db:"max_duration" json:"max_duration"`
	Deadline        *time.Time `db:"deadline" json:"deadline"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

type Question struct {
	ID                   uuid.UUID       `db:"id" json:"id"`
	EventID              uuid.UUID       `db:"event_id" json:"event_id"`
	Target               QuestionTarget  `db:"target" json:"target"`
	Question             string          `db:"question" json:"question"`
	HelpText             *string         `db:"help_text" json:"help_text"`
	Variant              QuestionVariant `db:"variant" json:"variant"`
	Required             bool            `db:"required" json:"required"`
	Active               bool            `db:"active" json:"active"`
	ContainsPersonalData bool            `db:"contains_personal_data" json:"contains_personal_data"`
	Position             int             `db:"position" json:"position"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
}

type AnswerOption struct {
	ID         uuid.UUID `db:"id" json:"id"`
	QuestionID uuid.UUID `db:"question_id" json:"question_id"`
	Answer     string    `db:"answer" json:"answer"`
}

type Answer struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	QuestionID   uuid.UUID  `db:"question_id" json:"question_id"`
	UserID       uuid.UUID  `db:"user_id" json:"user_id"`
	SubmissionID *uuid.UUID `db:"submission_id" json:"submission_id"`
	ReviewID     *uuid.UUID `db:"review_id" json:"review_id"`
	Answer       string     `db:"answer" json:"answer"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

type UpsertCfPRequest struct {
	Headline      *string    `json:"headline"`
	Text          *string    `json:"text"`
	Deadline      *time.Time `json:"deadline"`
	DefaultTypeID *uuid.UUID `json:"default_type_id"`
}

type CreateQuestionRequest struct {
	EventID              uuid.UUID       `json:"event_id"`
	Target               QuestionTarget  `json:"target"`
	Question             string          `json:"question"`
	HelpText             *string         `json:"help_text"`
	Variant              QuestionVariant `json:"variant"`
	Required             bool            `json:"required"`
	Active               bool            `json:"active"`
	ContainsPersonalData bool            `json:"contains_personal_data"`
	Options              []string        `json:"options"`
}

type CreateSubmissionTypeRequest struct {
	EventID         uuid.UUID  `json:"event_id"`
	Name            string     `json:"name"`
	DefaultDuration int        `json:"default_duration"`
	MaxDuration     *int       `json:"max_duration"`
	Deadline        *time.Time `json:"deadline"`
}

type SaveAnswerRequest struct {
	QuestionID   uuid.UUID  `json:"question_id"`
	UserID       uuid.UUID  `json:"user_id"`
	SubmissionID *uuid.UUID `json:"submission_id"`
	ReviewID     *uuid.UUID `json:"review_id"`
	Answer       string     `json:"answer"`
}
