package submission

import (
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StateSubmitted State = "submitted"
	StateAccepted  State = "accepted"
	StateRejected  State = "rejected"
	StateConfirmed State = "confirmed"
	StateCanceled  State = "canceled"
	StateWithdrawn State = "withdrawn"
	StateDeleted   State = "deleted"
)

var validTransitions = map[State][]State{
	StateSubmitted: {StateAccepted, StateRejected, StateWithdrawn, StateDeleted},
	StateAccepted:  {StateConfirmed, StateCanceled, StateRejected, StateWithdrawn},
	StateConfirmed: {StateAccepted, StateCanceled, StateWithdrawn},
	StateRejected:  {StateAccepted, StateSubmitted, StateDeleted},
	StateCanceled:  {StateAccepted},
	StateWithdrawn: {StateSubmitted, StateDeleted},
	StateDeleted:   {},
}

// CanTransition reports whether a submission may move from one state to
// another.
func CanTransition(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Visible states count towards schedules and public listings.
func (s State) Visible() bool {
	return s == StateAccepted || s == StateConfirmed
}

type Submission struct {
	ID               uuid.UUID `db:"id" json:"id"`
	EventID          uuid.UUID `db:"event_id" json:"event_id"`
	Code             string    `db:"code" json:"code"`
	Title            string    `db:"title" json:"title"`
	Abstract         *string   `db:"abstract" json:"abstract"`
	Description      *string   `db:"description" json:"description"`
	ContentLocale    string    `db:"content_locale" json:"content_locale"`
	SubmissionTypeID uuid.UUID `db:"submission_type_id" json:"submission_type_id"`
	State            State     `db:"state" json:"state"`
	DoNotRecord      bool      `db:"do_not_record" json:"do_not_record"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

type Review struct {
	ID           uuid.UUID `db:"id" json:"id"`
	SubmissionID uuid.UUID `db:"submission_id" json:"submission_id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	Score        *int      `db:"score" json:"score"`
	Text         *string   `db:"text" json:"text"`
	OverrideVote *bool     `db:"override_vote" json:"override_vote"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type CreateSubmissionRequest struct {
	EventID          uuid.UUID `json:"event_id"`
	Title            string    `json:"title"`
	Abstract         *string   `json:"abstract"`
	Description      *string   `json:"description"`
	ContentLocale    string    `json:"content_locale"`
	SubmissionTypeID uuid.UUID `json:"submission_type_id"`
	DoNotRecord      bool      `json:"do_not_record"`
	SpeakerID        uuid.UUID `json:"speaker_id"`
}

type UpdateSubmissionRequest struct {
	Title            *string    `json:"title"`
	Abstract         *string    `json:"abstract"`
	Description      *string    `json:"description"`
	ContentLocale    *string    `json:"content_locale"`
	SubmissionTypeID *uuid.UUID `json:"submission_type_id"`
	DoNotRecord      *bool      `json:"do_not_record"`
}

type SaveReviewRequest struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	UserID       uuid.UUID `json:"user_id"`
	Score        *int      `json:"score"`
	Text         *string   `json:"text"`
	OverrideVote *bool     `json:"override_vote"`
}

// EventStats aggregates the organiser dashboard counts for one event.
type EventStats struct {
	TotalSubmissions int           `json:"total_submissions"`
	ByState          map[State]int `json:"by_state"`
	SpeakerCount     int           `json:"speaker_count"`
	ReviewCount      int           `json:"review_count"`
}
