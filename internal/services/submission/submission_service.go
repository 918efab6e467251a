package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/podium-events/podium/internal/services/user"
)

var (
	ErrSpeakerSelfReview  = errors.New("speakers cannot review their own submission")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrCfPClosed          = errors.New("the call for papers is closed")
	ErrCodeSpaceExhausted = errors.New("could not find a free submission code")
)

const maxGenerationAttempts = 20

type submissionStore interface {
	Insert(ctx context.Context, sub *Submission, speakerID uuid.UUID) (*Submission, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	GetByCode(ctx context.Context, eventID uuid.UUID, code string) (*Submission, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID, states []State) ([]*Submission, error)
	ListBySpeaker(ctx context.Context, userID uuid.UUID) ([]*Submission, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateSubmissionRequest) (*Submission, error)
	SetState(ctx context.Context, id uuid.UUID, state State) error
	AddSpeaker(ctx context.Context, submissionID, userID uuid.UUID) error
	RemoveSpeaker(ctx context.Context, submissionID, userID uuid.UUID) error
	SpeakerIDs(ctx context.Context, submissionID uuid.UUID) ([]uuid.UUID, error)
	SaveReview(ctx context.Context, req *SaveReviewRequest) (*Review, error)
	ReviewsBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*Review, error)
	ReviewByUser(ctx context.Context, submissionID, userID uuid.UUID) (*Review, error)
	Stats(ctx context.Context, eventID uuid.UUID) (*EventStats, error)
}

// cfpGate answers whether an event still accepts submissions.
type cfpGate interface {
	IsOpen(ctx context.Context, eventID uuid.UUID) (bool, error)
}

type SubmissionService struct {
	store submissionStore
	cfp   cfpGate
}

func NewSubmissionService(store submissionStore, cfp cfpGate) *SubmissionService {
	return &SubmissionService{store: store, cfp: cfp}
}

// Create files a new submission for a speaker. The CfP must be open;
// organiser tooling uses CreateAsOrganiser instead.
func (s *SubmissionService) Create(ctx context.Context, req *CreateSubmissionRequest) (*Submission, error) {
	open, err := s.cfp.IsOpen(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, ErrCfPClosed
	}
	return s.create(ctx, req)
}

// CreateAsOrganiser bypasses the CfP deadline.
func (s *SubmissionService) CreateAsOrganiser(ctx context.Context, req *CreateSubmissionRequest) (*Submission, error) {
	return s.create(ctx, req)
}

func (s *SubmissionService) create(ctx context.Context, req *CreateSubmissionRequest) (*Submission, error) {
	sub := &Submission{
		EventID:          req.EventID,
		Title:            req.Title,
		Abstract:         req.Abstract,
		Description:      req.Description,
		ContentLocale:    req.ContentLocale,
		SubmissionTypeID: req.SubmissionTypeID,
		State:            StateSubmitted,
		DoNotRecord:      req.DoNotRecord,
	}

	// Codes are random; collisions within an event surface as unique
	// violations and trigger a regenerate.
	for attempt := 0; attempt < maxGenerationAttempts; attempt++ {
		sub.ID = uuid.New()
		sub.Code = user.GenerateCode(user.CodeLength)

		created, err := s.store.Insert(ctx, sub, req.SpeakerID)
		if errors.Is(err, ErrCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return created, nil
	}
	return nil, ErrCodeSpaceExhausted
}

func (s *SubmissionService) GetByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	return s.store.GetByID(ctx, id)
}

func (s *SubmissionService) GetByCode(ctx context.Context, eventID uuid.UUID, code string) (*Submission, error) {
	return s.store.GetByCode(ctx, eventID, code)
}

func (s *SubmissionService) ListByEvent(ctx context.Context, eventID uuid.UUID, states []State) ([]*Submission, error) {
	return s.store.ListByEvent(ctx, eventID, states)
}

func (s *SubmissionService) ListBySpeaker(ctx context.Context, userID uuid.UUID) ([]*Submission, error) {
	return s.store.ListBySpeaker(ctx, userID)
}

func (s *SubmissionService) Update(ctx context.Context, id uuid.UUID, req *UpdateSubmissionRequest) (*Submission, error) {
	return s.store.Update(ctx, id, req)
}

// Transition moves a submission to a new state, enforcing the allowed
// state machine.
func (s *SubmissionService) Transition(ctx context.Context, id uuid.UUID, to State) (*Submission, error) {
	sub, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(sub.State, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, sub.State, to)
	}
	if err := s.store.SetState(ctx, id, to); err != nil {
		return nil, err
	}
	sub.State = to
	return sub, nil
}

func (s *SubmissionService) AddSpeaker(ctx context.Context, submissionID, userID uuid.UUID) error {
	return s.store.AddSpeaker(ctx, submissionID, userID)
}

func (s *SubmissionService) RemoveSpeaker(ctx context.Context, submissionID, userID uuid.UUID) error {
	return s.store.RemoveSpeaker(ctx, submissionID, userID)
}

func (s *SubmissionService) SpeakerIDs(ctx context.Context, submissionID uuid.UUID) ([]uuid.UUID, error) {
	return s.store.SpeakerIDs(ctx, submissionID)
}

// SaveReview records a reviewer's verdict. A speaker on the submission may
// never review it, regardless of their team permissions.
func (s *SubmissionService) SaveReview(ctx context.Context, req *SaveReviewRequest) (*Review, error) {
	speakers, err := s.store.SpeakerIDs(ctx, req.SubmissionID)
	if err != nil {
		return nil, err
	}
	for _, id := range speakers {
		if id == req.UserID {
			return nil, ErrSpeakerSelfReview
		}
	}
	return s.store.SaveReview(ctx, req)
}

func (s *SubmissionService) ReviewsBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*Review, error) {
	return s.store.ReviewsBySubmission(ctx, submissionID)
}

func (s *SubmissionService) ReviewByUser(ctx context.Context, submissionID, userID uuid.UUID) (*Review, error) {
	return s.store.ReviewByUser(ctx, submissionID, userID)
}

func (s *SubmissionService) Stats(ctx context.Context, eventID uuid.UUID) (*EventStats, error) {
	return s.store.Stats(ctx, eventID)
}
