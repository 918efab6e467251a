package cfp

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type cfpStore interface {
	Upsert(ctx context.Context, eventID uuid.UUID, req *UpsertCfPRequest) (*CfP, error)
	GetByEvent(ctx context.Context, eventID uuid.UUID) (*CfP, error)
	CreateSubmissionType(ctx context.Context, req *CreateSubmissionTypeRequest) (*SubmissionType, error)
	GetSubmissionType(ctx context.Context, id uuid.UUID) (*SubmissionType, error)
	SubmissionTypes(ctx context.Context, eventID uuid.UUID) ([]*SubmissionType, error)
	TypeDeadlines(ctx context.Context, eventID uuid.UUID) ([]time.Time, error)
	CreateQuestion(ctx context.Context, req *CreateQuestionRequest) (*Question, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*Question, error)
	Questions(ctx context.Context, eventID uuid.UUID, target *QuestionTarget) ([]*Question, error)
	Options(ctx context.Context, questionID uuid.UUID) ([]*AnswerOption, error)
	SaveAnswer(ctx context.Context, req *SaveAnswerRequest) (*Answer, error)
	AnswersByUser(ctx context.Context, userID uuid.UUID) ([]*Answer, error)
}

type CfPService struct {
	store cfpStore
}

func NewCfPService(store cfpStore) *CfPService {
	return &CfPService{store: store}
}

func (s *CfPService) Upsert(ctx context.Context, eventID uuid.UUID, req *UpsertCfPRequest) (*CfP, error) {
	return s.store.Upsert(ctx, eventID, req)
}

func (s *CfPService) GetByEvent(ctx context.Context, eventID uuid.UUID) (*CfP, error) {
	return s.store.GetByEvent(ctx, eventID)
}

// IsOpen reports whether the event currently accepts submissions. Deadlines
// on submission types extend the CfP's own deadline.
func (s *CfPService) IsOpen(ctx context.Context, eventID uuid.UUID) (bool, error) {
	c, err := s.store.GetByEvent(ctx, eventID)
	if err != nil {
		return false, err
	}
	deadlines, err := s.store.TypeDeadlines(ctx, eventID)
	if err != nil {
		return false, err
	}
	return c.IsOpen(deadlines, time.Now()), nil
}

func (s *CfPService) CreateSubmissionType(ctx context.Context, req *CreateSubmissionTypeRequest) (*SubmissionType, error) {
	return s.store.CreateSubmissionType(ctx, req)
}

func (s *CfPService) SubmissionType(ctx context.Context, id uuid.UUID) (*SubmissionType, error) {
	return s.store.GetSubmissionType(ctx, id)
}

func (s *CfPService) SubmissionTypes(ctx context.Context, eventID uuid.UUID) ([]*SubmissionType, error) {
	return s.store.SubmissionTypes(ctx, eventID)
}

func (s *CfPService) CreateQuestion(ctx context.Context, req *CreateQuestionRequest) (*Question, error) {
	return s.store.CreateQuestion(ctx, req)
}

func (s *CfPService) Question(ctx context.Context, id uuid.UUID) (*Question, error) {
	return s.store.GetQuestion(ctx, id)
}

func (s *CfPService) Questions(ctx context.Context, eventID uuid.UUID, target *QuestionTarget) ([]*Question, error) {
	return s.store.Questions(ctx, eventID, target)
}

func (s *CfPService) Options(ctx context.Context, questionID uuid.UUID) ([]*AnswerOption, error) {
	return s.store.Options(ctx, questionID)
}

func (s *CfPService) SaveAnswer(ctx context.Context, req *SaveAnswerRequest) (*Answer, error) {
	return s.store.SaveAnswer(ctx, req)
}

func (s *CfPService) AnswersByUser(ctx context.Context, userID uuid.UUID) ([]*Answer, error) {
	return s.store.AnswersByUser(ctx, userID)
}
