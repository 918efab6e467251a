package team

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNegativeOverrideVotes = errors.New("review override votes must not be negative")

// teamStore is the slice of TeamRepo the service needs. Tests substitute an
// in-memory implementation.
type teamStore interface {
	Create(ctx context.Context, req *CreateTeamRequest) (*Team, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)
	ListByOrganiser(ctx context.Context, organiserID uuid.UUID) ([]*Team, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateTeamRequest) (*Team, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddMember(ctx context.Context, teamID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error
	MemberIDs(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error)
	LimitEventIDs(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error)
}

type TeamService struct {
	store teamStore
}

func NewTeamService(store teamStore) *TeamService {
	return &TeamService{store: store}
}

func (s *TeamService) Create(ctx context.Context, req *CreateTeamRequest) (*Team, error) {
	if req.ReviewOverrideVotes < 0 {
		return nil, ErrNegativeOverrideVotes
	}
	return s.store.Create(ctx, req)
}

func (s *TeamService) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	return s.store.GetByID(ctx, id)
}

func (s *TeamService) ListByOrganiser(ctx context.Context, organiserID uuid.UUID) ([]*Team, error) {
	return s.store.ListByOrganiser(ctx, organiserID)
}

func (s *TeamService) Update(ctx context.Context, id uuid.UUID, req *UpdateTeamRequest) (*Team, error) {
	if req.ReviewOverrideVotes != nil && *req.ReviewOverrideVotes < 0 {
		return nil, ErrNegativeOverrideVotes
	}
	return s.store.Update(ctx, id, req)
}

func (s *TeamService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

func (s *TeamService) AddMember(ctx context.Context, teamID, userID uuid.UUID) error {
	if _, err := s.store.GetByID(ctx, teamID); err != nil {
		return err
	}
	return s.store.AddMember(ctx, teamID, userID)
}

func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	return s.store.RemoveMember(ctx, teamID, userID)
}

func (s *TeamService) MemberIDs(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error) {
	return s.store.MemberIDs(ctx, teamID)
}

func (s *TeamService) LimitEventIDs(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error) {
	return s.store.LimitEventIDs(ctx, teamID)
}
