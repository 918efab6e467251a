package federation

import (
	"context"

	"github.com/google/uuid"
)

type federationStore interface {
	Link(ctx context.Context, req *LinkRequest) (*Identity, error)
	GetBySubject(ctx context.Context, provider, subject string) (*Identity, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Identity, error)
	Unlink(ctx context.Context, userID uuid.UUID, provider string) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type FederationService struct {
	store federationStore
}

func NewFederationService(store federationStore) *FederationService {
	return &FederationService{store: store}
}

func (s *FederationService) Link(ctx context.Context, req *LinkRequest) (*Identity, error) {
	return s.store.Link(ctx, req)
}

func (s *FederationService) GetBySubject(ctx context.Context, provider, subject string) (*Identity, error) {
	return s.store.GetBySubject(ctx, provider, subject)
}

func (s *FederationService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Identity, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *FederationService) Unlink(ctx context.Context, userID uuid.UUID, provider string) error {
	return s.store.Unlink(ctx, userID, provider)
}

// PurgeUser removes the user's federated identities during account
// deactivation.
func (s *FederationService) PurgeUser(ctx context.Context, userID uuid.UUID) error {
	return s.store.DeleteByUser(ctx, userID)
}
