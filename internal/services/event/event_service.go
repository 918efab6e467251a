package event

import (
	"context"

	"github.com/google/uuid"
)

type eventStore interface {
	CreateOrganiser(ctx context.Context, name, slug string) (*Organiser, error)
	GetOrganiserBySlug(ctx context.Context, slug string) (*Organiser, error)
	Create(ctx context.Context, req *CreateEventRequest) (*Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetBySlug(ctx context.Context, organiserID uuid.UUID, slug string) (*Event, error)
	GetByName(ctx context.Context, organiserID uuid.UUID, name string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Event, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateEventRequest) (*Event, error)
}

type EventService struct {
	store eventStore
}

func NewEventService(store eventStore) *EventService {
	return &EventService{store: store}
}

func (s *EventService) CreateOrganiser(ctx context.Context, name, slug string) (*Organiser, error) {
	return s.store.CreateOrganiser(ctx, name, slug)
}

func (s *EventService) GetOrganiserBySlug(ctx context.Context, slug string) (*Organiser, error) {
	return s.store.GetOrganiserBySlug(ctx, slug)
}

func (s *EventService) Create(ctx context.Context, req *CreateEventRequest) (*Event, error) {
	return s.store.Create(ctx, req)
}

func (s *EventService) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	return s.store.GetByID(ctx, id)
}

func (s *EventService) GetBySlug(ctx context.Context, organiserID uuid.UUID, slug string) (*Event, error) {
	return s.store.GetBySlug(ctx, organiserID, slug)
}

func (s *EventService) GetByName(ctx context.Context, organiserID uuid.UUID, name string) (*Event, error) {
	return s.store.GetByName(ctx, organiserID, name)
}

func (s *EventService) List(ctx context.Context) ([]*Event, error) {
	return s.store.List(ctx)
}

func (s *EventService) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Event, error) {
	return s.store.ListByIDs(ctx, ids)
}

func (s *EventService) Update(ctx context.Context, id uuid.UUID, req *UpdateEventRequest) (*Event, error) {
	return s.store.Update(ctx, id, req)
}
