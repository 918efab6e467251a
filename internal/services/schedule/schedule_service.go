package schedule

import (
	"context"
	"io"

	"github.com/google/uuid"
)

type scheduleStore interface {
	CreateRoom(ctx context.Context, eventID uuid.UUID, name string, position int) (*Room, error)
	Rooms(ctx context.Context, eventID uuid.UUID) ([]*Room, error)
	WIP(ctx context.Context, eventID uuid.UUID) (*Schedule, error)
	GetVersion(ctx context.Context, eventID uuid.UUID, version string) (*Schedule, error)
	Versions(ctx context.Context, eventID uuid.UUID) ([]*Schedule, error)
	Freeze(ctx context.Context, eventID uuid.UUID, version string) (*Schedule, error)
	PlaceSlot(ctx context.Context, scheduleID, submissionID uuid.UUID, placement *SlotPlacement) (*TalkSlot, error)
	RemoveSlot(ctx context.Context, scheduleID, submissionID uuid.UUID) error
	Slots(ctx context.Context, scheduleID uuid.UUID) ([]*TalkSlot, error)
	ImportFrab(ctx context.Context, eventID uuid.UUID, frab *FrabSchedule) (*ImportResult, error)
}

type ScheduleService struct {
	store scheduleStore
}

func NewScheduleService(store scheduleStore) *ScheduleService {
	return &ScheduleService{store: store}
}

func (s *ScheduleService) CreateRoom(ctx context.Context, eventID uuid.UUID, name string, position int) (*Room, error) {
	return s.store.CreateRoom(ctx, eventID, name, position)
}

func (s *ScheduleService) Rooms(ctx context.Context, eventID uuid.UUID) ([]*Room, error) {
	return s.store.Rooms(ctx, eventID)
}

func (s *ScheduleService) WIP(ctx context.Context, eventID uuid.UUID) (*Schedule, error) {
	return s.store.WIP(ctx, eventID)
}

func (s *ScheduleService) Version(ctx context.Context, eventID uuid.UUID, version string) (*Schedule, error) {
	return s.store.GetVersion(ctx, eventID, version)
}

func (s *ScheduleService) Versions(ctx context.Context, eventID uuid.UUID) ([]*Schedule, error) {
	return s.store.Versions(ctx, eventID)
}

func (s *ScheduleService) Freeze(ctx context.Context, eventID uuid.UUID, version string) (*Schedule, error) {
	return s.store.Freeze(ctx, eventID, version)
}

// PlaceSlot schedules a submission on the event's WIP schedule.
func (s *ScheduleService) PlaceSlot(ctx context.Context, eventID, submissionID uuid.UUID, placement *SlotPlacement) (*TalkSlot, error) {
	wip, err := s.store.WIP(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.store.PlaceSlot(ctx, wip.ID, submissionID, placement)
}

func (s *ScheduleService) RemoveSlot(ctx context.Context, eventID, submissionID uuid.UUID) error {
	wip, err := s.store.WIP(ctx, eventID)
	if err != nil {
		return err
	}
	return s.store.RemoveSlot(ctx, wip.ID, submissionID)
}

func (s *ScheduleService) Slots(ctx context.Context, scheduleID uuid.UUID) ([]*TalkSlot, error) {
	return s.store.Slots(ctx, scheduleID)
}

// Import reads a frab schedule XML document and materialises it as a new
// versioned schedule for the event.
func (s *ScheduleService) Import(ctx context.Context, eventID uuid.UUID, r io.Reader) (*ImportResult, error) {
	frab, err := ParseFrab(r)
	if err != nil {
		return nil, err
	}
	return s.store.ImportFrab(ctx, eventID, frab)
}
