package activity

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

const defaultLimit = 200

type activityStore interface {
	Insert(ctx context.Context, entry *Entry) error
	ByObject(ctx context.Context, objectType string, objectID uuid.UUID, limit int) ([]*Entry, error)
	ByActor(ctx context.Context, actorID uuid.UUID, limit int) ([]*Entry, error)
}

type ActivityService struct {
	store activityStore
}

func NewActivityService(store activityStore) *ActivityService {
	return &ActivityService{store: store}
}

// Append records an action in the activity log.
func (s *ActivityService) Append(ctx context.Context, actorID uuid.UUID, objectType string, objectID uuid.UUID, actionType string, data map[string]interface{}, orga bool) error {
	entry := &Entry{
		ObjectType:   objectType,
		ObjectID:     objectID,
		ActionType:   actionType,
		IsOrgaAction: orga,
	}
	if actorID != uuid.Nil {
		entry.ActorID = &actorID
	}
	if data != nil {
		payload, err := sonic.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode activity data: %w", err)
		}
		entry.Data = payload
	}
	return s.store.Insert(ctx, entry)
}

// LoggedActions returns the history of one object, newest first.
func (s *ActivityService) LoggedActions(ctx context.Context, objectType string, objectID uuid.UUID) ([]*Entry, error) {
	return s.store.ByObject(ctx, objectType, objectID, defaultLimit)
}

// OwnActions returns actions the user performed themselves.
func (s *ActivityService) OwnActions(ctx context.Context, actorID uuid.UUID) ([]*Entry, error) {
	return s.store.ByActor(ctx, actorID, defaultLimit)
}
