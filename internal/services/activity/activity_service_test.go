package activity

import (
	"context"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeActivityStore struct {
	entries []*Entry
}

func (f *fakeActivityStore) Insert(ctx context.Context, entry *Entry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeActivityStore) ByObject(ctx context.Context, objectType string, objectID uuid.UUID, limit int) ([]*Entry, error) {
	return f.entries, nil
}

func (f *fakeActivityStore) ByActor(ctx context.Context, actorID uuid.UUID, limit int) ([]*Entry, error) {
	return f.entries, nil
}

func TestAppend(t *testing.T) {
	store := &fakeActivityStore{}
	svc := NewActivityService(store)

	actor := uuid.New()
	object := uuid.New()
	err := svc.Append(context.Background(), actor, "submission", object, "podium.submission.accept",
		map[string]interface{}{"code": "ABC378"}, true)
	require.NoError(t, err)
	require.Len(t, store.entries, 1)

	entry := store.entries[0]
	require.Equal(t, &actor, entry.ActorID)
	require.Equal(t, "submission", entry.ObjectType)
	require.Equal(t, object, entry.ObjectID)
	require.True(t, entry.IsOrgaAction)

	var data map[string]interface{}
	require.NoError(t, sonic.Unmarshal(entry.Data, &data))
	require.Equal(t, "ABC378", data["code"])
}

func TestAppendAnonymousActor(t *testing.T) {
	store := &fakeActivityStore{}
	svc := NewActivityService(store)

	err := svc.Append(context.Background(), uuid.Nil, "user", uuid.New(), "podium.user.password.reset", nil, false)
	require.NoError(t, err)
	require.Nil(t, store.entries[0].ActorID)
	require.Nil(t, store.entries[0].Data)
}
