package submission

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/podium-events/podium/internal/services/user"
)

type fakeSubmissionStore struct {
	submissions map[uuid.UUID]*Submission
	speakers    map[uuid.UUID][]uuid.UUID

	insertRejections int
	insertCalls      int

	savedReview *SaveReviewRequest
}

func newFakeSubmissionStore() *fakeSubmissionStore {
	return &fakeSubmissionStore{
		submissions: map[uuid.UUID]*Submission{},
		speakers:    map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeSubmissionStore) Insert(ctx context.Context, sub *Submission, speakerID uuid.UUID) (*Submission, error) {
	f.insertCalls++
	if f.insertCalls <= f.insertRejections {
		return nil, ErrCodeTaken
	}
	stored := *sub
	f.submissions[stored.ID] = &stored
	f.speakers[stored.ID] = []uuid.UUID{speakerID}
	return &stored, nil
}

func (f *fakeSubmissionStore) GetByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	if sub, ok := f.submissions[id]; ok {
		return sub, nil
	}
	return nil, ErrSubmissionNotFound
}

func (f *fakeSubmissionStore) GetByCode(ctx context.Context, eventID uuid.UUID, code string) (*Submission, error) {
	return nil, ErrSubmissionNotFound
}

func (f *fakeSubmissionStore) ListByEvent(ctx context.Context, eventID uuid.UUID, states []State) ([]*Submission, error) {
	return nil, nil
}

func (f *fakeSubmissionStore) ListBySpeaker(ctx context.Context, userID uuid.UUID) ([]*Submission, error) {
	return nil, nil
}

func (f *fakeSubmissionStore) Update(ctx context.Context, id uuid.UUID, req *UpdateSubmissionRequest) (*Submission, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeSubmissionStore) SetState(ctx context.Context, id uuid.UUID, state State) error {
	sub, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	sub.State = state
	return nil
}

func (f *fakeSubmissionStore) AddSpeaker(ctx context.Context, submissionID, userID uuid.UUID) error {
	f.speakers[submissionID] = append(f.speakers[submissionID], userID)
	return nil
}

func (f *fakeSubmissionStore) RemoveSpeaker(ctx context.Context, submissionID, userID uuid.UUID) error {
	return nil
}

func (f *fakeSubmissionStore) SpeakerIDs(ctx context.Context, submissionID uuid.UUID) ([]uuid.UUID, error) {
	return f.speakers[submissionID], nil
}

func (f *fakeSubmissionStore) SaveReview(ctx context.Context, req *SaveReviewRequest) (*Review, error) {
	f.savedReview = req
	return &Review{SubmissionID: req.SubmissionID, UserID: req.UserID, Score: req.Score}, nil
}

func (f *fakeSubmissionStore) ReviewsBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*Review, error) {
	return nil, nil
}

func (f *fakeSubmissionStore) ReviewByUser(ctx context.Context, submissionID, userID uuid.UUID) (*Review, error) {
	return nil, ErrReviewNotFound
}

func (f *fakeSubmissionStore) Stats(ctx context.Context, eventID uuid.UUID) (*EventStats, error) {
	return &EventStats{}, nil
}

type fakeGate struct {
	open bool
}

func (f *fakeGate) IsOpen(ctx context.Context, eventID uuid.UUID) (bool, error) {
	return f.open, nil
}

func TestCreateAssignsCodeAndInitialState(t *testing.T) {
	store := newFakeSubmissionStore()
	svc := NewSubmissionService(store, &fakeGate{open: true})

	sub, err := svc.Create(context.Background(), &CreateSubmissionRequest{
		EventID:   uuid.New(),
		Title:     "A talk about talks",
		SpeakerID: uuid.New(),
	})
	require.NoError(t, err)
	require.Equal(t, StateSubmitted, sub.State)
	require.Len(t, sub.Code, user.CodeLength)
	require.NotEqual(t, uuid.Nil, sub.ID)
}

func TestCreateRejectedWhenCfPClosed(t *testing.T) {
	store := newFakeSubmissionStore()
	svc := NewSubmissionService(store, &fakeGate{open: false})

	_, err := svc.Create(context.Background(), &CreateSubmissionRequest{EventID: uuid.New()})
	require.ErrorIs(t, err, ErrCfPClosed)
	require.Equal(t, 0, store.insertCalls)
}

func TestCreateAsOrganiserBypassesDeadline(t *testing.T) {
	store := newFakeSubmissionStore()
	svc := NewSubmissionService(store, &fakeGate{open: false})

	sub, err := svc.CreateAsOrganiser(context.Background(), &CreateSubmissionRequest{
		EventID:   uuid.New(),
		Title:     "Late addition",
		SpeakerID: uuid.New(),
	})
	require.NoError(t, err)
	require.Equal(t, StateSubmitted, sub.State)
}

func TestCreateRetriesOnCodeConflict(t *testing.T) {
	store := newFakeSubmissionStore()
	store.insertRejections = 2
	svc := NewSubmissionService(store, &fakeGate{open: true})

	sub, err := svc.Create(context.Background(), &CreateSubmissionRequest{
		EventID:   uuid.New(),
		SpeakerID: uuid.New(),
	})
	require.NoError(t, err)
	require.Equal(t, 3, store.insertCalls)
	require.NotEmpty(t, sub.Code)
}

func TestCreateGivesUpAfterTooManyConflicts(t *testing.T) {
	store := newFakeSubmissionStore()
	store.insertRejections = maxGenerationAttempts
	svc := NewSubmissionService(store, &fakeGate{open: true})

	_, err := svc.Create(context.Background(), &CreateSubmissionRequest{EventID: uuid.New()})
	require.ErrorIs(t, err, ErrCodeSpaceExhausted)
}

func TestTransition(t *testing.T) {
	store := newFakeSubmissionStore()
	svc := NewSubmissionService(store, &fakeGate{open: true})

	sub, err := svc.Create(context.Background(), &CreateSubmissionRequest{
		EventID:   uuid.New(),
		SpeakerID: uuid.New(),
	})
	require.NoError(t, err)

	accepted, err := svc.Transition(context.Background(), sub.ID, StateAccepted)
	require.NoError(t, err)
	require.Equal(t, StateAccepted, accepted.State)

	confirmed, err := svc.Transition(context.Background(), sub.ID, StateConfirmed)
	require.NoError(t, err)
	require.Equal(t, StateConfirmed, confirmed.State)
}

func TestTransitionRejectsInvalidMove(t *testing.T) {
	store := newFakeSubmissionStore()
	svc := NewSubmissionService(store, &fakeGate{open: true})

	sub, err := svc.Create(context.Background(), &CreateSubmissionRequest{
		EventID:   uuid.New(),
		SpeakerID: uuid.New(),
	})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), sub.ID, StateConfirmed)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, StateSubmitted, store.submissions[sub.ID].State, "state must be unchanged")
}

func TestSaveReviewRejectsSpeakers(t *testing.T) {
	store := newFakeSubmissionStore()
	svc := NewSubmissionService(store, &fakeGate{open: true})

	speakerID := uuid.New()
	sub, err := svc.Create(context.Background(), &CreateSubmissionRequest{
		EventID:   uuid.New(),
		SpeakerID: speakerID,
	})
	require.NoError(t, err)

	score := 2
	_, err = svc.SaveReview(context.Background(), &SaveReviewRequest{
		SubmissionID: sub.ID,
		UserID:       speakerID,
		Score:        &score,
	})
	require.ErrorIs(t, err, ErrSpeakerSelfReview)
	require.Nil(t, store.savedReview)
}

func TestSaveReviewAllowsNonSpeakers(t *testing.T) {
	store := newFakeSubmissionStore()
	svc := NewSubmissionService(store, &fakeGate{open: true})

	sub, err := svc.Create(context.Background(), &CreateSubmissionRequest{
		EventID:   uuid.New(),
		SpeakerID: uuid.New(),
	})
	require.NoError(t, err)

	score := 1
	override := true
	review, err := svc.SaveReview(context.Background(), &SaveReviewRequest{
		SubmissionID: sub.ID,
		UserID:       uuid.New(),
		Score:        &score,
		OverrideVote: &override,
	})
	require.NoError(t, err)
	require.Equal(t, sub.ID, review.SubmissionID)
	require.NotNil(t, store.savedReview)
}
