package user

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/podium-events/podium/internal/services/team"
)

// fakeUserStore is an in-memory userStore for service tests.
type fakeUserStore struct {
	users map[uuid.UUID]*User

	insertRejections int
	insertCalls      int
	insertedParams   *InsertUserParams

	teams             []*team.Team
	maxOverrideVotes  int
	overriddenReviews int

	deactivateRejections int
	deactivateCalls      int
	deactivatedWith      *DeactivateParams
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uuid.UUID]*User{}}
}

func (f *fakeUserStore) add(u *User) *User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserStore) Insert(ctx context.Context, params *InsertUserParams) (*User, error) {
	f.insertCalls++
	if f.insertCalls <= f.insertRejections {
		return nil, ErrCodeTaken
	}
	f.insertedParams = params
	code := params.Code
	return f.add(&User{
		Code:         &code,
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		IsActive:     true,
		Locale:       params.Locale,
		Timezone:     params.Timezone,
	}), nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeUserStore) Update(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*User, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeUserStore) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.PasswordHash = &passwordHash
	u.PwResetToken = nil
	u.PwResetTime = nil
	return nil
}

func (f *fakeUserStore) SetResetToken(ctx context.Context, id uuid.UUID, token string, at time.Time) error {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.PwResetToken = &token
	u.PwResetTime = &at
	return nil
}

func (f *fakeUserStore) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.PwResetToken = nil
	u.PwResetTime = nil
	return nil
}

func (f *fakeUserStore) GetByResetToken(ctx context.Context, token string) (*User, error) {
	for _, u := range f.users {
		if u.PwResetToken != nil && *u.PwResetToken == token {
			return u, nil
		}
	}
	return nil, ErrTokenNotFound
}

func (f *fakeUserStore) QualifyingTeams(ctx context.Context, userID, eventID uuid.UUID) ([]*team.Team, error) {
	return f.teams, nil
}

func (f *fakeUserStore) EventsWithAnyPermission(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeUserStore) EventsForCapability(ctx context.Context, userID uuid.UUID, cap team.Capabilities) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeUserStore) AllEventIDs(ctx context.Context) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeUserStore) MaxOverrideVotes(ctx context.Context, userID, eventID uuid.UUID) (int, error) {
	return f.maxOverrideVotes, nil
}

func (f *fakeUserStore) CountOverriddenReviews(ctx context.Context, userID, eventID uuid.UUID) (int, error) {
	return f.overriddenReviews, nil
}

func (f *fakeUserStore) Deactivate(ctx context.Context, params *DeactivateParams) error {
	f.deactivateCalls++
	if f.deactivateCalls <= f.deactivateRejections {
		return ErrEmailTaken
	}
	u, err := f.GetByID(ctx, params.ID)
	if err != nil {
		return err
	}
	u.Email = params.Email
	u.Name = params.Name
	u.IsActive = false
	u.IsAdministrator = false
	u.Locale = params.Locale
	u.Timezone = params.Timezone
	f.deactivatedWith = params
	return nil
}

func (f *fakeUserStore) EventProfile(ctx context.Context, userID, eventID uuid.UUID) (*SpeakerProfile, error) {
	return &SpeakerProfile{UserID: userID, EventID: eventID}, nil
}

func (f *fakeUserStore) ProfilesByUser(ctx context.Context, userID uuid.UUID) ([]*SpeakerProfile, error) {
	return nil, nil
}

type fakeOutbox struct {
	eventID    *uuid.UUID
	subject    string
	text       string
	recipients []uuid.UUID
	calls      int
	err        error
}

func (f *fakeOutbox) Enqueue(ctx context.Context, eventID *uuid.UUID, subject, text string, recipients []uuid.UUID) (uuid.UUID, error) {
	f.calls++
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.eventID = eventID
	f.subject = subject
	f.text = text
	f.recipients = recipients
	return uuid.New(), nil
}

type fakeActivityLog struct {
	actorID    uuid.UUID
	objectID   uuid.UUID
	actionType string
	orga       bool
	calls      int
}

func (f *fakeActivityLog) Append(ctx context.Context, actorID uuid.UUID, objectType string, objectID uuid.UUID, actionType string, data map[string]interface{}, orga bool) error {
	f.calls++
	f.actorID = actorID
	f.objectID = objectID
	f.actionType = actionType
	f.orga = orga
	return nil
}

type fakePurger struct {
	purged []uuid.UUID
	err    error
}

func (f *fakePurger) PurgeUser(ctx context.Context, userID uuid.UUID) error {
	f.purged = append(f.purged, userID)
	return f.err
}

var testDefaults = Defaults{Locale: "en", Timezone: "UTC", BaseURL: "https://talks.example.org/"}

func newTestService(store *fakeUserStore) (*UserService, *fakeOutbox, *fakeActivityLog, *fakePurger) {
	outbox := &fakeOutbox{}
	activity := &fakeActivityLog{}
	purger := &fakePurger{}
	return NewUserService(store, outbox, activity, purger, testDefaults), outbox, activity, purger
}

func TestCreateNormalizesEmailAndAppliesDefaults(t *testing.T) {
	store := newFakeUserStore()
	svc, _, _, _ := newTestService(store)

	usr, err := svc.Create(context.Background(), &CreateUserRequest{
		Name:  "Jane Speaker",
		Email: "  Jane@Example.ORG ",
	})
	require.NoError(t, err)
	require.Equal(t, "jane@example.org", usr.Email)
	require.Equal(t, "en", usr.Locale)
	require.Equal(t, "UTC", usr.Timezone)
	require.NotNil(t, usr.Code)
	require.Len(t, *usr.Code, CodeLength)
	require.Nil(t, usr.PasswordHash, "no password given, none should be stored")
}

func TestCreateHashesPassword(t *testing.T) {
	store := newFakeUserStore()
	svc, _, _, _ := newTestService(store)

	usr, err := svc.Create(context.Background(), &CreateUserRequest{
		Email:    "jane@example.org",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	require.NotNil(t, usr.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(*usr.PasswordHash), []byte("hunter2hunter2")))
}

func TestCreateRetriesOnCodeConflict(t *testing.T) {
	store := newFakeUserStore()
	store.insertRejections = 3
	svc, _, _, _ := newTestService(store)

	usr, err := svc.Create(context.Background(), &CreateUserRequest{Email: "jane@example.org"})
	require.NoError(t, err)
	require.Equal(t, 4, store.insertCalls)
	require.NotNil(t, usr.Code)
}

func TestCreateGivesUpAfterTooManyConflicts(t *testing.T) {
	store := newFakeUserStore()
	store.insertRejections = maxGenerationAttempts
	svc, _, _, _ := newTestService(store)

	_, err := svc.Create(context.Background(), &CreateUserRequest{Email: "jane@example.org"})
	require.Error(t, err)
	require.Equal(t, maxGenerationAttempts, store.insertCalls)
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)

	store := newFakeUserStore()
	store.add(&User{Email: "jane@example.org", PasswordHash: &hashStr, IsActive: true})
	svc, _, _, _ := newTestService(store)

	usr, err := svc.Authenticate(context.Background(), "jane@example.org", "correct horse")
	require.NoError(t, err)
	require.Equal(t, "jane@example.org", usr.Email)

	_, err = svc.Authenticate(context.Background(), "jane@example.org", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.org", "correct horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRejectsDeactivatedUser(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)

	store := newFakeUserStore()
	store.add(&User{Email: "gone@example.org", PasswordHash: &hashStr, IsActive: false})
	svc, _, _, _ := newTestService(store)

	_, err = svc.Authenticate(context.Background(), "gone@example.org", "correct horse")
	require.ErrorIs(t, err, ErrUserDeactivated)
}

func TestAuthenticateRejectsPasswordlessAccount(t *testing.T) {
	store := newFakeUserStore()
	store.add(&User{Email: "oidc-only@example.org", IsActive: true})
	svc, _, _, _ := newTestService(store)

	_, err := svc.Authenticate(context.Background(), "oidc-only@example.org", "anything")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPermissionsForEventAdminShortCircuit(t *testing.T) {
	store := newFakeUserStore()
	svc, _, _, _ := newTestService(store)

	caps, err := svc.PermissionsForEvent(context.Background(), &User{IsAdministrator: true}, uuid.New())
	require.NoError(t, err)
	require.Equal(t, team.AdminCapabilities, caps)
	require.True(t, caps.Has(team.IsReviewer))
}

func TestPermissionsForEventUnionsTeams(t *testing.T) {
	store := newFakeUserStore()
	store.teams = []*team.Team{
		{CanChangeSubmissions: true},
		{IsReviewer: true},
	}
	svc, _, _, _ := newTestService(store)

	caps, err := svc.PermissionsForEvent(context.Background(), &User{}, uuid.New())
	require.NoError(t, err)
	require.Equal(t, team.CanChangeSubmissions|team.IsReviewer, caps)
	require.False(t, caps.Has(team.CanChangeTeams))
}

func TestPermissionsForEventWithoutTeams(t *testing.T) {
	store := newFakeUserStore()
	svc, _, _, _ := newTestService(store)

	caps, err := svc.PermissionsForEvent(context.Background(), &User{}, uuid.New())
	require.NoError(t, err)
	require.Equal(t, team.Capabilities(0), caps)
	require.Empty(t, caps.Names())
}

func TestRemainingOverrideVotes(t *testing.T) {
	store := newFakeUserStore()
	store.maxOverrideVotes = 3
	store.overriddenReviews = 1
	svc, _, _, _ := newTestService(store)

	remaining, err := svc.RemainingOverrideVotes(context.Background(), &User{ID: uuid.New()}, uuid.New())
	require.NoError(t, err)
	require.Equal(t, 2, remaining)
}

func TestRemainingOverrideVotesFloorsAtZero(t *testing.T) {
	store := newFakeUserStore()
	store.maxOverrideVotes = 1
	store.overriddenReviews = 5
	svc, _, _, _ := newTestService(store)

	remaining, err := svc.RemainingOverrideVotes(context.Background(), &User{ID: uuid.New()}, uuid.New())
	require.NoError(t, err)
	require.Equal(t, 0, remaining)
}

func TestDeactivateAnonymizesAndPurges(t *testing.T) {
	store := newFakeUserStore()
	usr := store.add(&User{Email: "jane@example.org", Name: "Jane", IsActive: true, IsAdministrator: true})
	svc, _, activity, purger := newTestService(store)

	require.NoError(t, svc.Deactivate(context.Background(), usr.ID))

	require.False(t, usr.IsActive)
	require.Equal(t, DeletedUserName, usr.Name)
	require.True(t, strings.HasPrefix(usr.Email, "deleted_user_"))
	require.False(t, usr.IsAdministrator)
	require.Equal(t, []uuid.UUID{usr.ID}, purger.purged)

	// The scrub removes the person; it must not itself leave a log entry
	// pointing back at them.
	require.Equal(t, 0, activity.calls)
}

func TestDeactivateIsTerminal(t *testing.T) {
	store := newFakeUserStore()
	usr := store.add(&User{Email: "jane@example.org", IsActive: false})
	svc, _, _, purger := newTestService(store)

	require.ErrorIs(t, svc.Deactivate(context.Background(), usr.ID), ErrUserDeactivated)
	require.Empty(t, purger.purged)
}

func TestDeactivateRetriesPlaceholderCollision(t *testing.T) {
	store := newFakeUserStore()
	usr := store.add(&User{Email: "jane@example.org", IsActive: true})
	store.deactivateRejections = 2
	svc, _, _, _ := newTestService(store)

	require.NoError(t, svc.Deactivate(context.Background(), usr.ID))
	require.Equal(t, 3, store.deactivateCalls)
}

func TestDeactivateUnknownUser(t *testing.T) {
	store := newFakeUserStore()
	svc, _, _, _ := newTestService(store)

	require.ErrorIs(t, svc.Deactivate(context.Background(), uuid.New()), ErrUserNotFound)
}

func TestResetPasswordSelfService(t *testing.T) {
	store := newFakeUserStore()
	usr := store.add(&User{Email: "jane@example.org", Name: "Jane", IsActive: true})
	svc, outbox, activity, _ := newTestService(store)

	require.NoError(t, svc.ResetPassword(context.Background(), usr, nil, nil))

	require.NotNil(t, usr.PwResetToken)
	require.Len(t, *usr.PwResetToken, ResetTokenLength)
	require.Equal(t, 1, outbox.calls)
	require.Equal(t, []uuid.UUID{usr.ID}, outbox.recipients)
	require.Contains(t, outbox.text, "Hi Jane,")
	require.Contains(t, outbox.text, "https://talks.example.org/orga/auth/recover/"+*usr.PwResetToken)

	require.Equal(t, 1, activity.calls)
	require.Equal(t, ActionPasswordReset, activity.actionType)
	require.Equal(t, usr.ID, activity.actorID)
	require.False(t, activity.orga)
}

func TestResetPasswordByOrganiser(t *testing.T) {
	store := newFakeUserStore()
	usr := store.add(&User{Email: "jane@example.org", IsActive: true})
	organiser := store.add(&User{Email: "orga@example.org", IsActive: true})
	svc, _, activity, _ := newTestService(store)

	require.NoError(t, svc.ResetPassword(context.Background(), usr, nil, organiser))

	require.Equal(t, organiser.ID, activity.actorID)
	require.Equal(t, usr.ID, activity.objectID)
	require.True(t, activity.orga)
}

func TestResetPasswordAbortsWhenEnqueueFails(t *testing.T) {
	store := newFakeUserStore()
	usr := store.add(&User{Email: "jane@example.org", IsActive: true})
	svc, outbox, activity, _ := newTestService(store)
	outbox.err = context.DeadlineExceeded

	require.Error(t, svc.ResetPassword(context.Background(), usr, nil, nil))
	require.Equal(t, 0, activity.calls)

	// The stored token is rolled back; a token the user never received
	// must not be redeemable.
	require.Nil(t, usr.PwResetToken)
	require.Nil(t, usr.PwResetTime)
}

func TestRecoverPassword(t *testing.T) {
	store := newFakeUserStore()
	usr := store.add(&User{Email: "jane@example.org", IsActive: true})
	svc, _, _, _ := newTestService(store)

	require.NoError(t, svc.ResetPassword(context.Background(), usr, nil, nil))
	token := *usr.PwResetToken

	recovered, err := svc.RecoverPassword(context.Background(), token, "new password")
	require.NoError(t, err)
	require.NotNil(t, recovered.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(*recovered.PasswordHash), []byte("new password")))
	require.Nil(t, recovered.PwResetToken, "token must be single use")
}

func TestRecoverPasswordExpiredToken(t *testing.T) {
	store := newFakeUserStore()
	usr := store.add(&User{Email: "jane@example.org", IsActive: true})
	token := "stale-token"
	stale := time.Now().Add(-25 * time.Hour)
	usr.PwResetToken = &token
	usr.PwResetTime = &stale
	svc, _, _, _ := newTestService(store)

	_, err := svc.RecoverPassword(context.Background(), token, "new password")
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestRecoverPasswordUnknownToken(t *testing.T) {
	store := newFakeUserStore()
	svc, _, _, _ := newTestService(store)

	_, err := svc.RecoverPassword(context.Background(), "no-such-token", "new password")
	require.ErrorIs(t, err, ErrTokenNotFound)
}
