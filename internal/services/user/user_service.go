package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/podium-events/podium/internal/services/team"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDeactivated    = errors.New("user is deactivated")
	ErrTokenExpired       = errors.New("password reset token expired")
)

// Action types recorded in the activity log.
const (
	ActionPasswordReset = "podium.user.password.reset"
)

// resetTokenValidity is how long a password recovery link stays usable.
const resetTokenValidity = 24 * time.Hour

// maxGenerationAttempts bounds the regenerate-and-retry loops for codes and
// placeholder addresses. The code space holds 28^6 values, so exhausting the
// attempts means something other than collisions is wrong.
const maxGenerationAttempts = 20

const passwordResetMailSubject = "Password recovery"

const passwordResetMailText = `Hi {name},

you have requested a new password for your account.
To reset your password, click on the following link:

  {url}

If this wasn't you, you can just ignore this email.

All the best,
the podium robot`

// userStore is the slice of UserRepo the service needs.
type userStore interface {
	Insert(ctx context.Context, params *InsertUserParams) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*User, error)
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetResetToken(ctx context.Context, id uuid.UUID, token string, at time.Time) error
	ClearResetToken(ctx context.Context, id uuid.UUID) error
	GetByResetToken(ctx context.Context, token string) (*User, error)
	QualifyingTeams(ctx context.Context, userID, eventID uuid.UUID) ([]*team.Team, error)
	EventsWithAnyPermission(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	EventsForCapability(ctx context.Context, userID uuid.UUID, cap team.Capabilities) ([]uuid.UUID, error)
	AllEventIDs(ctx context.Context) ([]uuid.UUID, error)
	MaxOverrideVotes(ctx context.Context, userID, eventID uuid.UUID) (int, error)
	CountOverriddenReviews(ctx context.Context, userID, eventID uuid.UUID) (int, error)
	Deactivate(ctx context.Context, params *DeactivateParams) error
	EventProfile(ctx context.Context, userID, eventID uuid.UUID) (*SpeakerProfile, error)
	ProfilesByUser(ctx context.Context, userID uuid.UUID) ([]*SpeakerProfile, error)
}

// MailOutbox enqueues outbound mail; delivery is asynchronous and best-effort
// from this service's perspective.
type MailOutbox interface {
	Enqueue(ctx context.Context, eventID *uuid.UUID, subject, text string, recipients []uuid.UUID) (uuid.UUID, error)
}

// ActivityLog is the append-only action log collaborator.
type ActivityLog interface {
	Append(ctx context.Context, actorID uuid.UUID, objectType string, objectID uuid.UUID, actionType string, data map[string]interface{}, orga bool) error
}

// FederationPurger removes externally-linked login identities for a user.
type FederationPurger interface {
	PurgeUser(ctx context.Context, userID uuid.UUID) error
}

// Defaults are the identity defaults applied on creation and anonymization,
// passed in explicitly rather than read from global state.
type Defaults struct {
	Locale   string
	Timezone string
	BaseURL  string
}

type UserService struct {
	store      userStore
	mail       MailOutbox
	activity   ActivityLog
	federation FederationPurger
	defaults   Defaults
}

func NewUserService(store userStore, mail MailOutbox, activity ActivityLog, federation FederationPurger, defaults Defaults) *UserService {
	return &UserService{
		store:      store,
		mail:       mail,
		activity:   activity,
		federation: federation,
		defaults:   defaults,
	}
}

// Create registers a new account. The email is normalized to its lowercased,
// trimmed form; the short code is generated from the restricted alphabet and
// retried until the unique constraint accepts it.
func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	params := &InsertUserParams{
		Name:     req.Name,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Locale:   req.Locale,
		Timezone: req.Timezone,
	}
	if params.Locale == "" {
		params.Locale = s.defaults.Locale
	}
	if params.Timezone == "" {
		params.Timezone = s.defaults.Timezone
	}

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		hashStr := string(hash)
		params.PasswordHash = &hashStr
	}

	for attempt := 0; attempt < maxGenerationAttempts; attempt++ {
		params.Code = GenerateCode(CodeLength)

		user, err := s.store.Insert(ctx, params)
		if errors.Is(err, ErrCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return user, nil
	}

	return nil, fmt.Errorf("failed to assign a unique code after %d attempts", maxGenerationAttempts)
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.store.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.store.GetByEmail(ctx, email)
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*User, error) {
	return s.store.Update(ctx, id, req)
}

// Authenticate verifies an email/password pair.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrUserDeactivated
	}
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// PermissionsForEvent computes the user's effective capability set for an
// event. Administrators short-circuit to the fixed maximal set; everyone else
// gets the union over their qualifying teams. Pure read, no side effects.
func (s *UserService) PermissionsForEvent(ctx context.Context, usr *User, eventID uuid.UUID) (team.Capabilities, error) {
	if usr.IsAdministrator {
		return team.AdminCapabilities, nil
	}

	teams, err := s.store.QualifyingTeams(ctx, usr.ID, eventID)
	if err != nil {
		return 0, err
	}

	var set team.Capabilities
	for _, t := range teams {
		set |= t.PermissionSet()
	}
	return set, nil
}

// EventsWithAnyPermission returns the ids of all events the user can reach:
// everything for administrators, the union of organiser-wide and explicitly
// scoped team events otherwise.
func (s *UserService) EventsWithAnyPermission(ctx context.Context, usr *User) ([]uuid.UUID, error) {
	if usr.IsAdministrator {
		return s.store.AllEventIDs(ctx)
	}
	return s.store.EventsWithAnyPermission(ctx, usr.ID)
}

// EventsForPermission restricts the reachable events to teams granting every
// capability in cap.
func (s *UserService) EventsForPermission(ctx context.Context, usr *User, cap team.Capabilities) ([]uuid.UUID, error) {
	if usr.IsAdministrator {
		return s.store.AllEventIDs(ctx)
	}
	return s.store.EventsForCapability(ctx, usr.ID, cap)
}

// RemainingOverrideVotes is the user's override-vote budget left for an
// event: the maximum single-team allotment minus override votes already cast,
// floored at zero.
func (s *UserService) RemainingOverrideVotes(ctx context.Context, usr *User, eventID uuid.UUID) (int, error) {
	allowed, err := s.store.MaxOverrideVotes(ctx, usr.ID, eventID)
	if err != nil {
		return 0, err
	}

	overridden, err := s.store.CountOverriddenReviews(ctx, usr.ID, eventID)
	if err != nil {
		return 0, err
	}

	if remaining := allowed - overridden; remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}

// Deactivate anonymizes the account: placeholder email, fixed name, cleared
// privilege flags and reset state, scrubbed biographies, personal answers
// deleted, team memberships severed. Steps run in one transaction; the
// federated-identity purge afterwards is best-effort and only logged on
// failure. The transition is terminal.
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) error {
	usr, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrUserDeactivated
	}

	var deactivateErr error
	for attempt := 0; attempt < maxGenerationAttempts; attempt++ {
		deactivateErr = s.store.Deactivate(ctx, &DeactivateParams{
			ID:       id,
			Email:    PlaceholderEmail(),
			Name:     DeletedUserName,
			Locale:   s.defaults.Locale,
			Timezone: s.defaults.Timezone,
		})
		if errors.Is(deactivateErr, ErrEmailTaken) {
			continue
		}
		break
	}
	if deactivateErr != nil {
		return deactivateErr
	}

	if err := s.federation.PurgeUser(ctx, id); err != nil {
		slog.Warn("Failed to purge federated identities for deactivated user",
			slog.String("user_id", id.String()), slog.Any("error", err))
	}

	return nil
}

// ResetPassword issues a recovery token, stores it with the current time,
// enqueues the recovery mail and records the action. initiator is nil for
// self-service resets and set when an organiser triggers the reset for
// someone else. A failed enqueue aborts the reset and surfaces to the caller.
func (s *UserService) ResetPassword(ctx context.Context, usr *User, eventID *uuid.UUID, initiator *User) error {
	token := GenerateResetToken()
	if err := s.store.SetResetToken(ctx, usr.ID, token, time.Now()); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/orga/auth/recover/%s", strings.TrimRight(s.defaults.BaseURL, "/"), token)
	text := strings.NewReplacer("{name}", usr.DisplayName(), "{url}", url).Replace(passwordResetMailText)

	if _, err := s.mail.Enqueue(ctx, eventID, passwordResetMailSubject, text, []uuid.UUID{usr.ID}); err != nil {
		// A token the user never received must not stay live.
		if clearErr := s.store.ClearResetToken(ctx, usr.ID); clearErr != nil {
			slog.Warn("Failed to clear reset token after enqueue failure",
				slog.String("user_id", usr.ID.String()), slog.Any("error", clearErr))
		}
		return fmt.Errorf("failed to enqueue password recovery mail: %w", err)
	}

	actor := usr.ID
	orga := false
	if initiator != nil {
		actor = initiator.ID
		orga = true
	}
	if err := s.activity.Append(ctx, actor, "user", usr.ID, ActionPasswordReset, nil, orga); err != nil {
		return err
	}

	return nil
}

// RecoverPassword consumes a reset token within its validity window and sets
// the new password, clearing the token.
func (s *UserService) RecoverPassword(ctx context.Context, token, password string) (*User, error) {
	usr, err := s.store.GetByResetToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if usr.PwResetTime == nil || time.Since(*usr.PwResetTime) > resetTokenValidity {
		return nil, ErrTokenExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.store.SetPassword(ctx, usr.ID, string(hash)); err != nil {
		return nil, err
	}

	return s.store.GetByID(ctx, usr.ID)
}

// EventProfile returns the user's per-event speaker profile, creating it on
// first access.
func (s *UserService) EventProfile(ctx context.Context, userID, eventID uuid.UUID) (*SpeakerProfile, error) {
	return s.store.EventProfile(ctx, userID, eventID)
}

func (s *UserService) Profiles(ctx context.Context, userID uuid.UUID) ([]*SpeakerProfile, error) {
	return s.store.ProfilesByUser(ctx, userID)
}
