package user

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeletedUserName replaces the display name of deactivated accounts.
const DeletedUserName = "Deleted User"

type User struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Code            *string    `db:"code" json:"code"`
	Name            string     `db:"name" json:"name"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    *string    `db:"password_hash" json:"-"`
	IsActive        bool       `db:"is_active" json:"is_active"`
	IsStaff         bool       `db:"is_staff" json:"is_staff"`
	IsAdministrator bool       `db:"is_administrator" json:"is_administrator"`
	IsSuperuser     bool       `db:"is_superuser" json:"is_superuser"`
	Locale          string     `db:"locale" json:"locale"`
	Timezone        string     `db:"timezone" json:"timezone"`
	Avatar          *string    `db:"avatar" json:"avatar"`
	GetGravatar     bool       `db:"get_gravatar" json:"get_gravatar"`
	PwResetToken    *string    `db:"pw_reset_token" json:"-"`
	PwResetTime     *time.Time `db:"pw_reset_time" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// DisplayName returns the user's public name, or a generic fallback when the
// account has none.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return "Unnamed user"
}

func (u *User) String() string {
	if u.Name != "" {
		return u.Name + " <" + u.Email + ">"
	}
	if u.Email != "" {
		return u.Email
	}
	return "Unnamed user"
}

// GravatarParameter is the hash gravatar expects as URL parameter: the md5
// hex digest of the trimmed, lowercased email address.
func (u *User) GravatarParameter() string {
	sum := md5.Sum([]byte(strings.TrimSpace(strings.ToLower(u.Email))))
	return hex.EncodeToString(sum[:])
}

// HasAvatar reports whether the user has any usable profile picture.
func (u *User) HasAvatar() bool {
	return u.GetGravatar || u.HasLocalAvatar()
}

func (u *User) HasLocalAvatar() bool {
	return u.Avatar != nil && *u.Avatar != "" && *u.Avatar != "False"
}

// SpeakerProfile is a user's per-event public profile.
type SpeakerProfile struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	EventID   uuid.UUID `db:"event_id" json:"event_id"`
	Biography string    `db:"biography" json:"biography"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Locale   string `json:"locale"`
	Timezone string `json:"timezone"`
}

type UpdateUserRequest struct {
	Name        *string `json:"name"`
	Locale      *string `json:"locale"`
	Timezone    *string `json:"timezone"`
	Avatar      *string `json:"avatar"`
	GetGravatar *bool   `json:"get_gravatar"`
}
