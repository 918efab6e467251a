package team

import (
	"time"

	json "github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// Capabilities is a bitset of the named permissions a team can grant. The
// effective permission set of a user for an event is the bitwise union of the
// capabilities of every qualifying team.
type Capabilities uint8

const (
	CanCreateEvents Capabilities = 1 << iota
	CanChangeTeams
	CanChangeOrganiserSettings
	CanChangeEventSettings
	CanChangeSubmissions
	IsReviewer
)

// AdminCapabilities is the fixed maximal set administrators hold for every
// event, reviewer status included.
const AdminCapabilities = CanCreateEvents | CanChangeTeams | CanChangeOrganiserSettings |
	CanChangeEventSettings | CanChangeSubmissions | IsReviewer

var capabilityNames = []struct {
	cap  Capabilities
	name string
}{
	{CanCreateEvents, "can_create_events"},
	{CanChangeTeams, "can_change_teams"},
	{CanChangeOrganiserSettings, "can_change_organiser_settings"},
	{CanChangeEventSettings, "can_change_event_settings"},
	{CanChangeSubmissions, "can_change_submissions"},
	{IsReviewer, "is_reviewer"},
}

// Has reports whether every capability in want is present.
func (c Capabilities) Has(want Capabilities) bool {
	return c&want == want
}

// Names returns the enabled capability names in declaration order.
func (c Capabilities) Names() []string {
	names := []string{}
	for _, entry := range capabilityNames {
		if c.Has(entry.cap) {
			names = append(names, entry.name)
		}
	}
	return names
}

// MarshalJSON renders the set as an array of capability names.
func (c Capabilities) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Names())
}

type Team struct {
	ID                         uuid.UUID `db:"id" json:"id"`
	OrganiserID                uuid.UUID `db:"organiser_id" json:"organiser_id"`
	Name                       string    `db:"name" json:"name"`
	AllEvents                  bool      `db:"all_events" json:"all_events"`
	CanCreateEvents            bool      `db:"can_create_events" json:"can_create_events"`
	CanChangeTeams             bool      `db:"can_change_teams" json:"can_change_teams"`
	CanChangeOrganiserSettings bool      `db:"can_change_organiser_settings" json:"can_change_organiser_settings"`
	CanChangeEventSettings     bool      `db:"can_change_event_settings" json:"can_change_event_settings"`
	CanChangeSubmissions       bool      `db:"can_change_submissions" json:"can_change_submissions"`
	IsReviewer                 bool      `db:"is_reviewer" json:"is_reviewer"`
	ReviewOverrideVotes        int       `db:"review_override_votes" json:"review_override_votes"`
	CreatedAt                  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                  time.Time `db:"updated_at" json:"updated_at"`
}

// PermissionSet assembles the team's capability bitset from its flag columns.
func (t *Team) PermissionSet() Capabilities {
	var set Capabilities
	if t.CanCreateEvents {
		set |= CanCreateEvents
	}
	if t.CanChangeTeams {
		set |= CanChangeTeams
	}
	if t.CanChangeOrganiserSettings {
		set |= CanChangeOrganiserSettings
	}
	if t.CanChangeEventSettings {
		set |= CanChangeEventSettings
	}
	if t.CanChangeSubmissions {
		set |= CanChangeSubmissions
	}
	if t.IsReviewer {
		set |= IsReviewer
	}
	return set
}

type CreateTeamRequest struct {
	OrganiserID                uuid.UUID   `json:"organiser_id"`
	Name                       string      `json:"name"`
	AllEvents                  bool        `json:"all_events"`
	LimitEvents                []uuid.UUID `json:"limit_events"`
	CanCreateEvents            bool        `json:"can_create_events"`
	CanChangeTeams             bool        `json:"can_change_teams"`
	CanChangeOrganiserSettings bool        `json:"can_change_organiser_settings"`
	CanChangeEventSettings     bool        `json:"can_change_event_settings"`
	CanChangeSubmissions       bool        `json:"can_change_submissions"`
	IsReviewer                 bool        `json:"is_reviewer"`
	ReviewOverrideVotes        int         `json:"review_override_votes"`
}

type UpdateTeamRequest struct {
	Name                       *string      `json:"name"`
	AllEvents                  *bool        `json:"all_events"`
	LimitEvents                *[]uuid.UUID `json:"limit_events"`
	CanCreateEvents            *bool        `json:"can_create_events"`
	CanChangeTeams             *bool        `json:"can_change_teams"`
	CanChangeOrganiserSettings *bool        `json:"can_change_organiser_settings"`
	CanChangeEventSettings     *bool        `json:"can_change_event_settings"`
	CanChangeSubmissions       *bool        `json:"can_change_submissions"`
	IsReviewer                 *bool        `json:"is_reviewer"`
	ReviewOverrideVotes        *int         `json:"review_override_votes"`
}
