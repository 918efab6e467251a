package team

import (
	"testing"

	json "github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
)

func TestPermissionSet(t *testing.T) {
	team := &Team{
		CanChangeSubmissions: true,
		IsReviewer:           true,
	}

	set := team.PermissionSet()
	require.True(t, set.Has(CanChangeSubmissions))
	require.True(t, set.Has(IsReviewer))
	require.False(t, set.Has(CanCreateEvents))
	require.False(t, set.Has(CanChangeTeams))
}

func TestPermissionSetEmpty(t *testing.T) {
	require.Equal(t, Capabilities(0), (&Team{}).PermissionSet())
}

func TestCapabilitiesHasRequiresAll(t *testing.T) {
	set := CanChangeSubmissions | IsReviewer
	require.True(t, set.Has(CanChangeSubmissions))
	require.True(t, set.Has(CanChangeSubmissions|IsReviewer))
	require.False(t, set.Has(CanChangeSubmissions|CanChangeTeams))
}

func TestAdminCapabilitiesCoverEverything(t *testing.T) {
	for _, entry := range capabilityNames {
		require.True(t, AdminCapabilities.Has(entry.cap), "admins must hold %s", entry.name)
	}
}

func TestCapabilityNames(t *testing.T) {
	require.Empty(t, Capabilities(0).Names())
	require.Equal(t,
		[]string{"can_change_submissions", "is_reviewer"},
		(CanChangeSubmissions | IsReviewer).Names())
}

func TestCapabilitiesMarshalJSON(t *testing.T) {
	out, err := json.Marshal(IsReviewer)
	require.NoError(t, err)
	require.JSONEq(t, `["is_reviewer"]`, string(out))

	out, err = json.Marshal(Capabilities(0))
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(out))
}
