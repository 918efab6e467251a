package submission

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from State
		to   State
		ok   bool
	}{
		{StateSubmitted, StateAccepted, true},
		{StateSubmitted, StateRejected, true},
		{StateSubmitted, StateWithdrawn, true},
		{StateSubmitted, StateConfirmed, false},
		{StateAccepted, StateConfirmed, true},
		{StateAccepted, StateCanceled, true},
		{StateAccepted, StateSubmitted, false},
		{StateConfirmed, StateAccepted, true},
		{StateConfirmed, StateWithdrawn, true},
		{StateConfirmed, StateRejected, false},
		{StateRejected, StateAccepted, true},
		{StateRejected, StateSubmitted, true},
		{StateCanceled, StateAccepted, true},
		{StateCanceled, StateConfirmed, false},
		{StateWithdrawn, StateSubmitted, true},
		{StateDeleted, StateSubmitted, false},
		{StateDeleted, StateAccepted, false},
	}

	for _, c := range cases {
		require.Equal(t, c.ok, CanTransition(c.from, c.to), "%s to %s", c.from, c.to)
	}
}

func TestDeletedIsTerminal(t *testing.T) {
	for to := range validTransitions {
		require.False(t, CanTransition(StateDeleted, to), "deleted must not reach %s", to)
	}
}

func TestStateVisible(t *testing.T) {
	require.True(t, StateAccepted.Visible())
	require.True(t, StateConfirmed.Visible())
	require.False(t, StateSubmitted.Visible())
	require.False(t, StateRejected.Visible())
	require.False(t, StateCanceled.Visible())
	require.False(t, StateWithdrawn.Visible())
	require.False(t, StateDeleted.Visible())
}
