package cfp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMaxDeadline(t *testing.T) {
	early := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	late := time.Date(2026, 4, 1, 23, 59, 0, 0, time.UTC)

	c := &CfP{Deadline: &early}
	max := c.MaxDeadline([]time.Time{late})
	require.NotNil(t, max)
	require.Equal(t, late, *max)

	c = &CfP{Deadline: &late}
	max = c.MaxDeadline([]time.Time{early})
	require.NotNil(t, max)
	require.Equal(t, late, *max)
}

func TestMaxDeadlineWithoutAnyDeadline(t *testing.T) {
	require.Nil(t, (&CfP{}).MaxDeadline(nil))
}

func TestMaxDeadlineTypeOnly(t *testing.T) {
	typed := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	max := (&CfP{}).MaxDeadline([]time.Time{typed})
	require.NotNil(t, max)
	require.Equal(t, typed, *max)
}

func TestIsOpenWithoutDeadline(t *testing.T) {
	// No own deadline means the CfP never closes, even when type deadlines
	// have passed.
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &CfP{}
	require.True(t, c.IsOpen([]time.Time{past}, time.Now()))
}

func TestIsOpenBeforeDeadline(t *testing.T) {
	deadline := time.Date(2026, 4, 1, 23, 59, 0, 0, time.UTC)
	c := &CfP{Deadline: &deadline}
	require.True(t, c.IsOpen(nil, deadline.Add(-time.Hour)))
	require.True(t, c.IsOpen(nil, deadline), "the deadline itself is still open")
}

func TestIsOpenAfterDeadline(t *testing.T) {
	deadline := time.Date(2026, 4, 1, 23, 59, 0, 0, time.UTC)
	c := &CfP{Deadline: &deadline}
	require.False(t, c.IsOpen(nil, deadline.Add(time.Second)))
}

func TestIsOpenExtendedByTypeDeadline(t *testing.T) {
	deadline := time.Date(2026, 4, 1, 23, 59, 0, 0, time.UTC)
	extended := deadline.AddDate(0, 0, 14)
	c := &CfP{Deadline: &deadline}

	now := deadline.Add(24 * time.Hour)
	require.False(t, c.IsOpen(nil, now))
	require.True(t, c.IsOpen([]time.Time{extended}, now))
	require.False(t, c.IsOpen([]time.Time{extended}, extended.Add(time.Second)))
}
