package id

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMovementRoundTrip(t *testing.T) {
	now := time.Date(2025, 8, 30, 9, 15, 4, 0, time.UTC)
	movementID := NewMovement(now)

	assert.True(t, len(movementID) > 21)
	got, err := CreatedAt(movementID)
	require.NoError(t, err)
	assert.True(t, got.Equal(now))
}

func TestNewMovementUnique(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		movementID := NewMovement(now)
		assert.False(t, seen[movementID], "duplicate id %s", movementID)
		seen[movementID] = true
	}
}

func TestIDsSortByCreationTime(t *testing.T) {
	base := time.Date(2025, 8, 30, 9, 0, 0, 0, time.UTC)
	ids := []string{
		NewMovement(base.Add(2 * time.Hour)),
		NewMovement(base),
		NewMovement(base.Add(time.Hour)),
	}
	sort.Strings(ids)

	first, err := CreatedAt(ids[0])
	require.NoError(t, err)
	last, err := CreatedAt(ids[2])
	require.NoError(t, err)
	assert.True(t, first.Before(last))
	assert.True(t, first.Equal(base))
}

func TestCreatedAtInvalid(t *testing.T) {
	_, err := CreatedAt("short")
	require.Error(t, err)

	_, err = CreatedAt("not-a-time-stamp-at-all")
	require.Error(t, err)
}
