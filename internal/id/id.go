// Package id generates and parses ledger movement identifiers.
package id

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// instantLen is the length of the RFC 3339 UTC prefix ("2006-01-02T15:04:05Z").
const instantLen = 20

// NewMovement returns an id like "2025-08-30T09:15:04Z-1f2e3d4c".
// The instant prefix makes ids sortable by creation time; the random suffix
// keeps them unique when two movements land in the same second.
func NewMovement(now time.Time) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return now.UTC().Format(time.RFC3339) + "-" + suffix
}

// CreatedAt extracts the creation instant from a movement id.
func CreatedAt(movementID string) (time.Time, error) {
	if len(movementID) < instantLen {
		return time.Time{}, fmt.Errorf("invalid movement id %q", movementID)
	}
	t, err := time.Parse(time.RFC3339, movementID[:instantLen])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid movement id %q: %w", movementID, err)
	}
	return t, nil
}
