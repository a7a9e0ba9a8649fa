// Package storage defines the encounter persistence contract. The spatial
// core never touches a database; encounters are handed to an
// EncounterStore when they need to survive a process restart.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/arquebus/battlegrid/internal/spatial"
)

// ErrNotFound indicates the requested encounter does not exist.
var ErrNotFound = errors.New("encounter not found")

// EncounterRecord is one persisted encounter.
type EncounterRecord struct {
	ID        string
	Name      string
	State     *spatial.CombatState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EncounterSummary is a listing row without the full spatial state.
type EncounterSummary struct {
	ID               string
	Name             string
	ParticipantCount int
	UpdatedAt        time.Time
}

// EncounterStore persists encounter spatial state between sessions.
type EncounterStore interface {
	// SaveEncounter inserts or replaces a full encounter record.
	SaveEncounter(ctx context.Context, record EncounterRecord) error
	// GetEncounter loads one encounter, or ErrNotFound.
	GetEncounter(ctx context.Context, id string) (EncounterRecord, error)
	// ListEncounters returns summaries ordered by most recent update.
	ListEncounters(ctx context.Context) ([]EncounterSummary, error)
	// DeleteEncounter removes an encounter; deleting a missing id is a
	// no-op.
	DeleteEncounter(ctx context.Context, id string) error
	// Close releases the underlying handle.
	Close() error
}
