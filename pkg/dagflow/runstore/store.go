// Package runstore provides persistent storage for run-context
// snapshots, so the state of a graph execution can be inspected or
// restored after the process exits.
package runstore

import (
	"errors"
	"time"
)

// Store persists one serialized snapshot per run.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores the snapshot for a run, overwriting any previous
	// snapshot for the same run id.
	Save(runID string, data []byte) error

	// Load retrieves the snapshot for a run.
	// Returns ErrNotFound if no snapshot exists.
	Load(runID string) ([]byte, error)

	// List returns metadata for every stored run, ordered by save
	// time. Returns an empty slice (not an error) when the store is
	// empty.
	List() ([]Info, error)

	// Delete removes the snapshot for a run.
	// Returns nil if no snapshot exists.
	Delete(runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides snapshot metadata without loading the data.
type Info struct {
	RunID   string
	SavedAt time.Time
	Size    int64
}

// Sentinel errors for run snapshot operations.
var (
	// ErrNotFound indicates no snapshot exists for the run.
	ErrNotFound = errors.New("run snapshot not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("run store closed")
)
