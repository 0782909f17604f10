// Package store persists workflow snapshots. A workflow is stored as
// one opaque JSON blob; there is no delta persistence and no schema
// migration beyond the version tag on export files.
package store

import (
	"encoding/json"
	"errors"
	"time"
)

// Store persists workflows. Implementations must be safe for
// concurrent use. A failed Save leaves the stored workflow unchanged.
type Store interface {
	// Load retrieves a workflow by ID.
	// Returns ErrNotFound if it doesn't exist.
	Load(id string) (*Workflow, error)

	// Save overwrites an existing workflow's name and data.
	// Returns ErrNotFound if it doesn't exist.
	Save(id, name string, data json.RawMessage) (*Workflow, error)

	// Create stores a new workflow and returns it with a fresh ID.
	Create(name string, data json.RawMessage) (*Workflow, error)

	// Delete removes a workflow.
	// Returns nil if it doesn't exist.
	Delete(id string) error

	// List returns workflow summaries ordered by most recent update.
	// limit <= 0 means no limit. Returns an empty slice (not an
	// error) when there are no workflows.
	List(limit int) ([]Summary, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Workflow is one stored workflow snapshot.
type Workflow struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Summary provides listing metadata without loading the snapshot.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates a workflow doesn't exist.
	ErrNotFound = errors.New("workflow not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("workflow store closed")
)
