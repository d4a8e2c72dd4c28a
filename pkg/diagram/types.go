package diagram

import (
	"context"
	"time"
)

// Diagram is a saved diagram source and the graph it compiled to.
type Diagram struct {
	ID         string    `json:"id"`
	ActivityID string    `json:"activity_id,omitempty"`
	Mode       string    `json:"mode"`
	Source     string    `json:"source"`
	Graph      string    `json:"graph"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Sort orders accepted by Query.SortOrder.
const (
	SortNewest = "desc"
	SortOldest = "asc"
)

// Query filters and pages List and Count. Zero fields do not filter.
type Query struct {
	ActivityID    string
	Mode          string
	UpdatedAfter  time.Time
	UpdatedBefore time.Time

	// Limit caps the number of results; 0 means unlimited.
	Limit  int
	Offset int

	// SortOrder orders by UpdatedAt, SortNewest by default.
	SortOrder string
}

// Storage persists diagrams.
//
// Save upserts: a diagram whose ActivityID already has a stored diagram
// replaces it and keeps its ID and CreatedAt. Otherwise the diagram is
// stored under its ID, which is generated when empty. Save fills ID,
// CreatedAt and UpdatedAt on the passed diagram.
type Storage interface {
	Save(ctx context.Context, d *Diagram) error

	// Get returns ErrNotFound when no diagram has the id.
	Get(ctx context.Context, id string) (*Diagram, error)

	// GetByActivity returns ErrNotFound when the activity has no diagram.
	GetByActivity(ctx context.Context, activityID string) (*Diagram, error)

	List(ctx context.Context, q *Query) ([]*Diagram, error)
	Count(ctx context.Context, q *Query) (int64, error)

	// Delete returns ErrNotFound when no diagram has the id.
	Delete(ctx context.Context, id string) error

	// DeleteOlderThan removes diagrams last updated before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes the least recently updated diagrams until at
	// most keep remain.
	DeleteOldest(ctx context.Context, keep int64) (int64, error)

	// Backend names the implementation for errors and metrics.
	Backend() string

	Ping(ctx context.Context) error
	Close() error
}
