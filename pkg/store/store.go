// Package store persists projects and the summary of their last schedule.
//
// [MemoryStore] keeps documents in process memory (CLI, tests, single API
// instance); [MongoStore] keeps them in a MongoDB collection so several API
// instances can share them. Document IDs are random UUIDs.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	pkgio "github.com/matzehuels/leveler/pkg/io"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("project not found")

// Document is a stored project.
type Document struct {
	ID        string            `json:"id" bson:"_id"`
	Name      string            `json:"name" bson:"name"`
	Project   pkgio.ProjectFile `json:"project" bson:"project"`
	Summary   *Summary          `json:"summary,omitempty" bson:"summary,omitempty"`
	CreatedAt time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// Summary records the outcome of the last scheduling run of a document.
type Summary struct {
	ProjectHash  string    `json:"projectHash" bson:"projectHash"`
	Duration     int       `json:"projectDuration" bson:"duration"`
	Makespan     int       `json:"makespan" bson:"makespan"`
	CriticalPath []string  `json:"criticalPath" bson:"criticalPath"`
	ScheduledAt  time.Time `json:"scheduledAt" bson:"scheduledAt"`
}

// Store is the interface for project storage backends.
type Store interface {
	// Save inserts or replaces doc and returns its ID. A document without an
	// ID is assigned a new one; CreatedAt is kept across replacements.
	Save(ctx context.Context, doc *Document) (string, error)

	// Get returns the document with id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Document, error)

	// List returns all documents, oldest first.
	List(ctx context.Context) ([]*Document, error)

	// Delete removes the document with id, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases the backend connection.
	Close(ctx context.Context) error
}

// NewID returns a fresh document ID.
func NewID() string {
	return uuid.NewString()
}

// now returns the current time at the precision MongoDB stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// prepare assigns an ID and timestamps to doc before it is written.
// created is the CreatedAt of the document being replaced, if any.
func prepare(doc *Document, created time.Time) {
	if doc.ID == "" {
		doc.ID = NewID()
	}
	t := now()
	if created.IsZero() {
		created = t
	}
	doc.CreatedAt = created
	doc.UpdatedAt = t
}
