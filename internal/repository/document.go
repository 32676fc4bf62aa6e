package repository

import (
	"context"

	"medicase/internal/model"
)

// DocumentFilter narrows document list queries.
type DocumentFilter struct {
	// PublicOnly restricts results to documents marked public.
	PublicOnly bool
	// Category filters by document category when non-empty.
	Category model.DocumentCategory
	// Search is a case-insensitive keyword over filename and description.
	Search string
}

// DocumentRepository defines data access for document metadata using SQL
// queries only. No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record.
	// Returns the stored document (may include values set by the DB).
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// ListByPatient returns a patient's documents matching the filter,
	// newest first, with a total rows count.
	ListByPatient(ctx context.Context, patientID string, f DocumentFilter, pq PageQuery) (*PageResult[model.Document], error)

	// Update persists mutable metadata fields (never the storage key).
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// SetPublic flips the visibility flag.
	SetPublic(ctx context.Context, id string, public bool) error

	// Delete removes a document by ID. It returns nil if the row was deleted
	// or did not exist.
	Delete(ctx context.Context, id string) error

	// CountByPatient counts a patient's documents, optionally public only.
	CountByPatient(ctx context.Context, patientID string, publicOnly bool) (int, error)
}
