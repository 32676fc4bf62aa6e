package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"medicase/internal/model"
	"medicase/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, patient_id, uploaded_by, filename, storage_key, size, content_type, category, description, public, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.PatientID,
		&d.UploadedBy,
		&d.Filename,
		&d.StorageKey,
		&d.Size,
		&d.ContentType,
		&d.Category,
		&d.Description,
		&d.Public,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, patient_id, uploaded_by, filename, storage_key, size, content_type, category, description, public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.PatientID,
		doc.UploadedBy,
		doc.Filename,
		doc.StorageKey,
		doc.Size,
		doc.ContentType,
		doc.Category,
		doc.Description,
		doc.Public,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// ListByPatient returns a patient's documents matching the filter using
// LIMIT/OFFSET pagination, newest first, plus a total count.
func (r *DocumentPostgres) ListByPatient(ctx context.Context, patientID string, f repository.DocumentFilter, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	where := []string{"patient_id = $1"}
	args := []any{patientID}

	if f.PublicOnly {
		where = append(where, "public = TRUE")
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(filename ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	cond := strings.Join(where, " AND ")

	qCount := `SELECT COUNT(*) FROM documents WHERE ` + cond
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	args = append(args, pq.Limit, pq.Offset)
	qList := fmt.Sprintf(`SELECT %s FROM documents WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		documentColumns, cond, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, qList, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Update persists mutable metadata fields. The storage key is deliberately
// absent from the SET list.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		UPDATE documents
		SET filename = $2, category = $3, description = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Filename,
		doc.Category,
		doc.Description,
	)
	return scanDocument(row)
}

// SetPublic flips the visibility flag.
func (r *DocumentPostgres) SetPublic(ctx context.Context, id string, public bool) error {
	const q = `UPDATE documents SET public = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, public)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	// Deleting a missing row is not an error.
	_, _ = res.RowsAffected()
	return nil
}

// CountByPatient counts a patient's documents, optionally public only.
func (r *DocumentPostgres) CountByPatient(ctx context.Context, patientID string, publicOnly bool) (int, error) {
	q := `SELECT COUNT(*) FROM documents WHERE patient_id = $1`
	if publicOnly {
		q += ` AND public = TRUE`
	}
	var total int
	if err := r.db.QueryRowContext(ctx, q, patientID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
