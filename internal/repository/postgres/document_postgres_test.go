package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"medicase/internal/model"
	"medicase/internal/repository"
)

var docColumns = []string{
	"id", "patient_id", "uploaded_by", "filename", "storage_key", "size",
	"content_type", "category", "description", "public", "created_at", "updated_at",
}

func docRow(id string, public bool) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(docColumns).
		AddRow(id, "patient-1", "doctor-1", "scan.pdf", "documents/key.pdf", int64(100),
			"application/pdf", string(model.CategoryXRay), "left wrist", public, now, now)
}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	doc := &model.Document{
		ID:          "doc-1",
		PatientID:   "patient-1",
		UploadedBy:  "doctor-1",
		Filename:    "scan.pdf",
		StorageKey:  "documents/key.pdf",
		Size:        100,
		ContentType: "application/pdf",
		Category:    model.CategoryXRay,
		Description: "left wrist",
		Public:      false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(doc.ID, doc.PatientID, doc.UploadedBy, doc.Filename, doc.StorageKey,
			doc.Size, doc.ContentType, doc.Category, doc.Description, doc.Public,
			doc.CreatedAt, doc.UpdatedAt).
		WillReturnRows(docRow("doc-1", false))

	result, err := repo.Create(ctx, doc)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, doc.ID, result.ID)
	assert.Equal(t, doc.StorageKey, result.StorageKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("doc-1").
			WillReturnRows(docRow("doc-1", true))

		doc, err := repo.FindByID(ctx, "doc-1")

		assert.NoError(t, err)
		assert.NotNil(t, doc)
		assert.Equal(t, "doc-1", doc.ID)
		assert.True(t, doc.Public)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, "missing")

		assert.Error(t, err)
		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_ListByPatient(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("all documents", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents WHERE patient_id = \$1`).
			WithArgs("patient-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE patient_id = (.+) ORDER BY").
			WithArgs("patient-1", 10, 0).
			WillReturnRows(docRow("doc-1", false))

		res, err := repo.ListByPatient(ctx, "patient-1", repository.DocumentFilter{}, repository.PageQuery{Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})

	t.Run("public only with category and search", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents WHERE patient_id = \$1 AND public = TRUE AND category = \$2`).
			WithArgs("patient-1", model.CategoryXRay, "%wrist%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE patient_id = (.+) public = TRUE (.+) ORDER BY").
			WithArgs("patient-1", model.CategoryXRay, "%wrist%", 10, 0).
			WillReturnRows(docRow("doc-1", true))

		res, err := repo.ListByPatient(ctx, "patient-1",
			repository.DocumentFilter{PublicOnly: true, Category: model.CategoryXRay, Search: "wrist"},
			repository.PageQuery{Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})
}

func TestDocumentPostgres_SetPublic(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("updated", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents SET public = ").
			WithArgs("doc-1", true).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetPublic(ctx, "doc-1", true))
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents SET public = ").
			WithArgs("missing", true).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SetPublic(ctx, "missing", true)
		assert.True(t, errors.Is(err, sql.ErrNoRows))
	})
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM documents WHERE id = ?").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(ctx, "doc-1"))

	// deleting a missing row is not an error
	mock.ExpectExec("DELETE FROM documents WHERE id = ?").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(ctx, "missing"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_CountByPatient(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents WHERE patient_id = \$1$`).
		WithArgs("patient-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	total, err := repo.CountByPatient(ctx, "patient-1", false)
	assert.NoError(t, err)
	assert.Equal(t, 4, total)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents WHERE patient_id = \$1 AND public = TRUE`).
		WithArgs("patient-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	public, err := repo.CountByPatient(ctx, "patient-1", true)
	assert.NoError(t, err)
	assert.Equal(t, 1, public)
}
