package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"medicase/internal/model"
	"medicase/internal/policy"
	"medicase/internal/repository"
	"medicase/internal/storage"
)

// MaxDocumentSize is the upload size limit.
const MaxDocumentSize = 50 * 1024 * 1024

// allowedContentTypes is the upload allow-list; everything else is rejected
// before any bytes hit storage.
var allowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
	"image/gif":       {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// UploadRequest carries the metadata accompanying an uploaded file.
type UploadRequest struct {
	PatientID   string
	Filename    string
	ContentType string
	Size        int64
	Category    string
	Description string
}

// UpdateRequest carries mutable document metadata. Empty fields are left
// unchanged. The storage key is not part of it and can never change.
type UpdateRequest struct {
	Filename    string `json:"filename"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ListQuery narrows and paginates document listings.
type ListQuery struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentService defines the use cases for handling medical documents.
// Every operation takes the acting identity and enforces the access policy
// before touching the stores.
type DocumentService interface {
	// Upload streams the content to object storage and saves metadata to the
	// DB, rolling back the blob if the DB save fails. Only PATIENT accounts
	// can own documents; patients cannot upload into other patients' records.
	Upload(ctx context.Context, actor policy.Actor, r io.Reader, req UploadRequest) (*model.Document, error)

	// Get returns a single document's metadata, policy-checked.
	Get(ctx context.Context, actor policy.Actor, id string) (*model.Document, error)

	// Download returns the document content stream and its metadata,
	// policy-checked. A metadata row whose blob is gone reports ErrNotFound.
	Download(ctx context.Context, actor policy.Actor, id string) (io.ReadCloser, *model.Document, error)

	// ListByPatient returns a patient's documents. Owners and admins see
	// everything; all other callers are limited to the public subset.
	ListByPatient(ctx context.Context, actor policy.Actor, patientID string, q ListQuery) (*DocumentListResult, error)

	// Update mutates metadata fields only, policy-checked.
	Update(ctx context.Context, actor policy.Actor, id string, req UpdateRequest) (*model.Document, error)

	// ToggleVisibility flips the public flag; owner-or-admin only.
	ToggleVisibility(ctx context.Context, actor policy.Actor, id string) (*model.Document, error)

	// Delete removes the blob (best effort) and the metadata row.
	Delete(ctx context.Context, actor policy.Actor, id string) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store storage.Storage
	docs  repository.DocumentRepository
	users repository.UserRepository
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, docs repository.DocumentRepository, users repository.UserRepository) DocumentService {
	return &documentService{store: store, docs: docs, users: users}
}

// sanitizeFilename rejects path traversal sequences and separators.
// Mandatory regardless of the storage backend.
func sanitizeFilename(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalidInput("filename is required")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", invalidInput("filename contains invalid path sequence")
	}
	return name, nil
}

func (s *documentService) Upload(ctx context.Context, actor policy.Actor, r io.Reader, req UploadRequest) (*model.Document, error) {
	if r == nil {
		return nil, invalidInput("file content is required")
	}
	filename, err := sanitizeFilename(req.Filename)
	if err != nil {
		return nil, err
	}
	if _, ok := allowedContentTypes[req.ContentType]; !ok {
		return nil, invalidInput("file type not allowed: %s", req.ContentType)
	}
	if req.Size <= 0 || req.Size > MaxDocumentSize {
		return nil, invalidInput("file size must be between 1 byte and 50MB")
	}
	category, err := model.ParseDocumentCategory(req.Category)
	if err != nil {
		return nil, invalidInput("%v", err)
	}

	// A patient may only add to their own record.
	if actor.Role == model.RolePatient && actor.ID != req.PatientID {
		return nil, ErrForbidden
	}

	patient, err := s.users.FindByID(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if patient.Role != model.RolePatient {
		return nil, invalidInput("documents can only be uploaded for patients")
	}

	// Storage key: UUID + original extension, assigned once.
	ext := filepath.Ext(filename)
	key := "documents/" + uuid.New().String() + ext

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        req.Size,
		ContentType: req.ContentType,
		Metadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:          uuid.New().String(),
		PatientID:   patient.ID,
		UploadedBy:  actor.ID,
		Filename:    filename,
		StorageKey:  objInfo.Key,
		Size:        objInfo.Size,
		ContentType: req.ContentType,
		Category:    category,
		Description: req.Description,
		Public:      false, // private by default
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		// Rollback: reclaim the orphaned blob (best effort, the stores are
		// independent systems).
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *documentService) Get(ctx context.Context, actor policy.Actor, id string) (*model.Document, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanRead(actor, doc) {
		return nil, ErrForbidden
	}
	return doc, nil
}

func (s *documentService) Download(ctx context.Context, actor policy.Actor, id string) (io.ReadCloser, *model.Document, error) {
	doc, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("fetch from storage: %w", err)
	}
	return rc, doc, nil
}

func (s *documentService) ListByPatient(ctx context.Context, actor policy.Actor, patientID string, q ListQuery) (*DocumentListResult, error) {
	if patientID == "" {
		return nil, invalidInput("patient id is required")
	}
	var err error
	var category model.DocumentCategory
	if q.Category != "" {
		category, err = model.ParseDocumentCategory(q.Category)
		if err != nil {
			return nil, invalidInput("%v", err)
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	filter := repository.DocumentFilter{
		PublicOnly: !policy.CanListAll(actor, patientID),
		Category:   category,
		Search:     strings.TrimSpace(q.Search),
	}
	res, err := s.docs.ListByPatient(ctx, patientID, filter, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Update(ctx context.Context, actor policy.Actor, id string, req UpdateRequest) (*model.Document, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanModify(actor, doc) {
		return nil, ErrForbidden
	}

	if req.Filename != "" {
		filename, err := sanitizeFilename(req.Filename)
		if err != nil {
			return nil, err
		}
		doc.Filename = filename
	}
	if req.Category != "" {
		category, err := model.ParseDocumentCategory(req.Category)
		if err != nil {
			return nil, invalidInput("%v", err)
		}
		doc.Category = category
	}
	if req.Description != "" {
		doc.Description = req.Description
	}

	updated, err := s.docs.Update(ctx, doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *documentService) ToggleVisibility(ctx context.Context, actor policy.Actor, id string) (*model.Document, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanToggleVisibility(actor, doc) {
		return nil, ErrForbidden
	}
	// Compute the target once: the repository may hand back the same object
	// it stores, and SetPublic mutating it must not change the outcome.
	target := !doc.Public
	if err := s.docs.SetPublic(ctx, id, target); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	doc.Public = target
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	doc, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanModify(actor, doc) {
		return ErrForbidden
	}
	// Blob deletion is best effort: a blob that cannot be deleted now is
	// treated as already gone. The metadata row must never outlive it.
	_ = s.store.Delete(ctx, doc.StorageKey)
	return s.docs.Delete(ctx, id)
}

func (s *documentService) find(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, invalidInput("document id is required")
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}
