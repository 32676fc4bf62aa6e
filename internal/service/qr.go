package service

import (
	"context"
	"database/sql"
	"errors"

	"medicase/internal/model"
	"medicase/internal/qr"
	"medicase/internal/repository"
)

// QRScanResult is the full payload returned when a QR identifier is scanned:
// the patient's public profile and their public documents only.
type QRScanResult struct {
	Patient       model.PublicProfile `json:"patient"`
	Documents     []model.Document    `json:"documents"`
	DocumentCount int                 `json:"document_count"`
	QRCode        string              `json:"qr_code"`
}

// QRStats summarizes a patient's document visibility split.
type QRStats struct {
	PatientName      string `json:"patient_name"`
	TotalDocuments   int    `json:"total_documents"`
	PublicDocuments  int    `json:"public_documents"`
	PrivateDocuments int    `json:"private_documents"`
	QRCode           string `json:"qr_code"`
}

// QRService resolves patient QR identifiers for unauthenticated lookups.
// Every operation validates the identifier structurally before any store
// round trip, and only ever exposes public data of enabled patients.
type QRService interface {
	// Resolve returns the patient's public profile and public documents.
	Resolve(ctx context.Context, code string) (*QRScanResult, error)

	// Info returns the public profile only.
	Info(ctx context.Context, code string) (*model.PublicProfile, error)

	// Documents returns the public documents only.
	Documents(ctx context.Context, code string, limit, offset int) (*DocumentListResult, error)

	// Stats returns document visibility counts.
	Stats(ctx context.Context, code string) (*QRStats, error)

	// Validate reports whether the identifier is well-formed and assigned.
	Validate(ctx context.Context, code string) (bool, error)
}

type qrService struct {
	users repository.UserRepository
	docs  repository.DocumentRepository
}

// NewQRService constructs a new QRService.
func NewQRService(users repository.UserRepository, docs repository.DocumentRepository) QRService {
	return &qrService{users: users, docs: docs}
}

func (s *qrService) Resolve(ctx context.Context, code string) (*QRScanResult, error) {
	patient, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	res, err := s.publicDocuments(ctx, patient.ID, 100, 0)
	if err != nil {
		return nil, err
	}
	return &QRScanResult{
		Patient:       patient.Public(),
		Documents:     res.Items,
		DocumentCount: res.Total,
		QRCode:        code,
	}, nil
}

func (s *qrService) Info(ctx context.Context, code string) (*model.PublicProfile, error) {
	patient, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	p := patient.Public()
	return &p, nil
}

func (s *qrService) Documents(ctx context.Context, code string, limit, offset int) (*DocumentListResult, error) {
	patient, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.publicDocuments(ctx, patient.ID, limit, offset)
}

func (s *qrService) Stats(ctx context.Context, code string) (*QRStats, error) {
	patient, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	total, err := s.docs.CountByPatient(ctx, patient.ID, false)
	if err != nil {
		return nil, err
	}
	public, err := s.docs.CountByPatient(ctx, patient.ID, true)
	if err != nil {
		return nil, err
	}
	return &QRStats{
		PatientName:      patient.FullName(),
		TotalDocuments:   total,
		PublicDocuments:  public,
		PrivateDocuments: total - public,
		QRCode:           code,
	}, nil
}

func (s *qrService) Validate(ctx context.Context, code string) (bool, error) {
	if !qr.ValidCode(code) {
		return false, nil
	}
	_, err := s.lookup(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// lookup resolves a code to an enabled patient. Malformed codes are rejected
// without a database round trip.
func (s *qrService) lookup(ctx context.Context, code string) (*model.User, error) {
	if !qr.ValidCode(code) {
		return nil, invalidInput("qr code format is not valid")
	}
	u, err := s.users.FindByQRCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if u.Role != model.RolePatient || !u.Enabled {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *qrService) publicDocuments(ctx context.Context, patientID string, limit, offset int) (*DocumentListResult, error) {
	res, err := s.docs.ListByPatient(ctx, patientID,
		repository.DocumentFilter{PublicOnly: true},
		repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}
