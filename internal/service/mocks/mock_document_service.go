package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"medicase/internal/model"
	"medicase/internal/policy"
	"medicase/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, actor policy.Actor, r io.Reader, req service.UploadRequest) (*model.Document, error) {
	args := m.Called(ctx, actor, r, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, actor policy.Actor, id string) (*model.Document, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, actor policy.Actor, id string) (io.ReadCloser, *model.Document, error) {
	args := m.Called(ctx, actor, id)
	rc, _ := args.Get(0).(io.ReadCloser)
	doc, _ := args.Get(1).(*model.Document)
	return rc, doc, args.Error(2)
}

func (m *MockDocumentService) ListByPatient(ctx context.Context, actor policy.Actor, patientID string, q service.ListQuery) (*service.DocumentListResult, error) {
	args := m.Called(ctx, actor, patientID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, actor policy.Actor, id string, req service.UpdateRequest) (*model.Document, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) ToggleVisibility(ctx context.Context, actor policy.Actor, id string) (*model.Document, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
