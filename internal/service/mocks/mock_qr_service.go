package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medicase/internal/model"
	"medicase/internal/service"
)

type MockQRService struct {
	mock.Mock
}

func (m *MockQRService) Resolve(ctx context.Context, code string) (*service.QRScanResult, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QRScanResult), args.Error(1)
}

func (m *MockQRService) Info(ctx context.Context, code string) (*model.PublicProfile, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublicProfile), args.Error(1)
}

func (m *MockQRService) Documents(ctx context.Context, code string, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, code, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockQRService) Stats(ctx context.Context, code string) (*service.QRStats, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QRStats), args.Error(1)
}

func (m *MockQRService) Validate(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}
