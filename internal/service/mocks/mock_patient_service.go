package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medicase/internal/model"
	"medicase/internal/service"
)

type MockPatientService struct {
	mock.Mock
}

func (m *MockPatientService) Profile(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockPatientService) UpdateProfile(ctx context.Context, userID string, req service.UpdateProfileRequest) (*model.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockPatientService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	args := m.Called(ctx, userID, currentPassword, newPassword)
	return args.Error(0)
}

func (m *MockPatientService) QRCode(ctx context.Context, userID string) (*service.QRCodeResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QRCodeResult), args.Error(1)
}

func (m *MockPatientService) RegenerateQRCode(ctx context.Context, userID string) (*service.QRCodeResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QRCodeResult), args.Error(1)
}
