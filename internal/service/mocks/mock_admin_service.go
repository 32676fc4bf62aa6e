package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medicase/internal/service"
)

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListUsers(ctx context.Context, role string, search string, includeDisabled bool, limit, offset int) (*service.UserListResult, error) {
	args := m.Called(ctx, role, search, includeDisabled, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserListResult), args.Error(1)
}

func (m *MockAdminService) SetUserEnabled(ctx context.Context, userID string, enabled bool) error {
	args := m.Called(ctx, userID, enabled)
	return args.Error(0)
}

func (m *MockAdminService) Stats(ctx context.Context) (*service.AdminStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AdminStats), args.Error(1)
}
