package service

import (
	"context"
	"database/sql"
	"errors"

	"medicase/internal/model"
	"medicase/internal/repository"
)

// UserListResult is the service-level DTO for paginated user listings.
type UserListResult struct {
	Items []model.User `json:"data"`
	Total int          `json:"total"`
}

// AdminStats aggregates enabled account counts per role.
type AdminStats struct {
	Patients int `json:"patients"`
	Doctors  int `json:"doctors"`
	Admins   int `json:"admins"`
}

// AdminService implements administrative account management. Handlers gate
// these operations to ADMIN actors.
type AdminService interface {
	// ListUsers returns users of a role with optional name/email search.
	// Disabled accounts are included only when includeDisabled is set, so
	// admins can find the accounts they need to re-enable.
	ListUsers(ctx context.Context, role string, search string, includeDisabled bool, limit, offset int) (*UserListResult, error)

	// SetUserEnabled soft-enables or soft-disables an account.
	SetUserEnabled(ctx context.Context, userID string, enabled bool) error

	// Stats returns enabled account counts per role.
	Stats(ctx context.Context) (*AdminStats, error)
}

type adminService struct {
	users repository.UserRepository
}

// NewAdminService constructs a new AdminService.
func NewAdminService(users repository.UserRepository) AdminService {
	return &adminService{users: users}
}

func (s *adminService) ListUsers(ctx context.Context, role string, search string, includeDisabled bool, limit, offset int) (*UserListResult, error) {
	r, err := model.ParseRole(role)
	if err != nil {
		return nil, invalidInput("role must be one of PATIENT, DOCTOR, ADMIN")
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.users.ListByRole(ctx, r, search, includeDisabled, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &UserListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *adminService) SetUserEnabled(ctx context.Context, userID string, enabled bool) error {
	if userID == "" {
		return invalidInput("user id is required")
	}
	if err := s.users.SetEnabled(ctx, userID, enabled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *adminService) Stats(ctx context.Context) (*AdminStats, error) {
	patients, err := s.users.CountByRole(ctx, model.RolePatient)
	if err != nil {
		return nil, err
	}
	doctors, err := s.users.CountByRole(ctx, model.RoleDoctor)
	if err != nil {
		return nil, err
	}
	admins, err := s.users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &AdminStats{Patients: patients, Doctors: doctors, Admins: admins}, nil
}
