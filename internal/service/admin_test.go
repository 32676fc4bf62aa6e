package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicase/internal/model"
	"medicase/internal/repository"
	repoMocks "medicase/internal/repository/mocks"
)

func TestAdminService_ListUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("enabled only by default", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mUsers.On("ListByRole", ctx, model.RoleDoctor, "smith", false, repository.PageQuery{Limit: 10, Offset: 0}).
			Return(&repository.PageResult[model.User]{Total: 1}, nil)

		svc := NewAdminService(mUsers)
		res, err := svc.ListUsers(ctx, "DOCTOR", "smith", false, 10, 0)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		mUsers.AssertExpectations(t)
	})

	t.Run("disabled accounts reachable for re-enabling", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		disabled := *patientUser()
		disabled.Enabled = false
		mUsers.On("ListByRole", ctx, model.RolePatient, "", true, repository.PageQuery{Limit: 10, Offset: 0}).
			Return(&repository.PageResult[model.User]{Items: []model.User{disabled}, Total: 1}, nil)

		svc := NewAdminService(mUsers)
		res, err := svc.ListUsers(ctx, "PATIENT", "", true, 10, 0)

		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.False(t, res.Items[0].Enabled)
	})

	t.Run("unknown role", func(t *testing.T) {
		svc := NewAdminService(new(repoMocks.MockUserRepository))
		_, err := svc.ListUsers(ctx, "SUPERUSER", "", false, 10, 0)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAdminService_SetUserEnabled(t *testing.T) {
	ctx := context.Background()

	mUsers := new(repoMocks.MockUserRepository)
	mUsers.On("SetEnabled", ctx, patientID, false).Return(nil).Once()
	mUsers.On("SetEnabled", ctx, "ghost", true).Return(sql.ErrNoRows).Once()

	svc := NewAdminService(mUsers)
	assert.NoError(t, svc.SetUserEnabled(ctx, patientID, false))
	assert.ErrorIs(t, svc.SetUserEnabled(ctx, "ghost", true), ErrNotFound)
	mUsers.AssertExpectations(t)
}

func TestAdminService_Stats(t *testing.T) {
	ctx := context.Background()

	mUsers := new(repoMocks.MockUserRepository)
	mUsers.On("CountByRole", ctx, model.RolePatient).Return(10, nil)
	mUsers.On("CountByRole", ctx, model.RoleDoctor).Return(3, nil)
	mUsers.On("CountByRole", ctx, model.RoleAdmin).Return(1, nil)

	svc := NewAdminService(mUsers)
	stats, err := svc.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, &AdminStats{Patients: 10, Doctors: 3, Admins: 1}, stats)
}
