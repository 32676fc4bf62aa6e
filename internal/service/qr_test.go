package service

import (
	"context"
	"database/sql"
	"testing"

	"medicase/internal/model"
	"medicase/internal/repository"
	repoMocks "medicase/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQRCode = "MED-0A1B2C3D"

func publicDoc() model.Document {
	d := *privateDoc()
	d.Public = true
	return d
}

func TestQRService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("public profile and public documents only", func(t *testing.T) {
		u := patientUser()
		u.Email = "jane@example.com"
		u.FirstName = "Jane"
		u.LastName = "Doe"

		mUsers := new(repoMocks.MockUserRepository)
		mDocs := new(repoMocks.MockDocumentRepository)
		mUsers.On("FindByQRCode", ctx, testQRCode).Return(u, nil)
		mDocs.On("ListByPatient", ctx, patientID,
			repository.DocumentFilter{PublicOnly: true},
			repository.PageQuery{Limit: 100, Offset: 0}).
			Return(&repository.PageResult[model.Document]{Items: []model.Document{publicDoc()}, Total: 1}, nil)

		svc := NewQRService(mUsers, mDocs)
		res, err := svc.Resolve(ctx, testQRCode)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", res.Patient.FullName)
		assert.Equal(t, 1, res.DocumentCount)
		assert.Equal(t, testQRCode, res.QRCode)
		mDocs.AssertExpectations(t)
	})

	t.Run("malformed code skips the store", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewQRService(mUsers, new(repoMocks.MockDocumentRepository))
		_, err := svc.Resolve(ctx, "med-lowercase")
		assert.ErrorIs(t, err, ErrInvalidInput)
		mUsers.AssertNotCalled(t, "FindByQRCode")
	})

	t.Run("unassigned code", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mUsers.On("FindByQRCode", ctx, testQRCode).Return(nil, sql.ErrNoRows)

		svc := NewQRService(mUsers, new(repoMocks.MockDocumentRepository))
		_, err := svc.Resolve(ctx, testQRCode)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("disabled patient resolves to nothing", func(t *testing.T) {
		u := patientUser()
		u.Enabled = false
		mUsers := new(repoMocks.MockUserRepository)
		mUsers.On("FindByQRCode", ctx, testQRCode).Return(u, nil)

		svc := NewQRService(mUsers, new(repoMocks.MockDocumentRepository))
		_, err := svc.Resolve(ctx, testQRCode)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestQRService_Info(t *testing.T) {
	ctx := context.Background()

	t.Run("excludes email and medical details", func(t *testing.T) {
		u := patientUser()
		u.Email = "jane@example.com"
		u.FirstName = "Jane"
		u.LastName = "Doe"
		u.Patient.BloodGroup = "O+"

		mUsers := new(repoMocks.MockUserRepository)
		mUsers.On("FindByQRCode", ctx, testQRCode).Return(u, nil)

		svc := NewQRService(mUsers, new(repoMocks.MockDocumentRepository))
		p, err := svc.Info(ctx, testQRCode)
		require.NoError(t, err)
		assert.Equal(t, patientID, p.ID)
		assert.Equal(t, "Jane Doe", p.FullName)
	})
}

func TestQRService_Documents(t *testing.T) {
	ctx := context.Background()

	t.Run("paginates the public subset", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mDocs := new(repoMocks.MockDocumentRepository)
		mUsers.On("FindByQRCode", ctx, testQRCode).Return(patientUser(), nil)
		mDocs.On("ListByPatient", ctx, patientID,
			repository.DocumentFilter{PublicOnly: true},
			repository.PageQuery{Limit: 5, Offset: 10}).
			Return(&repository.PageResult[model.Document]{Items: nil, Total: 12}, nil)

		svc := NewQRService(mUsers, mDocs)
		res, err := svc.Documents(ctx, testQRCode, 5, 10)
		require.NoError(t, err)
		assert.Equal(t, 12, res.Total)
		mDocs.AssertExpectations(t)
	})
}

func TestQRService_Stats(t *testing.T) {
	ctx := context.Background()

	mUsers := new(repoMocks.MockUserRepository)
	mDocs := new(repoMocks.MockDocumentRepository)
	u := patientUser()
	u.FirstName = "Jane"
	u.LastName = "Doe"
	mUsers.On("FindByQRCode", ctx, testQRCode).Return(u, nil)
	mDocs.On("CountByPatient", ctx, patientID, false).Return(7, nil)
	mDocs.On("CountByPatient", ctx, patientID, true).Return(3, nil)

	svc := NewQRService(mUsers, mDocs)
	stats, err := svc.Stats(ctx, testQRCode)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", stats.PatientName)
	assert.Equal(t, 7, stats.TotalDocuments)
	assert.Equal(t, 3, stats.PublicDocuments)
	assert.Equal(t, 4, stats.PrivateDocuments)
}

func TestQRService_Validate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		code       string
		setupMocks func(mUsers *repoMocks.MockUserRepository)
		want       bool
	}{
		{
			name: "assigned code",
			code: testQRCode,
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByQRCode", ctx, testQRCode).Return(patientUser(), nil)
			},
			want: true,
		},
		{
			name:       "malformed code",
			code:       "MED-nope",
			setupMocks: func(*repoMocks.MockUserRepository) {},
			want:       false,
		},
		{
			name: "well-formed but unassigned",
			code: "MED-FFFFFFFF",
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByQRCode", ctx, "MED-FFFFFFFF").Return(nil, sql.ErrNoRows)
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mUsers := new(repoMocks.MockUserRepository)
			tt.setupMocks(mUsers)

			svc := NewQRService(mUsers, new(repoMocks.MockDocumentRepository))
			ok, err := svc.Validate(ctx, tt.code)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}
