package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"medicase/internal/model"
	"medicase/internal/service"
	serviceMocks "medicase/internal/service/mocks"
)

func TestScanQR(t *testing.T) {
	mockSvc := new(serviceMocks.MockQRService)
	app := fiber.New()
	app.Get("/qr/patient/:qrCode", ScanQR(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Resolve", mock.Anything, "MED-0A1B2C3D").Return(&service.QRScanResult{
			Patient:       model.PublicProfile{ID: "patient-1", FullName: "Jane Doe"},
			Documents:     []model.Document{{ID: "doc-1", Public: true}},
			DocumentCount: 1,
			QRCode:        "MED-0A1B2C3D",
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/qr/patient/MED-0A1B2C3D", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body service.QRScanResult
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "Jane Doe", body.Patient.FullName)
		assert.Equal(t, 1, body.DocumentCount)
	})

	t.Run("malformed code", func(t *testing.T) {
		mockSvc.On("Resolve", mock.Anything, "garbage").
			Return(nil, service.ErrInvalidInput).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/qr/patient/garbage", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unassigned code", func(t *testing.T) {
		mockSvc.On("Resolve", mock.Anything, "MED-FFFFFFFF").
			Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/qr/patient/MED-FFFFFFFF", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestQRInfo(t *testing.T) {
	mockSvc := new(serviceMocks.MockQRService)
	app := fiber.New()
	app.Get("/qr/patient/:qrCode/info", QRInfo(mockSvc))

	mockSvc.On("Info", mock.Anything, "MED-0A1B2C3D").
		Return(&model.PublicProfile{ID: "patient-1", FullName: "Jane Doe"}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/qr/patient/MED-0A1B2C3D/info", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body model.PublicProfile
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "patient-1", body.ID)
}

func TestQRDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockQRService)
	app := fiber.New()
	app.Get("/qr/patient/:qrCode/documents", QRDocuments(mockSvc))

	mockSvc.On("Documents", mock.Anything, "MED-0A1B2C3D", 5, 0).
		Return(&service.DocumentListResult{Total: 2}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/qr/patient/MED-0A1B2C3D/documents?limit=5", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body service.DocumentListResult
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, 2, body.Total)
}

func TestQRStats(t *testing.T) {
	mockSvc := new(serviceMocks.MockQRService)
	app := fiber.New()
	app.Get("/qr/patient/:qrCode/stats", QRStats(mockSvc))

	mockSvc.On("Stats", mock.Anything, "MED-0A1B2C3D").Return(&service.QRStats{
		PatientName:      "Jane Doe",
		TotalDocuments:   7,
		PublicDocuments:  3,
		PrivateDocuments: 4,
		QRCode:           "MED-0A1B2C3D",
	}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/qr/patient/MED-0A1B2C3D/stats", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body service.QRStats
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, 7, body.TotalDocuments)
	assert.Equal(t, 4, body.PrivateDocuments)
}

func TestValidateQR(t *testing.T) {
	mockSvc := new(serviceMocks.MockQRService)
	app := fiber.New()
	app.Post("/qr/validate", ValidateQR(mockSvc))

	t.Run("assigned", func(t *testing.T) {
		mockSvc.On("Validate", mock.Anything, "MED-0A1B2C3D").Return(true, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/qr/validate", `{"qr_code":"MED-0A1B2C3D"}`))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]bool
		json.NewDecoder(resp.Body).Decode(&body)
		assert.True(t, body["valid"])
	})

	t.Run("unassigned", func(t *testing.T) {
		mockSvc.On("Validate", mock.Anything, "MED-FFFFFFFF").Return(false, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/qr/validate", `{"qr_code":"MED-FFFFFFFF"}`))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]bool
		json.NewDecoder(resp.Body).Decode(&body)
		assert.False(t, body["valid"])
	})
}

func TestAdminHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockAdminService)
	app := fiber.New()
	app.Get("/admin/users", asUser(testAdmin()), ListUsers(mockSvc))
	app.Post("/admin/users/:id/enable", asUser(testAdmin()), EnableUser(mockSvc))
	app.Post("/admin/users/:id/disable", asUser(testAdmin()), DisableUser(mockSvc))
	app.Get("/admin/stats", asUser(testAdmin()), AdminStats(mockSvc))

	t.Run("list users", func(t *testing.T) {
		mockSvc.On("ListUsers", mock.Anything, "DOCTOR", "smith", false, 10, 0).
			Return(&service.UserListResult{Total: 1}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/admin/users?role=DOCTOR&q=smith", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("list users including disabled", func(t *testing.T) {
		mockSvc.On("ListUsers", mock.Anything, "PATIENT", "", true, 10, 0).
			Return(&service.UserListResult{Total: 3}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/admin/users?include_disabled=true", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("disable then enable", func(t *testing.T) {
		mockSvc.On("SetUserEnabled", mock.Anything, "patient-1", false).Return(nil).Once()
		mockSvc.On("SetUserEnabled", mock.Anything, "patient-1", true).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/admin/users/patient-1/disable", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/admin/users/patient-1/enable", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("disable unknown user", func(t *testing.T) {
		mockSvc.On("SetUserEnabled", mock.Anything, "ghost", false).
			Return(service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/admin/users/ghost/disable", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("stats", func(t *testing.T) {
		mockSvc.On("Stats", mock.Anything).
			Return(&service.AdminStats{Patients: 10, Doctors: 3, Admins: 1}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body service.AdminStats
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, 10, body.Patients)
	})
}
