package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"medicase/internal/http/middleware"
	"medicase/internal/model"
	"medicase/internal/service"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Auth     service.AuthService
	Patient  service.PatientService
	Document service.DocumentService
	QR       service.QRService
	Admin    service.AdminService
}

// RegisterRoutes attaches all HTTP routes to the provided Fiber app. Handlers
// stay free of business logic; policy decisions live in the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/auth/register", Register(svcs.Auth))
	app.Post("/auth/login", Login(svcs.Auth))
	app.Post("/auth/refresh", Refresh(svcs.Auth))

	// Unauthenticated QR lookup surface; it only ever serves public data.
	qr := app.Group("/qr")
	qr.Post("/validate", ValidateQR(svcs.QR))
	qr.Get("/patient/:qrCode", ScanQR(svcs.QR))
	qr.Get("/patient/:qrCode/info", QRInfo(svcs.QR))
	qr.Get("/patient/:qrCode/documents", QRDocuments(svcs.QR))
	qr.Get("/patient/:qrCode/stats", QRStats(svcs.QR))

	requireAuth := middleware.RequireAuth(svcs.Auth)

	app.Get("/auth/verify", requireAuth, VerifyToken())

	patients := app.Group("/patients", requireAuth)
	patients.Get("/profile", GetProfile(svcs.Patient))
	patients.Put("/profile", UpdateProfile(svcs.Patient))
	patients.Post("/change-password", ChangePassword(svcs.Patient))
	patients.Get("/qr", GetMyQRCode(svcs.Patient))
	patients.Post("/qr/regenerate", RegenerateQRCode(svcs.Patient))

	docs := app.Group("/documents", requireAuth)
	docs.Post("/upload", UploadDocument(svcs.Document))
	// registered before /:id so "types" is not captured as a document id
	docs.Get("/types", ListDocumentTypes())
	docs.Get("/patient/:patientId", ListPatientDocuments(svcs.Document))
	docs.Get("/:id", GetDocument(svcs.Document))
	docs.Get("/:id/download", DownloadDocument(svcs.Document))
	docs.Put("/:id", UpdateDocument(svcs.Document))
	docs.Post("/:id/toggle-visibility", ToggleDocumentVisibility(svcs.Document))
	docs.Delete("/:id", DeleteDocument(svcs.Document))

	admin := app.Group("/admin", requireAuth, middleware.RequireRole(model.RoleAdmin))
	admin.Get("/users", ListUsers(svcs.Admin))
	admin.Post("/users/:id/enable", EnableUser(svcs.Admin))
	admin.Post("/users/:id/disable", DisableUser(svcs.Admin))
	admin.Get("/stats", AdminStats(svcs.Admin))
}
