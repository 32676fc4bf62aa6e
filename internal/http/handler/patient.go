package handler

import (
	"github.com/gofiber/fiber/v2"

	"medicase/internal/http/middleware"
	"medicase/internal/service"
)

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// GetProfile returns the caller's own account record.
func GetProfile(svc service.PatientService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Profile(c.UserContext(), middleware.ActorFromCtx(c).ID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}

// UpdateProfile mutates the caller's profile fields.
func UpdateProfile(svc service.PatientService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.UpdateProfileRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "malformed request body")
		}
		u, err := svc.UpdateProfile(c.UserContext(), middleware.ActorFromCtx(c).ID, req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}

// ChangePassword verifies the current password before storing a new one.
func ChangePassword(svc service.PatientService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req changePasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "malformed request body")
		}
		if err := svc.ChangePassword(c.UserContext(), middleware.ActorFromCtx(c).ID, req.CurrentPassword, req.NewPassword); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "password updated"})
	}
}

// GetMyQRCode returns the caller's QR identifier with its rendered image.
func GetMyQRCode(svc service.PatientService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.QRCode(c.UserContext(), middleware.ActorFromCtx(c).ID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// RegenerateQRCode replaces the caller's QR identifier. The previous one stops
// resolving immediately.
func RegenerateQRCode(svc service.PatientService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.RegenerateQRCode(c.UserContext(), middleware.ActorFromCtx(c).ID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}
