package handler

import (
	"github.com/gofiber/fiber/v2"

	"medicase/internal/service"
)

// ListUsers returns accounts of a role with optional search. Admin only.
// ?include_disabled=true also lists soft-disabled accounts.
func ListUsers(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := parsePage(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
		}
		res, err := svc.ListUsers(c.UserContext(), c.Query("role", "PATIENT"), c.Query("q"), c.QueryBool("include_disabled"), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// EnableUser re-enables a disabled account.
func EnableUser(svc service.AdminService) fiber.Handler {
	return setUserEnabled(svc, true)
}

// DisableUser soft-disables an account: login and QR lookups stop working,
// the data stays.
func DisableUser(svc service.AdminService) fiber.Handler {
	return setUserEnabled(svc, false)
}

func setUserEnabled(svc service.AdminService, enabled bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.SetUserEnabled(c.UserContext(), c.Params("id"), enabled); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"id": c.Params("id"), "enabled": enabled})
	}
}

// AdminStats returns per-role account counts.
func AdminStats(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Stats(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}
