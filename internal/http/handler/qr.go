package handler

import (
	"github.com/gofiber/fiber/v2"

	"medicase/internal/service"
)

type validateQRRequest struct {
	QRCode string `json:"qr_code"`
}

// ScanQR resolves a QR identifier to the patient's public profile and their
// public documents. No authentication is required; it backs the scan flow.
func ScanQR(svc service.QRService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Resolve(c.UserContext(), c.Params("qrCode"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// QRInfo returns the public profile only.
func QRInfo(svc service.QRService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Info(c.UserContext(), c.Params("qrCode"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// QRDocuments returns the public documents only, paginated.
func QRDocuments(svc service.QRService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := parsePage(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
		}
		res, err := svc.Documents(c.UserContext(), c.Params("qrCode"), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// QRStats returns the patient's document visibility counts.
func QRStats(svc service.QRService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Stats(c.UserContext(), c.Params("qrCode"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// ValidateQR reports whether an identifier is well-formed and assigned,
// without exposing who it belongs to.
func ValidateQR(svc service.QRService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req validateQRRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "malformed request body")
		}
		ok, err := svc.Validate(c.UserContext(), req.QRCode)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"valid": ok})
	}
}
