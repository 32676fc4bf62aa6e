package handler

import (
	"github.com/gofiber/fiber/v2"

	"medicase/internal/http/middleware"
	"medicase/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// authResponse is the body returned by login and refresh.
type authResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         any    `json:"user"`
}

// Register creates a new account.
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "malformed request body")
		}
		u, err := svc.Register(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// Login verifies credentials and returns a token pair.
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "malformed request body")
		}
		res, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(authResponse{
			AccessToken:  res.Tokens.AccessToken,
			RefreshToken: res.Tokens.RefreshToken,
			User:         res.User,
		})
	}
}

// Refresh exchanges a refresh token for a fresh pair.
func Refresh(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req refreshRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "malformed request body")
		}
		res, err := svc.Refresh(c.UserContext(), req.RefreshToken)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(authResponse{
			AccessToken:  res.Tokens.AccessToken,
			RefreshToken: res.Tokens.RefreshToken,
			User:         res.User,
		})
	}
}

// VerifyToken reports the account behind the presented access token. The
// middleware already verified it; this just echoes the resolved user.
func VerifyToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.UserFromCtx(c)
		if u == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		}
		return c.JSON(fiber.Map{"valid": true, "user": u})
	}
}
