package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"medicase/internal/model"
	"medicase/internal/policy"
	"medicase/internal/service"
)

const (
	// AuthUserLocalKey is the key under which the authenticated user is stored
	// in Fiber's context locals.
	AuthUserLocalKey = "auth_user"

	authScheme = "Bearer"
)

// RequireAuth extracts and verifies the bearer token on every request and
// stores the resolved user in context locals. Requests without a valid,
// unexpired access token never reach the handler.
func RequireAuth(authSvc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return unauthorized(c, "missing bearer token")
		}
		u, err := authSvc.Verify(c.UserContext(), token)
		if err != nil {
			return unauthorized(c, "invalid or expired token")
		}
		c.Locals(AuthUserLocalKey, u)
		return c.Next()
	}
}

// RequireRole gates a route group to one role. It must run after RequireAuth.
func RequireRole(role model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := UserFromCtx(c)
		if u == nil {
			return unauthorized(c, "missing bearer token")
		}
		if u.Role != role {
			rid, _ := c.Locals(RequestIDLocalKey).(string)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"request_id": rid,
				"error": fiber.Map{
					"code":    "FORBIDDEN",
					"message": "insufficient permissions",
				},
			})
		}
		return c.Next()
	}
}

// UserFromCtx returns the authenticated user stored by RequireAuth, or nil.
func UserFromCtx(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(AuthUserLocalKey).(*model.User)
	return u
}

// ActorFromCtx projects the authenticated user into a policy actor.
func ActorFromCtx(c *fiber.Ctx) policy.Actor {
	u := UserFromCtx(c)
	if u == nil {
		return policy.Actor{}
	}
	return policy.Actor{ID: u.ID, Role: u.Role}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], authScheme) {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(c *fiber.Ctx, message string) error {
	rid, _ := c.Locals(RequestIDLocalKey).(string)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"request_id": rid,
		"error": fiber.Map{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
