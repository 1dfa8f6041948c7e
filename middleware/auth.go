// Package middleware holds the fiber middleware shared by every route group.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/zylpheon/TheZylpheonAdmin/apperrors"
	"github.com/zylpheon/TheZylpheonAdmin/models"
	"github.com/zylpheon/TheZylpheonAdmin/services"
)

const principalKey = "principal"

// Principal is the authenticated actor of a request.
type Principal struct {
	UserID   uint
	Username string
	Email    string
	Role     models.Role
	User     *models.User
}

// IsAdmin reports whether the principal has the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// AccessGuard resolves bearer credentials into a per-request Principal.
type AccessGuard struct {
	authService services.IAuthService
}

// NewAccessGuard creates a new AccessGuard instance.
func NewAccessGuard(authSvc services.IAuthService) *AccessGuard {
	return &AccessGuard{authService: authSvc}
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// stores the resolved principal in the request locals.
func (g *AccessGuard) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}

		user, err := g.authService.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(principalKey, Principal{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
			User:     user,
		})
		return c.Next()
	}
}

// RequireRole rejects requests whose principal does not have role. It must
// run after Authenticate.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return apperrors.Unauthenticated("Access token required")
		}
		if p.Role != role {
			return apperrors.Forbidden("Access denied")
		}
		return c.Next()
	}
}

// PrincipalFrom returns the principal resolved by Authenticate.
func PrincipalFrom(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(principalKey).(Principal)
	return p, ok
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", apperrors.Unauthenticated("Access token required")
	}
	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", apperrors.Unauthenticated("Malformed authorization header")
	}
	return token, nil
}
