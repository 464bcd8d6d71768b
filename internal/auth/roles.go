package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/order-manager/internal/domain"
	apperrors "github.com/spec-kit/order-manager/pkg/util/errorutil"
)

// RequireAuthenticated rejects anonymous requests with 401. Token
// verification details are never echoed back; the response is uniform
// regardless of why authentication did not happen.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !SecurityContextFrom(c).Authenticated() {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireRole ensures the caller is authenticated and holds one of the
// allowed roles. Anonymous callers get 401, authenticated callers without
// the role get 403.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		sc := SecurityContextFrom(c)
		if !sc.Authenticated() {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, ok := allowedSet[sc.Principal.Role]; !ok {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
