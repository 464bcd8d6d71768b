package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/order-manager/internal/domain"
)

const securityContextKey = "security_context"

// SecurityContext holds the identity resolved for a single in-flight request.
// It is allocated fresh per request, populated at most once by the
// authentication middleware, and discarded with the request. There is no
// process-wide current-identity holder.
type SecurityContext struct {
	Principal   *domain.User
	Authorities []domain.Authority
}

// Authenticated reports whether a principal was resolved for this request.
func (sc *SecurityContext) Authenticated() bool {
	return sc != nil && sc.Principal != nil
}

// HasAuthority reports whether the context carries the given authority.
// Anonymous contexts carry none.
func (sc *SecurityContext) HasAuthority(authority domain.Authority) bool {
	if !sc.Authenticated() {
		return false
	}
	for _, a := range sc.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// SecurityContextFrom returns the request's security context. Requests that
// did not pass the authentication middleware, or carried no usable token,
// yield an anonymous context, never nil.
func SecurityContextFrom(c *fiber.Ctx) *SecurityContext {
	if sc, ok := c.Locals(securityContextKey).(*SecurityContext); ok {
		return sc
	}
	return &SecurityContext{}
}

func setSecurityContext(c *fiber.Ctx, sc *SecurityContext) {
	c.Locals(securityContextKey, sc)
}
