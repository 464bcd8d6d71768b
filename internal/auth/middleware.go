package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/order-manager/internal/repository"
)

// Middleware authenticates bearer tokens and populates the per-request
// security context. It never rejects a request itself: any failure along the
// way (missing header, malformed token, bad signature, expiry, unknown
// subject) leaves the request anonymous and lets downstream authorization
// decide whether that is acceptable for the target route.
type Middleware struct {
	tokens *TokenManager
	users  repository.UserRepository
	logger *zap.Logger
}

// NewMiddleware constructs the authentication middleware.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository, logger *zap.Logger) *Middleware {
	return &Middleware{tokens: tokens, users: users, logger: logger}
}

// Handle runs once per request, before any route handler.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	token, ok := extractBearer(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return c.Next()
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		m.logger.Debug("bearer token rejected", zap.Error(err))
		return c.Next()
	}

	// The lookup runs under the request's context so a cancelled or timed-out
	// request aborts it; an aborted lookup must not populate the context.
	user, err := m.users.FindByUsername(c.UserContext(), claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Valid token for a principal that no longer exists, e.g. a
			// deleted account. Treated the same as no token at all.
			m.logger.Debug("token subject not found", zap.String("subject", claims.Subject))
		} else {
			m.logger.Debug("principal lookup failed", zap.Error(err))
		}
		return c.Next()
	}

	setSecurityContext(c, &SecurityContext{
		Principal:   user,
		Authorities: user.Role.Authorities(),
	})
	return c.Next()
}

// extractBearer pulls the token out of an Authorization header value.
// Absence or a non-Bearer scheme is the anonymous path, not an error.
func extractBearer(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
