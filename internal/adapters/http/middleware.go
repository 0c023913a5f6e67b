package httpadapter

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/PabloGalante/mind-connect/internal/domain"
	"github.com/PabloGalante/mind-connect/internal/observability"
)

const (
	localRequestID = "requestid"
	localSession   = "session"
	localUserID    = "user_id"
)

// withRequestContext copies the request id into the user context so the
// services log with it.
func withRequestContext(c *fiber.Ctx) error {
	if id, ok := c.Locals(localRequestID).(string); ok && id != "" {
		c.SetUserContext(observability.WithRequestID(c.UserContext(), id))
	}
	return c.Next()
}

// withLogging logs every request once the rest of the chain is done.
func withLogging(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = statusFor(err)
	}
	observability.LoggerFromContext(c.UserContext()).Infow("http request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return err
}

// requireAuth accepts a bearer token in the Authorization header, or in the
// token query parameter for clients that cannot set headers.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return fail(c, domain.ErrUnauthenticated)
	}

	session, err := s.deps.Directory.Authenticate(c.UserContext(), token)
	if err != nil {
		return fail(c, err)
	}

	c.Locals(localSession, session)
	c.Locals(localUserID, string(session.UserID))
	return c.Next()
}

func bearerToken(c *fiber.Ctx) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func sessionFrom(c *fiber.Ctx) *domain.AuthSession {
	session, _ := c.Locals(localSession).(*domain.AuthSession)
	return session
}
