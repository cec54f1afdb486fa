package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/depositflow/depositflow/internal/session"
)

// SessionCookie is the cookie carrying the session token for browser clients.
const SessionCookie = "deposit_session"

const sessionLocal = "session"

// SessionAuth resolves the session token (Authorization bearer or cookie)
// into a typed session value stored in the request locals. Requests without
// a live session are rejected.
func SessionAuth(store session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c)
		if token == "" {
			return fiber.NewError(http.StatusUnauthorized, "authentication required")
		}

		sess, err := store.Get(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid or expired session")
		}

		c.Locals(sessionLocal, sess)
		return c.Next()
	}
}

// SessionFromCtx returns the session resolved by SessionAuth, if any.
func SessionFromCtx(c *fiber.Ctx) (session.Session, bool) {
	sess, ok := c.Locals(sessionLocal).(session.Session)
	return sess, ok
}

func tokenFromRequest(c *fiber.Ctx) string {
	authz := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("Bearer "):])
	}
	return c.Cookies(SessionCookie)
}
