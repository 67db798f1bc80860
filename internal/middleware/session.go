package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "session_id"
	sessionKey    = "session_id"
	sessionMaxLen = 64
)

// Session makes sure every request carries a session token. The token is read from
// the X-Session-ID header, then the session_id cookie, and a new one is issued when
// neither is present. It is echoed back in both.
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(SessionHeader)
		if id == "" {
			id = c.Cookies(SessionCookie)
		}
		if id == "" || len(id) > sessionMaxLen {
			id = uuid.NewString()
		}

		c.Locals(sessionKey, id)
		c.Set(SessionHeader, id)
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			Expires:  time.Now().Add(30 * 24 * time.Hour),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.Next()
	}
}

// SessionID returns the token stored by Session.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionKey).(string)
	return id
}
