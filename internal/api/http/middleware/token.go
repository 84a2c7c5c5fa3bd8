package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CookieName is the session cookie carrying the token.
const CookieName = "auth-token"

// TokenFromRequest returns the session token from the cookie or, failing
// that, from an Authorization bearer header.
func TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(CookieName); token != "" {
		return token
	}

	header := c.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	return ""
}
