// Package session manages the browser cookies that carry a session token.
package session

import (
	"strconv"
	"strings"
	"time"

	"libraryhub/internal/config"

	"github.com/gofiber/fiber/v2"
)

// Cookie names
const (
	TokenCookie  = "token"
	UserIDCookie = "userId"
)

// TokenFrom reads the session token from the token cookie,
// falling back to an Authorization: Bearer header
func TokenFrom(c *fiber.Ctx) string {
	if token := c.Cookies(TokenCookie); token != "" {
		return token
	}
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// SetCookies stores the session token and user id on the client
func SetCookies(c *fiber.Ctx, cfg *config.Config, userID uint, token string) {
	maxAge := int(cfg.JWT.TokenTTL.Seconds())

	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: cfg.Cookie.SameSite,
		Domain:   cfg.Cookie.Domain,
	})

	// Readable by the UI
	c.Cookie(&fiber.Cookie{
		Name:     UserIDCookie,
		Value:    strconv.FormatUint(uint64(userID), 10),
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   cfg.Cookie.Secure,
		SameSite: cfg.Cookie.SameSite,
		Domain:   cfg.Cookie.Domain,
	})
}

// ClearCookies expires both session cookies
func ClearCookies(c *fiber.Ctx, cfg *config.Config) {
	for _, name := range []string{TokenCookie, UserIDCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Now().Add(-1 * time.Hour),
			Secure:   cfg.Cookie.Secure,
			HTTPOnly: name == TokenCookie,
			SameSite: cfg.Cookie.SameSite,
			Domain:   cfg.Cookie.Domain,
		})
	}
}
