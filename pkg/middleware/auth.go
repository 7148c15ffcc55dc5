// Package middleware holds fiber middleware shared by the HTTP routes.
package middleware

import (
	"errors"
	"strings"

	"github.com/amirasaad/finshare/pkg/config"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JwtProtected verifies the Bearer token with the configured HS256 secret and
// stores the parsed *jwt.Token in c.Locals("user").
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	secret := ""
	if cfg != nil {
		secret = cfg.Secret
	}
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{Key: []byte(secret)},
		ErrorHandler: jwtError,
	})
}

const problemJSON = "application/problem+json"

func jwtError(c *fiber.Ctx, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) ||
		strings.EqualFold(err.Error(), jwtware.ErrJWTMissingOrMalformed.Error()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"type":     "about:blank",
			"title":    "Missing or malformed JWT",
			"status":   fiber.StatusBadRequest,
			"detail":   err.Error(),
			"instance": c.OriginalURL(),
		}, problemJSON)
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"type":     "about:blank",
		"title":    "Invalid or expired JWT",
		"status":   fiber.StatusUnauthorized,
		"detail":   err.Error(),
		"instance": c.OriginalURL(),
	}, problemJSON)
}
