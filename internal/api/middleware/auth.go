package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

var ErrAuthDisabled = errors.New("admin authentication is not configured")

// AuthConfig holds configuration for the auth middleware
type AuthConfig struct {
	// Secret signs admin tokens (HS256). An empty secret rejects every request.
	Secret string
	// Audience, when set, must be present in the token's aud claim
	Audience string
}

// AdminClaims are the claims carried by an admin bearer token.
type AdminClaims struct {
	jwt.RegisteredClaims
}

// ValidateToken parses an HS256 token signed with secret.
func ValidateToken(tokenString, secret, audience string) (*AdminClaims, error) {
	if secret == "" {
		return nil, ErrAuthDisabled
	}

	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	if audience != "" && !claims.VerifyAudience(audience, true) {
		return nil, errors.New("invalid audience")
	}
	return claims, nil
}

// SignToken issues an HS256 admin token. Used by operators and tests.
func SignToken(secret string, claims AdminClaims) (string, error) {
	if secret == "" {
		return "", ErrAuthDisabled
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// AuthMiddleware returns a Fiber middleware for Bearer token authentication
func AuthMiddleware(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		var token string

		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		if token == "" {
			c.Set("WWW-Authenticate", `Bearer realm="recipes-admin"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or invalid Bearer token",
			})
		}

		claims, err := ValidateToken(token, cfg.Secret, cfg.Audience)
		if err != nil {
			c.Set("WWW-Authenticate", `Bearer realm="recipes-admin", error="invalid_token"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Invalid token",
				"details": err.Error(),
			})
		}

		c.Locals("admin", claims)
		return c.Next()
	}
}

// GetAdminClaims retrieves the authenticated admin claims from Fiber context
func GetAdminClaims(c *fiber.Ctx) *AdminClaims {
	claims, ok := c.Locals("admin").(*AdminClaims)
	if !ok {
		return nil
	}
	return claims
}
