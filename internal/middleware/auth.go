// Package middleware contains HTTP middleware functions for the Scorekeeper API.
// Middleware sits between the HTTP server and route handlers; it runs on every
// request that passes through it, making it the right place for cross-cutting
// concerns like authentication.
package middleware

import (
	"context"
	"fmt"
	"strings"

	// fiber is the HTTP framework; fiber.Handler is the function signature for middleware
	"github.com/gofiber/fiber/v2"
	// jwt parses and verifies JSON Web Tokens (JWTs) from the Authorization header
	"github.com/golang-jwt/jwt/v5"

	"github.com/trentd187/scorekeeper/internal/models"
)

// Locals keys set by Auth and read by handlers.
const (
	LocalUserID   = "userID"
	LocalUserRole = "userRole"
)

// Claims defines the data we expect inside a token payload.
// Subject is the identity provider's user ID; the custom claims fill in our users table.
type Claims struct {
	jwt.RegisteredClaims        // Standard JWT fields: Subject (user ID), ExpiresAt, IssuedAt, etc.
	Role                 string `json:"role"`  // "admin" or "user"
	Email                string `json:"email"` // The user's primary email address
	Name                 string `json:"name"`  // Display name
}

// UserSyncer finds or creates the local user for a token. *store.Store implements it.
type UserSyncer interface {
	SyncUser(ctx context.Context, externalID, name, email string, role models.UserRole, roleFromToken bool) (models.User, error)
}

// Auth returns a Fiber middleware handler that:
//  1. Verifies the HS256 JWT from the "Authorization: Bearer <token>" header
//  2. Finds the matching user in our database (or creates one on first visit)
//  3. Stores the user's internal UUID and role in the request context (c.Locals)
//     so downstream handlers can read them without re-parsing the token
func Auth(secret []byte, users UserSyncer) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid authorization header",
			})
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		// ParseWithClaims checks the signature with our key and the standard time claims
		// (exp, nbf, iat) before we trust anything inside the token.
		claims := &Claims{}
		_, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		subject := claims.Subject
		if subject == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "token missing subject",
			})
		}

		// Placeholders keep the NOT NULL/UNIQUE columns valid when a token carries no
		// email or name; they are deterministic per subject.
		email := claims.Email
		if email == "" {
			email = fmt.Sprintf("%s@users.local", subject)
		}
		name := claims.Name
		if name == "" {
			name = "Player"
		}

		user, err := users.SyncUser(c.UserContext(), subject, name, email, roleFromClaim(claims.Role), claims.Role != "")
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load user",
			})
		}

		c.Locals(LocalUserID, user.ID.String())
		c.Locals(LocalUserRole, string(user.Role))

		return c.Next()
	}
}

// roleFromClaim converts the raw role string from the JWT into our typed UserRole.
// Missing or unrecognised roles become "user" (least privileged).
func roleFromClaim(s string) models.UserRole {
	switch s {
	case "admin":
		return models.UserRoleAdmin
	default:
		return models.UserRoleUser
	}
}
