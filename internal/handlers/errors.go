package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trentd187/scorekeeper/internal/middleware"
	"github.com/trentd187/scorekeeper/internal/models"
	"github.com/trentd187/scorekeeper/internal/scoring"
	"github.com/trentd187/scorekeeper/internal/session"
	"github.com/trentd187/scorekeeper/internal/store"
)

// respondError maps a domain error to a status code and an {"error": ...} body.
// Unknown errors become a 500 and are passed to fiber's error handler for logging.
func respondError(c *fiber.Ctx, err error) error {
	var status int
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, store.ErrNotFound), errors.Is(err, scoring.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, scoring.ErrInvalidTransition):
		status = fiber.StatusConflict
	case errors.Is(err, scoring.ErrInvalidRoster):
		status = fiber.StatusBadRequest
	default:
		return err
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not authorized"})
}

// currentUser reads the caller's internal UUID and role, set by middleware.Auth.
func currentUser(c *fiber.Ctx) (uuid.UUID, string, error) {
	userIDStr, _ := c.Locals(middleware.LocalUserID).(string)
	userRole, _ := c.Locals(middleware.LocalUserRole).(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, "", err
	}
	return userID, userRole, nil
}

func isAdmin(role string) bool {
	return role == string(models.UserRoleAdmin)
}

// canManage reports whether the caller may change something owned by ownerID.
// Admins can manage everything; everyone else only what they own.
func canManage(ownerID, userID uuid.UUID, role string) bool {
	return isAdmin(role) || ownerID == userID
}

// pathID parses the :id route parameter.
func pathID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}
