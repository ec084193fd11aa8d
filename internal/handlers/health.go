// Package handlers contains the HTTP route handler functions for the Scorekeeper API.
// Each handler corresponds to one API endpoint and is responsible for reading the
// request, calling the store or the session manager, and writing a response.
//
// Every exported function follows the "handler factory" pattern: it takes its
// dependencies and returns a fiber.Handler, so nothing is kept in globals.
package handlers

import "github.com/gofiber/fiber/v2"

// HealthCheck handles GET /health.
// It returns a simple JSON response indicating the server is alive and reachable.
// No database queries and no authentication, so load balancers and container probes
// can call it freely.
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
