package http

import "github.com/gofiber/fiber/v2"

// userID resolves the acting user: explicit userId query parameter first,
// then the configured demo user.
func userID(c *fiber.Ctx, deps *Dependencies) string {
	if id := c.Query("userId"); id != "" {
		return id
	}
	return deps.DemoUserID
}
