package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Export(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	snapshot, err := handler.exports.Export(c.UserContext(), user.ID)
	if err != nil {
		return handler.serviceError(c, err)
	}

	filename := fmt.Sprintf("cyclecast-export-%s.json", snapshot.ExportedAt.Format("2006-01-02"))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.JSON(snapshot)
}

// Import restores an exported snapshot. It only succeeds for users without a
// profile; delete the current one first to replace it.
func (handler *Handler) Import(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	profile, err := handler.exports.Import(c.UserContext(), user.ID, c.Body())
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newProfileView(profile))
}
