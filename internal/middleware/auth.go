package middleware

import (
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

const sessionLocal = "session"

// LoadSession attaches the request's session handle to the context.
func LoadSession(m *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h, err := m.Load(c)
		if err != nil {
			return err
		}
		c.Locals(sessionLocal, h)
		return c.Next()
	}
}

// SessionFrom returns the handle stored by LoadSession.
func SessionFrom(c *fiber.Ctx) *session.Handle {
	h, _ := c.Locals(sessionLocal).(*session.Handle)
	return h
}

// RequireUser rejects requests whose session has no signed-in user.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := SessionFrom(c)
		if h == nil || !h.State().Authenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "Not authenticated",
			})
		}
		return c.Next()
	}
}
