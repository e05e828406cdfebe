package middlewares

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"formfield.app/configs/configslog"
)

// UserIDHeader carries the authenticated user id set by the upstream proxy.
const UserIDHeader = "X-User-ID"

const userIDLocal = "userID"

// Identity stores the caller's user id, if the request carries one, in the
// request locals. A malformed header is rejected.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(UserIDHeader)
		if raw == "" {
			return c.Next()
		}
		id, err := strconv.ParseUint(raw, 10, 0)
		if err != nil || id == 0 {
			configslog.SLog.Warnf("Rejected malformed %s header %q", UserIDHeader, raw)
			return fiber.NewError(fiber.StatusBadRequest, "Invalid user identity.")
		}
		c.Locals(userIDLocal, uint(id))
		return c.Next()
	}
}

// RequireUser rejects requests without an identity.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := UserID(c); !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthenticated.")
		}
		return c.Next()
	}
}

// UserID returns the caller's user id.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(userIDLocal).(uint)
	return id, ok && id != 0
}
