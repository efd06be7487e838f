package middleware

import (
	"strings"

	"lucky-draw-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// RequireTenant extracts the tenant partition key from the X-Tenant-Id header.
// The header is mandatory on every tenant-scoped route; there is no implicit
// default tenant.
func RequireTenant(c *fiber.Ctx) error {
	tenantID := strings.TrimSpace(c.Get("X-Tenant-Id"))
	if tenantID == "" {
		return utils.Error(c, "X-Tenant-Id header is required", fiber.StatusBadRequest)
	}

	c.Locals("tenant_id", tenantID)
	return c.Next()
}

func GetTenantID(c *fiber.Ctx) string {
	tenantID, _ := c.Locals("tenant_id").(string)
	return tenantID
}
