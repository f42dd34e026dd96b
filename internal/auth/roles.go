package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/erp-ticket-service/internal/policy"
	apperrors "github.com/spec-kit/erp-ticket-service/pkg/util/errorutil"
)

// RequirePermission ensures the caller's role is granted action by the policy.
func RequirePermission(p *policy.Policy, action policy.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !p.Can(user.Role, action) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
