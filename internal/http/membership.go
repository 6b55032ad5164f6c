package http

import (
	"net/http"

	echo "github.com/labstack/echo/v4"

	"github.com/promptdeck/promptdeck/internal/http/middleware"
	"github.com/promptdeck/promptdeck/internal/model"
	"github.com/promptdeck/promptdeck/internal/service/membership"
)

// membershipHandler reports the caller's tier. This path never errors: any
// problem underneath reads as free.
func membershipHandler(members *membership.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := middleware.UserIDFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		m := members.Get(c.Request().Context(), userID)
		return c.JSON(http.StatusOK, map[string]any{
			"membership": m.String(),
			"is_pro":     m == model.MembershipPro,
		})
	}
}
