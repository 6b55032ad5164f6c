package http

import (
	"net/http"
	"strconv"
	"strings"

	echo "github.com/labstack/echo/v4"

	"github.com/promptdeck/promptdeck/internal/model"
	"github.com/promptdeck/promptdeck/internal/repository"
)

// listBillingEventsHandler serves the webhook audit log from ClickHouse.
func listBillingEventsHandler(audit repository.BillingEventsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := 50
		offset := 0
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		var outcome model.BillingEventOutcome
		if raw := strings.TrimSpace(c.QueryParam("outcome")); raw != "" {
			tmp := model.BillingEventOutcome(raw)
			if tmp.Valid() {
				outcome = tmp
			}
		}
		eventType := strings.TrimSpace(c.QueryParam("type"))

		rows, err := audit.List(c.Request().Context(), eventType, outcome, limit, offset)
		if err != nil {
			c.Logger().Errorf("clickhouse list failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   limit,
			"offset":  offset,
			"count":   len(rows),
			"results": rows,
		})
	}
}
