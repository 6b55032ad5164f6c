package http

import (
	"net/http"
	"strings"
	"unicode/utf8"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/promptdeck/promptdeck/internal/http/middleware"
	"github.com/promptdeck/promptdeck/internal/model"
	"github.com/promptdeck/promptdeck/internal/repository"
	"github.com/promptdeck/promptdeck/internal/service/membership"
	"github.com/promptdeck/promptdeck/internal/util"
)

type promptReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

func (r *promptReq) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Content = strings.TrimSpace(r.Content)
}

func (r *promptReq) valid() bool {
	if r.Name == "" || r.Content == "" {
		return false
	}
	return utf8.RuneCountInString(r.Name) <= 120 &&
		utf8.RuneCountInString(r.Description) <= 500 &&
		utf8.RuneCountInString(r.Content) <= 20000
}

func listPromptsHandler(prompts repository.PromptsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := middleware.UserIDFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		rows, err := prompts.ListByUserID(c.Request().Context(), userID)
		if err != nil {
			log.Errorf("list prompts failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"count":   len(rows),
			"results": rows,
		})
	}
}

// createPromptHandler inserts a prompt, enforcing the free-tier cap.
// Pro users create without limit; free users stop at FreePromptLimit.
func createPromptHandler(prompts repository.PromptsRepository, members *membership.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := middleware.UserIDFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		var req promptReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		req.normalize()
		if !req.valid() {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		}

		if !members.IsPro(c.Request().Context(), userID) {
			n, err := prompts.CountByUserID(c.Request().Context(), userID)
			if err != nil {
				log.Errorf("prompt count failed: %v", err)
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
			}
			if n >= model.FreePromptLimit {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error":       "prompt_limit_reached",
					"description": "free accounts can keep up to 3 prompts; upgrade to pro for unlimited prompts",
				})
			}
		}

		p := model.Prompt{
			ID:          util.NewID(),
			UserID:      userID,
			Name:        req.Name,
			Description: req.Description,
			Content:     req.Content,
		}
		if err := prompts.Insert(c.Request().Context(), p); err != nil {
			log.Errorf("insert prompt failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusCreated, p)
	}
}

func updatePromptHandler(prompts repository.PromptsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := middleware.UserIDFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing id"})
		}

		var req promptReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		req.normalize()
		if !req.valid() {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		}

		updated, err := prompts.Update(c.Request().Context(), userID, model.Prompt{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
			Content:     req.Content,
		})
		if err != nil {
			log.Errorf("update prompt failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		if updated == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "prompt not found"})
		}

		return c.JSON(http.StatusOK, updated)
	}
}

func deletePromptHandler(prompts repository.PromptsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := middleware.UserIDFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing id"})
		}

		deleted, err := prompts.Delete(c.Request().Context(), userID, id)
		if err != nil {
			log.Errorf("delete prompt failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		if !deleted {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "prompt not found"})
		}

		return c.JSON(http.StatusOK, map[string]any{"deleted": true, "id": id})
	}
}
