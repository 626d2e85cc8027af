package handler

import (
	"wikiquiz/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
)

// HealthHandler reports liveness of the store and the response cache.
type HealthHandler struct {
	db    *sqlx.DB
	cache domain.Cache
}

func NewHealthHandler(db *sqlx.DB, cache domain.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Health godoc
// @Summary Service health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := fiber.Map{"status": "ok"}

	if err := h.db.PingContext(c.UserContext()); err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(status)
	}
	if h.cache != nil {
		if err := h.cache.Ping(c.UserContext()); err != nil {
			status["status"] = "degraded"
			status["cache"] = err.Error()
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
	}

	return c.JSON(status)
}
