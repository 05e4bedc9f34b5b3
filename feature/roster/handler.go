package roster

import (
	"errors"

	"armory-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for roster reconciliation.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the roster routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/users")
	group.Post("/:id/reconcile", h.HandleReconcile)
}

// HandleReconcile triggers a reconciliation run for one user.
// @Summary Reconcile User Roster
// @Description Sync the stored characters and guilds for a user with the remote profile API.
// @Tags roster
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} roster.Result "Reconciliation Result"
// @Failure 401 {object} map[string]string "Armory rejected the stored token"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 502 {object} map[string]string "Armory unavailable"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /users/{id}/reconcile [post]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
		})
	}

	l := logger.WithRayID(h.service.logger, c)

	result, err := h.service.Reconcile(c.Context(), uint(id))
	switch {
	case errors.Is(err, ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "user not found",
		})
	case errors.Is(err, ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "armory token rejected, re-authentication required",
		})
	case errors.Is(err, ErrUpstreamUnavailable):
		l.Error("Roster fetch failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "armory unavailable",
		})
	case err != nil:
		l.Error("Reconciliation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}
