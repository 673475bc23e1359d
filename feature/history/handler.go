package history

import (
	"errors"

	"pcadmin/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the run journal over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the history routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/runs")
	group.Get("/", h.HandleListRuns)
	group.Get("/:id", h.HandleGetRun)
}

// HandleListRuns lists the latest runs.
// Query parameters: kind (content or dns), limit.
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.service.logger, c)

	kind := c.Query("kind")
	if kind != "" && kind != KindContent && kind != KindDNS {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "kind must be content or dns"})
	}

	runs, err := h.service.ListRuns(c.Context(), kind, c.QueryInt("limit", defaultLimit))
	if err != nil {
		return h.fail(c, l, err)
	}

	return c.JSON(fiber.Map{
		"runs":  runs,
		"count": len(runs),
	})
}

// HandleGetRun returns one run with its events.
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.service.logger, c)

	run, err := h.service.GetRun(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.JSON(run)
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, err error) error {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrJournalDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("Run journal query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
