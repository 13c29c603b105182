package export

import (
	"errors"
	"io"

	"list-manager/core/logger"
	"list-manager/feature/users"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for list exports.
type Handler struct {
	service *Service
	users   users.Resolver
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, resolver users.Resolver) *Handler {
	return &Handler{service: service, users: resolver}
}

// RegisterRoutes registers the export routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/export")
	group.Post("/:username", h.HandleExport)
	group.Get("/:username", h.HandleListExports)
	group.Get("/:username/latest", h.HandleLatest)
}

// HandleExport snapshots a user's lists to object storage.
// @Summary Export Lists
// @Description Write every list of a user to object storage as JSON.
// @Tags export
// @Produce json
// @Param username path string true "Username"
// @Success 201 {object} Receipt
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /export/{username} [post]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	creatorKey, ok := h.resolve(c, l)
	if !ok {
		return nil
	}

	receipt, err := h.service.Export(c.UserContext(), creatorKey)
	if err != nil {
		l.Error("Export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(receipt)
}

// HandleListExports lists the stored exports of a user.
// @Summary List Exports
// @Tags export
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} Receipt
// @Failure 404 {object} map[string]string "User not found"
// @Router /export/{username} [get]
func (h *Handler) HandleListExports(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	creatorKey, ok := h.resolve(c, l)
	if !ok {
		return nil
	}

	receipts, err := h.service.ListExports(c.UserContext(), creatorKey)
	if err != nil {
		l.Error("Listing exports failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(receipts)
}

// HandleLatest streams the newest export of a user.
// @Summary Latest Export
// @Tags export
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} Document
// @Failure 404 {object} map[string]string "Not found"
// @Router /export/{username}/latest [get]
func (h *Handler) HandleLatest(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	creatorKey, ok := h.resolve(c, l)
	if !ok {
		return nil
	}

	reader, receipt, err := h.service.Latest(c.UserContext(), creatorKey)
	if errors.Is(err, ErrNoExport) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Reading latest export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		l.Error("Reading latest export failed", zap.String("object", receipt.Object), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

// resolve writes the response itself when the user cannot be resolved.
func (h *Handler) resolve(c *fiber.Ctx, l *zap.Logger) (string, bool) {
	creatorKey, ok, err := h.users.ResolveUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		l.Error("Failed to resolve user", zap.Error(err))
		_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		return "", false
	}
	if !ok {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		return "", false
	}
	return creatorKey, true
}
