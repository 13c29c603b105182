package lists

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"list-manager/core/logger"
	"list-manager/core/reconcile"
	"list-manager/feature/lists/models"
	"list-manager/feature/users"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ChangeRequest is the previous and desired membership of a book within one type.
type ChangeRequest struct {
	Type             string   `json:"type" validate:"required,oneof=core created following"`
	PreviousListKeys []string `json:"previousListKeys" validate:"dive,required"`
	DesiredListKeys  []string `json:"desiredListKeys" validate:"dive,required"`
}

// BookMembershipRequest moves one book across lists.
type BookMembershipRequest struct {
	UserID  string          `json:"userId" validate:"required"`
	BookKey string          `json:"bookKey" validate:"required"`
	Changes []ChangeRequest `json:"changes" validate:"required,dive"`
}

// CreateListRequest creates a list in the created partition.
type CreateListRequest struct {
	CreatorKey  string   `json:"creatorKey" validate:"required"`
	Key         string   `json:"key,omitempty" validate:"omitempty,max=191"`
	Name        string   `json:"name" validate:"required,max=255"`
	Description string   `json:"description"`
	BookKeys    []string `json:"bookKeys" validate:"dive,required"`
}

// DetailsData holds the changeable details of a list.
type DetailsData struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description,omitempty"`
	BookKeys    []string `json:"bookKeys,omitempty" validate:"omitempty,dive,required"`
}

// UpdateDetailsRequest changes the details of one list.
type UpdateDetailsRequest struct {
	UserID string      `json:"userId" validate:"required"`
	Key    string      `json:"key" validate:"required"`
	Data   DetailsData `json:"data"`
}

// UpdateBooksRequest adds and removes books on one list.
type UpdateBooksRequest struct {
	UserID     string   `json:"userId" validate:"required"`
	Key        string   `json:"key" validate:"required"`
	AddKeys    []string `json:"addKeys" validate:"dive,required"`
	RemoveKeys []string `json:"removeKeys" validate:"dive,required"`
}

// DeleteListRequest removes one list.
type DeleteListRequest struct {
	UserID string `json:"userId" validate:"required"`
	Key    string `json:"key" validate:"required"`
}

// Handler handles HTTP requests for lists.
type Handler struct {
	service  *Service
	users    users.Resolver
	validate *validator.Validate
	logger   *zap.Logger
	timeout  time.Duration
}

// NewHandler creates a new HTTP handler. A zero timeout disables the per-request deadline.
func NewHandler(service *Service, resolver users.Resolver, timeout time.Duration) *Handler {
	return &Handler{
		service:  service,
		users:    resolver,
		validate: newValidator(),
		logger:   service.logger,
		timeout:  timeout,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names in validation errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// RegisterRoutes registers the list routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/list")
	group.Get("/slugs", h.HandleGetListKeys)
	group.Post("/book", h.HandleUpdateBookMembership)
	group.Post("/create", h.HandleCreateList)
	group.Put("/:type/update/details", h.HandleUpdateDetails)
	group.Put("/:type/update/books", h.HandleUpdateBooks)
	group.Delete("/:type/delete", h.HandleDeleteList)
	group.Get("/:type/all", h.HandleGetLists)
	group.Get("/:type", h.HandleGetList)
}

// HandleGetListKeys returns the compact overview of a user's lists.
// @Summary Get List Keys
// @Description Get key, name and book keys of every list of a user, grouped by type.
// @Tags lists
// @Produce json
// @Param username query string true "Username"
// @Success 200 {object} models.ListKeys
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /list/slugs [get]
func (h *Handler) HandleGetListKeys(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()
	l := logger.WithRayID(h.logger, c)

	creatorKey, ok, err := h.users.ResolveUsername(ctx, c.Query("username"))
	if err != nil {
		return h.fail(c, l, "Failed to resolve user", err)
	}
	if !ok {
		return c.JSON(models.EmptyListKeys())
	}

	keys, err := h.service.GetListKeys(ctx, creatorKey)
	if err != nil {
		return h.fail(c, l, "Failed to load list keys", err)
	}
	return c.JSON(keys)
}

// HandleUpdateBookMembership moves a book across lists and returns the new overview.
// @Summary Update Book Membership
// @Description Reconcile one book's membership across lists of several types.
// @Tags lists
// @Accept json
// @Produce json
// @Param request body BookMembershipRequest true "Membership changes"
// @Success 200 {object} models.ListKeys
// @Failure 400 {object} map[string]any "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /list/book [post]
func (h *Handler) HandleUpdateBookMembership(c *fiber.Ctx) error {
	var req BookMembershipRequest
	if body := h.bind(c, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	ctx, cancel := h.context(c)
	defer cancel()
	l := logger.WithRayID(h.logger, c)

	creatorKey, ok, err := h.users.ResolveKey(ctx, req.UserID)
	if err != nil {
		return h.fail(c, l, "Failed to resolve user", err)
	}
	if !ok {
		return c.JSON(models.EmptyListKeys())
	}

	changes := make([]reconcile.Change, 0, len(req.Changes))
	for _, ch := range req.Changes {
		changes = append(changes, reconcile.Change{
			Partition: ch.Type,
			Previous:  ch.PreviousListKeys,
			Desired:   ch.DesiredListKeys,
		})
	}

	changed, err := h.service.BulkUpdateMembership(ctx, creatorKey, req.BookKey, changes)
	if err != nil {
		return h.fail(c, l, "Book membership update failed", err)
	}
	l.Debug("Book membership updated",
		zap.String("book_key", req.BookKey),
		zap.Bool("changed", changed))

	keys, err := h.service.GetListKeys(ctx, creatorKey)
	if err != nil {
		return h.fail(c, l, "Failed to load list keys", err)
	}
	return c.JSON(keys)
}

// HandleCreateList creates a list.
// @Summary Create List
// @Tags lists
// @Accept json
// @Produce json
// @Param request body CreateListRequest true "New list"
// @Success 200 {array} models.ListRecord
// @Failure 400 {object} map[string]any "Bad Request"
// @Failure 409 {object} map[string]string "Conflict"
// @Router /list/create [post]
func (h *Handler) HandleCreateList(c *fiber.Ctx) error {
	var req CreateListRequest
	if body := h.bind(c, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	ctx, cancel := h.context(c)
	defer cancel()
	l := logger.WithRayID(h.logger, c)

	creatorKey, ok, err := h.users.ResolveKey(ctx, req.CreatorKey)
	if err != nil {
		return h.fail(c, l, "Failed to resolve user", err)
	}
	if !ok {
		return c.JSON([]models.ListRecord{})
	}

	records, err := h.service.CreateList(ctx, creatorKey, CreateInput{
		Key:         req.Key,
		Name:        req.Name,
		Description: req.Description,
		BookKeys:    req.BookKeys,
	})
	if err != nil {
		return h.fail(c, l, "Failed to create list", err)
	}
	return c.JSON(records)
}

// HandleUpdateDetails updates name, description or book keys of a list.
// @Summary Update List Details
// @Description Core lists only accept book keys; following lists are read only.
// @Tags lists
// @Accept json
// @Produce json
// @Param type path string true "List type" Enums(core, created, following)
// @Param request body UpdateDetailsRequest true "Details"
// @Success 200 {array} models.ListRecord
// @Failure 400 {object} map[string]any "Bad Request"
// @Router /list/{type}/update/details [put]
func (h *Handler) HandleUpdateDetails(c *fiber.Ctx) error {
	t, err := models.ParseType(c.Params("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	var req UpdateDetailsRequest
	if body := h.bind(c, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	ctx, cancel := h.context(c)
	defer cancel()
	l := logger.WithRayID(h.logger, c)

	creatorKey, ok, err := h.users.ResolveKey(ctx, req.UserID)
	if err != nil {
		return h.fail(c, l, "Failed to resolve user", err)
	}
	if !ok {
		return c.JSON([]models.ListRecord{})
	}

	records, err := h.service.UpdateListDetails(ctx, creatorKey, t, req.Key, DetailsPatch{
		Name:        req.Data.Name,
		Description: req.Data.Description,
		BookKeys:    req.Data.BookKeys,
	})
	if err != nil {
		return h.fail(c, l, "Failed to update list details", err)
	}
	return c.JSON(records)
}

// HandleUpdateBooks adds and removes books on a list.
// @Summary Update List Books
// @Tags lists
// @Accept json
// @Produce json
// @Param type path string true "List type" Enums(core, created, following)
// @Param request body UpdateBooksRequest true "Book keys"
// @Success 200 {array} models.ListRecord
// @Failure 400 {object} map[string]any "Bad Request"
// @Router /list/{type}/update/books [put]
func (h *Handler) HandleUpdateBooks(c *fiber.Ctx) error {
	t, err := models.ParseType(c.Params("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	var req UpdateBooksRequest
	if body := h.bind(c, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	ctx, cancel := h.context(c)
	defer cancel()
	l := logger.WithRayID(h.logger, c)

	creatorKey, ok, err := h.users.ResolveKey(ctx, req.UserID)
	if err != nil {
		return h.fail(c, l, "Failed to resolve user", err)
	}
	if !ok {
		return c.JSON([]models.ListRecord{})
	}

	records, err := h.service.UpdateListBooks(ctx, creatorKey, t, req.Key, req.AddKeys, req.RemoveKeys)
	if err != nil {
		return h.fail(c, l, "Failed to update list books", err)
	}
	return c.JSON(records)
}

// HandleDeleteList deletes a created list.
// @Summary Delete List
// @Tags lists
// @Accept json
// @Produce json
// @Param type path string true "List type" Enums(core, created, following)
// @Param request body DeleteListRequest true "List"
// @Success 200 {array} models.DeletedKey
// @Failure 400 {object} map[string]any "Bad Request"
// @Router /list/{type}/delete [delete]
func (h *Handler) HandleDeleteList(c *fiber.Ctx) error {
	t, err := models.ParseType(c.Params("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	var req DeleteListRequest
	if body := h.bind(c, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	ctx, cancel := h.context(c)
	defer cancel()
	l := logger.WithRayID(h.logger, c)

	creatorKey, ok, err := h.users.ResolveKey(ctx, req.UserID)
	if err != nil {
		return h.fail(c, l, "Failed to resolve user", err)
	}
	if !ok {
		return c.JSON([]models.DeletedKey{})
	}

	deleted, err := h.service.DeleteList(ctx, creatorKey, t, req.Key)
	if err != nil {
		return h.fail(c, l, "Failed to delete list", err)
	}
	return c.JSON(deleted)
}

// HandleGetLists returns every list of one type.
// @Summary Get Lists
// @Tags lists
// @Produce json
// @Param type path string true "List type" Enums(core, created, following)
// @Param username query string true "Username"
// @Success 200 {array} models.ListRecord
// @Router /list/{type}/all [get]
func (h *Handler) HandleGetLists(c *fiber.Ctx) error {
	t, err := models.ParseType(c.Params("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	ctx, cancel := h.context(c)
	defer cancel()
	l := logger.WithRayID(h.logger, c)

	creatorKey, ok, err := h.users.ResolveUsername(ctx, c.Query("username"))
	if err != nil {
		return h.fail(c, l, "Failed to resolve user", err)
	}
	if !ok {
		return c.JSON([]models.ListRecord{})
	}

	records, err := h.service.GetLists(ctx, creatorKey, t)
	if err != nil {
		return h.fail(c, l, "Failed to load lists", err)
	}
	return c.JSON(records)
}

// HandleGetList returns one list.
// @Summary Get List
// @Tags lists
// @Produce json
// @Param type path string true "List type" Enums(core, created, following)
// @Param username query string true "Username"
// @Param key query string true "List key"
// @Success 200 {object} models.ListRecord
// @Router /list/{type} [get]
func (h *Handler) HandleGetList(c *fiber.Ctx) error {
	t, err := models.ParseType(c.Params("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	key := c.Query("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "key is required"})
	}
	ctx, cancel := h.context(c)
	defer cancel()
	l := logger.WithRayID(h.logger, c)

	creatorKey, ok, err := h.users.ResolveUsername(ctx, c.Query("username"))
	if err != nil {
		return h.fail(c, l, "Failed to resolve user", err)
	}
	if !ok {
		return c.JSON(fiber.Map{})
	}

	record, err := h.service.GetList(ctx, creatorKey, t, key)
	if err != nil {
		return h.fail(c, l, "Failed to load list", err)
	}
	if record == nil {
		return c.JSON(fiber.Map{})
	}
	return c.JSON(record)
}

func (h *Handler) context(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), h.timeout)
}

// bind parses and validates the body. It returns the 400 body on failure.
func (h *Handler) bind(c *fiber.Ctx, out any) fiber.Map {
	if err := c.BodyParser(out); err != nil {
		return fiber.Map{"error": "invalid request body"}
	}
	if err := h.validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fiber.Map{"error": err.Error()}
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Namespace()] = fe.Tag()
		}
		return fiber.Map{"error": "validation failed", "fields": fields}
	}
	return nil
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalid):
		status = fiber.StatusBadRequest
	case errors.Is(err, ErrDuplicate):
		status = fiber.StatusConflict
	case errors.Is(err, ErrListNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, ErrImmutable):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		status = fiber.StatusGatewayTimeout
	}

	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Debug(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
