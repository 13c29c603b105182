package lists

import (
	"time"

	"list-manager/feature/users"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the lists feature over db.
func NewFeature(db *gorm.DB, resolver users.Resolver, cfg Config, logger *zap.Logger, timeout time.Duration) *Feature {
	store := NewGormStore(db)
	svc := NewService(store, cfg, logger, WithDB(db))
	return &Feature{service: svc, handler: NewHandler(svc, resolver, timeout)}
}

// Service returns the list service, shared with the export feature.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "lists"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.service != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
