package export

import (
	"list-manager/core/storage"
	"list-manager/feature/users"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the export feature. A nil client disables it.
func NewFeature(client storage.Client, cfg storage.Config, lists ListReader, resolver users.Resolver, logger *zap.Logger) *Feature {
	if client == nil {
		return &Feature{}
	}
	svc := NewService(client, cfg.Bucket, cfg.ExportRetention, lists, logger)
	return &Feature{service: svc, handler: NewHandler(svc, resolver)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "export"
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
