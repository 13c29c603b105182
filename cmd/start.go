package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"list-manager/core/loader"
	"list-manager/core/logger"
	"list-manager/core/middleware/auth"
	"list-manager/core/middleware/rayid"
	"list-manager/core/storage"
	"list-manager/feature/export"
	"list-manager/feature/lists"
	"list-manager/feature/users"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "list-manager/docs/swagger"
)

// @title List Manager API
// @version 1.0
// @description API for managing per-user book lists.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

var migrateOnStart bool

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the list manager server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		env, err := setup()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := env.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if migrateOnStart {
			if err := migrate(env.db); err != nil {
				logg.Fatal("Migration failed", zap.Error(err))
			}
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		dir := users.NewDirectory(env.db)
		listsFeature := lists.NewFeature(env.db, dir, env.cfg.Lists, logg, env.cfg.Server.RequestTimeout())

		// Exports are optional; the API runs without object storage.
		var store storage.Client
		if client, err := storage.NewClient(env.cfg.Storage); err != nil {
			logg.Warn("Storage client unavailable, exports disabled", zap.Error(err))
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := storage.EnsureBucket(ctx, client, env.cfg.Storage.Bucket, env.cfg.Storage.Region); err != nil {
				logg.Warn("Export bucket unavailable, exports disabled", zap.Error(err))
			} else {
				store = client
			}
			cancel()
		}

		mgr := loader.NewManager()
		mgr.Register(listsFeature)
		mgr.Register(export.NewFeature(store, env.cfg.Storage, listsFeature.Service(), dir, logg))

		// RayID first so every later line can be traced.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			start := time.Now()
			err := c.Next()
			l.Info("Request handled",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("took", time.Since(start)),
			)
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger stays public.
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Use(auth.New(auth.Config{ApiKey: env.cfg.Server.ApiKey, Skip: []string{"/swagger"}}))

		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		go func() {
			logg.Info("Starting server", zap.String("port", env.cfg.Server.Port))
			if err := app.Listen(env.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.ShutdownWithTimeout(env.cfg.Server.RequestTimeout())
	},
}

func init() {
	startCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "Run database migrations before serving")
	RootCmd.AddCommand(startCmd)
}
