package cmd

import (
	"fmt"
	"os"

	"list-manager/core/config"
	"list-manager/core/database"
	"list-manager/core/logger"
	"list-manager/feature/lists"
	"list-manager/feature/users"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "list-manager",
	Short: "List Manager Service",
	Long: `List Manager keeps per-user book lists and moves books between them.
It serves an HTTP API and offers maintenance commands for users and lists.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding at debug level gives readable CLI errors with ISO8601 timestamps.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

// environment is what every command needs before doing work.
type environment struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

// setup loads configuration, builds the logger and connects to the database.
func setup() (*environment, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &environment{cfg: cfg, logger: l, db: db}, nil
}

func (e *environment) listService() *lists.Service {
	return lists.NewService(lists.NewGormStore(e.db), e.cfg.Lists, e.logger, lists.WithDB(e.db))
}

func (e *environment) directory() *users.Directory {
	return users.NewDirectory(e.db)
}

// resolveUser maps a username to its creator key or fails with a readable error.
func (e *environment) resolveUser(cmd *cobra.Command, username string) (string, error) {
	key, ok, err := e.directory().ResolveUsername(cmd.Context(), username)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("user %q not found", username)
	}
	return key, nil
}
