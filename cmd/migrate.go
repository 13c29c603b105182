package cmd

import (
	"fmt"

	"list-manager/core/database"
	"list-manager/feature/lists"
	"list-manager/feature/lists/models"
	"list-manager/feature/users"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// listColumns are checked after migrating so a stale schema fails loudly.
var listColumns = []string{"slug", "creator_key", "list_key", "source", "name", "description", "book_keys", "books_count"}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		defer env.logger.Sync()

		if err := migrate(env.db); err != nil {
			return err
		}

		for _, t := range models.Types() {
			missing, err := database.MissingColumns(env.db, t.Table(), listColumns)
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				return fmt.Errorf("table %s is missing columns %v", t.Table(), missing)
			}
		}
		env.logger.Info("Schema up to date", zap.String("driver", env.db.Dialector.Name()))
		return nil
	},
}

func migrate(db *gorm.DB) error {
	if err := users.AutoMigrate(db); err != nil {
		return err
	}
	return lists.AutoMigrate(db)
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
