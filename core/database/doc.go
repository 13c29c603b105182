// Package database handles database connections and schema inspection.
//
// It wraps GORM to configure MySQL (production) or SQLite (local runs and tests)
// connections from the application's configuration. Driver errors are translated,
// so a primary-key or unique-index violation is reported as gorm.ErrDuplicatedKey
// regardless of the driver in use.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns are used by the migrate command to verify that the
// list partition tables carry every column the store expects.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "core_lists", []string{"slug", "book_keys"})
package database
