// Package config provides configuration management for the list manager.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file (via godotenv). Defaults live next to each field in a
// `default:"..."` struct tag.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP server settings (port, API key, request timeout)
//   - Database: MySQL/SQLite connection details
//   - Storage: S3/MinIO credentials and the export bucket
//   - Log: Logging level and format
//   - Lists: Canonical core list names and reconcile unit-of-work mode
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
