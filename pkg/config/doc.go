// Package config provides configuration management for llmstxt.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// The file is decoded on top of Default(), so a key left out of the file keeps
// its default value and a boolean that defaults to true can be set to false.
// Unknown keys are rejected.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention LLMSTXT_SECTION_FIELD.
// For example:
//
//   - LLMSTXT_SITE_ROOT overrides site.root
//   - LLMSTXT_EXPORT_POST_TYPES overrides export.post_types (comma separated)
//   - LLMSTXT_SERVER_ADMIN_TOKEN overrides server.admin_token
//   - LLMSTXT_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// ReloadConfig replaces the singleton when the file changes; FileWatcher
// drives it when watch.enabled is set.
//
// # Example Configuration
//
//	site:
//	  name: "Acme"
//	  description: "Widgets"
//	  base_url: "https://acme.test"
//	  root: "/var/www/html"
//
//	export:
//	  post_types: ["post", "page"]
//	  interval: "daily"
//
//	content:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/content.db"
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton uses a read-write
// lock to allow concurrent reads while a reload swaps the instance.
package config
