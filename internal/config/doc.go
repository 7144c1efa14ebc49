// Package config defines the single configuration structure every
// sqlgenctl subcommand loads before wiring its dependencies.
//
// # Configuration Structure
//
//	Config
//	├── Server       - HTTP surface settings (pkg/httpapi)
//	├── Concurrency  - fan-out bounds
//	├── Models       - default + comment-generation model slots
//	├── VectorStore  - default vector-backend coordinates
//	├── Database     - DB adapter root path convention
//	├── LogLevel / LogFormat
//	├── StorePath    - pkg/store's database/sql DSN
//	└── SessionTTL   - pkg/sessioncache warm-entry lifetime hint
//
// # Loading
//
// Load(path) reads an optional YAML file, then environment variables
// prefixed THOTH_ (e.g. THOTH_SERVER_PORT), then fills any field still
// unset with creasty/defaults' struct-tag defaults. Environment variables
// take precedence over the YAML file; the YAML file takes precedence over
// defaults.
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Model Slots
//
// Models.Default backs every agent role that doesn't have a
// workspace-specific override; Models.Comment backs the background
// table/column comment-generation jobs, which this module always pins to
// a dedicated, usually cheaper, model.
package config
