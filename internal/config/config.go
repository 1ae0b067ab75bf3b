package config

import "github.com/kelseyhightower/envconfig"

// Database holds Turso database configuration. Leave URL empty to run
// against the in-memory event store.
type Database struct {
	URL       string `envconfig:"TURSO_DATABASE_URL"`
	AuthToken string `envconfig:"TURSO_AUTH_TOKEN"`
}

// Server holds configuration for the HTTP API server.
type Server struct {
	Database        Database
	ListenAddr      string `envconfig:"LISTEN_ADDR" default:":8080"`
	CacheTTLSeconds int    `envconfig:"CACHE_TTL_SECONDS" default:"30"`
	MaxBatchSize    int    `envconfig:"MAX_BATCH_SIZE" default:"1000"`
	DefaultPageSize int    `envconfig:"DEFAULT_PAGE_SIZE" default:"50"`
	MaxPageSize     int    `envconfig:"MAX_PAGE_SIZE" default:"200"`
}

// LoadServer loads server configuration from environment variables.
// All variables carry the AGENTSIGHT_ prefix.
func LoadServer() (*Server, error) {
	var cfg Server
	if err := envconfig.Process("AGENTSIGHT", &cfg.Database); err != nil {
		return nil, err
	}
	if err := envconfig.Process("AGENTSIGHT", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
