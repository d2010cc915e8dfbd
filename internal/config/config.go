package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/emiliopalmerini/abtrack/internal/adapters/analytics"
	"github.com/emiliopalmerini/abtrack/internal/adapters/nats"
	"github.com/emiliopalmerini/abtrack/internal/adapters/otel"
	"github.com/emiliopalmerini/abtrack/internal/util"
)

// Prefix is prepended to every environment variable, e.g. ABTRACK_PORT.
const Prefix = "ABTRACK"

// Database holds libsql configuration. URL and AuthToken enable an embedded
// replica of a remote Turso database stored at Path.
type Database struct {
	Path      string
	URL       string
	AuthToken string `split_words:"true"`
}

type Dispatch struct {
	QueueSize   int           `split_words:"true" default:"256"`
	SendTimeout time.Duration `split_words:"true" default:"10s"`
}

type Config struct {
	Port            int           `default:"8080"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
	RegistryPath    string        `split_words:"true"`
	LogLevel        string        `split_words:"true" default:"info"`
	LogFormat       string        `split_words:"true" default:"console"`

	// Namespace is the key/value namespace for this device's identity.
	Namespace string `default:"device"`

	Database  Database         `envconfig:"DB"`
	Dispatch  Dispatch         `envconfig:"DISPATCH"`
	Analytics analytics.Config `envconfig:"ANALYTICS"`
	NATS      nats.Config      `envconfig:"NATS"`
	OTEL      otel.Config      `envconfig:"OTEL"`
}

// Load reads a .env file when present and then the environment.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv files. Missing files are ignored;
// variables already set in the environment win.
func LoadFiles(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	if cfg.Database.Path == "" {
		path, err := util.DefaultDatabasePath()
		if err != nil {
			return nil, err
		}
		cfg.Database.Path = path
	}

	return &cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Database.URL != "" && c.Database.AuthToken == "" {
		return fmt.Errorf("%s_DB_AUTH_TOKEN is required when %s_DB_URL is set", Prefix, Prefix)
	}
	if c.Namespace == "" {
		return fmt.Errorf("namespace must not be empty")
	}
	return nil
}
