package grouper

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/grouper/internal/logging"
	"github.com/arloliu/grouper/source"
	"github.com/arloliu/grouper/strategy"
)

// Roster source names accepted in RosterConfig.Source.
const (
	SourceStatic = "static"
	SourceFile   = "file"
	SourceSQLite = "sqlite"
	SourceNATS   = "nats"
	SourceNotion = "notion"
)

// EnvNotionSecret overrides RosterConfig.Notion.SecretKey when set.
const EnvNotionSecret = "GROUPER_NOTION_SECRET" //nolint:gosec // environment variable name, not a credential

// HTTPConfig controls the HTTP server.
type HTTPConfig struct {
	// Listen is the TCP address to serve on (e.g., ":8080").
	Listen string `yaml:"listen"`

	// ReadTimeout bounds reading a full request.
	ReadTimeout time.Duration `yaml:"readTimeout"`

	// WriteTimeout bounds writing a response.
	WriteTimeout time.Duration `yaml:"writeTimeout"`

	// ShutdownTimeout is how long in-flight requests get to finish on shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// SessionTTL is how long an idle UI session keeps its group count and last groups.
	SessionTTL time.Duration `yaml:"sessionTtl"`
}

// SQLiteConfig configures the sqlite roster source.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// Table is the roster table. Default: Users
	Table string `yaml:"table"`
}

// NATSConfig configures the nats roster source.
type NATSConfig struct {
	// URL is the NATS server URL.
	URL string `yaml:"url"`

	// Bucket is the JetStream KV bucket holding the roster.
	Bucket string `yaml:"bucket"`
}

// NotionConfig configures the notion roster source.
type NotionConfig struct {
	// BaseURL is the Notion API root.
	BaseURL string `yaml:"baseUrl"`

	// DatabaseID identifies the roster database.
	DatabaseID string `yaml:"databaseId"`

	// SecretKey is the integration token. Prefer the GROUPER_NOTION_SECRET
	// environment variable over storing it in the config file.
	SecretKey string `yaml:"secretKey"`

	// Version is the Notion-Version header value.
	Version string `yaml:"version"`

	// Timeout bounds each API request.
	Timeout time.Duration `yaml:"timeout"`
}

// RosterConfig selects and configures the roster source.
type RosterConfig struct {
	// Source is one of static, file, sqlite, nats or notion.
	Source string `yaml:"source"`

	// File is the roster file path for the file source.
	File string `yaml:"file"`

	// SQLite configures the sqlite source.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// NATS configures the nats source.
	NATS NATSConfig `yaml:"nats"`

	// Notion configures the notion source.
	Notion NotionConfig `yaml:"notion"`

	// CacheTTL reuses a loaded roster for this long (0 disables caching).
	// Refresh always bypasses the cache.
	CacheTTL time.Duration `yaml:"cacheTtl"`

	// LoadTimeout bounds a single roster load, retries included.
	LoadTimeout time.Duration `yaml:"loadTimeout"`

	// Retry retries failed loads with jittered backoff.
	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig controls roster load retries.
type RetryConfig struct {
	// Attempts is the total number of provider calls per load (1 disables retries).
	Attempts int `yaml:"attempts"`

	// BaseDelay is the first delay between attempts.
	BaseDelay time.Duration `yaml:"baseDelay"`

	// MaxDelay caps a single delay.
	MaxDelay time.Duration `yaml:"maxDelay"`
}

// GroupingConfig controls how groups are formed.
type GroupingConfig struct {
	// DefaultGroupCount is used when a request carries no group count.
	DefaultGroupCount int `yaml:"defaultGroupCount"`

	// Strategy is the default strategy: balanced, round-robin or consistent-hash.
	Strategy string `yaml:"strategy"`

	// HashSeed seeds the consistent-hash strategy.
	HashSeed uint64 `yaml:"hashSeed"`

	// VirtualNodes is the number of ring points per group for consistent-hash.
	VirtualNodes int `yaml:"virtualNodes"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	// Enabled exposes /metrics and records metrics.
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// Config is the configuration for the Service and the grouper command.
//
// All duration fields accept standard Go duration strings like "30s", "5m", "1h".
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Roster   RosterConfig   `yaml:"roster"`
	Grouping GroupingConfig `yaml:"grouping"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// The default roster source is the built-in static roster, so the service
// runs without any external dependency.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Listen:          ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			SessionTTL:      30 * time.Minute,
		},
		Roster: RosterConfig{
			Source: SourceStatic,
			SQLite: SQLiteConfig{
				Path:  "grouper.db",
				Table: source.DefaultTable,
			},
			NATS: NATSConfig{
				URL:    nats.DefaultURL,
				Bucket: "grouper-roster",
			},
			Notion: NotionConfig{
				BaseURL: source.DefaultNotionBaseURL,
				Version: source.DefaultNotionVersion,
				Timeout: source.DefaultNotionTimeout,
			},
			CacheTTL:    0, // No caching: every load reaches the source
			LoadTimeout: 30 * time.Second,
			Retry: RetryConfig{
				Attempts:  source.DefaultRetryAttempts,
				BaseDelay: source.DefaultRetryBaseDelay,
				MaxDelay:  source.DefaultRetryMaxDelay,
			},
		},
		Grouping: GroupingConfig{
			DefaultGroupCount: 2,
			Strategy:          strategy.NameBalanced,
			HashSeed:          0,
			VirtualNodes:      150,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "grouper",
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.HTTP.Listen == "" {
		cfg.HTTP.Listen = defaults.HTTP.Listen
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = defaults.HTTP.ReadTimeout
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = defaults.HTTP.WriteTimeout
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = defaults.HTTP.ShutdownTimeout
	}
	if cfg.HTTP.SessionTTL == 0 {
		cfg.HTTP.SessionTTL = defaults.HTTP.SessionTTL
	}
	if cfg.Roster.Source == "" {
		cfg.Roster.Source = defaults.Roster.Source
	}
	if cfg.Roster.SQLite.Path == "" {
		cfg.Roster.SQLite.Path = defaults.Roster.SQLite.Path
	}
	if cfg.Roster.SQLite.Table == "" {
		cfg.Roster.SQLite.Table = defaults.Roster.SQLite.Table
	}
	if cfg.Roster.NATS.URL == "" {
		cfg.Roster.NATS.URL = defaults.Roster.NATS.URL
	}
	if cfg.Roster.NATS.Bucket == "" {
		cfg.Roster.NATS.Bucket = defaults.Roster.NATS.Bucket
	}
	if cfg.Roster.Notion.BaseURL == "" {
		cfg.Roster.Notion.BaseURL = defaults.Roster.Notion.BaseURL
	}
	if cfg.Roster.Notion.Version == "" {
		cfg.Roster.Notion.Version = defaults.Roster.Notion.Version
	}
	if cfg.Roster.Notion.Timeout == 0 {
		cfg.Roster.Notion.Timeout = defaults.Roster.Notion.Timeout
	}
	if cfg.Roster.LoadTimeout == 0 {
		cfg.Roster.LoadTimeout = defaults.Roster.LoadTimeout
	}
	if cfg.Roster.Retry.Attempts == 0 {
		cfg.Roster.Retry.Attempts = defaults.Roster.Retry.Attempts
	}
	if cfg.Roster.Retry.BaseDelay == 0 {
		cfg.Roster.Retry.BaseDelay = defaults.Roster.Retry.BaseDelay
	}
	if cfg.Roster.Retry.MaxDelay == 0 {
		cfg.Roster.Retry.MaxDelay = defaults.Roster.Retry.MaxDelay
	}
	// Note: CacheTTL of 0 is valid (no caching), so we don't apply default
	if cfg.Grouping.DefaultGroupCount == 0 {
		cfg.Grouping.DefaultGroupCount = defaults.Grouping.DefaultGroupCount
	}
	if cfg.Grouping.Strategy == "" {
		cfg.Grouping.Strategy = defaults.Grouping.Strategy
	}
	if cfg.Grouping.VirtualNodes == 0 {
		cfg.Grouping.VirtualNodes = defaults.Grouping.VirtualNodes
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = defaults.Metrics.Namespace
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - Roster.Source is a known source with its required settings present
//   - Grouping.Strategy is a known strategy
//   - Grouping.DefaultGroupCount >= 1 and Grouping.VirtualNodes >= 1
//   - HTTP timeouts and SessionTTL > 0, Roster.LoadTimeout > 0, CacheTTL >= 0
//   - Roster.Retry.Attempts >= 1 and 0 < BaseDelay <= MaxDelay
//   - Log.Level and Log.Format are recognized
//
// Returns:
//   - error: Validation error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	var errs []error

	switch cfg.Roster.Source {
	case SourceStatic:
	case SourceFile:
		if cfg.Roster.File == "" {
			errs = append(errs, errors.New("roster.file is required for the file source"))
		}
	case SourceSQLite:
		if cfg.Roster.SQLite.Path == "" {
			errs = append(errs, errors.New("roster.sqlite.path is required for the sqlite source"))
		}
	case SourceNATS:
		if cfg.Roster.NATS.URL == "" || cfg.Roster.NATS.Bucket == "" {
			errs = append(errs, errors.New("roster.nats.url and roster.nats.bucket are required for the nats source"))
		}
	case SourceNotion:
		if cfg.Roster.Notion.DatabaseID == "" {
			errs = append(errs, errors.New("roster.notion.databaseId is required for the notion source"))
		}
		if cfg.Roster.Notion.SecretKey == "" {
			errs = append(errs, fmt.Errorf("roster.notion.secretKey (or %s) is required for the notion source", EnvNotionSecret))
		}
	default:
		errs = append(errs, fmt.Errorf("roster.source %q is not one of static, file, sqlite, nats, notion", cfg.Roster.Source))
	}

	if !IsKnownStrategy(cfg.Grouping.Strategy) {
		errs = append(errs, fmt.Errorf("grouping.strategy %q is not one of %v", cfg.Grouping.Strategy, StrategyNames()))
	}
	if cfg.Grouping.DefaultGroupCount < 1 {
		errs = append(errs, fmt.Errorf("grouping.defaultGroupCount must be >= 1, got %d", cfg.Grouping.DefaultGroupCount))
	}
	if cfg.Grouping.VirtualNodes < 1 {
		errs = append(errs, fmt.Errorf("grouping.virtualNodes must be >= 1, got %d", cfg.Grouping.VirtualNodes))
	}

	if cfg.HTTP.ReadTimeout <= 0 || cfg.HTTP.WriteTimeout <= 0 || cfg.HTTP.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("http timeouts must be > 0"))
	}
	if cfg.HTTP.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("http.sessionTtl must be > 0, got %v", cfg.HTTP.SessionTTL))
	}
	if cfg.Roster.LoadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("roster.loadTimeout must be > 0, got %v", cfg.Roster.LoadTimeout))
	}
	if cfg.Roster.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("roster.cacheTtl must be >= 0, got %v", cfg.Roster.CacheTTL))
	}
	if cfg.Roster.Retry.Attempts < 1 {
		errs = append(errs, fmt.Errorf("roster.retry.attempts must be >= 1, got %d", cfg.Roster.Retry.Attempts))
	}
	if cfg.Roster.Retry.BaseDelay <= 0 || cfg.Roster.Retry.MaxDelay < cfg.Roster.Retry.BaseDelay {
		errs = append(errs, fmt.Errorf("roster.retry delays must satisfy 0 < baseDelay <= maxDelay, got %v and %v",
			cfg.Roster.Retry.BaseDelay, cfg.Roster.Retry.MaxDelay))
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if cfg.Log.Format != logging.FormatText && cfg.Log.Format != logging.FormatJSON {
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", cfg.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}

// ValidateWithWarnings logs warnings for values that are valid but unusual.
//
// This is called after Validate() in NewService() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.Roster.CacheTTL > 0 && cfg.Roster.Source == SourceStatic {
		logger.Warn(
			"roster cache has no effect on the static source",
			"cacheTtl", cfg.Roster.CacheTTL,
		)
	}

	if cfg.Grouping.DefaultGroupCount > 50 {
		logger.Warn(
			"default group count is unusually large; most groups will be clamped to the roster size",
			"defaultGroupCount", cfg.Grouping.DefaultGroupCount,
		)
	}

	if cfg.HTTP.SessionTTL < time.Minute {
		logger.Warn(
			"session TTL is very short, UI state will be lost between clicks",
			"sessionTtl", cfg.HTTP.SessionTTL,
			"recommended", "30m",
		)
	}

	if cfg.Roster.Source == SourceNotion && cfg.Roster.CacheTTL == 0 {
		logger.Warn(
			"notion source without cache; every refresh queries the Notion API",
			"recommended", "roster.cacheTtl: 5m",
		)
	}
}

// LoadConfig reads a YAML configuration file.
//
// Values missing from the file keep their DefaultConfig values. Unknown keys
// are rejected. The GROUPER_NOTION_SECRET environment variable overrides
// roster.notion.secretKey. The result is not validated.
//
// Parameters:
//   - path: Config file path; empty means defaults only
//
// Returns:
//   - Config: Loaded configuration
//   - error: Read or decode error
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}

		if err := decodeConfig(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if secret := os.Getenv(EnvNotionSecret); secret != "" {
		cfg.Roster.Notion.SecretKey = secret
	}

	SetDefaults(&cfg)

	return cfg, nil
}

func decodeConfig(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// TestConfig returns a configuration suited to tests.
//
// It uses the static roster, short timeouts, no load retries and disables
// metrics so tests never touch the global Prometheus registry.
//
// Returns:
//   - Config: Configuration for tests
//
// Example:
//
//	cfg := grouper.TestConfig()
//	svc, err := grouper.NewService(&cfg, source.NewStatic(people))
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.HTTP.Listen = "127.0.0.1:0"
	cfg.HTTP.ShutdownTimeout = 2 * time.Second
	cfg.Roster.LoadTimeout = 2 * time.Second
	cfg.Roster.Retry.Attempts = 1
	cfg.Metrics.Enabled = false
	cfg.Log.Level = "debug"

	return cfg
}
