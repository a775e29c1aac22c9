package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
	"github.com/twiced-technology-gmbh/tasklane/internal/view"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("no tasklane directory found (run 'tasklane init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the tasklane configuration.
type Config struct {
	Version   int            `yaml:"version"`
	Name      string         `yaml:"name"`
	Store     StoreConfig    `yaml:"store"`
	Defaults  DefaultsConfig `yaml:"defaults"`
	PageSizes []int          `yaml:"page_sizes"`
	Session   SessionConfig  `yaml:"session"`

	// dir is the absolute path to the data directory (not serialized).
	dir string `yaml:"-"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path,omitempty"`
}

// DefaultsConfig holds default values for new tasks and list views.
type DefaultsConfig struct {
	Priority  string `yaml:"priority,omitempty"`
	Sort      string `yaml:"sort"`
	Direction string `yaml:"direction"`
	PageSize  int    `yaml:"page_size"`
}

// SessionConfig holds session signing settings.
type SessionConfig struct {
	Secret string `yaml:"secret,omitempty"`
	TTL    string `yaml:"ttl"`
}

// Dir returns the absolute path to the data directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the data directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// SQLitePath returns the sqlite file path, resolved against the data directory.
func (c *Config) SQLitePath() string {
	p := c.Store.Path
	if p == "" {
		p = DefaultSQLitePath
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// NewDefault creates a Config with default values.
func NewDefault(name string) *Config {
	return &Config{
		Version: CurrentVersion,
		Name:    name,
		Store:   StoreConfig{Backend: DefaultBackend},
		Defaults: DefaultsConfig{
			Sort:      DefaultSort,
			Direction: DefaultDirection,
			PageSize:  DefaultPageSize,
		},
		PageSizes: slices.Clone(DefaultPageSizes),
		Session:   SessionConfig{TTL: DefaultSessionTTL},
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	switch c.Store.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("%w: unknown store.backend %q (expected file or sqlite)", ErrInvalid, c.Store.Backend)
	}
	if err := task.ValidatePriority(c.Defaults.Priority); err != nil {
		return fmt.Errorf("%w: defaults.priority: %w", ErrInvalid, err)
	}
	if _, err := view.ParseSortKey(c.Defaults.Sort); err != nil {
		return fmt.Errorf("%w: defaults.sort: %w", ErrInvalid, err)
	}
	if _, err := view.ParseDirection(c.Defaults.Direction); err != nil {
		return fmt.Errorf("%w: defaults.direction: %w", ErrInvalid, err)
	}
	if err := c.validatePageSizes(); err != nil {
		return err
	}
	if _, err := time.ParseDuration(c.Session.TTL); err != nil {
		return fmt.Errorf("%w: invalid session.ttl %q: %w", ErrInvalid, c.Session.TTL, err)
	}
	return nil
}

func (c *Config) validatePageSizes() error {
	if len(c.PageSizes) == 0 {
		return fmt.Errorf("%w: at least 1 page size is required", ErrInvalid)
	}
	seen := make(map[int]bool, len(c.PageSizes))
	for _, n := range c.PageSizes {
		if n < 1 {
			return fmt.Errorf("%w: page_sizes must be positive, got %d", ErrInvalid, n)
		}
		if seen[n] {
			return fmt.Errorf("%w: page_sizes contain duplicates", ErrInvalid)
		}
		seen[n] = true
	}
	if !seen[c.Defaults.PageSize] {
		return fmt.Errorf("%w: default page size %d not in page_sizes", ErrInvalid, c.Defaults.PageSize)
	}
	return nil
}

// ValidatePageSize checks that n is one of the configured page sizes.
func (c *Config) ValidatePageSize(n int) error {
	if slices.Contains(c.PageSizes, n) {
		return nil
	}
	return clierr.Newf(clierr.InvalidPageSize, "invalid page size %d", n).
		WithDetails(map[string]any{"page_size": n, "allowed": c.PageSizes})
}

// ViewOptions returns the list view configured by the defaults section.
func (c *Config) ViewOptions() view.Options {
	opts := view.DefaultOptions()
	if k, err := view.ParseSortKey(c.Defaults.Sort); err == nil {
		opts.Sort = k
	}
	if d, err := view.ParseDirection(c.Defaults.Direction); err == nil {
		opts.Direction = d
	}
	if c.Defaults.PageSize > 0 {
		opts.PageSize = c.Defaults.PageSize
	}
	return opts
}

// SessionTTL returns the parsed session lifetime, falling back to the default.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil || d <= 0 {
		return defaultSessionTTL()
	}
	return d
}

// SessionSecret returns the signing secret. The TASKLANE_SECRET environment
// variable takes precedence over session.secret.
func (c *Config) SessionSecret() []byte {
	if s := os.Getenv(SecretEnv); s != "" {
		return []byte(s)
	}
	return []byte(c.Session.Secret)
}

// Init creates a new data directory with default settings and a freshly
// generated session secret.
func Init(dir, name string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg := NewDefault(name)
	cfg.SetDir(absDir)
	secret, err := newSecret()
	if err != nil {
		return nil, err
	}
	cfg.Session.Secret = secret

	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}
	return cfg, nil
}

func newSecret() (string, error) {
	const secretBytes = 32
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given data directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.dir = absDir

	// Migrate old config versions forward before validating.
	oldVersion := cfg.Version
	if err := migrate(&cfg); err != nil {
		return nil, err
	}
	if cfg.Version != oldVersion {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindDir walks upward from startDir looking for a data directory
// containing config.yml. Returns the absolute path to the data directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the data directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.StoreNotFound,
				"no tasklane directory found (run 'tasklane init' to create one)")
		}
		dir = parent
	}
}

// UserDir returns the per-user fallback data directory, ~/.config/tasklane.
func UserDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config directory: %w", err)
	}
	return filepath.Join(base, "tasklane"), nil
}

// LoadOrInit loads the config in dir, creating a default one if none exists.
func LoadOrInit(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if errors.Is(err, ErrNotFound) {
		return Init(dir, DefaultName)
	}
	return cfg, err
}
