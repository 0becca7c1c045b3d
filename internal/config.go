package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/rounded/internal/index"
	"github.com/starford/rounded/internal/sources"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Catalog CatalogConfig     `yaml:"catalog"`
	Index   IndexConfig       `yaml:"index"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CatalogConfig lists the manifests to load and how to fetch them.
//
// Sources keeps its order: the position of a URL is the index of its
// repository. Entries of SourcesFile are appended after Sources.
type CatalogConfig struct {
	Sources          []string      `yaml:"sources"`
	SourcesFile      string        `yaml:"sources_file"`
	WatchSources     bool          `yaml:"watch_sources"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`
	Concurrency      int           `yaml:"concurrency"`
	MaxManifestBytes int64         `yaml:"max_manifest_bytes"`
	UserAgent        string        `yaml:"user_agent"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Sources,
			validation.When(c.SourcesFile == "", validation.Required.Error("at least one source is required unless sources_file is set")),
			validation.Each(validation.By(sourceURL)),
		),
		validation.Field(&c.WatchSources,
			validation.When(c.SourcesFile == "", validation.Empty.Error("requires sources_file")),
		),
		validation.Field(&c.FetchTimeout, validation.Required, validation.Min(100*time.Millisecond)),
		validation.Field(&c.Concurrency, validation.Required, validation.Min(1), validation.Max(32)),
		validation.Field(&c.MaxManifestBytes, validation.Required, validation.Min(int64(1024))),
	)
}

// ResolveSources returns Sources followed by the entries of SourcesFile.
func (c *CatalogConfig) ResolveSources() ([]string, error) {
	out := slices.Clone(c.Sources)
	if c.SourcesFile == "" {
		return out, nil
	}
	extra, err := sources.Load(c.SourcesFile)
	if err != nil {
		return nil, err
	}
	return append(out, extra...), nil
}

// sourceURL accepts absolute http, https and file URLs.
func sourceURL(value any) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", s, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("URL %q has no host", s)
		}
	case "file":
		if u.Path == "" {
			return fmt.Errorf("URL %q has no path", s)
		}
	default:
		return errors.New("must be an absolute http, https or file URL")
	}
	return nil
}

// IndexConfig holds the search index location.
type IndexConfig struct {
	// Path is a SQLite file path, or ":memory:" to keep the index in process.
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	if c.Path == "" {
		c.Path = index.MemoryDSN
	}
	return nil
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Catalog: CatalogConfig{
			FetchTimeout:     15 * time.Second,
			Concurrency:      4,
			MaxManifestBytes: 10 << 20,
			UserAgent:        "rounded/" + Version,
		},
		Index: IndexConfig{
			Path: index.MemoryDSN,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
