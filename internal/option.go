package internal

import "io"

// Version is the build version, overridden with -ldflags at release time.
var Version = "dev"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	output  io.Writer
	asJSON  bool
	sources []string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOutput sets where the fetch command prints the catalog.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.output = w
	}
}

// WithJSON makes the fetch command print JSON instead of text.
func WithJSON(enabled bool) Option {
	return func(a *application) {
		a.asJSON = enabled
	}
}

// WithSources overrides the configured manifest URLs.
func WithSources(urls []string) Option {
	return func(a *application) {
		a.sources = urls
	}
}
