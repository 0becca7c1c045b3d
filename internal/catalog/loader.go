package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/starford/rounded/internal/apperr"
	"github.com/starford/rounded/internal/fetch"
	"github.com/starford/rounded/internal/manifest"
	"github.com/starford/rounded/internal/models"
)

const defaultConcurrency = 4

// Event kinds passed to an EventCallback.
const (
	EventLoaded = "loaded"
	EventFailed = "failed"
)

// Event reports one filled slot.
type Event struct {
	Kind       string
	Generation string
	Index      int
	URL        string
	Repository *models.Repository
	Failure    *Failure
}

// EventCallback is called once per filled slot, after the slot is visible in
// the catalog. It may be called from several goroutines at once.
type EventCallback func(Event)

// LoadError describes why a manifest could not be turned into a repository.
type LoadError struct {
	URL  string
	Kind string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func newLoadError(url string, err error) *LoadError {
	kind := apperr.ErrNetwork
	switch {
	case errors.Is(err, apperr.ErrParse):
		kind = apperr.ErrParse
	case errors.Is(err, apperr.ErrValidation):
		kind = apperr.ErrValidation
	}
	if !errors.Is(err, kind) {
		err = fmt.Errorf("%w: %v", kind, err)
	}
	return &LoadError{URL: url, Kind: kind.Error(), Err: err}
}

// Loader fetches manifests and fills catalogs.
type Loader struct {
	fetcher     fetch.Fetcher
	logger      *slog.Logger
	concurrency int
	onEvent     EventCallback
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithConcurrency limits the number of manifests fetched at once.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLogger sets the loader logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithEventCallback registers cb for every filled slot.
func WithEventCallback(cb EventCallback) LoaderOption {
	return func(l *Loader) { l.onEvent = cb }
}

// NewLoader creates a Loader reading manifests through f.
func NewLoader(f fetch.Fetcher, opts ...LoaderOption) *Loader {
	l := &Loader{
		fetcher:     f,
		logger:      slog.Default(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds a catalog for urls and waits for every slot.
// The result always has len(urls) slots. If ctx is cancelled first, the
// partial catalog is returned together with ctx.Err().
func (l *Loader) Load(ctx context.Context, urls []string) (*Catalog, error) {
	cat := New(urls)
	return cat, l.Fill(ctx, cat)
}

// Fill loads every slot of cat. Fetches run concurrently; each result is
// written to the slot of its URL regardless of completion order. Once ctx is
// done the catalog is sealed and late results are discarded.
func (l *Loader) Fill(ctx context.Context, cat *Catalog) error {
	stop := context.AfterFunc(ctx, cat.seal)
	defer stop()

	var g errgroup.Group
	g.SetLimit(l.concurrency)

	for i, url := range cat.urls {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			l.loadSlot(ctx, cat, i, url)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		cat.seal()
		l.logger.Warn("catalog load abandoned",
			slog.String("catalog_id", cat.ID()),
			slog.Int("loaded", cat.Loaded()),
			slog.Int("total", cat.Len()))
		return err
	}

	l.logger.Info("catalog loaded",
		slog.String("catalog_id", cat.ID()),
		slog.Int("repositories", cat.Len()),
		slog.Int("failures", len(cat.Failures())))
	return nil
}

func (l *Loader) loadSlot(ctx context.Context, cat *Catalog, index int, url string) {
	repo, loadErr := l.loadOne(ctx, url)
	if loadErr != nil {
		if ctx.Err() != nil {
			return
		}
		failure := &Failure{Index: index, URL: url, Kind: loadErr.Kind, Message: loadErr.Error()}
		if !cat.commit(index, manifest.Placeholder(url, loadErr.Kind, failure.Message), failure) {
			return
		}
		l.logger.Warn("manifest load failed",
			slog.Int("index", index),
			slog.String("url", url),
			slog.String("kind", loadErr.Kind),
			slog.String("error", loadErr.Err.Error()))
		l.emit(Event{Kind: EventFailed, Generation: cat.ID(), Index: index, URL: url, Failure: failure})
		return
	}

	if !cat.commit(index, repo, nil) {
		return
	}
	l.logger.Debug("manifest loaded",
		slog.Int("index", index),
		slog.String("url", url),
		slog.Int("packages", repo.Packages.Len()),
		slog.Int("featured", len(repo.Featured)))
	l.emit(Event{Kind: EventLoaded, Generation: cat.ID(), Index: index, URL: url, Repository: repo})
}

func (l *Loader) loadOne(ctx context.Context, url string) (*models.Repository, *LoadError) {
	data, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, newLoadError(url, err)
	}
	repo, err := manifest.Build(data, url)
	if err != nil {
		return nil, newLoadError(url, err)
	}
	return repo, nil
}

func (l *Loader) emit(ev Event) {
	if l.onEvent != nil {
		l.onEvent(ev)
	}
}
