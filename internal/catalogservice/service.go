package catalogservice

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/starford/rounded/internal/apperr"
	"github.com/starford/rounded/internal/catalog"
	"github.com/starford/rounded/internal/fetch"
	"github.com/starford/rounded/internal/index"
	"github.com/starford/rounded/internal/models"
	"github.com/starford/rounded/internal/sse"
)

// Notifier receives catalog progress. *sse.Broker implements it.
type Notifier interface {
	PublishRepoEvent(ev sse.RepoEvent)
	PublishReady(generation string, repos, failures int)
}

// Option configures a Service.
type Option func(*Service)

// WithIndex keeps idx in step with every loaded repository.
func WithIndex(idx index.PackageIndex) Option {
	return func(s *Service) { s.index = idx }
}

// WithNotifier forwards slot events to n.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConcurrency limits concurrent manifest fetches.
func WithConcurrency(n int) Option {
	return func(s *Service) { s.concurrency = n }
}

// Service owns the current catalog generation. A load builds a new catalog
// and swaps it in before filling it, so readers see slots appear one by one;
// readers that still hold the previous catalog keep a consistent view.
type Service struct {
	loader      *catalog.Loader
	index       index.PackageIndex
	notifier    Notifier
	logger      *slog.Logger
	concurrency int

	current atomic.Pointer[catalog.Catalog]

	mu      sync.RWMutex
	sources []string

	running sync.Mutex
	pending atomic.Bool
}

// New creates a service loading sources through f. The service starts with
// an empty, unloaded catalog; call Refresh to load it.
func New(f fetch.Fetcher, sources []string, opts ...Option) *Service {
	s := &Service{
		logger:  slog.Default(),
		sources: slices.Clone(sources),
	}
	for _, o := range opts {
		o(s)
	}
	s.loader = catalog.NewLoader(f,
		catalog.WithConcurrency(s.concurrency),
		catalog.WithLogger(s.logger),
		catalog.WithEventCallback(s.onEvent),
	)
	s.current.Store(catalog.New(s.sources))
	return s
}

// Catalog returns the current generation.
func (s *Service) Catalog() *catalog.Catalog {
	return s.current.Load()
}

// Sources returns the configured manifest URLs.
func (s *Service) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sources)
}

// Refresh builds a new catalog from the configured sources and waits for it
// to load. It returns apperr.ErrConflict while another load is running.
func (s *Service) Refresh(ctx context.Context) (*catalog.Catalog, error) {
	if !s.running.TryLock() {
		return nil, apperr.ErrConflict
	}
	cat, err := s.load(ctx)
	s.running.Unlock()
	if err != nil {
		return cat, err
	}
	return cat, s.drainPending(ctx)
}

// SetSources replaces the manifest URLs and reloads. If a load is already
// running, the reload is queued behind it and SetSources returns at once.
func (s *Service) SetSources(ctx context.Context, urls []string) error {
	s.mu.Lock()
	s.sources = slices.Clone(urls)
	s.mu.Unlock()

	s.pending.Store(true)
	return s.drainPending(ctx)
}

func (s *Service) drainPending(ctx context.Context) error {
	for s.pending.Load() {
		if !s.running.TryLock() {
			return nil
		}
		var err error
		if s.pending.CompareAndSwap(true, false) {
			_, err = s.load(ctx)
		}
		s.running.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

// StartRefresh swaps in a new generation and fills it in the background.
// It returns the new generation ID, or apperr.ErrConflict while another load
// is running.
func (s *Service) StartRefresh(ctx context.Context) (string, error) {
	if !s.running.TryLock() {
		return "", apperr.ErrConflict
	}
	cat := s.begin()
	go func() {
		err := s.fill(ctx, cat)
		s.running.Unlock()
		if err == nil {
			err = s.drainPending(ctx)
		}
		if err != nil {
			s.logger.Warn("background refresh stopped", slog.String("error", err.Error()))
		}
	}()
	return cat.ID(), nil
}

// load must be called with s.running held.
func (s *Service) load(ctx context.Context) (*catalog.Catalog, error) {
	cat := s.begin()
	return cat, s.fill(ctx, cat)
}

func (s *Service) begin() *catalog.Catalog {
	cat := catalog.New(s.Sources())
	if s.index != nil {
		if err := s.index.Reset(); err != nil {
			s.logger.Warn("index reset failed", slog.String("error", err.Error()))
		}
	}
	s.current.Store(cat)
	s.logger.Info("catalog generation started",
		slog.String("catalog_id", cat.ID()),
		slog.Int("sources", cat.Len()))
	return cat
}

func (s *Service) fill(ctx context.Context, cat *catalog.Catalog) error {
	if err := s.loader.Fill(ctx, cat); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.PublishReady(cat.ID(), cat.Len(), len(cat.Failures()))
	}
	return nil
}

func (s *Service) onEvent(ev catalog.Event) {
	if cur := s.current.Load(); cur == nil || cur.ID() != ev.Generation {
		return
	}

	out := sse.RepoEvent{Generation: ev.Generation, Index: ev.Index, URL: ev.URL}
	switch ev.Kind {
	case catalog.EventLoaded:
		if s.index != nil {
			if _, err := s.index.UpsertRepository(ev.Index, ev.Repository); err != nil {
				s.logger.Warn("index upsert failed",
					slog.Int("index", ev.Index),
					slog.String("url", ev.URL),
					slog.String("error", err.Error()))
			}
		}
		out.Name = ev.Repository.DisplayName()
		out.Packages = ev.Repository.Packages.Len()
	case catalog.EventFailed:
		out.Failed = true
		out.Kind = ev.Failure.Kind
		out.Message = ev.Failure.Message
	}

	if s.notifier != nil {
		s.notifier.PublishRepoEvent(out)
	}
}

// Status summarises the current generation.
func (s *Service) Status() Status {
	cat := s.current.Load()
	return Status{
		Generation: cat.ID(),
		Total:      cat.Len(),
		Loaded:     cat.Loaded(),
		Failures:   len(cat.Failures()),
		Ready:      cat.Ready(),
		Refreshing: s.isRunning(),
	}
}

func (s *Service) isRunning() bool {
	if s.running.TryLock() {
		s.running.Unlock()
		return false
	}
	return true
}

// ListRepositories summarises every slot of the current catalog in order.
func (s *Service) ListRepositories(_ context.Context) []RepoSummary {
	cat := s.current.Load()
	urls := cat.URLs()
	slots := cat.Snapshot()
	out := make([]RepoSummary, len(slots))
	for i, repo := range slots {
		out[i] = summarize(i, urls[i], repo)
	}
	return out
}

// GetRepository returns the repository at index with its package summaries.
func (s *Service) GetRepository(_ context.Context, index int) (*RepoDetail, error) {
	cat := s.current.Load()
	repo, err := cat.Repository(index)
	if err != nil {
		return nil, err
	}
	pkgs := repo.Packages.List()
	items := make([]PackageListItem, len(pkgs))
	for i, p := range pkgs {
		items[i] = packageItem(p)
	}
	return &RepoDetail{
		RepoSummary: summarize(index, repo.URL, repo),
		Packages:    items,
		Featured:    tiles(index, repo),
	}, nil
}

// GetPackage returns one package of the repository at repoIndex.
func (s *Service) GetPackage(_ context.Context, repoIndex int, identifier string) (*PackageDetail, error) {
	cat := s.current.Load()
	p, err := cat.Package(repoIndex, identifier)
	if err != nil {
		return nil, err
	}
	repo, _ := cat.Repository(repoIndex)
	return &PackageDetail{
		Package:   p,
		RepoIndex: repoIndex,
		RepoName:  repo.DisplayName(),
		Name:      p.DisplayName(),
	}, nil
}

// Featured gathers the featured grid of every loaded repository, in catalog
// order then manifest order.
func (s *Service) Featured(_ context.Context) []FeaturedTile {
	out := []FeaturedTile{}
	for i, repo := range s.current.Load().Snapshot() {
		if repo == nil {
			continue
		}
		out = append(out, tiles(i, repo)...)
	}
	return out
}

// Failures lists the load failures of the current catalog.
func (s *Service) Failures(_ context.Context) []catalog.Failure {
	return s.current.Load().Failures()
}

// Search finds packages by name, identifier, author or description. Without
// an index it scans the current catalog.
func (s *Service) Search(_ context.Context, q string, limit int) ([]index.SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("empty query: %w", apperr.ErrValidation)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if s.index != nil {
		res, err := s.index.Search(q, limit)
		if err != nil {
			return nil, err
		}
		return nonNilSlice(res), nil
	}
	return scan(s.current.Load(), q, limit), nil
}

func scan(cat *catalog.Catalog, q string, limit int) []index.SearchResult {
	needle := strings.ToLower(q)
	out := []index.SearchResult{}
	for i, repo := range cat.Snapshot() {
		if repo == nil {
			continue
		}
		for _, p := range repo.Packages.List() {
			if !matches(p, needle) {
				continue
			}
			out = append(out, index.SearchResult{
				RepoIndex:  i,
				Identifier: p.Identifier,
				Name:       p.Name,
				Snippet:    p.Description,
			})
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

func matches(p *models.Package, needle string) bool {
	for _, f := range []string{p.Name, p.Identifier, p.Author, p.Description, p.LongDescription} {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
