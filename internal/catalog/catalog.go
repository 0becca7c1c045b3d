// Package catalog loads the configured manifests into an ordered,
// index-addressable collection of repositories.
package catalog

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/starford/rounded/internal/apperr"
	"github.com/starford/rounded/internal/models"
)

// Catalog holds one slot per configured manifest URL, in configured order.
// Each slot is written at most once; an empty slot means the repository is
// still loading. Repositories are immutable, so readers may share them freely.
type Catalog struct {
	id   string
	urls []string

	mu       sync.RWMutex
	slots    []*models.Repository
	failures []Failure
	filled   int
	sealed   bool
}

// Failure is the notification emitted for a manifest that could not be loaded.
type Failure struct {
	Index   int    `json:"index"`
	URL     string `json:"url"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// New returns an empty catalog with one slot per URL.
func New(urls []string) *Catalog {
	u := make([]string, len(urls))
	copy(u, urls)
	return &Catalog{
		id:    uuid.NewString(),
		urls:  u,
		slots: make([]*models.Repository, len(urls)),
	}
}

// ID identifies this load generation.
func (c *Catalog) ID() string { return c.id }

// Len returns the number of slots, loaded or not.
func (c *Catalog) Len() int { return len(c.urls) }

// URLs returns the configured manifest URLs.
func (c *Catalog) URLs() []string {
	out := make([]string, len(c.urls))
	copy(out, c.urls)
	return out
}

// Ready reports whether every slot has been filled.
func (c *Catalog) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filled == len(c.slots)
}

// Loaded returns the number of filled slots.
func (c *Catalog) Loaded() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filled
}

// Repository returns the repository at index. It returns apperr.ErrOutOfRange
// for an index outside the catalog and apperr.ErrNotFound for a slot that is
// still loading.
func (c *Catalog) Repository(index int) (*models.Repository, error) {
	if index < 0 || index >= len(c.urls) {
		return nil, fmt.Errorf("repository %d: %w", index, apperr.ErrOutOfRange)
	}
	c.mu.RLock()
	repo := c.slots[index]
	c.mu.RUnlock()
	if repo == nil {
		return nil, fmt.Errorf("repository %d not loaded: %w", index, apperr.ErrNotFound)
	}
	return repo, nil
}

// Package returns the package identifier of the repository at repoIndex.
func (c *Catalog) Package(repoIndex int, identifier string) (*models.Package, error) {
	repo, err := c.Repository(repoIndex)
	if err != nil {
		return nil, err
	}
	p, ok := repo.Package(identifier)
	if !ok {
		return nil, fmt.Errorf("package %q in repository %d: %w", identifier, repoIndex, apperr.ErrNotFound)
	}
	return p, nil
}

// IndexOf returns the slot index of the manifest URL, or -1.
func (c *Catalog) IndexOf(url string) int {
	for i, u := range c.urls {
		if u == url {
			return i
		}
	}
	return -1
}

// Owner resolves a package's back-reference to its repository index.
func (c *Catalog) Owner(p *models.Package) (int, *models.Repository, bool) {
	i := c.IndexOf(p.RepoURL)
	if i < 0 {
		return -1, nil, false
	}
	repo, err := c.Repository(i)
	if err != nil {
		return -1, nil, false
	}
	return i, repo, true
}

// Snapshot returns the slots as they are now. Unfilled slots are nil.
func (c *Catalog) Snapshot() []*models.Repository {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.Repository, len(c.slots))
	copy(out, c.slots)
	return out
}

// Failures returns the load failures recorded so far, in completion order.
func (c *Catalog) Failures() []Failure {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Failure, len(c.failures))
	copy(out, c.failures)
	return out
}

// commit fills slot index. It reports false when the slot is already filled
// or the catalog has been sealed.
func (c *Catalog) commit(index int, repo *models.Repository, failure *Failure) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed || c.slots[index] != nil {
		return false
	}
	c.slots[index] = repo
	c.filled++
	if failure != nil {
		c.failures = append(c.failures, *failure)
	}
	return true
}

// seal stops any further commits.
func (c *Catalog) seal() {
	c.mu.Lock()
	c.sealed = true
	c.mu.Unlock()
}
