package index

import "github.com/starford/rounded/internal/models"

// PackageIndex is the search index as seen by the catalog service.
type PackageIndex interface {
	Reset() error
	UpsertRepository(repoIndex int, repo *models.Repository) (bool, error)
	Search(query string, limit int) ([]SearchResult, error)
	PackageCount() (int, error)
	Close() error
}

// Verify *DB satisfies PackageIndex at compile time.
var _ PackageIndex = (*DB)(nil)
