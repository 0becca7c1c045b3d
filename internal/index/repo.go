package index

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/rounded/internal/models"
)

// SearchResult represents one search hit.
type SearchResult struct {
	RepoIndex  int    `json:"repo"`
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Snippet    string `json:"snippet"`
}

// Reset drops every indexed repository and package.
func (db *DB) Reset() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM packages`); err != nil {
		return fmt.Errorf("index: reset packages: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM repositories`); err != nil {
		return fmt.Errorf("index: reset repositories: %w", err)
	}
	if err := ftsReset(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// UpsertRepository replaces the packages indexed for slot repoIndex.
// It skips the write and reports false when the stored checksum already
// matches repo.Checksum.
func (db *DB) UpsertRepository(repoIndex int, repo *models.Repository) (bool, error) {
	if repo.Checksum != "" {
		cs, err := db.RepositoryChecksum(repoIndex)
		if err != nil {
			return false, err
		}
		if cs == repo.Checksum {
			return false, nil
		}
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return false, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM packages WHERE repo_index = ?`, repoIndex); err != nil {
		return false, fmt.Errorf("index: clear packages: %w", err)
	}
	if err := ftsDeleteRepo(tx, repoIndex); err != nil {
		return false, err
	}

	_, err = tx.Exec(`
		INSERT INTO repositories (repo_index, url, name, checksum)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(repo_index) DO UPDATE SET
			url      = excluded.url,
			name     = excluded.name,
			checksum = excluded.checksum
	`, repoIndex, repo.URL, repo.Name, repo.Checksum)
	if err != nil {
		return false, fmt.Errorf("index: upsert repository: %w", err)
	}

	pkgs := repo.Packages.List()
	if len(pkgs) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO packages (repo_index, position, identifier, name, author, description, long_description, version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return false, fmt.Errorf("index: prepare package insert: %w", err)
		}
		defer stmt.Close()
		for pos, p := range pkgs {
			if _, err := stmt.Exec(repoIndex, pos, p.Identifier, p.Name, p.Author, p.Description, p.LongDescription, p.Version); err != nil {
				return false, fmt.Errorf("index: insert package %s: %w", p.Identifier, err)
			}
			if err := ftsInsert(tx, repoIndex, p); err != nil {
				return false, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("index: commit: %w", err)
	}
	return true, nil
}

// RepositoryChecksum returns the checksum stored for slot repoIndex, or ""
// if the slot is not indexed.
func (db *DB) RepositoryChecksum(repoIndex int) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM repositories WHERE repo_index = ?`, repoIndex).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: repository checksum: %w", err)
	}
	return cs, nil
}

// PackageCount returns the number of indexed packages.
func (db *DB) PackageCount() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM packages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count packages: %w", err)
	}
	return n, nil
}
