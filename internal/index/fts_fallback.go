//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/rounded/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE on the packages table.
	return nil
}

func ftsInsert(_ *sql.Tx, _ int, _ *models.Package) error { return nil }

func ftsDeleteRepo(_ *sql.Tx, _ int) error { return nil }

func ftsReset(_ *sql.Tx) error { return nil }

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT repo_index, identifier, name, substr(description, 1, 200)
		FROM packages
		WHERE name LIKE ? OR identifier LIKE ? OR author LIKE ?
		   OR description LIKE ? OR long_description LIKE ?
		ORDER BY repo_index, position
		LIMIT ?
	`, like, like, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.RepoIndex, &r.Identifier, &r.Name, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
