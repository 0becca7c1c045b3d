//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/rounded/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS packages_fts USING fts5(
			repo_index UNINDEXED,
			identifier UNINDEXED,
			name,
			author,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, repoIndex int, p *models.Package) error {
	body := p.Identifier + " " + p.Description + " " + p.LongDescription
	_, err := tx.Exec(`INSERT INTO packages_fts (repo_index, identifier, name, author, body) VALUES (?, ?, ?, ?, ?)`,
		repoIndex, p.Identifier, p.Name, p.Author, body)
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

func ftsDeleteRepo(tx *sql.Tx, repoIndex int) error {
	if _, err := tx.Exec(`DELETE FROM packages_fts WHERE repo_index = ?`, repoIndex); err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

func ftsReset(tx *sql.Tx) error {
	if _, err := tx.Exec(`DELETE FROM packages_fts`); err != nil {
		return fmt.Errorf("index: reset fts: %w", err)
	}
	return nil
}

// Search performs an FTS5 full-text search and returns matching packages with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT repo_index,
		       identifier,
		       name,
		       snippet(packages_fts, 4, '<b>', '</b>', '...', 32)
		FROM packages_fts
		WHERE packages_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
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
