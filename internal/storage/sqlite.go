// Package storage persists corpus extraction results in SQLite.
package storage

import (
	"database/sql"
	"fmt"

	"github.com/matsen/lastcited/internal/dblp"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database produced by the parse command.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		-- Papers with both a DOI and a publication year
		CREATE TABLE IF NOT EXISTS papers (
			key TEXT PRIMARY KEY,
			doi TEXT NOT NULL,
			year INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi);

		-- Citation links resolved to DOIs on both ends
		CREATE TABLE IF NOT EXISTS citation_links (
			citing_doi TEXT NOT NULL,
			citing_year INTEGER NOT NULL,
			cited_doi TEXT NOT NULL,
			cited_year INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_links_cited ON citation_links(cited_doi);
	`
	_, err := db.Exec(schema)
	return err
}

// InsertPapers stores papers in one transaction, replacing rows that share
// a key.
func (d *DB) InsertPapers(papers []dblp.Paper) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO papers (key, doi, year) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range papers {
		if _, err := stmt.Exec(p.Key, p.DOI, p.Year); err != nil {
			return fmt.Errorf("inserting paper %s: %w", p.Key, err)
		}
	}

	return tx.Commit()
}

// InsertCitationLinks stores citation links in one transaction.
func (d *DB) InsertCitationLinks(links []dblp.CitationLink) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO citation_links (citing_doi, citing_year, cited_doi, cited_year) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range links {
		if _, err := stmt.Exec(l.CitingDOI, l.CitingYear, l.CitedDOI, l.CitedYear); err != nil {
			return fmt.Errorf("inserting link %s -> %s: %w", l.CitingDOI, l.CitedDOI, err)
		}
	}

	return tx.Commit()
}

// PaperCount returns the number of stored papers.
func (d *DB) PaperCount() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM papers`).Scan(&n)
	return n, err
}

// LinkCount returns the number of stored citation links.
func (d *DB) LinkCount() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM citation_links`).Scan(&n)
	return n, err
}

// PaperByDOI returns the paper stored under a DOI.
func (d *DB) PaperByDOI(doi string) (*dblp.Paper, error) {
	var p dblp.Paper
	err := d.db.QueryRow(`SELECT key, doi, year FROM papers WHERE doi = ?`, doi).
		Scan(&p.Key, &p.DOI, &p.Year)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
