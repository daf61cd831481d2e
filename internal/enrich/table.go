// Package enrich reads a TSV table of papers, resolves each row's last
// cited year, and writes the table back with one appended column.
package enrich

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Column names the pipeline requires in the input header, and the one it
// appends to the output.
const (
	DOIColumn       = "DOI"
	TitleColumn     = "title"
	LastCitedColumn = "last_cited_year"
)

// Table is a tab-separated table: a header row plus data rows. All fields
// are passed through verbatim.
type Table struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of a header column by exact name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, col := range t.Header {
		if col == name {
			return i, true
		}
	}
	return 0, false
}

// ReadTable reads a TSV file into memory. The first row is the header.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("input file %s has no header row", path)
	}

	return &Table{Header: records[0], Rows: records[1:]}, nil
}

// WriteTable writes a table as TSV, replacing any existing file.
func WriteTable(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(t.Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
