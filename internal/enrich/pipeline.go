package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/matsen/lastcited/internal/resolve"
)

// Run reads the table at inputPath, resolves the last cited year for every
// row in order, and writes the table with a last_cited_year column appended
// to outputPath. Original fields and row order are preserved; the output
// always has exactly one more column than the input.
//
// Missing input and missing DOI/title header columns are fatal. Cache
// flushing is the caller's responsibility and must happen whether or not
// Run returns an error.
func Run(ctx context.Context, inputPath, outputPath string, r *resolve.Resolver, progress func(done, total int)) error {
	tbl, err := ReadTable(inputPath)
	if err != nil {
		return err
	}

	doiIdx, ok := tbl.ColumnIndex(DOIColumn)
	if !ok {
		return fmt.Errorf("input header is missing required column %q", DOIColumn)
	}
	titleIdx, ok := tbl.ColumnIndex(TitleColumn)
	if !ok {
		return fmt.Errorf("input header is missing required column %q", TitleColumn)
	}

	out := &Table{
		Header: appendField(tbl.Header, LastCitedColumn),
		Rows:   make([][]string, 0, len(tbl.Rows)),
	}

	for i, row := range tbl.Rows {
		// An interrupt must stop the loop promptly so the caller's cache
		// flush runs while the answered queries are still worth saving.
		if err := ctx.Err(); err != nil {
			return err
		}

		doi := strings.TrimSpace(field(row, doiIdx))
		title := strings.TrimSpace(field(row, titleIdx))

		year := r.LastCitedYear(ctx, doi, title)
		out.Rows = append(out.Rows, appendField(row, year))

		if progress != nil {
			progress(i+1, len(tbl.Rows))
		}
	}

	return WriteTable(outputPath, out)
}

// field returns row[i], or "" for a short row.
func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// appendField copies a row and appends one value, leaving the input alone.
func appendField(row []string, value string) []string {
	out := make([]string, 0, len(row)+1)
	out = append(out, row...)
	return append(out, value)
}
