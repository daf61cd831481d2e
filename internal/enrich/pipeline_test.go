package enrich

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/lastcited/internal/citecache"
	"github.com/matsen/lastcited/internal/resolve"
)

// rowRemote answers per DOI; missing DOIs fail.
type rowRemote struct {
	years map[string][]int
}

func (f *rowRemote) CitingYears(ctx context.Context, doi string) ([]int, error) {
	if years, ok := f.years[doi]; ok {
		return years, nil
	}
	return nil, errors.New("service error")
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "papers.tsv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newCache(t *testing.T) *citecache.Cache {
	t.Helper()
	c, err := citecache.Load(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func quiet(format string, args ...any) {}

func TestRun_EndToEnd(t *testing.T) {
	// Two rows, corpus disabled; the remote answers for row 1 and fails
	// for row 2.
	input := writeInput(t,
		"DOI\ttitle\tvenue\n"+
			"10.1/alpha\tAlpha Paper\tVLDB\n"+
			"10.1/beta\tBeta Paper\tSOSP\n")
	output := filepath.Join(t.TempDir(), "out.tsv")

	r := &resolve.Resolver{
		Remote: &rowRemote{years: map[string][]int{"10.1/alpha": {2019}}},
		Cache:  newCache(t),
		Warnf:  quiet,
	}

	if err := Run(context.Background(), input, output, r, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("output has %d lines, want 3:\n%s", len(lines), data)
	}

	if lines[0] != "DOI\ttitle\tvenue\tlast_cited_year" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "10.1/alpha\tAlpha Paper\tVLDB\t2019" {
		t.Errorf("row 1 = %q", lines[1])
	}
	// The remote failure is absorbed: row 2 gets the sentinel and the run
	// continues.
	if lines[2] != "10.1/beta\tBeta Paper\tSOSP\t"+resolve.NotCited {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestRun_ShapePreserved(t *testing.T) {
	input := writeInput(t,
		"id\tDOI\ttitle\n"+
			"1\t\tFirst\n"+
			"2\t\tSecond\n"+
			"3\t\tThird\n")
	output := filepath.Join(t.TempDir(), "out.tsv")

	// Both sources disabled: every row gets the sentinel.
	r := &resolve.Resolver{Warnf: quiet}
	if err := Run(context.Background(), input, output, r, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	tbl, err := ReadTable(output)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 3 {
		t.Errorf("output rows = %d, want 3", len(tbl.Rows))
	}
	if len(tbl.Header) != 4 {
		t.Errorf("output columns = %d, want input+1 = 4", len(tbl.Header))
	}
	// Row order preserved, original fields verbatim.
	for i, wantID := range []string{"1", "2", "3"} {
		if tbl.Rows[i][0] != wantID {
			t.Errorf("row %d id = %q, want %q", i, tbl.Rows[i][0], wantID)
		}
		if tbl.Rows[i][3] != resolve.NotCited {
			t.Errorf("row %d year = %q, want sentinel", i, tbl.Rows[i][3])
		}
	}
}

// interruptingRemote cancels the run's context from inside the first lookup,
// the way a signal arriving mid-run does.
type interruptingRemote struct {
	cancel context.CancelFunc
	calls  int
}

func (r *interruptingRemote) CitingYears(ctx context.Context, doi string) ([]int, error) {
	r.calls++
	r.cancel()
	return []int{2015}, nil
}

func TestRun_CancellationStopsBetweenRows(t *testing.T) {
	input := writeInput(t,
		"DOI\ttitle\n"+
			"10.1/alpha\tAlpha Paper\n"+
			"10.1/beta\tBeta Paper\n")
	output := filepath.Join(t.TempDir(), "out.tsv")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	remote := &interruptingRemote{cancel: cancel}
	r := &resolve.Resolver{Remote: remote, Cache: newCache(t), Warnf: quiet}

	err := Run(ctx, input, output, r, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if remote.calls != 1 {
		t.Errorf("remote called %d times, want 1: the loop must stop once the context is canceled", remote.calls)
	}
	if _, err := os.Stat(output); err == nil {
		t.Error("output must not be written on a canceled run")
	}
}

func TestRun_MissingColumnIsFatal(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "no DOI column", header: "identifier\ttitle\n"},
		{name: "no title column", header: "DOI\tname\n"},
		{name: "case sensitive", header: "doi\tTitle\n"},
	}

	r := &resolve.Resolver{Warnf: quiet}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeInput(t, tt.header+"a\tb\n")
			output := filepath.Join(t.TempDir(), "out.tsv")

			if err := Run(context.Background(), input, output, r, nil); err == nil {
				t.Error("Run() should fail on missing required column")
			}
		})
	}
}

func TestRun_MissingInputIsFatal(t *testing.T) {
	r := &resolve.Resolver{Warnf: quiet}
	err := Run(context.Background(), filepath.Join(t.TempDir(), "absent.tsv"), "out.tsv", r, nil)
	if err == nil {
		t.Fatal("Run() should fail on missing input")
	}
}

func TestRun_ProgressPerRow(t *testing.T) {
	input := writeInput(t, "DOI\ttitle\n\tA\n\tB\n")
	output := filepath.Join(t.TempDir(), "out.tsv")

	var calls int
	r := &resolve.Resolver{Warnf: quiet}
	if err := Run(context.Background(), input, output, r, func(done, total int) {
		calls++
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
	}); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("progress called %d times, want 2", calls)
	}
}

func TestColumnIndex(t *testing.T) {
	tbl := &Table{Header: []string{"DOI", "title", "venue"}}

	if i, ok := tbl.ColumnIndex("title"); !ok || i != 1 {
		t.Errorf("ColumnIndex(title) = %d, %v; want 1, true", i, ok)
	}
	if _, ok := tbl.ColumnIndex("TITLE"); ok {
		t.Error("column matching must be exact and case-sensitive")
	}
}
