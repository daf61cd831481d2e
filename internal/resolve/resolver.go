// Package resolve combines corpus and remote citation evidence into a
// single last-cited-year answer per paper.
package resolve

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/matsen/lastcited/internal/citecache"
	"github.com/matsen/lastcited/internal/dblp"
)

// NotCited is the sentinel written for papers with no citation evidence
// in any enabled source.
const NotCited = "NOT_CITED"

// RemoteSourceName namespaces remote lookups in the query cache.
const RemoteSourceName = "openalex"

// RemoteSource fetches the publication years of all works citing a DOI.
// It is expected to handle pagination internally.
type RemoteSource interface {
	CitingYears(ctx context.Context, doi string) ([]int, error)
}

// Resolver answers the last-cited-year question for one paper at a time.
// Index and Remote may each be nil, disabling that source. Cache must be
// set whenever Remote is.
type Resolver struct {
	Index  *dblp.CitationIndex
	Remote RemoteSource
	Cache  *citecache.Cache

	// Warnf reports per-paper recoverable problems (failed remote
	// lookups). Defaults to stderr.
	Warnf func(format string, args ...any)
}

// LastCitedYear returns the maximum year across all evidence for the paper,
// or NotCited when there is none. A remote failure counts as no evidence
// for this paper and leaves the cache untouched, so the next run retries.
func (r *Resolver) LastCitedYear(ctx context.Context, doi, title string) string {
	var years []int
	if r.Index != nil {
		years = append(years, r.corpusYears(doi, title)...)
	}
	if r.Remote != nil {
		years = append(years, r.remoteYears(ctx, doi)...)
	}

	if len(years) == 0 {
		return NotCited
	}
	max := years[0]
	for _, y := range years[1:] {
		if y > max {
			max = y
		}
	}
	return strconv.Itoa(max)
}

// corpusYears resolves the paper to a corpus key, by DOI first and
// normalized title second, and returns that key's citing years.
func (r *Resolver) corpusYears(doi, title string) []int {
	key, ok := r.Index.KeyForDOI(doi)
	if !ok {
		if norm := dblp.NormalizeTitle(title); norm != "" {
			key, ok = r.Index.KeyForTitle(norm)
		}
	}
	if !ok {
		return nil
	}
	return r.Index.CitingYears(key)
}

// remoteYears returns the cached answer for the DOI, querying the remote
// source on a miss. Successful answers are cached even when empty; failed
// lookups are not.
func (r *Resolver) remoteYears(ctx context.Context, doi string) []int {
	if doi == "" {
		return nil
	}

	key := citecache.Key(RemoteSourceName, doi)
	if years, ok := r.Cache.Get(key); ok {
		return years
	}

	years, err := r.Remote.CitingYears(ctx, doi)
	if err != nil {
		r.warnf("remote citation lookup failed for DOI %s: %v", doi, err)
		return nil
	}
	r.Cache.Put(key, years)
	return years
}

func (r *Resolver) warnf(format string, args ...any) {
	if r.Warnf != nil {
		r.Warnf(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
