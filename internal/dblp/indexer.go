package dblp

import (
	"strconv"
	"strings"
)

// doiMarker is the substring of an electronic-edition URL that precedes
// the DOI proper.
const doiMarker = "doi.org/"

// BuildIndex streams the dump at path once and builds the citation index.
// progress, if non-nil, is called every ProgressInterval records and once
// at the end with the final count.
//
// Per record: a missing key attribute skips the record; a non-empty title
// registers its normalized form; the first ee field containing a DOI URL
// registers the DOI (a record contributes at most one); and if the record
// has a parseable year, that year is appended to the citing-years list of
// every non-placeholder key it cites. Map collisions are last-writer-wins
// in dump order.
func BuildIndex(path string, progress func(records int)) (*CitationIndex, error) {
	ix := newCitationIndex()

	err := stream(path, progress, func(rec *record) {
		if rec.Key == "" {
			return
		}

		if norm := NormalizeTitle(rec.Title); norm != "" {
			ix.titleToKey[norm] = rec.Key
		}

		for _, ee := range rec.EE {
			// A resolver-prefixed URL can contain the marker twice; the
			// DOI is whatever follows the last occurrence.
			if i := strings.LastIndex(ee, doiMarker); i >= 0 {
				ix.doiToKey[ee[i+len(doiMarker):]] = rec.Key
				break
			}
		}

		year, err := strconv.Atoi(strings.TrimSpace(rec.Year))
		if err != nil {
			return
		}
		for _, cited := range rec.Cites {
			if cited == "" || cited == citePlaceholder {
				continue
			}
			ix.citingYears[cited] = append(ix.citingYears[cited], year)
		}
	})
	if err != nil {
		return nil, err
	}
	return ix, nil
}
