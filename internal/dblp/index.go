// Package dblp builds citation lookup structures from a DBLP XML dump.
// The dump is streamed record by record, so memory stays bounded no matter
// how large the file is (the full dump holds tens of millions of records).
package dblp

// CitationIndex holds the three lookup structures derived from a single
// streaming pass over the dump. It is built once by BuildIndex and is
// read-only afterward.
type CitationIndex struct {
	doiToKey    map[string]string
	titleToKey  map[string]string
	citingYears map[string][]int
}

func newCitationIndex() *CitationIndex {
	return &CitationIndex{
		doiToKey:    make(map[string]string),
		titleToKey:  make(map[string]string),
		citingYears: make(map[string][]int),
	}
}

// KeyForDOI returns the DBLP key of the record whose electronic edition
// carries the given DOI.
func (ix *CitationIndex) KeyForDOI(doi string) (string, bool) {
	if doi == "" {
		return "", false
	}
	key, ok := ix.doiToKey[doi]
	return key, ok
}

// KeyForTitle returns the DBLP key registered under a normalized title.
// The caller is responsible for normalizing; an empty string never matches.
func (ix *CitationIndex) KeyForTitle(normalized string) (string, bool) {
	if normalized == "" {
		return "", false
	}
	key, ok := ix.titleToKey[normalized]
	return key, ok
}

// CitingYears returns the publication years of every record that cites the
// given key. Duplicates are meaningful: each entry is one citing record.
func (ix *CitationIndex) CitingYears(key string) []int {
	if key == "" {
		return nil
	}
	return ix.citingYears[key]
}

// DOICount returns the number of records indexed by DOI.
func (ix *CitationIndex) DOICount() int { return len(ix.doiToKey) }

// TitleCount returns the number of records indexed by normalized title.
func (ix *CitationIndex) TitleCount() int { return len(ix.titleToKey) }

// CitedKeyCount returns the number of distinct keys with citation evidence.
func (ix *CitationIndex) CitedKeyCount() int { return len(ix.citingYears) }
