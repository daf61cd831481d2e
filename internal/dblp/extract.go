package dblp

import (
	"strings"
)

// Paper is a publication with both a DOI and a four-digit year, as exported
// by the parse command.
type Paper struct {
	Key  string
	DOI  string
	Year int
}

// CitationLink is a citation edge resolved to DOIs on both ends.
type CitationLink struct {
	CitingDOI  string
	CitingYear int
	CitedDOI   string
	CitedYear  int
}

// ExtractStats counts what a corpus extraction pass saw and dropped.
type ExtractStats struct {
	Records          int // publication records streamed
	RawLinks         int // cite fields encountered
	CitingUnresolved int // links whose citing end had no DOI+year
	CitedUnresolved  int // links whose cited end had no DOI+year
}

// Extract streams the dump once and returns every paper with both a DOI and
// a valid year, plus all citation links whose two ends resolve to such
// papers. Link resolution happens after the pass, since a cite field can
// point at a record that appears later in the dump.
func Extract(path string, progress func(records int)) ([]Paper, []CitationLink, ExtractStats, error) {
	byKey := make(map[string]Paper)
	var order []string
	type rawLink struct{ citing, cited string }
	var links []rawLink
	var stats ExtractStats

	err := stream(path, progress, func(rec *record) {
		stats.Records++
		if rec.Key == "" {
			return
		}

		doi := extractDOI(rec)
		year := extractYear(rec.Year)
		if doi != "" && year != 0 {
			if _, seen := byKey[rec.Key]; !seen {
				order = append(order, rec.Key)
			}
			byKey[rec.Key] = Paper{Key: rec.Key, DOI: doi, Year: year}
		}

		for _, cited := range rec.Cites {
			cited = strings.TrimSpace(cited)
			if cited == "" || cited == citePlaceholder {
				continue
			}
			// Cite fields occasionally carry a trailing label; the key is
			// the first token.
			if i := strings.IndexByte(cited, ' '); i >= 0 {
				cited = cited[:i]
			}
			links = append(links, rawLink{citing: rec.Key, cited: cited})
		}
	})
	if err != nil {
		return nil, nil, stats, err
	}

	papers := make([]Paper, 0, len(order))
	for _, key := range order {
		papers = append(papers, byKey[key])
	}

	stats.RawLinks = len(links)
	var resolved []CitationLink
	// Links with both ends unresolved land in neither unresolved bucket;
	// RawLinks still includes them.
	for _, l := range links {
		citing, okCiting := byKey[l.citing]
		cited, okCited := byKey[l.cited]
		switch {
		case okCiting && okCited:
			resolved = append(resolved, CitationLink{
				CitingDOI:  citing.DOI,
				CitingYear: citing.Year,
				CitedDOI:   cited.DOI,
				CitedYear:  cited.Year,
			})
		case !okCiting && okCited:
			stats.CitingUnresolved++
		case okCiting && !okCited:
			stats.CitedUnresolved++
		}
	}

	return papers, resolved, stats, nil
}

// extractDOI pulls a DOI from a record's ee fields, falling back to a
// note field of type "doi". Matching is case-insensitive and anything
// after a space is dropped.
func extractDOI(rec *record) string {
	for _, ee := range rec.EE {
		lower := strings.ToLower(ee)
		if i := strings.Index(lower, doiMarker); i >= 0 {
			return firstToken(lower[i+len(doiMarker):])
		}
	}
	for _, n := range rec.Notes {
		if n.Type != "doi" || n.Text == "" {
			continue
		}
		lower := strings.ToLower(n.Text)
		if i := strings.Index(lower, doiMarker); i >= 0 {
			return firstToken(lower[i+len(doiMarker):])
		}
		return firstToken(lower)
	}
	return ""
}

func firstToken(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// extractYear parses a four-digit year, returning 0 for anything else.
func extractYear(s string) int {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return 0
	}
	year := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		year = year*10 + int(r-'0')
	}
	return year
}
