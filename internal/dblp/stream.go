package dblp

import (
	"bufio"
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// publicationTags are the DBLP record kinds considered citable publications.
// Other top-level elements (www, person records, ...) are skipped.
var publicationTags = map[string]bool{
	"article":       true,
	"inproceedings": true,
	"proceedings":   true,
	"book":          true,
	"incollection":  true,
	"phdthesis":     true,
	"mastersthesis": true,
}

// citePlaceholder marks an unknown reference target in DBLP cite fields.
const citePlaceholder = "..."

// ProgressInterval is how many records pass between progress callbacks.
const ProgressInterval = 500000

// DTDFile is the DTD that must sit next to the XML dump. The dump declares
// entities in it, so a dump without its DTD cannot be parsed reliably.
const DTDFile = "dblp.dtd"

// record is the subset of a DBLP publication element used for indexing.
// DecodeElement materializes one record at a time; the struct is dropped
// before the next record is read.
type record struct {
	Key   string   `xml:"key,attr"`
	Title string   `xml:"title"`
	Year  string   `xml:"year"`
	EE    []string `xml:"ee"`
	Cites []string `xml:"cite"`
	Notes []note   `xml:"note"`
}

type note struct {
	Type string `xml:"type,attr"`
	Text string `xml:",chardata"`
}

// CorpusAvailable reports whether the XML dump and its colocated DTD both
// exist. Callers that allow fallback treat false as "corpus disabled".
func CorpusAvailable(xmlPath string) bool {
	if _, err := os.Stat(xmlPath); err != nil {
		return false
	}
	_, err := os.Stat(filepath.Join(filepath.Dir(xmlPath), DTDFile))
	return err == nil
}

// stream decodes the dump at path one publication record at a time, calling
// fn for each. A decode error aborts the whole pass: a malformed dump
// cannot be partially trusted. DBLP distributes the dump both plain and
// gzipped; a .gz path is decompressed on the fly.
func stream(path string, progress func(records int), fn func(rec *record)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("opening gzipped corpus: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	dec := xml.NewDecoder(bufio.NewReaderSize(r, 1<<20))
	dec.CharsetReader = charsetReader
	// DBLP declares its entities (uuml, eacute, ...) in dblp.dtd; they all
	// have HTML equivalents.
	dec.Entity = xml.HTMLEntity

	records := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("parsing corpus XML: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || !publicationTags[se.Name.Local] {
			continue
		}

		var rec record
		if err := dec.DecodeElement(&rec, &se); err != nil {
			return fmt.Errorf("parsing corpus XML: %w", err)
		}

		records++
		if progress != nil && records%ProgressInterval == 0 {
			progress(records)
		}

		fn(&rec)
	}

	if progress != nil {
		progress(records)
	}
	return nil
}

// charsetReader handles the ISO-8859-1 encoding the DBLP dump is
// distributed in. encoding/xml only speaks UTF-8 natively.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "utf-8", "":
		return input, nil
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return &latin1Reader{r: bufio.NewReader(input)}, nil
	}
	return nil, fmt.Errorf("unsupported corpus charset %q", charset)
}

// latin1Reader converts ISO-8859-1 bytes to UTF-8. Every Latin-1 byte maps
// to the Unicode code point of the same value.
type latin1Reader struct {
	r *bufio.Reader
}

func (lr *latin1Reader) Read(p []byte) (int, error) {
	if len(p) < 2 {
		return 0, io.ErrShortBuffer
	}
	n := 0
	for n+2 <= len(p) {
		b, err := lr.r.ReadByte()
		if err != nil {
			if err == io.EOF && n > 0 {
				return n, nil
			}
			return n, err
		}
		if b < 0x80 {
			p[n] = b
			n++
		} else {
			p[n] = 0xC0 | b>>6
			p[n+1] = 0x80 | b&0x3F
			n += 2
		}
	}
	return n, nil
}
