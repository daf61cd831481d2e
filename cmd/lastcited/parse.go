package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/lastcited/internal/dblp"
	"github.com/matsen/lastcited/internal/storage"
	"github.com/spf13/cobra"
)

var (
	parsePapersOut    string
	parseCitationsOut string
	parseDBPath       string
)

var parseCmd = &cobra.Command{
	Use:   "parse <dblp.xml>",
	Short: "Extract papers and citation links from a DBLP dump",
	Long: `Extract two tables from a DBLP XML dump: all papers that carry both
a DOI and a four-digit year, and all citation links whose two ends resolve
to such papers.

Results are written as TSV files, or into a SQLite database with --db.

Examples:
  lastcited parse dblp.xml
  lastcited parse dblp.xml --papers papers.tsv --citations links.tsv
  lastcited parse dblp.xml --db dblp.db`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVar(&parsePapersOut, "papers", "all_papers_doi_year.tsv", "Output TSV for papers")
	parseCmd.Flags().StringVar(&parseCitationsOut, "citations", "citation_links_doi_year.tsv", "Output TSV for citation links")
	parseCmd.Flags().StringVar(&parseDBPath, "db", "", "Write into a SQLite database instead of TSV files")
}

func runParse(cmd *cobra.Command, args []string) error {
	xmlPath := args[0]
	if !strings.HasSuffix(xmlPath, ".xml") && !strings.HasSuffix(xmlPath, ".xml.gz") {
		return exitErr(ExitDataError, fmt.Errorf("corpus file must be an .xml or .xml.gz file: %s", xmlPath))
	}
	if _, err := os.Stat(xmlPath); err != nil {
		return exitErr(ExitDataError, fmt.Errorf("corpus file not found: %s", xmlPath))
	}

	infof("parsing %s ...", xmlPath)
	papers, links, stats, err := dblp.Extract(xmlPath, func(n int) {
		infof("  processed %d records", n)
	})
	if err != nil {
		return exitErr(ExitDataError, err)
	}
	infof("found %d papers with DOI and year; resolved %d of %d citation links (%d citing, %d cited unresolved)",
		len(papers), len(links), stats.RawLinks, stats.CitingUnresolved, stats.CitedUnresolved)

	if parseDBPath != "" {
		return writeParseDB(parseDBPath, papers, links)
	}

	if err := writePapersTSV(parsePapersOut, papers); err != nil {
		return err
	}
	infof("wrote %d papers to %s", len(papers), parsePapersOut)

	if err := writeLinksTSV(parseCitationsOut, links); err != nil {
		return err
	}
	infof("wrote %d citation links to %s", len(links), parseCitationsOut)
	return nil
}

func writeParseDB(path string, papers []dblp.Paper, links []dblp.CitationLink) error {
	db, err := storage.OpenDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.InsertPapers(papers); err != nil {
		return err
	}
	if err := db.InsertCitationLinks(links); err != nil {
		return err
	}
	infof("wrote %d papers and %d citation links to %s", len(papers), len(links), path)
	return nil
}

func writePapersTSV(path string, papers []dblp.Paper) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "DOI\tYear\tDBLP_Key")
	for _, p := range papers {
		fmt.Fprintf(w, "%s\t%d\t%s\n", p.DOI, p.Year, p.Key)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeLinksTSV(path string, links []dblp.CitationLink) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "Citing_DOI\tCiting_Year\tCited_DOI\tCited_Year")
	for _, l := range links {
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", l.CitingDOI, l.CitingYear, l.CitedDOI, l.CitedYear)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
