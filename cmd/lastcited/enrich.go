package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matsen/lastcited/internal/citecache"
	"github.com/matsen/lastcited/internal/config"
	"github.com/matsen/lastcited/internal/dblp"
	"github.com/matsen/lastcited/internal/enrich"
	"github.com/matsen/lastcited/internal/openalex"
	"github.com/matsen/lastcited/internal/resolve"
	"github.com/spf13/cobra"
)

var (
	enrichEmail      string
	enrichOutput     string
	enrichDBLPXML    string
	enrichCache      string
	enrichNoDBLP     bool
	enrichNoOpenAlex bool
	enrichConfigPath string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <input.tsv>",
	Short: "Append a last_cited_year column to a paper table",
	Long: `Append a last_cited_year column to a TSV table of papers.

The input must have DOI and title header columns. Each row is resolved
against the DBLP dump (by DOI, falling back to normalized title) and the
OpenAlex API; the appended column holds the latest year any citing work
was published, or NOT_CITED.

Examples:
  lastcited enrich papers.tsv --email you@example.org
  lastcited enrich papers.tsv --email you@example.org --dblp-xml /data/dblp.xml
  lastcited enrich papers.tsv --no-dblp --email you@example.org`,
	Args: cobra.ExactArgs(1),
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
	enrichCmd.Flags().StringVar(&enrichEmail, "email", "", "Contact email for polite OpenAlex access")
	enrichCmd.Flags().StringVarP(&enrichOutput, "output", "o", "", "Output TSV path (default: <input>_with_citations.tsv)")
	enrichCmd.Flags().StringVar(&enrichDBLPXML, "dblp-xml", "", "Path to the DBLP XML dump")
	enrichCmd.Flags().StringVar(&enrichCache, "cache", "", "Path to the API query cache file")
	enrichCmd.Flags().BoolVar(&enrichNoDBLP, "no-dblp", false, "Do not use the DBLP data source")
	enrichCmd.Flags().BoolVar(&enrichNoOpenAlex, "no-openalex", false, "Do not use the OpenAlex API")
	enrichCmd.Flags().StringVar(&enrichConfigPath, "config", "", "Path to a lastcited.yaml config file")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	cfg, err := config.Load(enrichConfigPath)
	if err != nil {
		return exitErr(ExitConfigError, err)
	}
	cfg.ApplyEnv()
	if enrichEmail != "" {
		cfg.Email = enrichEmail
	}
	if enrichDBLPXML != "" {
		cfg.CorpusXML = enrichDBLPXML
	}
	if enrichCache != "" {
		cfg.CachePath = enrichCache
	}
	cfg.NoDBLP = cfg.NoDBLP || enrichNoDBLP
	cfg.NoOpenAlex = cfg.NoOpenAlex || enrichNoOpenAlex

	if !cfg.NoOpenAlex && cfg.Email == "" {
		return exitErr(ExitConfigError,
			fmt.Errorf("--email is required for OpenAlex access (or set OPENALEX_MAILTO, or pass --no-openalex)"))
	}

	outputPath := enrichOutput
	if outputPath == "" {
		outputPath = config.DefaultOutputPath(inputPath)
	}

	if _, err := os.Stat(inputPath); err != nil {
		return exitErr(ExitDataError, fmt.Errorf("input file not found: %s", inputPath))
	}

	cache, err := citecache.Load(cfg.CachePath)
	if err != nil {
		return exitErr(ExitDataError, err)
	}
	if cache.Len() > 0 {
		infof("loaded %d cached API answers from %s", cache.Len(), cache.Path())
	}
	// The cache is flushed exactly once on every exit path from here on:
	// answered queries must never be lost and re-billed on the next run.
	defer flushCache(cache)

	resolver := &resolve.Resolver{Warnf: warnf}

	if !cfg.NoDBLP {
		if !dblp.CorpusAvailable(cfg.CorpusXML) {
			warnf("%s or its %s not found, skipping DBLP analysis", cfg.CorpusXML, dblp.DTDFile)
		} else {
			infof("phase 1: indexing %s ...", cfg.CorpusXML)
			index, err := dblp.BuildIndex(cfg.CorpusXML, func(n int) {
				infof("  indexed %d records", n)
			})
			if err != nil {
				return exitErr(ExitDataError, err)
			}
			infof("  index ready: %d DOIs, %d titles, %d cited keys",
				index.DOICount(), index.TitleCount(), index.CitedKeyCount())
			resolver.Index = index
		}
	}

	if !cfg.NoOpenAlex {
		resolver.Remote = openalex.NewClient(openalex.WithMailto(cfg.Email))
		resolver.Cache = cache
	}

	// A SIGINT/SIGTERM mid-run cancels the row loop instead of killing the
	// process, so the deferred cache flush above still runs.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infof("phase 2: resolving papers from %s ...", inputPath)
	runErr := enrich.Run(ctx, inputPath, outputPath, resolver,
		func(done, total int) {
			if done%25 == 0 || done == total {
				infof("  [%d/%d]", done, total)
			}
		})

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return exitErr(ExitError, fmt.Errorf("interrupted"))
		}
		return exitErr(ExitDataError, runErr)
	}
	infof("wrote %s", outputPath)
	return nil
}

func flushCache(cache *citecache.Cache) {
	if err := cache.Flush(); err != nil {
		warnf("flushing query cache: %v", err)
		return
	}
	infof("saved %d API answers to %s", cache.Len(), cache.Path())
}
