// Package main provides the lastcited CLI entry point.
package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		var coded *codedError
		if errors.As(err, &coded) {
			os.Exit(coded.code)
		}
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lastcited",
	Short: "Find the last year papers were cited",
	Long: `lastcited augments a TSV table of papers with the last calendar year
each paper is known to have been cited, cross-referencing the DBLP XML
dump and the OpenAlex citation API.

The DBLP dump is streamed once with bounded memory; OpenAlex answers are
cached on disk so repeated runs never re-issue a query.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
}
