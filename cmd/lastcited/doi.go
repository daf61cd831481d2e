package main

import (
	"fmt"

	"github.com/matsen/lastcited/internal/pdf"
	"github.com/spf13/cobra"
)

var doiCmd = &cobra.Command{
	Use:   "doi <file.pdf>",
	Short: "Extract a DOI from a PDF",
	Long: `Extract a DOI from the first pages of a PDF and print it.

Useful for filling in the DOI column of an input table before enrichment.`,
	Args: cobra.ExactArgs(1),
	RunE: runDOI,
}

func init() {
	rootCmd.AddCommand(doiCmd)
}

func runDOI(cmd *cobra.Command, args []string) error {
	doi, err := pdf.ExtractDOI(args[0])
	if err != nil {
		return exitErr(ExitDataError, fmt.Errorf("reading %s: %w", args[0], err))
	}
	if doi == "" {
		return exitErr(ExitDataError, fmt.Errorf("no DOI found in %s", args[0]))
	}
	fmt.Println(doi)
	return nil
}
