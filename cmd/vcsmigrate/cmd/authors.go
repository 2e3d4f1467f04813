// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/oneconcern/vcsmigrate/pkg/migration"
)

var authorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "List the authors of the source history",
	Long: `Analyzes the source history and lists its authors.

Authors missing from the author mapping file are appended to it, with an empty identity to fill in.
`,
	Run: func(cmd *cobra.Command, args []string) {
		s, err := newSession(context.Background(), false)
		if err != nil {
			wrapFatalln("authors setup", err)
			return
		}
		defer s.Close()

		if err = s.migration.AnalyzeAuthors(); err != nil {
			wrapFatalln("analyze authors", err)
			return
		}
		if outcome := s.migration.Wait(); outcome != migration.OutcomeCompleted {
			report(s.migration.Status())
			wrapFatalln(fmt.Sprintf("authors analysis %s", outcome), nil)
			return
		}

		printAuthors(s.migration.Authors(), s.cfg.AuthorMap)
	},
}

func printAuthors(r *migration.AuthorsReport, mappingFile string) {
	if r == nil {
		return
	}
	unmapped := make(map[string]bool, len(r.Unmapped))
	for _, a := range r.Unmapped {
		unmapped[a] = true
	}

	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("AUTHOR", "MAPPED")
	for _, a := range r.All {
		mapped := color.GreenString("yes")
		if unmapped[a] {
			mapped = color.YellowString("no")
		}
		table.AddRow(a, mapped)
	}
	infoLogger.Println(table)

	infoLogger.Printf("%d author(s), %d unmapped", len(r.All), len(r.Unmapped))
	if len(r.Added) > 0 {
		infoLogger.Printf("%d author(s) added to %s", len(r.Added), mappingFile)
	}
}

func init() {
	rootCmd.AddCommand(authorsCmd)
}
