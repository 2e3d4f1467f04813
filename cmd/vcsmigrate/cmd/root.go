// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vcsmigrate",
	Short: "vcsmigrate moves the history of a per-file versioned repository to a modern VCS",
	Long: `vcsmigrate migrates the full revision history of a legacy repository, where each file is versioned
on its own, into a snapshot-based or a trunk/tags/branches version control system.

Revisions are grouped into changesets by author, time and comment, then replayed as commits.
Labels become tags. Interrupted migrations resume after the last exported commit.
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
	addConfigFlag(rootCmd)
}
