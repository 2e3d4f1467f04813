// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the last commit of the target",
	Long: `Shows the timestamp of the last commit found on the target.

A migration resumes with the changesets after this timestamp.
`,
	Run: func(cmd *cobra.Command, args []string) {
		s, err := newSession(context.Background(), false)
		if err != nil {
			wrapFatalln("last commit setup", err)
			return
		}
		defer s.Close()

		res := <-s.migration.ProbeLastCommit()
		if res.Err != nil {
			wrapFatalln("probe last commit", res.Err)
			return
		}
		if res.Last == nil {
			infoLogger.Println(color.YellowString("no commit on %s", s.cfg.Target))
			return
		}
		infoLogger.Printf("%s %s", color.MagentaString(res.Last.ID), res.Last.Timestamp.Format(time.RFC3339))
	},
}

func init() {
	rootCmd.AddCommand(lastCmd)
}
