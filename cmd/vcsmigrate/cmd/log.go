// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oneconcern/vcsmigrate/pkg/model"
)

// historian is implemented by backends which can list their history
type historian interface {
	Log(context.Context) ([]model.CommitDescriptor, error)
	Tags(context.Context) ([]model.TagDescriptor, error)
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List the commits on the target, latest first",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg, err := loadConfig()
		if err != nil {
			wrapFatalln("load configuration", err)
			return
		}
		l, err := newLogger(cfg, true)
		if err != nil {
			wrapFatalln("logger", err)
			return
		}

		target, err := backendFactory(cfg, l)()
		if err != nil {
			wrapFatalln("target", err)
			return
		}
		defer func() { _ = target.Close() }()

		h, ok := target.(historian)
		if !ok {
			wrapFatalln("the "+cfg.Backend.String()+" backend has no history to list", nil)
			return
		}
		if err = target.Init(ctx, cfg.Target); err != nil {
			wrapFatalln("open target", err)
			return
		}

		commits, err := h.Log(ctx)
		if err != nil {
			wrapFatalln("list commits", err)
			return
		}
		tags, err := h.Tags(ctx)
		if err != nil {
			wrapFatalln("list tags", err)
			return
		}
		printLog(commits, tags, migrateFlags.log.limit)
	},
}

func printLog(commits []model.CommitDescriptor, tags []model.TagDescriptor, limit int) {
	tagged := make(map[string][]string, len(tags))
	for _, t := range tags {
		tagged[t.CommitID] = append(tagged[t.CommitID], t.Name)
	}

	for i, c := range commits {
		if limit > 0 && i >= limit {
			infoLogger.Printf("... %d more", len(commits)-limit)
			break
		}
		line := "     ID:  " + color.MagentaString(c.ID)
		for _, name := range tagged[c.ID] {
			line += " " + color.CyanString("(%s)", name)
		}
		infoLogger.Println(line)

		authors := ""
		for j, v := range c.Contributors {
			if j > 0 {
				authors += ", "
			}
			authors += color.YellowString(v.String())
		}
		infoLogger.Println("Authors: " + authors)
		infoLogger.Println("   Date: " + color.YellowString(c.Timestamp.Format(time.RFC3339)))
		infoLogger.Println()
		infoLogger.Println(c.Message)
		infoLogger.Println()
	}
}

func init() {
	addLimitFlag(logCmd)
	rootCmd.AddCommand(logCmd)
}
