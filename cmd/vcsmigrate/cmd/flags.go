// Copyright © 2018 One Concern

package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type flagsT struct {
	root struct {
		config string
	}
	migrate struct {
		batch bool
	}
	config struct {
		output string
		force  bool
	}
	log struct {
		limit int
	}
}

var migrateFlags = flagsT{}

const defaultConfigFile = "vcsmigrate.cfg"

func addConfigFlag(cmd *cobra.Command) string {
	c := "config"
	cmd.PersistentFlags().StringVarP(&migrateFlags.root.config, c, "c", defaultConfigFile, "The key=value run configuration file")
	return c
}

func addBatchFlag(cmd *cobra.Command) string {
	c := "batch"
	cmd.Flags().BoolVar(&migrateFlags.migrate.batch, c, false, "Run non-interactively to completion")
	return c
}

func addOutputFlag(cmd *cobra.Command) string {
	c := "output"
	cmd.Flags().StringVarP(&migrateFlags.config.output, c, "o", defaultConfigFile, "The file to write the configuration to")
	return c
}

func addForceFlag(cmd *cobra.Command) string {
	c := "force"
	cmd.Flags().BoolVar(&migrateFlags.config.force, c, false, "Overwrite an existing file")
	return c
}

func addLimitFlag(cmd *cobra.Command) string {
	c := "limit"
	cmd.Flags().IntVar(&migrateFlags.log.limit, c, 20, "The maximum number of commits to display, 0 for all")
	return c
}

// normalizeFlagName accepts underscores in flag names, as in configuration keys
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}
