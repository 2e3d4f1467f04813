// Copyright © 2018 One Concern

package cmd

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/oneconcern/vcsmigrate/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage the run configuration",
	Long: `The run configuration is a file of key=value lines.

Any key may be overridden by an environment variable, e.g. VCSMIGRATE_TARGET overrides target.
`,
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a configuration file with default settings",
	Run: func(cmd *cobra.Command, args []string) {
		pth := migrateFlags.config.output
		exists, err := afero.Exists(appFs, pth)
		if err != nil {
			wrapFatalln("check configuration file", err)
			return
		}
		if exists && !migrateFlags.config.force {
			wrapFatalln(pth+" already exists: use --force to overwrite it", nil)
			return
		}
		if err = config.WriteFile(appFs, pth, config.Default()); err != nil {
			wrapFatalln("write configuration file", err)
			return
		}
		infoLogger.Printf("configuration written to %s", pth)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration, with defaults and environment overrides",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			wrapFatalln("load configuration", err)
			return
		}
		if err = config.Serialize(os.Stdout, cfg.Settings()); err != nil {
			wrapFatalln("show configuration", err)
			return
		}
	},
}

func init() {
	addOutputFlag(configGenerateCmd)
	addForceFlag(configGenerateCmd)
	configCmd.AddCommand(configGenerateCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
