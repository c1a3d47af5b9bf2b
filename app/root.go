// Package app implements the command line interface.
package app

import (
	"github.com/spf13/cobra"

	"github.com/evocms-community/evo-authz/internal/config"
	"github.com/evocms-community/evo-authz/internal/logger"
)

var (
	configPath string        //nolint:gochecknoglobals
	cfg        config.Config //nolint:gochecknoglobals
)

var rootCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "evo-authz",
	Short: "evo-authz is the authorization service of the Evolution CMS manager",
	Long: `evo-authz decides which manager routes a user may call. It maps roles to
permission keys, restricts resources through document groups and serves the
manager API that edits both.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint:gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath,
		"directory holding main.toml")
}

// loadConfig reads the configuration and sets up logging.
func loadConfig(_ *cobra.Command, _ []string) error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	return logger.Init(cfg.Log)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
