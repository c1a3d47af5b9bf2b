package app

import (
	"github.com/spf13/cobra"

	"github.com/evocms-community/evo-authz/internal/daemon"
)

var devMode bool //nolint:gochecknoglobals

var startCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "start",
	Short: "Start the manager API",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd, args); err != nil {
			return err
		}

		if devMode {
			cfg.DevMode = true
		}

		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		d, err := daemon.New(&cfg)
		if err != nil {
			return err
		}

		return d.Start()
	},
}

var migrateCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:     "migrate",
	Short:   "Create the tables and seed the permission catalog",
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := daemon.OpenDB(&cfg)
		if err != nil {
			return err
		}

		if err = daemon.Migrate(db); err != nil {
			return err
		}

		if err = daemon.Seed(db); err != nil {
			return err
		}

		cmd.Println("database is up to date")

		return nil
	},
}

func init() { //nolint:gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")

	rootCmd.AddCommand(startCmd, migrateCmd)
}
