package app

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evocms-community/evo-authz/internal/config"
	"github.com/evocms-community/evo-authz/internal/permission"
)

var routesPrefix string //nolint:gochecknoglobals

var routesCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "routes",
	Short: "List the route permission table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printRoutes(cmd.OutOrStdout(), permission.Default(), routesPrefix)
	},
}

var configCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:     "config",
	Short:   "Print the effective configuration",
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := config.DumpConfig(&cfg)
		if err != nil {
			return err
		}

		cmd.Print(out)

		return nil
	},
}

func printRoutes(w io.Writer, r *permission.Registry, prefix string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0) //nolint:mnd

	if _, err := fmt.Fprintln(tw, "ROUTE\tMODE\tKEYS"); err != nil {
		return err
	}

	for _, route := range r.Routes() {
		if !strings.HasPrefix(route, prefix) {
			continue
		}

		policy, _ := r.Lookup(route)

		keys := strings.Join(policy.Required().Strings(), ", ")
		if keys == "" {
			keys = "-"
		}

		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", route, policy.Mode, keys); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func init() { //nolint:gochecknoinits
	routesCmd.Flags().StringVar(&routesPrefix, "prefix", "", "only list routes starting with prefix")

	rootCmd.AddCommand(routesCmd, configCmd)
}
