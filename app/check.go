package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evocms-community/evo-authz/internal/daemon"
	"github.com/evocms-community/evo-authz/internal/gate"
)

var checkFlags struct { //nolint:gochecknoglobals
	userID     uint64
	roleID     uint
	route      string
	resourceID uint64
	rowLevel   bool
}

var checkCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "check",
	Short: "Print the authorization decision for a user and route",
	Long: `check evaluates one request against the configured database and prints the
decision as JSON. The command fails when access is denied.

Without --role the role of the user is read from the database, without
--row-level the document group switch is read from the system settings.`,
	Example: "  evo-authz check --user 5 --route manager.api.resources.show --resource 42",
	PreRunE: loadConfig,
	RunE:    runCheck,
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	db, err := daemon.OpenDB(&cfg)
	if err != nil {
		return err
	}

	svc, err := daemon.NewServices(&cfg, db)
	if err != nil {
		return err
	}

	req := gate.Request{
		UserID: checkFlags.userID,
		RoleID: checkFlags.roleID,
		Route:  checkFlags.route,
	}

	if !cmd.Flags().Changed("role") {
		if req.RoleID, err = svc.Auth.RoleOf(ctx, req.UserID); err != nil {
			return err
		}
	}

	if checkFlags.resourceID != 0 {
		req.ResourceID = &checkFlags.resourceID
	}

	if cmd.Flags().Changed("row-level") {
		req.UseRowLevel = checkFlags.rowLevel
	} else if req.UseRowLevel, err = svc.Flags.UseRowLevel(ctx); err != nil {
		return err
	}

	d, err := svc.Gate.Authorize(ctx, req)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))

	// a denial makes the process exit non-zero
	return d.Err()
}

func init() { //nolint:gochecknoinits
	f := checkCmd.Flags()
	f.Uint64Var(&checkFlags.userID, "user", 0, "user id")
	f.UintVar(&checkFlags.roleID, "role", 0, "role id, read from the user when not set")
	f.StringVar(&checkFlags.route, "route", "", "route name, e.g. manager.api.roles.index")
	f.Uint64Var(&checkFlags.resourceID, "resource", 0, "resource id for the document group check")
	f.BoolVar(&checkFlags.rowLevel, "row-level", false, "enable the document group check")

	_ = checkCmd.MarkFlagRequired("route")

	rootCmd.AddCommand(checkCmd)
}
