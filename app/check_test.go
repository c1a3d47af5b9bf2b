package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evocms-community/evo-authz/internal/config"
	"github.com/evocms-community/evo-authz/internal/daemon"
	"github.com/evocms-community/evo-authz/internal/db/models"
	"github.com/evocms-community/evo-authz/internal/gate"
	"github.com/evocms-community/evo-authz/internal/permission"
)

const testConfig = `
[DB]
GormEngine = "sqlite"
Name = %q

[Log]
LogLevel = "error"
AppName = "evo-authz"
ServiceName = "evo-authz"

[Log.Console]
enabled = false

[Webserver]
Port = 8080
URL = "http://localhost:8080"

[Cache]
Backend = "none"
`

// writeConfig puts a sqlite main.toml into a temp dir and returns the dir.
func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	body := fmt.Sprintf(testConfig, filepath.Join(dir, "evo.db"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.toml"), []byte(body), 0o600))

	return dir
}

// execute runs the root command with fresh check flags and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	for _, name := range []string{"user", "role", "route", "resource", "row-level"} {
		f := checkCmd.Flags().Lookup(name)
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	}

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()

	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	dir := writeConfig(t)

	_, err := execute(t, "migrate", "-c", dir)
	require.NoError(t, err)

	c, err := config.ReadConfig(dir)
	require.NoError(t, err)

	db, err := daemon.OpenDB(&c)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	var admin models.User
	require.NoError(t, db.Where("username = ?", daemon.DefaultAdminUsername).First(&admin).Error)

	require.NoError(t, db.Create(&models.DocumentGroupName{ID: 7, Name: "Internal"}).Error)
	require.NoError(t, db.Create(&models.Resource{ID: 42, Pagetitle: "Internal news"}).Error)
	require.NoError(t, db.Create(&models.DocumentGroup{DocumentGroup: 7, Document: 42}).Error)

	user := strconv.FormatUint(admin.ID, 10)

	testCases := []struct {
		name          string
		args          []string
		expectedAllow bool
		expectedErr   error
	}{
		{
			name:          "role read from the user",
			args:          []string{"--route", permission.RouteRolesIndex},
			expectedAllow: true,
		},
		{
			name:        "explicit role 0",
			args:        []string{"--route", permission.RouteRolesIndex, "--role", "0"},
			expectedErr: gate.ErrInsufficientPermission,
		},
		{
			name:          "restricted resource without row-level checks",
			args:          []string{"--route", permission.RouteResourcesShow, "--resource", "42"},
			expectedAllow: true,
		},
		{
			name:        "restricted resource with row-level checks",
			args:        []string{"--route", permission.RouteResourcesShow, "--resource", "42", "--row-level"},
			expectedErr: gate.ErrResourceAccessDenied,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"check", "-c", dir, "--user", user}, tc.args...)

			out, err := execute(t, args...)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)

				var deny *gate.DenyError
				require.ErrorAs(t, err, &deny)
			} else {
				require.NoError(t, err)
			}

			var d gate.Decision
			require.NoError(t, json.Unmarshal([]byte(out), &d), out)
			assert.Equal(t, tc.expectedAllow, d.Allowed)
		})
	}

	_, err = execute(t, "check", "-c", dir, "--user", user)
	require.Error(t, err, "--route is required")
}
