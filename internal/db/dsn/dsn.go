// Package dsn builds database connection strings from the configuration.
package dsn

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/evocms-community/evo-authz/internal/config"
)

// Create builds the gorm DSN for the configured engine.
//
// mysql:    user:pass@tcp(host:port)/name?extras
// postgres: host=... port=... user=... password=... dbname=... extras
// sqlite:   the database file name, ":memory:" when empty.
func Create(cfg *config.Config) string {
	db := cfg.DB

	switch db.GormEngine {
	case config.EnginePostgres:
		out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			db.Host, db.Port, db.User, db.Password, db.Name)
		if db.Extras != "" {
			out += " " + db.Extras
		}

		return out
	case config.EngineSQLite:
		if db.Name == "" {
			return ":memory:"
		}

		return db.Name
	default:
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?%s",
			db.User, db.Password, net.JoinHostPort(db.Host, strconv.Itoa(db.Port)), db.Name, db.Extras)
	}
}

// URI builds a postgres:// connection URI, the form expected by the postgres session storage.
func URI(cfg *config.Config) string {
	db := cfg.DB

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		Path:     "/" + db.Name,
		RawQuery: db.Extras,
	}

	return u.String()
}
