package config

import (
	"time"

	"github.com/evocms-community/evo-authz/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	ACL       ACL
	Cache     Cache
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool    // use clean path middleware to allow multi slash requests
	DisableRecover bool    // disable recover middleware
	Domain         string  // domain name for the webserver
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown in seconds
	URL            string  // base url for the webserver
	Session        Session // session settings
}

// ACL controls how authorization decisions are made.
type ACL struct {
	// StrictRoutes denies route names missing from the registry instead of letting them through.
	StrictRoutes bool
	// RowLevelSetting is the system_settings name of the document-group switch.
	RowLevelSetting string
}

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Cache configures the role permission cache.
type Cache struct {
	Backend string        // memory, redis or none
	Size    int           // max entries of the memory backend
	TTL     time.Duration // entry lifetime
	Redis   Redis
}

// Redis connection settings for the redis cache backend.
type Redis struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // key prefix, so several installs can share one server
}
