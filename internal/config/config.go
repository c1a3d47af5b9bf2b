// Package config loads the service configuration from etc/main.toml.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes single value overrides, e.g. EVO_AUTHZ_DB_PASSWORD.
	EnvPrefix = "EVO_AUTHZ"

	// EnvConfigJSON holds a JSON document merged over the file config.
	EnvConfigJSON = EnvPrefix + "_CONFIG_JSON"

	// DefaultPath is used when ReadConfig gets an empty path.
	DefaultPath = "./etc/"

	defaultShutDownTime    = 5
	defaultCacheSize       = 1024
	defaultCacheTTL        = 5 * time.Minute
	defaultRedisPrefix     = "evo-authz"
	defaultRowLevelSetting = "use_udperms"
	defaultSessionExpiry   = 12 * time.Hour
)

// ReadConfig reads main.toml from path, applies env overrides and validates the result.
func ReadConfig(path string) (Config, error) {
	var c Config

	if path == "" {
		path = DefaultPath
	}

	v := viper.New()
	v.SetConfigName("main")
	v.SetConfigType("toml")
	v.AddConfigPath(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	if raw := os.Getenv(EnvConfigJSON); raw != "" {
		var err error

		if c, err = decodeAndMergeConfig(c, raw); err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	if err := json.Unmarshal([]byte(configAsJSON), &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode "+EnvConfigJSON)
	}

	return c, nil
}

// DumpConfig returns the config as TOML.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer

	if err := toml.NewEncoder(&buffer).Encode(c); err != nil {
		return "", err //nolint:wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON returns the config as indented JSON.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint:wrapcheck
	}

	return buffer.String(), nil
}

// validate rejects unusable settings and fills defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = defaultSessionExpiry
	}

	switch strings.ToLower(c.DB.GormEngine) {
	case "":
		c.DB.GormEngine = EngineMySQL
	case EngineMySQL, EnginePostgres, EngineSQLite:
		c.DB.GormEngine = strings.ToLower(c.DB.GormEngine)
	default:
		return errors.Wrapf(ErrUnknownGormEngine, "%s: %q", invalidErrMessage, c.DB.GormEngine)
	}

	if c.ACL.RowLevelSetting == "" {
		c.ACL.RowLevelSetting = defaultRowLevelSetting
	}

	return validateCache(&c.Cache)
}

func validateCache(c *Cache) error {
	switch strings.ToLower(c.Backend) {
	case "":
		c.Backend = CacheMemory
	case CacheMemory, CacheRedis, CacheNone:
		c.Backend = strings.ToLower(c.Backend)
	default:
		return errors.Wrapf(ErrUnknownCacheBackend, "invalid config: %q", c.Backend)
	}

	if c.Size <= 0 {
		c.Size = defaultCacheSize
	}

	if c.TTL <= 0 {
		c.TTL = defaultCacheTTL
	}

	if c.Backend == CacheRedis && c.Redis.Addr == "" {
		return errors.Wrap(ErrEmptyRedisAddr, "invalid config")
	}

	if c.Redis.Prefix == "" {
		c.Redis.Prefix = defaultRedisPrefix
	}

	return nil
}
