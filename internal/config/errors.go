package config

import (
	"errors"
)

var (
	// ErrConfigNil is returned when no configuration was given.
	ErrConfigNil = errors.New("config is nil")

	// ErrEmptyURL is returned when webserver.url is missing.
	ErrEmptyURL = errors.New("webserver.url is required")

	// ErrWebServerPortCanNotBeZero is returned when webserver.port is unset.
	ErrWebServerPortCanNotBeZero = errors.New("webserver.port must be a valid port")

	// ErrUnknownGormEngine is returned for a DB.GormEngine other than mysql, postgres or sqlite.
	ErrUnknownGormEngine = errors.New("db.gormengine must be mysql, postgres or sqlite")

	// ErrUnknownCacheBackend is returned for a Cache.Backend other than memory, redis or none.
	ErrUnknownCacheBackend = errors.New("cache.backend must be memory, redis or none")

	// ErrEmptyRedisAddr is returned when the redis cache backend has no address.
	ErrEmptyRedisAddr = errors.New("cache.redis.addr is required for the redis backend")
)
