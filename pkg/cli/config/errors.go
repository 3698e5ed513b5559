package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound  = goerr.New("configuration file not found")
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrMissingSecret   = goerr.New("jwt secret is required unless --no-auth is set")
	ErrWeakSecret      = goerr.New("jwt secret must be at least 32 bytes")
	ErrInvalidDuration = goerr.New("invalid duration")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	SectionKey    = "section"
	ValueKey      = "value"
)
