package config

import "errors"

// Error kinds returned by Load and Validate.
var (
	// ErrLoadConfig wraps failures reading the YAML file or the environment.
	ErrLoadConfig = errors.New("load config failed")
	// ErrInvalidConfig wraps validation failures; the message lists every bad key.
	ErrInvalidConfig = errors.New("invalid config")
)
