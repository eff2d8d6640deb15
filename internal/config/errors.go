package config

import "errors"

// ErrInvalidConfig marks a setting that was read but cannot drive the
// engine; ErrLoadConfig marks a file or environment that could not be read.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
