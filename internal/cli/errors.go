package cli

import "errors"

// CLI errors. Library errors from opcache are passed through wrapped.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrPathEmpty          = errors.New("path cannot be empty")
	ErrInvalidLogLevel    = errors.New("invalid log level (debug|info|warn|error)")
	ErrUnknownCommand     = errors.New("unknown command")
	ErrKeyRequired        = errors.New("key is required")
	ErrValueRequired      = errors.New("value is required")
	ErrKeyNotFound        = errors.New("key not found")
	ErrTooManyArgs        = errors.New("too many arguments")
)
