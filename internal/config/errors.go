package config

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrEmptyAddr     = errors.New("addr must not be empty")
	ErrEmptyDBPath   = errors.New("db_path must not be empty")
)
