package config

import (
	"errors"
	"io/fs"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrConfigNotLoaded is returned when a cached configuration is unexpectedly missing
	ErrConfigNotLoaded = errors.New("configuration has not been loaded")

	// ErrNilPointer is returned when a nil pointer is provided to Load or Parse
	ErrNilPointer = errors.New("nil pointer provided to config loader")

	// ErrEnvFile is returned when an explicitly requested dotenv file is malformed
	ErrEnvFile = errors.New("failed to load env file")
)

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
