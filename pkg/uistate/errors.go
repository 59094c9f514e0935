package uistate

import "errors"

var (
	// ErrNoSnapshot is returned by Load when nothing was saved.
	ErrNoSnapshot = errors.New("uistate: no snapshot saved")

	ErrUnknownBackend  = errors.New("uistate: unknown backend")
	ErrInvalidSnapshot = errors.New("uistate: snapshot cannot be decoded")
	ErrMissingFilePath = errors.New("uistate: file path is empty")
	ErrMissingRedisKey = errors.New("uistate: redis key is empty")
	ErrBackendClosed   = errors.New("uistate: backend closed")
)
