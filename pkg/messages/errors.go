package messages

import "errors"

var (
	ErrInvalidYAML    = errors.New("messages: invalid YAML translations")
	ErrNoTranslations = errors.New("messages: no translations found")
	ErrLoadFailed     = errors.New("messages: failed to load translations")
)
