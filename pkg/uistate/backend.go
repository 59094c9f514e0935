package uistate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrymomot/phoneauth/pkg/secrets"
)

// Backend stores a single snapshot of T.
type Backend[T any] interface {
	// Load returns ErrNoSnapshot when nothing was saved.
	Load(ctx context.Context) (T, error)
	Save(ctx context.Context, v T) error
	Clear(ctx context.Context) error
	Close() error
}

// SealPurpose scopes the key derived for snapshot encryption.
const SealPurpose = "ui-state"

// BackendOption configures the encoding of the File and Redis backends.
type BackendOption func(*codec)

// WithSealer encrypts snapshots at rest. Snapshots sealed with another key
// fail to load with ErrInvalidSnapshot.
func WithSealer(s *secrets.Sealer) BackendOption {
	return func(c *codec) { c.sealer = s }
}

type codec struct {
	sealer *secrets.Sealer
}

func newCodec(opts []BackendOption) codec {
	var c codec
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c codec) encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if c.sealer == nil {
		return data, nil
	}
	sealed, err := c.sealer.Seal(data)
	if err != nil {
		return nil, fmt.Errorf("seal snapshot: %w", err)
	}
	return sealed, nil
}

func decode[T any](c codec, data []byte) (T, error) {
	var v T
	if c.sealer != nil {
		opened, err := c.sealer.Open(data)
		if err != nil {
			return v, errors.Join(ErrInvalidSnapshot, err)
		}
		data = opened
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrInvalidSnapshot, err)
	}
	return v, nil
}
