package sandbox

import "errors"

// ErrClosed is wrapped by sign-ins interrupted by Close or by their context.
var ErrClosed = errors.New("sandbox: provider closed")
