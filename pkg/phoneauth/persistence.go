package phoneauth

import "context"

// Persistence stores the latest state snapshot so a flow survives short
// process restarts. Implementations live in pkg/uistate.
type Persistence interface {
	// Load returns ErrNoSnapshot when nothing was saved.
	Load(ctx context.Context) (AuthUIState, error)
	Save(ctx context.Context, state AuthUIState) error
	Clear(ctx context.Context) error
}
