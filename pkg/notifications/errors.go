package notifications

import "errors"

var (
	// ErrDismissed resolves a notice that was dismissed without a decision.
	ErrDismissed = errors.New("notifications: notice dismissed")

	// ErrReplaced resolves a notice superseded by a newer one.
	ErrReplaced = errors.New("notifications: notice replaced")

	// ErrDispatcherClosed is returned by Notify after Close.
	ErrDispatcherClosed = errors.New("notifications: dispatcher closed")

	// ErrUnknownNotice is returned by Respond for a notice that is not showing.
	ErrUnknownNotice = errors.New("notifications: notice is not pending")
)
