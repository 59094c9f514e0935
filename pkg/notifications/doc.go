// Package notifications presents transient, user-facing notices and reports
// whether the user took the notice's action.
//
// A Dispatcher keeps at most one notice visible. Notify returns an
// async.Future that resolves exactly once: true when the user selected the
// action, false when the notice was closed without it, or ErrReplaced /
// ErrDismissed when the dispatcher withdrew it.
//
// Presentation is delegated to a Sink. BroadcastSink publishes Shown and
// Withdrawn events for a UI layer and waits for Respond; MultiSink fans out to
// several sinks; NoOpSink and SinkFunc cover tests and headless use.
//
// # Usage
//
//	sink := notifications.NewBroadcastSink(16)
//	d := notifications.NewDispatcher(sink)
//	defer d.Close()
//
//	sub := sink.Subscribe(ctx)
//	go func() {
//	    for msg := range sub.Receive(ctx) {
//	        if msg.Data.Kind == notifications.EventShown {
//	            _ = sink.Respond(msg.Data.Notice.ID, true)
//	        }
//	    }
//	}()
//
//	selected, err := d.Notify(ctx, notifications.Notice{
//	    Tag:     "code_entry",
//	    Type:    notifications.TypeWarning,
//	    Message: "Verification timed out.",
//	    Action:  &notifications.Action{Label: "Try again"},
//	}).Await()
//
// Tags group notices by origin so that DismissTag can withdraw a notice only
// when it still belongs to the screen that raised it.
package notifications
