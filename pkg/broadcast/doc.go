// Package broadcast provides type-safe one-to-many delivery of values.
//
// MemoryBroadcaster is a classic fan-out: every Broadcast is offered to each
// subscriber's buffered channel, and a full buffer drops the message for that
// subscriber instead of blocking the sender.
//
// Latest is a replay-latest value holder for state that consumers render
// rather than process: a subscriber receives the current value as soon as it
// subscribes and afterwards only the newest published value, never a backlog
// of superseded ones.
//
//	state := broadcast.NewLatest(initial)
//	sub := state.Subscribe(ctx)
//	defer sub.Close()
//
//	for msg := range sub.Receive(ctx) {
//		render(msg.Data)
//	}
//
// Subscriptions end when their context is cancelled, when Close is called on
// the subscriber, or when the producer is closed; in every case the receive
// channel is closed.
package broadcast
