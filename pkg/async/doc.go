// Package async provides a generic Future for results produced on another
// goroutine.
//
// Async starts a function in its own goroutine and returns a *Future
// immediately. NewPromise returns a pending Future together with a Resolver,
// for results that arrive through callbacks rather than a function return.
// Either way a Future completes exactly once; later resolutions are ignored.
//
//	fut := async.Async(ctx, cred, provider.SignIn)
//	user, err := fut.Await()
//
// Callers can block with Await, bound the wait with AwaitWithTimeout or
// AwaitContext, select on Done, or poll with IsComplete. AwaitContext returns
// context.Cause, so a context cancelled with a specific cause reports that
// cause rather than context.Canceled.
//
// Futures are thin wrappers around a goroutine and a channel; they do not
// limit concurrency.
package async
