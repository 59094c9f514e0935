// Package phoneauth orchestrates phone number sign-in: requesting a one-time
// code, verifying it, and signing in through a Provider, while keeping an
// observable AuthUIState for the UI.
//
// The pieces are usable on their own and are wired together by Flow:
//
//   - Store owns AuthUIState. Every change is an Event applied by Reduce on a
//     single writer goroutine; subscribers always see whole values.
//   - Gateway calls the Provider and turns its callbacks into events. Each
//     request or sign-in is an Attempt, and only the current attempt of a
//     kind can change the state.
//   - TimeoutWatcher flags an attempt that has not answered within
//     Config.Timeout. A timed-out attempt keeps running and may still settle.
//   - RetryCoordinator abandons the running attempt when the user takes the
//     timeout notice's alternate sign-in action.
//
// # Usage
//
//	flow, err := phoneauth.New(ctx, provider,
//	    phoneauth.WithConfig(cfg),
//	    phoneauth.WithLogger(log),
//	    phoneauth.WithPersistence(backend),
//	    phoneauth.WithSink(sink),
//	)
//	if err != nil {
//	    return err
//	}
//	defer flow.Close()
//
//	country := phoneauth.Country{Name: "Vietnam", DialCode: "+84"}
//	if err := flow.StartVerification(ctx, country, "0901234567"); err != nil {
//	    return err
//	}
//
//	for msg := range flow.Subscribe(ctx).Receive(ctx) {
//	    switch msg.Data.ActivePhase() {
//	    case phoneauth.PhaseCodeEntry:
//	        // ask for the code, then flow.SubmitCode(ctx, code)
//	    case phoneauth.PhaseSignedIn:
//	        return nil
//	    }
//	}
//
// Provider failures are classified with ProviderError; ExceptionMessage maps
// them to the text a phase shows. Timeouts never produce an exception message.
//
// The sandbox subpackage provides a local Provider with fictional numbers.
package phoneauth
