// Package sandbox provides a scripted phoneauth.Provider for local
// development and tests. Fictional numbers can send a fixed code, verify
// automatically, be rejected, hit a quota or never answer at all.
//
//	p := sandbox.New(
//	    sandbox.WithNumber(sandbox.Number{Phone: "+15550000001", Code: "111111"}),
//	    sandbox.WithNumber(sandbox.Number{Phone: "+15550000002", Behavior: sandbox.AutoVerify}),
//	    sandbox.WithNumber(sandbox.Number{Phone: "+15550000003", Behavior: sandbox.Silent}),
//	    sandbox.WithDelay(500*time.Millisecond),
//	)
//	defer p.Close()
package sandbox
