// Package vtest provides test doubles for the signup flow.
//
// # Scripted auth service
//
// FakeService records every signup call and answers with a scripted code
// or error:
//
//	svc := vtest.NewFakeService().RespondWith("EMAIL_SENT")
//	ctrl := signup.New(svc, responses.Default())
//	...
//	if svc.CallCount() != 1 {
//	    t.Fatalf("calls = %d, want 1", svc.CallCount())
//	}
//
// OnCall runs a hook while the call is in flight, which is where loading
// flags can be observed:
//
//	svc.OnCall(func(auth.SignupRequest) {
//	    if !ctrl.Loading().Get() {
//	        t.Error("loading should be set while in flight")
//	    }
//	})
//
// Hold blocks calls until released, for tests that race a second event
// against a pending submit.
//
// # Current user
//
// StaticProvider stands in for a session provider:
//
//	provider := vtest.NewStaticProvider(&auth.Principal{ID: "u1"})
//	handler := provider.Middleware()(next)
//
// For code that takes a context directly:
//
//	ctx := vtest.CtxWithPrincipal(auth.Principal{ID: "u1"})
//
// # Assertions
//
//	vtest.ExpectContains(t, body, "Sign up")
//	vtest.ExpectNotContains(t, body, "is-invalid")
package vtest
