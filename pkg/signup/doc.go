// Package signup implements the signup form controller.
//
// A Controller owns a four-field form (name, email, password and
// confirmPassword), the UI flags that drive the page (Loading,
// MessageLoading, Submitted) and the post-signup result (Code, Message).
//
//	ctrl := signup.New(authClient, responses.Default(),
//	    signup.WithLogger(logger),
//	)
//	ctrl.Name().Input("Jane Doe")
//	ctrl.Email().Input("jane@example.com")
//	ctrl.Password().Input("secret123")
//	ctrl.ConfirmPassword().Input("secret123")
//
//	if err := ctrl.Submit(ctx); err != nil {
//	    // errors.Is(err, signup.ErrInvalidForm) or a backend failure
//	}
//	fmt.Println(ctrl.Message().Get())
//
// # Submission
//
// Submit always sets Submitted. An invalid form stops there. Otherwise
// Loading and MessageLoading are set, the backend is called exactly once,
// and then:
//
//   - on success Code and Message are filled in and MessageLoading is
//     cleared. Loading stays set so the submit button remains disabled.
//   - on failure Loading is cleared. MessageLoading stays set unless the
//     controller was built with WithErrorPolicy(ClearMessageLoading).
//
// # Error display
//
// ErrorState applies the controller's ErrorStateMatcher. The default,
// form.DirtyGroupMatcher, highlights a field once the form has been edited
// and either the field or the whole form (password mismatch) is invalid.
//
// Constructing a controller has no side effects. Redirecting signed-in
// users away from the page is the job of package guard.
package signup
