// Package errors provides structured, coded errors for the signup tool.
//
// Each error carries a code (e.g. "S101") that maps to a registered template
// with a category, a short message and a longer detail. Builders attach a
// suggestion or a wrapped cause:
//
//	err := errors.New("S101").
//	    WithDetail("No signup.json found in /srv/signup").
//	    WithSuggestion("Pass --config or create signup.json")
//
//	fmt.Fprintln(os.Stderr, err.Format())
//
// Categories:
//   - config: configuration file and value problems
//   - auth: authentication backend and session provider failures
//   - messages: response code table loading
//   - cli: command line usage
package errors
