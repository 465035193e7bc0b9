// Package errors provides coded, actionable errors for navroute.
//
// Every error carries a short code (e.g. "R001") that maps to a registered
// template with a category, a message, a longer explanation and a
// documentation URL. Builder methods attach the location of the offending
// manifest entry, a fix suggestion or a wrapped cause.
//
// # Error Categories
//
//   - config: router or project configuration is unusable
//   - pattern: a path template cannot be compiled
//   - navigation: the browser capability misbehaved
//   - manifest: a route manifest cannot be read or is invalid
//   - publish: a remote publish capability failed
//   - cli: command line usage errors
//
// # Usage
//
//	err := errors.New("R001").
//	    WithDetail(`route "/users/:id" targets event "user.show"`).
//	    WithSuggestion("Set router.Config.Publish")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R001: No publish capability configured
//	//
//	//   route "/users/:id" targets event "user.show"
//	//
//	//   Hint: Set router.Config.Publish
//
// Errors compare by code, so callers can test with the standard library:
//
//	if errors.Is(err, navErrors.New("R001")) { ... }
package errors
