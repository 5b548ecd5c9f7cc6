// Package server hosts the signup page over HTTP.
//
// Routes:
//
//	GET  /              home page (greets a signed-in user)
//	GET  /signup        signup form
//	POST /signup        form submission
//	GET  /signup/live   WebSocket channel for live validation and submit
//	GET  /healthz       liveness probe
//	GET  /metrics       Prometheus metrics (when enabled)
//
// The /signup routes run behind the current-user provider and
// guard.RedirectIfAuthenticated, so signed-in users are sent to the
// redirect target before a controller is built. Each page request and
// each live connection gets its own signup.Controller.
//
// # Live channel
//
// The browser sends JSON events:
//
//	{"type":"input","field":"email","value":"jane@example.com"}
//	{"type":"blur","field":"email"}
//	{"type":"submit"}
//	{"type":"reset"}
//
// The server answers with {"type":"state","state":{...}} after every
// change, coalescing bursts into one push. Submit events that arrive while
// a submission is pending or after a successful one are dropped.
package server
