// Package sessionauth provides auth.Provider implementations that recognise
// an already signed-in user.
//
// Provider reads an opaque session ID from a cookie and resolves it through
// a SessionStore. RedisStore is the bundled store. JWTProvider verifies an
// HS256 token carried in a cookie or an Authorization bearer header.
//
// Both providers are read-only. A request with a missing, unknown or expired
// credential passes through unauthenticated; the session cookie is cleared
// when the store rejects it.
package sessionauth
