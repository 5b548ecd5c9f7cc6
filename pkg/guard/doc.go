// Package guard provides the route-resolution step that keeps signed-in
// users away from the signup page.
//
// The guard runs before any signup controller is constructed. An
// authenticated request never reaches the page handler, so constructing a
// controller has no navigation side effects.
package guard
