// Package cistatus resolves a pull request to its head branch and the branch
// to its latest CI build result.
//
// Both lookups are plain GET requests with JSON field extraction. Results are
// never cached; callers observe the current state of the forge and CI system
// at query time.
package cistatus
