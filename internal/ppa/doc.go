// Package ppa implements the repository management commands: install,
// remove, list, and update.
//
// The Service orchestrates the mount guard, repository list manager, package
// manager adapter, and CI status resolver; the command builders expose the
// operations through cobra and map failures onto process exit codes.
package ppa
