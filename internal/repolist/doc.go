// Package repolist manages the plain-text list files that enable package
// repositories on the device.
//
// Each enabled repository is backed by one file in a fixed configuration
// directory; existence of the file is existence of the repository. Adding a
// repository first verifies that the named distribution is actually published
// at the remote archive.
package repolist
