// Package mountguard toggles the root filesystem between read-only and
// read-write for the duration of a mutating operation.
//
// Acquiring the guard requires root privilege and remounts the root
// filesystem read-write. Releasing it flushes pending writes and restores the
// read-only mode unless a sentinel file marks the device as permanently
// writable. Failure to restore read-only mode is reported as a warning rather
// than an error because the primary operation has already completed.
package mountguard
