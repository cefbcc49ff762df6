// Package daemon composes the run store, pipeline manager, and HTTP
// server into a single lifecycle guarded by a file lock.
package daemon
