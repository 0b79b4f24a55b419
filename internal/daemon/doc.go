// Package daemon coordinates the long-running copycat process.
//
// It wires the storage components and the volume monitor into a single
// lifecycle guarded by a flock instance lock. Maintenance commands reuse
// OpenComponents and AcquireLock so they never mutate the backup store while
// a daemon is running.
package daemon
