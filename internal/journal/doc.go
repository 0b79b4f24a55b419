// Package journal keeps an SQLite log of every file copied into the backup
// store and marks rows when the reclaimer deletes their destination.
//
// The journal is informational. The backup tree itself stays the source of
// truth for sizes and ages, so a lost or stale journal never changes what the
// reclaimer deletes.
package journal
