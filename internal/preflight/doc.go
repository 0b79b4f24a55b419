// Package preflight checks that the directories copycat writes to are usable
// and that the backup disk is not already below its free-space floor.
//
// Results are informational. The status command prints them and the daemon
// logs failures at startup; neither refuses to run on a failed check.
package preflight
