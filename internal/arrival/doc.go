// Package arrival tracks removable volume arrivals across poll ticks.
//
// Tracker diffs the mounted set between ticks. SeenSet is the per-run dedup
// set of device identities that have already been processed, and Registry
// keeps the volume records (first seen, last access) for the current run.
// Both bounded collections evict in insertion order rather than by recency.
package arrival
