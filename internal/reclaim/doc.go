// Package reclaim frees space in the backup store.
//
// EnsureSpace is called before every copy. When free space on the store's
// filesystem is below the configured floor it runs two passes:
//
//   - the size pass deletes the oldest files one at a time, rescanning the
//     store after each deletion, until the total is within max_total_gb;
//   - the age pass then deletes every file older than max_age_days, ordered
//     by the configured strategy, whether or not the size pass ran.
//
// Failed deletions are counted and skipped. Free space is measured again
// afterwards and the caller skips the copy when it is still short.
package reclaim
