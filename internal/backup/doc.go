// Package backup copies document files off a mounted removable volume into
// the backup store.
//
// A Filter selects files by extension and size, minus anything matching an
// exclusion glob. The Copier walks the volume and copies each match with
// integrity verification and the source modification time preserved. It
// never overwrites an existing destination. With content deduplication
// enabled, files whose xxh3 digest was already copied during this process are
// reported as duplicates instead of copied again.
package backup
