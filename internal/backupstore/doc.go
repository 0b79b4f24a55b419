// Package backupstore models the directory tree copied files land in.
//
// Files are laid out as <root>/<volume label>/<YYYY-MM-DD>/<relative path>.
// There is no index: every query rescans the tree, so sizes and ages stay
// correct even when files are added or removed by hand.
package backupstore
