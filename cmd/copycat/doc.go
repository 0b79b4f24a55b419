// Package main hosts the copycat CLI entrypoint and command graph.
//
// The Cobra command tree runs the polling daemon in the foreground and
// manages the login autostart entry. The remaining commands read the backup
// store and its state files directly. Commands that delete backup files take
// the same instance lock as the daemon.
package main
