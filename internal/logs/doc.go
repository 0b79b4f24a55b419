// Package logs reads the daemon's run log for the CLI.
//
// Tail returns the last lines of a file together with the byte offset they
// end at. Follow polls from that offset and delivers each new complete line
// until its context is cancelled.
package logs
