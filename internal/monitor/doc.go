// Package monitor runs the poll loop that detects newly attached removable
// volumes and backs each one up.
//
// Every tick enumerates mounted volumes and diffs them against the previous
// tick. For each arrival the loop resolves the volume identity and skips
// volumes already processed this session. Otherwise it makes room in the
// backup store before copying matching files. Copy and reclamation run to
// completion even when shutdown is requested mid-volume.
package monitor
