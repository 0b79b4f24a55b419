package preflight

import (
	"fmt"
	"os"

	"copycat/internal/backupstore"
	"copycat/internal/config"
	"copycat/internal/logging"
	"copycat/internal/reclaim"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every check that applies to cfg.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Backup directory", cfg.Paths.BackupDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	results = append(results, CheckFreeSpace(backupstore.New(cfg.Paths.BackupDir, logging.NewNop()), reclaim.PolicyFromConfig(cfg)))
	if len(cfg.Monitor.MediaRoots) > 0 {
		results = append(results, CheckMediaRoots(cfg.Monitor.MediaRoots))
	}
	return results
}

// CheckDirectoryAccess verifies that the directory exists and is readable and
// writable by this process.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := checkWritable(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// FreeSpaceReporter is the part of the backup store the free-space check needs.
type FreeSpaceReporter interface {
	FreeBytes() (uint64, error)
}

// CheckFreeSpace compares the backup filesystem's free space against the
// policy floor.
func CheckFreeSpace(store FreeSpaceReporter, policy reclaim.Policy) Result {
	const name = "Backup free space"
	free, err := store.FreeBytes()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unknown (%v)", err)}
	}
	detail := fmt.Sprintf("%s free, floor %s", logging.FormatBytes(int64(free)), logging.FormatBytes(policy.MinFreeBytes))
	if int64(free) < policy.MinFreeBytes {
		return Result{Name: name, Detail: detail + " (reclamation will run before the next copy)"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckMediaRoots passes when at least one configured mount parent exists.
func CheckMediaRoots(roots []string) Result {
	const name = "Media roots"
	var present int
	for _, root := range roots {
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			present++
		}
	}
	detail := fmt.Sprintf("%d of %d present", present, len(roots))
	if present == 0 {
		return Result{Name: name, Detail: detail + " (no removable volumes can be detected)"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
