package reclaim

import (
	"fmt"
	"time"

	"copycat/internal/config"
)

// Strategy orders candidates for the age pass.
type Strategy string

const (
	OldestFirst  Strategy = config.StrategyOldestFirst
	LargestFirst Strategy = config.StrategyLargestFirst
)

const gib = 1 << 30

// Policy holds the reclamation limits. Zero MaxTotalBytes or MaxAge disables
// the corresponding pass.
type Policy struct {
	MinFreeBytes  int64         `json:"min_free_bytes"`
	MaxTotalBytes int64         `json:"max_total_bytes"`
	MaxAge        time.Duration `json:"max_age"`
	Strategy      Strategy      `json:"strategy"`
}

// PolicyFromConfig converts the [space] section. GB values are binary
// gigabytes and days are 24 hours.
func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		MinFreeBytes:  int64(cfg.Space.MinFreeGB * gib),
		MaxTotalBytes: int64(cfg.Space.MaxTotalGB * gib),
		MaxAge:        time.Duration(cfg.Space.MaxAgeDays) * 24 * time.Hour,
		Strategy:      Strategy(cfg.Space.Strategy),
	}
}

// Validate rejects negative limits and unknown strategies.
func (p Policy) Validate() error {
	if p.MinFreeBytes < 0 || p.MaxTotalBytes < 0 || p.MaxAge < 0 {
		return fmt.Errorf("reclaim: negative limit in policy %+v", p)
	}
	switch p.Strategy {
	case OldestFirst, LargestFirst:
		return nil
	}
	return fmt.Errorf("reclaim: unknown strategy %q", p.Strategy)
}
