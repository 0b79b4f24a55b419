package testsupport

import (
	"context"
	"testing"

	"copycat/internal/config"
	"copycat/internal/journal"
)

// MustOpenJournal opens the config's copy journal and registers cleanup.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Journal {
	t.Helper()

	j, err := journal.Open(context.Background(), cfg.JournalPath())
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = j.Close()
	})
	return j
}
