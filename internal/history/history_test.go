package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loykin/relaunch/internal/migrate"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	require.NoError(t, l.EnsureSchema(context.Background()))
	return l
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestRecordAndRecent(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	results := []migrate.StepResult{
		{Step: "absorb_note_linker", Changed: true, AppliedAt: now},
		{Step: "canonicalize_gate_key_field", Changed: false, AppliedAt: now},
	}
	require.NoError(t, l.RecordPass(ctx, results))

	entries, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	require.Equal(t, "canonicalize_gate_key_field", entries[0].Step)
	require.False(t, entries[0].Changed)
	require.Equal(t, "absorb_note_linker", entries[1].Step)
	require.True(t, entries[1].Changed)
}

func TestRecordPassEmpty(t *testing.T) {
	l := openTestLedger(t)
	require.NoError(t, l.RecordPass(context.Background(), nil))
	entries, err := l.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRecentLimit(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.RecordPass(ctx, []migrate.StepResult{
			{Step: "absorb_note_linker", Changed: i%2 == 0, AppliedAt: time.Now().UTC()},
		}))
	}
	entries, err := l.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Non-positive limit falls back to the default cap.
	entries, err = l.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)
}
