package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/loykin/relaunch/internal/confstore"
	"github.com/loykin/relaunch/internal/history"
	"github.com/loykin/relaunch/internal/migrate"
	"github.com/loykin/relaunch/internal/supervisor"
)

type command struct {
	logger *slog.Logger
}

// Respawn waits for the parent to exit and launches the target detached.
// The returned status doubles as the process exit code.
func (c *command) Respawn(f RespawnFlags) (supervisor.ExitStatus, error) {
	if f.ParentPID <= 0 {
		return 0, fmt.Errorf("--parent-pid must be a positive integer, got %d", f.ParentPID)
	}
	if f.Target == "" {
		return 0, fmt.Errorf("--target is required")
	}
	s := supervisor.New(
		supervisor.WithPollInterval(time.Duration(f.PollMS)*time.Millisecond),
		supervisor.WithLogger(c.logger),
	)
	st := s.Run(supervisor.Request{
		ParentPID:  f.ParentPID,
		TargetPath: f.Target,
		TargetArgs: f.Args,
		Delay:      time.Duration(f.DelayMS) * time.Millisecond,
		MaxWait:    time.Duration(f.MaxWaitMS) * time.Millisecond,
	})
	return st, nil
}

// Migrate runs the legacy-key migration pass against the config document and
// optionally records the pass in the history ledger.
func (c *command) Migrate(f MigrateFlags) (bool, error) {
	if f.ConfigFile == "" {
		return false, fmt.Errorf("--config-file is required (or set config_file in the toolkit config)")
	}
	store := confstore.New(f.ConfigFile)
	reg := migrate.New(migrate.WithLogger(c.logger))

	changed, results, err := reg.MigrateLegacyKeys(store)
	if err != nil {
		return false, err
	}
	if f.HistoryDB != "" {
		if err := c.recordPass(f.HistoryDB, results); err != nil {
			// The document is already migrated; a ledger failure is
			// diagnostic, not fatal.
			c.logger.Warn("failed to record migration history", "db", f.HistoryDB, "error", err)
		}
	}
	printJSON(map[string]any{"changed": changed, "path": f.ConfigFile})
	return changed, nil
}

func (c *command) recordPass(dbPath string, results []migrate.StepResult) error {
	ledger, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()
	ctx := context.Background()
	if err := ledger.EnsureSchema(ctx); err != nil {
		return err
	}
	return ledger.RecordPass(ctx, results)
}

// History prints recent migration ledger entries as JSON.
func (c *command) History(f HistoryFlags) error {
	if f.DB == "" {
		return fmt.Errorf("--db is required (or set history_db in the toolkit config)")
	}
	ledger, err := history.Open(f.DB)
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()
	ctx := context.Background()
	if err := ledger.EnsureSchema(ctx); err != nil {
		return err
	}
	entries, err := ledger.Recent(ctx, f.Limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	printJSON(entries)
	return nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
