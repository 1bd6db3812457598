package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/loykin/relaunch/internal/config"
	"github.com/loykin/relaunch/internal/logger"
	"github.com/loykin/relaunch/internal/supervisor"
)

// osExit is swappable for tests.
var osExit = os.Exit

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}

// buildRoot creates the root command and wires subcommands.
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	respawnFlags := &RespawnFlags{}
	migrateFlags := &MigrateFlags{}
	historyFlags := &HistoryFlags{}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createRespawnCommand(globalFlags, respawnFlags),
		createMigrateCommand(globalFlags, migrateFlags),
		createHistoryCommand(globalFlags, historyFlags),
	)
	return root
}

func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "relaunch",
		Short: "Respawn supervisor and config migration toolkit",
		Long: `Relaunch is a small operational toolkit: it waits for a parent process
to exit and launches a detached replacement, and it migrates a persisted
JSON configuration document across schema versions.

Examples:
  relaunch respawn --parent-pid 4242 --target /usr/bin/myapp --arg --verbose
  relaunch migrate --config-file ~/.config/myapp/config.json
  relaunch history --db ~/.local/share/relaunch/history.db`,
	}
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML toolkit config (optional)")
	return root
}

// loadToolkitConfig resolves defaults from the optional toolkit config file.
func loadToolkitConfig(flags *GlobalFlags) (config.FileConfig, error) {
	return config.Load(flags.ConfigPath)
}

func createRespawnCommand(globalFlags *GlobalFlags, f *RespawnFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "respawn",
		Short: "Wait for a parent process to exit, then launch a detached replacement",
		Long: `Respawn polls the parent PID until it exits or the wait budget runs out,
sleeps the configured delay, and launches the target detached from this
process's session and standard handles.

Exit codes: 0 success, 2 parent-wait timeout, 3 launch failure.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := loadToolkitConfig(globalFlags)
			if err != nil {
				return err
			}
			applyRespawnDefaults(f, fc.Respawn, cmd)
			c := &command{logger: newLogger(fc)}
			st, err := c.Respawn(*f)
			if err != nil {
				return err
			}
			if st != supervisor.StatusSuccess {
				osExit(st.Code())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&f.ParentPID, "parent-pid", 0, "PID of the parent process to wait on (required)")
	cmd.Flags().StringVar(&f.Target, "target", "", "path of the executable to launch (required)")
	cmd.Flags().StringArrayVar(&f.Args, "arg", nil, "argument for the target (repeatable, in order)")
	cmd.Flags().IntVar(&f.DelayMS, "delay-ms", 0, "delay after parent exit before launching (default 700)")
	cmd.Flags().IntVar(&f.MaxWaitMS, "max-wait-ms", 0, "wait budget for parent exit (default 120000)")
	cmd.Flags().IntVar(&f.PollMS, "poll-ms", 0, "liveness poll cadence (default 100)")
	_ = cmd.MarkFlagRequired("parent-pid")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

// applyRespawnDefaults fills flag values the user did not set from the
// toolkit config.
func applyRespawnDefaults(f *RespawnFlags, rc config.RespawnConfig, cmd *cobra.Command) {
	if !cmd.Flags().Changed("delay-ms") {
		f.DelayMS = rc.DelayMS
	}
	if !cmd.Flags().Changed("max-wait-ms") {
		f.MaxWaitMS = rc.MaxWaitMS
	}
	if !cmd.Flags().Changed("poll-ms") {
		f.PollMS = rc.PollMS
	}
}

func createMigrateCommand(globalFlags *GlobalFlags, f *MigrateFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate legacy keys in the config document",
		Long: `Migrate loads the JSON config document, applies the ordered legacy-key
migration steps, and writes the document back only when something changed.
Running it again is always safe: a migrated document is left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := loadToolkitConfig(globalFlags)
			if err != nil {
				return err
			}
			if f.ConfigFile == "" {
				f.ConfigFile = fc.ConfigFile
			}
			if f.HistoryDB == "" {
				f.HistoryDB = fc.HistoryDB
			}
			c := &command{logger: newLogger(fc)}
			_, err = c.Migrate(*f)
			return err
		},
	}
	cmd.Flags().StringVar(&f.ConfigFile, "config-file", "", "path to the JSON config document")
	cmd.Flags().StringVar(&f.HistoryDB, "history-db", "", "SQLite ledger recording migration passes (optional)")
	return cmd
}

func createHistoryCommand(globalFlags *GlobalFlags, f *HistoryFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded migration passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := loadToolkitConfig(globalFlags)
			if err != nil {
				return err
			}
			if f.DB == "" {
				f.DB = fc.HistoryDB
			}
			c := &command{logger: newLogger(fc)}
			return c.History(*f)
		},
	}
	cmd.Flags().StringVar(&f.DB, "db", "", "path to the SQLite migration ledger")
	cmd.Flags().IntVar(&f.Limit, "limit", 50, "maximum entries to list")
	return cmd
}

func newLogger(fc config.FileConfig) *slog.Logger {
	if fc.Log != nil {
		return logger.New(*fc.Log)
	}
	return logger.New(logger.Config{})
}
