package main

// Flag structs to decouple cobra from logic for testing.

// GlobalFlags holds persistent flags shared by all subcommands.
type GlobalFlags struct {
	ConfigPath string // path to the toolkit TOML config (optional)
}

// RespawnFlags holds flags for the respawn subcommand. Durations are in
// milliseconds to keep the flag surface flat.
type RespawnFlags struct {
	ParentPID int
	Target    string
	Args      []string
	DelayMS   int
	MaxWaitMS int
	PollMS    int
}

// MigrateFlags holds flags for the migrate subcommand.
type MigrateFlags struct {
	ConfigFile string
	HistoryDB  string
}

// HistoryFlags holds flags for the history subcommand.
type HistoryFlags struct {
	DB    string
	Limit int
}
