package relaunch

import (
	"log/slog"
	"time"

	"github.com/loykin/relaunch/internal/confstore"
	"github.com/loykin/relaunch/internal/migrate"
	"github.com/loykin/relaunch/internal/supervisor"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Request = supervisor.Request

type ExitStatus = supervisor.ExitStatus

const (
	StatusSuccess       = supervisor.StatusSuccess
	StatusParentTimeout = supervisor.StatusParentTimeout
	StatusLaunchFailed  = supervisor.StatusLaunchFailed
)

type Document = confstore.Document

type StepResult = migrate.StepResult

// Resolver is the optional host-runtime capability for the two
// runtime-dependent migration steps.
type Resolver = migrate.Resolver

// Supervisor is a thin facade over internal/supervisor.Supervisor.
type Supervisor struct{ inner *supervisor.Supervisor }

// NewSupervisor builds a supervisor with the given poll cadence and logger.
// Zero poll uses the default cadence; nil logger uses slog.Default().
func NewSupervisor(poll time.Duration, logger *slog.Logger) *Supervisor {
	opts := []supervisor.Option{}
	if poll > 0 {
		opts = append(opts, supervisor.WithPollInterval(poll))
	}
	if logger != nil {
		opts = append(opts, supervisor.WithLogger(logger))
	}
	return &Supervisor{inner: supervisor.New(opts...)}
}

// Run executes one supervision pass: wait for the parent to exit, then
// launch the target detached. See supervisor.Supervisor.Run.
func (s *Supervisor) Run(req Request) ExitStatus { return s.inner.Run(req) }

// Store is a thin facade over internal/confstore.Store.
type Store struct{ inner *confstore.Store }

// NewStore binds a store to the config document path.
func NewStore(path string) *Store { return &Store{inner: confstore.New(path)} }

func (s *Store) Load() (Document, error)    { return s.inner.Load() }
func (s *Store) Save(doc Document) error    { return s.inner.Save(doc) }
func (s *Store) Path() string               { return s.inner.Path() }
func (s *Store) unwrap() *confstore.Store   { return s.inner }

// MigrateLegacyKeys runs the ordered legacy-key migration steps against the
// document in store, writing back only when something changed. A nil
// resolver makes the runtime-dependent steps no-ops.
func MigrateLegacyKeys(store *Store, resolver Resolver, logger *slog.Logger) (bool, []StepResult, error) {
	opts := []migrate.Option{}
	if resolver != nil {
		opts = append(opts, migrate.WithResolver(resolver))
	}
	if logger != nil {
		opts = append(opts, migrate.WithLogger(logger))
	}
	return migrate.New(opts...).MigrateLegacyKeys(store.unwrap())
}
