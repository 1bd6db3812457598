package supervisor

import (
	"log/slog"
	"time"

	"github.com/loykin/relaunch/internal/watcher"
)

// DefaultPollInterval is the cadence for parent liveness checks.
const DefaultPollInterval = 100 * time.Millisecond

// Request describes a single respawn run: wait for ParentPID to exit, then
// launch TargetPath with TargetArgs detached from this process.
type Request struct {
	ParentPID  int
	TargetPath string
	TargetArgs []string
	// Delay is slept after the parent exits, before launching. Values <= 0
	// skip the sleep entirely.
	Delay time.Duration
	// MaxWait bounds the wait for the parent to exit. Negative values are
	// clamped to zero.
	MaxWait time.Duration
}

// Supervisor waits for a parent process to terminate and launches a
// replacement exactly once. It holds no shared mutable state; a Supervisor
// value is consumed by a single Run.
type Supervisor struct {
	poll   time.Duration
	logger *slog.Logger
	// newWatcher is swappable for tests.
	newWatcher func(pid int) watcher.Watcher
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithPollInterval overrides the liveness poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.poll = d
		}
	}
}

// WithLogger sets the diagnostic logger. Diagnostics are a side channel; they
// never affect the returned status.
func WithLogger(l *slog.Logger) Option {
	return func(s *Supervisor) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWatcherFactory overrides how the parent watcher is constructed.
func WithWatcherFactory(f func(pid int) watcher.Watcher) Option {
	return func(s *Supervisor) {
		if f != nil {
			s.newWatcher = f
		}
	}
}

func New(opts ...Option) *Supervisor {
	s := &Supervisor{
		poll:   DefaultPollInterval,
		logger: slog.Default(),
		newWatcher: func(pid int) watcher.Watcher {
			// Guard against PID reuse during long waits when the platform
			// exposes a stable start time.
			return watcher.StartTimeWatcher{PID: pid, StartUnix: watcher.StartUnix(pid)}
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run executes one supervision pass. It blocks the calling goroutine for up
// to MaxWait plus Delay plus the launch attempt. There are no retries.
func (s *Supervisor) Run(req Request) ExitStatus {
	w := s.newWatcher(req.ParentPID)

	if !s.waitForExit(w, req.MaxWait) {
		s.logger.Warn("parent did not exit within budget",
			"watch", w.Describe(), "max_wait", req.MaxWait)
		return StatusParentTimeout
	}

	if req.Delay > 0 {
		time.Sleep(req.Delay)
	}

	if err := launchDetached(req.TargetPath, req.TargetArgs); err != nil {
		// Coarse status only; detail is diagnostic.
		s.logger.Error("failed to launch target",
			"target", req.TargetPath, "error", err)
		return StatusLaunchFailed
	}
	s.logger.Info("launched replacement", "target", req.TargetPath)
	return StatusSuccess
}

// waitForExit polls until the watcher reports the process gone or the budget
// runs out. A probe failure counts as "not alive" so a broken probe cannot
// hang the wait. Returns true when the parent is gone.
func (s *Supervisor) waitForExit(w watcher.Watcher, maxWait time.Duration) bool {
	if maxWait < 0 {
		maxWait = 0
	}
	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		if !aliveOrFalse(w) {
			return true
		}
		time.Sleep(s.poll)
	}
	// One final check so a parent exiting right at the wire still counts.
	return !aliveOrFalse(w)
}

func aliveOrFalse(w watcher.Watcher) bool {
	alive, err := w.Alive()
	if err != nil {
		return false
	}
	return alive
}
