package supervisor

import (
	"io"
	"log/slog"
	"os/exec"
	"testing"
	"time"

	"github.com/loykin/relaunch/internal/watcher"
)

// fakeWatcher reports alive for the first aliveFor probes, then gone.
type fakeWatcher struct {
	aliveFor int
	probes   int
}

func (f *fakeWatcher) Alive() (bool, error) {
	f.probes++
	return f.probes <= f.aliveFor, nil
}

func (f *fakeWatcher) Describe() string { return "fake" }

func newTestSupervisor(w watcher.Watcher, opts ...Option) *Supervisor {
	base := []Option{
		WithPollInterval(5 * time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithWatcherFactory(func(int) watcher.Watcher { return w }),
	}
	return New(append(base, opts...)...)
}

func trueBinary(t *testing.T) string {
	t.Helper()
	p, err := exec.LookPath("true")
	if err != nil {
		t.Skip("no true binary on PATH")
	}
	return p
}

func TestRunParentTimeout(t *testing.T) {
	// Parent stays alive forever; the target path is bogus on purpose so a
	// launch attempt would surface as StatusLaunchFailed.
	s := newTestSupervisor(&fakeWatcher{aliveFor: 1 << 30})
	st := s.Run(Request{
		ParentPID:  1,
		TargetPath: "/nonexistent/should-not-run",
		MaxWait:    40 * time.Millisecond,
	})
	if st != StatusParentTimeout {
		t.Fatalf("status = %v, want parent-timeout", st)
	}
}

func TestRunNegativeMaxWaitClamped(t *testing.T) {
	s := newTestSupervisor(&fakeWatcher{aliveFor: 1 << 30})
	start := time.Now()
	st := s.Run(Request{ParentPID: 1, TargetPath: "x", MaxWait: -5 * time.Second})
	if st != StatusParentTimeout {
		t.Fatalf("status = %v, want parent-timeout", st)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("clamped wait took %v", elapsed)
	}
}

func TestRunParentExitsThenLaunch(t *testing.T) {
	s := newTestSupervisor(&fakeWatcher{aliveFor: 3})
	delay := 50 * time.Millisecond
	start := time.Now()
	st := s.Run(Request{
		ParentPID:  1,
		TargetPath: trueBinary(t),
		Delay:      delay,
		MaxWait:    2 * time.Second,
	})
	if st != StatusSuccess {
		t.Fatalf("status = %v, want success", st)
	}
	if elapsed := time.Since(start); elapsed < delay {
		t.Fatalf("delay not honored: elapsed %v < %v", elapsed, delay)
	}
}

func TestRunDelaySkippedWhenNonPositive(t *testing.T) {
	s := newTestSupervisor(&fakeWatcher{})
	start := time.Now()
	st := s.Run(Request{
		ParentPID:  1,
		TargetPath: trueBinary(t),
		Delay:      -10 * time.Second,
		MaxWait:    time.Second,
	})
	if st != StatusSuccess {
		t.Fatalf("status = %v, want success", st)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("negative delay not skipped: elapsed %v", elapsed)
	}
}

func TestRunLaunchFailed(t *testing.T) {
	s := newTestSupervisor(&fakeWatcher{})
	st := s.Run(Request{
		ParentPID:  1,
		TargetPath: "/nonexistent/definitely-missing",
		MaxWait:    time.Second,
	})
	if st != StatusLaunchFailed {
		t.Fatalf("status = %v, want launch-failed", st)
	}
}

func TestRunExitAtWire(t *testing.T) {
	// Parent is observed alive during every in-budget poll but gone by the
	// final post-deadline check; that still counts as a successful wait.
	// The poll interval exceeds MaxWait so exactly one in-loop probe runs.
	w := &fakeWatcher{aliveFor: 1}
	s := New(
		WithPollInterval(200*time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithWatcherFactory(func(int) watcher.Watcher { return w }),
	)
	st := s.Run(Request{
		ParentPID:  1,
		TargetPath: trueBinary(t),
		MaxWait:    50 * time.Millisecond,
	})
	if st != StatusSuccess {
		t.Fatalf("status = %v, want success", st)
	}
}

func TestRunZeroMaxWaitDeadParent(t *testing.T) {
	// MaxWait of zero skips the poll loop; the final check alone decides.
	s := newTestSupervisor(&fakeWatcher{})
	st := s.Run(Request{ParentPID: 1, TargetPath: trueBinary(t)})
	if st != StatusSuccess {
		t.Fatalf("status = %v, want success", st)
	}
}

func TestRunRealParent(t *testing.T) {
	requireUnix(t)
	sleepBin, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("no sleep binary on PATH")
	}
	child := exec.Command(sleepBin, "0.2")
	if err := child.Start(); err != nil {
		t.Fatalf("start child: %v", err)
	}
	pid := child.Process.Pid
	go func() { _ = child.Wait() }()

	s := New(
		WithPollInterval(20*time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	st := s.Run(Request{
		ParentPID:  pid,
		TargetPath: trueBinary(t),
		MaxWait:    5 * time.Second,
	})
	if st != StatusSuccess {
		t.Fatalf("status = %v, want success", st)
	}
}

func TestExitStatusStrings(t *testing.T) {
	cases := map[ExitStatus]string{
		StatusSuccess:       "success",
		StatusParentTimeout: "parent-timeout",
		StatusLaunchFailed:  "launch-failed",
		ExitStatus(99):      "unknown",
	}
	for st, want := range cases {
		if got := st.String(); got != want {
			t.Fatalf("String(%d) = %q, want %q", int(st), got, want)
		}
	}
	if StatusParentTimeout.Code() != 2 || StatusLaunchFailed.Code() != 3 {
		t.Fatalf("exit codes drifted: %d %d",
			StatusParentTimeout.Code(), StatusLaunchFailed.Code())
	}
}
