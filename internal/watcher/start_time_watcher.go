package watcher

import "fmt"

// StartTimeWatcher detects by PID with a start-time guard against PID reuse.
// StartUnix is the expected process start time in Unix seconds, typically
// captured with StartUnix() when the watch begins. When the guard is zero or
// the current start time cannot be determined, it degrades to a plain PID
// check.
type StartTimeWatcher struct {
	PID       int
	StartUnix int64
}

func (w StartTimeWatcher) Alive() (bool, error) {
	if !pidAlive(w.PID) {
		return false, nil
	}
	if w.StartUnix > 0 {
		cur := StartUnix(w.PID)
		if cur > 0 && cur != w.StartUnix {
			return false, nil // PID reused; not the watched process
		}
	}
	return true, nil
}

func (w StartTimeWatcher) Describe() string {
	return fmt.Sprintf("pid:%d start:%d", w.PID, w.StartUnix)
}
