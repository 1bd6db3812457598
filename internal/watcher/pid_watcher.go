package watcher

import "fmt"

// PIDWatcher detects by a provided PID number. A non-positive PID is never
// alive, and an inaccessible process counts as gone rather than an error.
type PIDWatcher struct{ PID int }

func (w PIDWatcher) Alive() (bool, error) { return pidAlive(w.PID), nil }
func (w PIDWatcher) Describe() string     { return fmt.Sprintf("pid:%d", w.PID) }
