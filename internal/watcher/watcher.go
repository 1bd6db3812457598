package watcher

// Watcher is a strategy that determines if a process is running.
// Implementations must be cheap, side-effect free, and safe to call at
// arbitrary frequency.
type Watcher interface {
	// Alive returns true if the process is detected as running.
	Alive() (bool, error)
	// Describe returns a human-readable description of the detection method.
	Describe() string
}
