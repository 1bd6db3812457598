package supervisor

// ExitStatus is the coarse outcome of a supervision run. Values double as
// process exit codes for the CLI.
type ExitStatus int

const (
	// StatusSuccess means the parent exited and the target was launched.
	StatusSuccess ExitStatus = 0
	// StatusParentTimeout means the parent never exited within MaxWait.
	StatusParentTimeout ExitStatus = 2
	// StatusLaunchFailed means the target could not be started.
	StatusLaunchFailed ExitStatus = 3
)

func (s ExitStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusParentTimeout:
		return "parent-timeout"
	case StatusLaunchFailed:
		return "launch-failed"
	default:
		return "unknown"
	}
}

// Code returns the process exit code for the status.
func (s ExitStatus) Code() int { return int(s) }
